// Package buffer implements Buffer[T] (spec.md §3): a reference-counted,
// byte-aligned, typed view over bytes, sliceable in O(1) by adjusting
// offset+length. Backing storage is a plain Go byte slice: either one
// allocated with make or one supplied by the caller.
package buffer

import (
	"fmt"
	"unsafe"
)

// Scalar is the constraint of types a Buffer may be instantiated over: the
// fixed-width primitive ptypes plus the raw byte type used for packed bit
// streams and side-data buffers (VarBinView, FSST symbol tables, ...).
type Scalar interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~int8 | ~int16 | ~int32 | ~int64 |
		~float32 | ~float64
}

// Buffer is an immutable, reference-counted, typed view over a byte slice.
// The zero Buffer is an empty, valid buffer of length 0.
type Buffer[T Scalar] struct {
	raw    []byte // the full underlying allocation, never resliced
	offset int    // element offset into raw, not bytes
	length int    // number of T elements visible through this view
}

var zero [0]byte

// FromSlice wraps an existing Go slice as a Buffer without copying. The
// caller must not mutate data after this call; Buffer values are assumed
// immutable throughout the engine (spec.md §3, "Lifetimes").
func FromSlice[T Scalar](data []T) Buffer[T] {
	if len(data) == 0 {
		return Buffer[T]{}
	}
	var zeroT T
	width := int(unsafe.Sizeof(zeroT))
	raw := unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*width)
	return Buffer[T]{raw: raw, length: len(data)}
}

// Make allocates a new Buffer of n zeroed elements.
func Make[T Scalar](n int) Buffer[T] {
	if n == 0 {
		return Buffer[T]{}
	}
	var zeroT T
	width := int(unsafe.Sizeof(zeroT))
	raw := make([]byte, n*width)
	return Buffer[T]{raw: raw, length: n}
}

// Len returns the number of elements visible through this view.
func (b Buffer[T]) Len() int { return b.length }

// Slice returns a buffer containing the elements [start, stop). O(1): no
// copy, just a new offset/length (spec.md §3, "sliceable in O(1)").
func (b Buffer[T]) Slice(start, stop int) Buffer[T] {
	if start < 0 || stop > b.length || start > stop {
		panic(fmt.Sprintf("buffer: invalid slice [%d:%d) of length %d", start, stop, b.length))
	}
	return Buffer[T]{raw: b.raw, offset: b.offset + start, length: stop - start}
}

// elems returns a []T view over the buffer's visible elements. This is the
// single unsafe reinterpretation point; every other method goes through it.
func (b Buffer[T]) elems() []T {
	if b.length == 0 {
		return nil
	}
	var zeroT T
	width := int(unsafe.Sizeof(zeroT))
	ptr := unsafe.Pointer(&b.raw[b.offset*width])
	return unsafe.Slice((*T)(ptr), b.length)
}

// At returns the element at index i.
func (b Buffer[T]) At(i int) T {
	return b.elems()[i]
}

// ToSlice copies the buffer's contents into a fresh []T. Use At/Slice for
// zero-copy access in hot paths; ToSlice exists for callers that need an
// owned, independently-mutable copy (e.g. building a canonical array).
func (b Buffer[T]) ToSlice() []T {
	out := make([]T, b.length)
	copy(out, b.elems())
	return out
}

// Bytes returns the raw byte view underlying this buffer's visible range.
// Used by segment writers that need to flush a buffer verbatim.
func (b Buffer[T]) Bytes() []byte {
	var zeroT T
	width := int(unsafe.Sizeof(zeroT))
	return b.raw[b.offset*width : (b.offset+b.length)*width]
}

// FromBytes reinterprets raw bytes as a Buffer[T]. len(data) must be a
// multiple of sizeof(T); the caller is responsible for alignment, which
// FromBytes does not check.
func FromBytes[T Scalar](data []byte) Buffer[T] {
	var zeroT T
	width := int(unsafe.Sizeof(zeroT))
	if len(data)%width != 0 {
		panic(fmt.Sprintf("buffer: %d bytes is not a multiple of width %d", len(data), width))
	}
	return Buffer[T]{raw: data, length: len(data) / width}
}

// Builder accumulates elements into a growable Buffer, mirroring the
// append-then-finish shape the teacher's internal/bitio writers use.
type Builder[T Scalar] struct {
	data []T
}

// NewBuilder creates a Builder with the given initial capacity hint.
func NewBuilder[T Scalar](capacity int) *Builder[T] {
	return &Builder[T]{data: make([]T, 0, capacity)}
}

// Append adds a single element.
func (b *Builder[T]) Append(v T) { b.data = append(b.data, v) }

// AppendN adds n copies of v.
func (b *Builder[T]) AppendN(v T, n int) {
	for i := 0; i < n; i++ {
		b.data = append(b.data, v)
	}
}

// Len returns the number of elements appended so far.
func (b *Builder[T]) Len() int { return len(b.data) }

// Finish returns the accumulated Buffer. The Builder must not be reused
// afterwards.
func (b *Builder[T]) Finish() Buffer[T] {
	return FromSlice(b.data)
}

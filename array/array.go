// Package array implements the Array model, encoding VTable family, and
// encoding registry (spec.md §4.1). Every encoding — canonical or
// compressed — is a concrete Go type implementing Array; optional
// capabilities (compute fast paths, encoder entry points, serde) are
// exposed as narrower interfaces a concrete type may additionally
// implement, discovered by type assertion, the same "ask, don't assume"
// shape the teacher uses for its optional io.Seeker/io.ReaderAt checks in
// webp.go's DecodeConfig.
package array

import (
	"fmt"

	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/internal/telemetry"
	"github.com/deepteams/vortex/mask"
	"github.com/deepteams/vortex/scalar"
	"github.com/deepteams/vortex/stats"
)

// EncodingID is an encoding's stable, numeric identity, the sole key used
// for serialization and for the Registry lookup a file reader performs
// when rebuilding an array from a Layout node. Codes 0x0000-0x0400 are
// reserved for built-ins, 0x0401-0x7FFF for well-known extensions, and
// 0x8000-0xFFFF for user extensions (spec.md §4.1).
type EncodingID uint16

// Built-in canonical encoding codes.
const (
	EncodingNull EncodingID = iota
	EncodingBool
	EncodingPrimitive
	EncodingDecimal
	EncodingVarBinView
	EncodingStruct
	EncodingList
	EncodingExtension
	EncodingChunked
	EncodingConstant
)

// Built-in compressed encoding codes, starting past a reserved gap so new
// canonical kinds can be added without renumbering the catalog.
const (
	EncodingALP EncodingID = iota + 0x0040
	EncodingALPRD
	EncodingBitPacked
	EncodingFoR
	EncodingDelta
	EncodingDict
	EncodingRunEnd
	EncodingRunEndBool
	EncodingFSST
	EncodingZigZag
	EncodingByteBool
	EncodingRoaringBool
	EncodingRoaringInt
	EncodingDateTimeParts
	EncodingSparse
	EncodingDecimalByteParts
)

const (
	ExtensionRangeStart EncodingID = 0x0401
	UserRangeStart      EncodingID = 0x8000
)

// Name is a human-readable encoding identifier, used in error messages and
// in the serialized EncodingId pair (spec.md §4.1: "EncodingId (&str, u16)").
type Name string

// Array is the core vtable every encoding implements: ArrayVTable +
// OperationsVTable + ValidityVTable + VisitorVTable + CanonicalVTable
// collapsed onto a single Go interface, since Go has no sum types to
// dispatch over and an interface already gives us the open-but-sealed
// shape the spec's "downcasting discipline" describes (§4.1).
type Array interface {
	// Len returns the array's logical row count.
	Len() int
	// DType returns the array's logical type, including nullability.
	DType() dtype.DType
	// Encoding returns the stable numeric identity of this array's encoding.
	Encoding() EncodingID
	// EncodingName returns the encoding's human-readable name.
	EncodingName() Name
	// Stats returns the array's (possibly partially populated) stats set.
	Stats() *stats.StatsSet

	// IsValid reports whether position i holds a value.
	IsValid(i int) bool
	// AllValid reports whether every position holds a value.
	AllValid() bool
	// AllInvalid reports whether every position is null.
	AllInvalid() bool
	// ValidityMask materializes validity as a mask.Mask, true == valid.
	ValidityMask() mask.Mask

	// Slice returns the sub-array over rows [start, stop).
	Slice(start, stop int) Array
	// ScalarAt returns the logical value at row i, Null if invalid.
	ScalarAt(i int) scalar.Scalar

	// Canonicalize decompresses this array into one of the ten canonical
	// forms (spec.md §3, §4.2.1).
	Canonicalize() CanonicalArray

	// VisitBuffers calls v once per owned buffer, in a stable order.
	VisitBuffers(v func(name string, bytes []byte))
	// VisitChildren calls v once per child array, in a stable order.
	VisitChildren(v func(name string, child Array))
	// WithChildren returns a copy of this array with its children replaced,
	// in the same order VisitChildren reported them. Used by compute
	// kernels that rewrite a child (e.g. Dict.take rewraps new codes).
	WithChildren(children []Array) Array
}

// CanonicalArray marks the ten canonical forms (spec.md §3). Canonicalize
// on most of them returns the array itself; Constant and Chunked
// materialize a new canonical array instead.
type CanonicalArray interface {
	Array
	isCanonical()
}

// Encoder is the optional EncodeVTable (spec.md §4.1): the sampling
// compressor's entry point into an encoding. likeHint, if non-nil, is a
// previously successful CompressionTree node to replay against.
type Encoder interface {
	// TryEncode attempts to re-encode a canonical array, returning ok=false
	// if this encoding cannot represent it (e.g. wrong dtype or stats rule
	// out a clean fit).
	TryEncode(canonical CanonicalArray, likeHint any) (Array, bool)
}

// Serde is the optional SerdeVTable (spec.md §4.1), used by the file
// reader/writer to round-trip an encoding's metadata.
type Serde interface {
	// Metadata returns the encoding-specific bytes stored alongside a
	// Layout node (spec.md §3, "Layout").
	Metadata() []byte
}

// Builder constructs an Array of a registered encoding from its
// constituent parts, the reader-side half of Serde.
type Builder func(dt dtype.DType, length int, metadata []byte, segments [][]byte, children []Array) (Array, error)

// Context carries the process-wide mutable state compute and I/O call
// sites need explicit access to: the active Registry and a logger, never
// package globals (spec.md §9, "Global mutable state"; SPEC_FULL §10).
type Context struct {
	Registry *Registry
	Logger   *telemetry.Logger
}

// NewContext returns a Context wired to the default global registry and a
// no-op logger, suitable for call sites that don't need a custom encoding
// set or logging.
func NewContext() *Context {
	return &Context{Registry: DefaultRegistry, Logger: telemetry.Nop()}
}

// WithLogger returns a copy of ctx logging through l instead of a no-op.
func (ctx *Context) WithLogger(l *telemetry.Logger) *Context {
	out := *ctx
	out.Logger = l
	return &out
}

func boundsCheck(op string, a Array, i int) {
	if i < 0 || i >= a.Len() {
		panic(fmt.Sprintf("array: %s index %d out of range [0,%d)", op, i, a.Len()))
	}
}

// Len is the top-level wrapper over Array.Len (spec.md §4.1, "Top-level
// operations"); it forwards the call without further checks.
func Len(a Array) int { return a.Len() }

// Slice is the top-level wrapper over Array.Slice, validating bounds
// before dispatch and length preservation after.
func Slice(a Array, start, stop int) Array {
	if start < 0 || stop > a.Len() || start > stop {
		panic(fmt.Sprintf("array: invalid slice [%d:%d) of length %d", start, stop, a.Len()))
	}
	out := a.Slice(start, stop)
	if out.Len() != stop-start {
		panic(fmt.Sprintf("array: %s.Slice violated length postcondition", a.EncodingName()))
	}
	return out
}

// ScalarAt is the top-level wrapper over Array.ScalarAt, validating the
// index is in bounds first.
func ScalarAt(a Array, i int) scalar.Scalar {
	boundsCheck("scalar_at", a, i)
	return a.ScalarAt(i)
}

// Canonicalize is the top-level wrapper over Array.Canonicalize,
// validating the canonicalization contract's length/dtype preservation
// (spec.md §4.2.1, rules 1 and 3) and inheriting stats (rule 2).
func Canonicalize(a Array) CanonicalArray {
	c := a.Canonicalize()
	if c.Len() != a.Len() {
		panic(fmt.Sprintf("array: %s.Canonicalize violated length postcondition", a.EncodingName()))
	}
	if !c.DType().EqualIgnoringNullability(a.DType()) {
		panic(fmt.Sprintf("array: %s.Canonicalize violated dtype postcondition", a.EncodingName()))
	}
	c.Stats().Merge(a.Stats().Clone())
	return c
}

// IsValid is the top-level wrapper over Array.IsValid.
func IsValid(a Array, i int) bool {
	boundsCheck("is_valid", a, i)
	return a.IsValid(i)
}

// ValidCount returns the number of non-null positions.
func ValidCount(a Array) int {
	return a.Len() - InvalidCount(a)
}

// InvalidCount returns the number of null positions.
func InvalidCount(a Array) int {
	if v, ok := a.Stats().Get(stats.NullCount); ok && !v.Scalar.IsNull() {
		return int(v.Scalar.AsInt())
	}
	if a.AllValid() {
		return 0
	}
	if a.AllInvalid() {
		return a.Len()
	}
	return a.ValidityMask().FalseCount()
}

// ValidityMask is the top-level wrapper over Array.ValidityMask.
func ValidityMask(a Array) mask.Mask { return a.ValidityMask() }

// Package validity implements Validity (spec.md §3): either NonNullable,
// AllValid, AllInvalid, or an explicit boolean array. A physical invalid
// value may carry any underlying bit pattern; consumers must consult
// validity rather than the physical payload.
package validity

import (
	"fmt"

	"github.com/deepteams/vortex/mask"
)

// Kind discriminates Validity's representation.
type Kind uint8

const (
	// KindNonNullable means the dtype itself forbids nulls; IsValid is
	// always true and no storage is consulted.
	KindNonNullable Kind = iota
	KindAllValid
	KindAllInvalid
	KindArray // explicit boolean mask, true == valid
)

// Validity describes which logical positions of an array hold a value
// versus null.
type Validity struct {
	length int
	kind   Kind
	arr    mask.Mask // valid when kind == KindArray; true bit == valid
}

// NonNullable returns a Validity for a dtype that disallows nulls entirely.
func NonNullable(n int) Validity { return Validity{length: n, kind: KindNonNullable} }

// AllValid returns a Validity where every position holds a value.
func AllValid(n int) Validity { return Validity{length: n, kind: KindAllValid} }

// AllInvalid returns a Validity where every position is null.
func AllInvalid(n int) Validity { return Validity{length: n, kind: KindAllInvalid} }

// FromMask returns a Validity backed by an explicit mask, true meaning
// valid (present), false meaning null.
func FromMask(m mask.Mask) Validity {
	return Validity{length: m.Len(), kind: KindArray, arr: m}
}

// Len returns the validity's fixed length.
func (v Validity) Len() int { return v.length }

// Kind returns the validity's representation discriminant.
func (v Validity) Kind() Kind { return v.kind }

// IsValid reports whether position i holds a value.
func (v Validity) IsValid(i int) bool {
	if i < 0 || i >= v.length {
		panic(fmt.Sprintf("validity: index %d out of range [0,%d)", i, v.length))
	}
	switch v.kind {
	case KindNonNullable, KindAllValid:
		return true
	case KindAllInvalid:
		return false
	case KindArray:
		return v.arr.Value(i)
	default:
		panic("validity: unknown kind")
	}
}

// AllValidBool reports whether every position is valid (a fast O(1) or
// O(n)-worst-case check used to short-circuit NullCount/AllValid stats).
func (v Validity) AllValidBool() bool {
	switch v.kind {
	case KindNonNullable, KindAllValid:
		return true
	case KindAllInvalid:
		return v.length == 0
	default:
		return v.arr.TrueCount() == v.length
	}
}

// AllInvalidBool reports whether every position is null.
func (v Validity) AllInvalidBool() bool {
	switch v.kind {
	case KindAllInvalid:
		return true
	case KindNonNullable, KindAllValid:
		return v.length == 0
	default:
		return v.arr.TrueCount() == 0
	}
}

// NullCount returns the number of null positions.
func (v Validity) NullCount() int {
	switch v.kind {
	case KindNonNullable, KindAllValid:
		return 0
	case KindAllInvalid:
		return v.length
	default:
		return v.arr.FalseCount()
	}
}

// ValidCount returns the number of non-null positions.
func (v Validity) ValidCount() int { return v.length - v.NullCount() }

// AsMask materializes the validity as a mask.Mask, true meaning valid. This
// is the bridge used by ValidityVTable.ValidityMask (spec.md §4.1).
func (v Validity) AsMask() mask.Mask {
	switch v.kind {
	case KindNonNullable, KindAllValid:
		return mask.AllTrue(v.length)
	case KindAllInvalid:
		return mask.AllFalse(v.length)
	default:
		return v.arr
	}
}

// Slice restricts the validity to rows [start, stop).
func (v Validity) Slice(start, stop int) Validity {
	switch v.kind {
	case KindNonNullable:
		return NonNullable(stop - start)
	case KindAllValid:
		return AllValid(stop - start)
	case KindAllInvalid:
		return AllInvalid(stop - start)
	default:
		return FromMask(v.arr.Slice(start, stop))
	}
}

// Take gathers validity at the given indices, used by the take() kernel's
// construction of a result array's validity.
func Take(v Validity, indices []int) Validity {
	switch v.kind {
	case KindNonNullable:
		return NonNullable(len(indices))
	case KindAllValid:
		return AllValid(len(indices))
	case KindAllInvalid:
		return AllInvalid(len(indices))
	default:
		out := make([]bool, len(indices))
		for i, idx := range indices {
			out[i] = v.arr.Value(idx)
		}
		return FromMask(mask.FromBools(out))
	}
}

// Filter keeps only positions selected by m, used by the filter() kernel.
func Filter(v Validity, m mask.Mask) Validity {
	switch v.kind {
	case KindNonNullable:
		return NonNullable(m.TrueCount())
	case KindAllValid:
		return AllValid(m.TrueCount())
	case KindAllInvalid:
		return AllInvalid(m.TrueCount())
	default:
		out := make([]bool, 0, m.TrueCount())
		m.ThresholdIter(func(i int) bool {
			out = append(out, v.arr.Value(i))
			return true
		})
		return FromMask(mask.FromBools(out))
	}
}

// Combine intersects two validities of equal length element-wise (AND): a
// position is valid in the result iff valid in both. Used when a dtype
// change composes validities, e.g. Struct.IsValid combining the top-level
// validity with a field's own validity is NOT this — Combine is for
// encodings that logically AND an inherited validity with their own, such
// as Sparse over a non-nullable fill value.
func Combine(a, b Validity) Validity {
	if a.length != b.length {
		panic(fmt.Sprintf("validity: length mismatch %d vs %d", a.length, b.length))
	}
	if a.AllValidBool() {
		return b
	}
	if b.AllValidBool() {
		return a
	}
	return FromMask(mask.And(a.AsMask(), b.AsMask()))
}

package encoding

import (
	"sort"

	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/compute"
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/internal/bitpack"
	"github.com/deepteams/vortex/mask"
	"github.com/deepteams/vortex/scalar"
	"github.com/deepteams/vortex/stats"
	"github.com/deepteams/vortex/validity"
)

// BitPackedArray stores each value in a fixed bit_width narrower than its
// ptype's natural width, packed into a dense `packed` bit stream, with an
// optional `patches` child overriding the handful of positions whose true
// value doesn't fit bit_width (spec.md §4.2, "Bit-packed": "two variants:
// with/without patches"). Patches is a Sparse-shaped pair of sorted
// indices and values; a nil patches means the no-patches variant.
// scalar_at, take and filter operate on the packed bytes directly via
// bitpack.ExtractAt's O(1) random access rather than decoding the whole
// buffer up front. There is no search_sorted fast path; SearchSorted on a
// BitPackedArray canonicalizes it.
type BitPackedArray struct {
	dt           dtype.DType
	bitWidth     int
	packed       []byte
	patchIndices *array.PrimitiveArray // sorted, non-nullable, optional
	patchValues  array.Array           // optional, same dtype as dt
	offset       int
	length       int
	valid        validity.Validity
	st           *stats.StatsSet
}

// NewBitPacked constructs a BitPackedArray. patchIndices/patchValues may
// both be nil for the no-patches variant.
func NewBitPacked(dt dtype.DType, bitWidth int, packed []byte, length int, valid validity.Validity, patchIndices *array.PrimitiveArray, patchValues array.Array) *BitPackedArray {
	return &BitPackedArray{
		dt: dt, bitWidth: bitWidth, packed: packed, length: length, valid: valid,
		patchIndices: patchIndices, patchValues: patchValues, st: stats.New(),
	}
}

func (a *BitPackedArray) Len() int                   { return a.length }
func (a *BitPackedArray) DType() dtype.DType         { return a.dt }
func (a *BitPackedArray) Encoding() array.EncodingID { return array.EncodingBitPacked }
func (a *BitPackedArray) EncodingName() array.Name   { return "bitpacked" }
func (a *BitPackedArray) Stats() *stats.StatsSet     { return a.st }

func (a *BitPackedArray) IsValid(i int) bool      { return a.valid.IsValid(i) }
func (a *BitPackedArray) AllValid() bool          { return a.valid.AllValidBool() }
func (a *BitPackedArray) AllInvalid() bool        { return a.valid.AllInvalidBool() }
func (a *BitPackedArray) ValidityMask() mask.Mask { return a.valid.AsMask() }

func (a *BitPackedArray) Slice(start, stop int) array.Array {
	return &BitPackedArray{
		dt: a.dt, bitWidth: a.bitWidth, packed: a.packed, offset: a.offset + start, length: stop - start,
		valid: a.valid.Slice(start, stop), patchIndices: a.patchIndices, patchValues: a.patchValues, st: stats.New(),
	}
}

// patchAt reports whether logical position pos (within the full,
// unsliced packed stream) has a patch and, if so, its overriding scalar.
func (a *BitPackedArray) patchAt(pos int) (scalar.Scalar, bool) {
	if a.patchIndices == nil || a.patchIndices.Len() == 0 {
		return scalar.Scalar{}, false
	}
	n := a.patchIndices.Len()
	k := sort.Search(n, func(i int) bool { return int(array.ScalarAt(a.patchIndices, i).AsUint()) >= pos })
	if k < n && int(array.ScalarAt(a.patchIndices, k).AsUint()) == pos {
		return array.ScalarAt(a.patchValues, k), true
	}
	return scalar.Scalar{}, false
}

func (a *BitPackedArray) rawAt(pos int) uint64 {
	return bitpack.ExtractAt(a.packed, a.bitWidth, pos)
}

func (a *BitPackedArray) decodeWord(u uint64) scalar.Scalar {
	p := a.dt.PType()
	if p.IsSignedInt() {
		return scalar.FromInt(p, bitpack.SignExtend(u, a.bitWidth), a.dt.Nullable())
	}
	return scalar.FromInt(p, int64(u), a.dt.Nullable())
}

func (a *BitPackedArray) ScalarAt(i int) scalar.Scalar {
	if !a.valid.IsValid(i) {
		return scalar.Null(a.dt)
	}
	pos := a.offset + i
	if v, ok := a.patchAt(pos); ok {
		return v
	}
	return a.decodeWord(a.rawAt(pos))
}

func (a *BitPackedArray) Canonicalize() array.CanonicalArray {
	values := make([]scalar.Scalar, a.length)
	for i := 0; i < a.length; i++ {
		values[i] = a.ScalarAt(i)
	}
	return array.FromScalars(a.dt, values)
}

func (a *BitPackedArray) VisitBuffers(v func(name string, bytes []byte)) { v("packed", a.packed) }
func (a *BitPackedArray) VisitChildren(v func(name string, child array.Array)) {
	if a.patchIndices != nil {
		v("patch_indices", a.patchIndices)
	}
	if a.patchValues != nil {
		v("patch_values", a.patchValues)
	}
}
func (a *BitPackedArray) WithChildren(children []array.Array) array.Array {
	out := *a
	if len(children) >= 2 {
		out.patchIndices = children[0].(*array.PrimitiveArray)
		out.patchValues = children[1]
	}
	return &out
}

// ComputeFastPath implements scalar_at-adjacent take/filter directly
// against the packed bytes rather than decompressing first (spec.md
// §4.2, "Bit-packed" kernels: "take, filter, scalar_at, search_sorted
// operate on packed data directly").
func (a *BitPackedArray) ComputeFastPath(fn string, args []any) (any, bool) {
	switch fn {
	case compute.FnTake:
		indices, ok := args[1].([]int)
		if !ok {
			return nil, false
		}
		values := make([]scalar.Scalar, len(indices))
		for i, idx := range indices {
			values[i] = a.ScalarAt(idx)
		}
		return array.FromScalars(a.dt, values), true
	case compute.FnFilter:
		m, ok := args[1].(mask.Mask)
		if !ok {
			return nil, false
		}
		var values []scalar.Scalar
		for i := 0; i < a.length; i++ {
			if m.Value(i) {
				values = append(values, a.ScalarAt(i))
			}
		}
		return array.FromScalars(a.dt, values), true
	default:
		return nil, false
	}
}

func init() {
	array.DefaultRegistry.Register(array.EncodingBitPacked, "bitpacked", func(dt dtype.DType, length int, metadata []byte, segments [][]byte, children []array.Array) (array.Array, error) {
		bitWidth := 0
		if len(metadata) >= 1 {
			bitWidth = int(metadata[0])
		}
		var packed []byte
		if len(segments) > 0 {
			packed = segments[0]
		}
		vv := validity.AllValid(length)
		if dt.Nullable() && len(segments) > 1 {
			bools := make([]bool, length)
			for i := range bools {
				bools[i] = segments[1][i/8]&(1<<uint(i%8)) != 0
			}
			vv = validity.FromMask(mask.FromBools(bools))
		}
		var patchIndices *array.PrimitiveArray
		var patchValues array.Array
		if len(children) >= 2 {
			patchIndices = children[0].(*array.PrimitiveArray)
			patchValues = children[1]
		}
		return NewBitPacked(dt, bitWidth, packed, length, vv, patchIndices, patchValues), nil
	})
}

// Metadata implements array.Serde: a single byte holding bit_width.
func (a *BitPackedArray) Metadata() []byte { return []byte{byte(a.bitWidth)} }

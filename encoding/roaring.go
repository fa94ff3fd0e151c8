package encoding

import (
	"github.com/RoaringBitmap/roaring"

	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/compute"
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/mask"
	"github.com/deepteams/vortex/scalar"
	"github.com/deepteams/vortex/stats"
	"github.com/deepteams/vortex/validity"
)

// RoaringBoolArray stores a non-nullable boolean column as a Roaring
// bitmap of its set positions (spec.md §4.2, "RoaringBool"): row i is
// true iff the bitmap contains i. to_bool (Canonicalize) and invert both
// operate directly on the bitmap rather than a decoded bool buffer.
type RoaringBoolArray struct {
	length int
	bitmap *roaring.Bitmap
	st     *stats.StatsSet
}

// NewRoaringBool constructs a RoaringBoolArray over [0, length).
func NewRoaringBool(bitmap *roaring.Bitmap, length int) *RoaringBoolArray {
	return &RoaringBoolArray{length: length, bitmap: bitmap, st: stats.New()}
}

func (a *RoaringBoolArray) Len() int                   { return a.length }
func (a *RoaringBoolArray) DType() dtype.DType         { return dtype.Bool(false) }
func (a *RoaringBoolArray) Encoding() array.EncodingID { return array.EncodingRoaringBool }
func (a *RoaringBoolArray) EncodingName() array.Name   { return "roaringbool" }
func (a *RoaringBoolArray) Stats() *stats.StatsSet     { return a.st }

func (a *RoaringBoolArray) IsValid(i int) bool      { return true }
func (a *RoaringBoolArray) AllValid() bool          { return true }
func (a *RoaringBoolArray) AllInvalid() bool        { return a.length == 0 }
func (a *RoaringBoolArray) ValidityMask() mask.Mask { return mask.AllTrue(a.length) }

func (a *RoaringBoolArray) Slice(start, stop int) array.Array {
	sub := roaring.New()
	for i := start; i < stop; i++ {
		if a.bitmap.Contains(uint32(i)) {
			sub.Add(uint32(i - start))
		}
	}
	return NewRoaringBool(sub, stop-start)
}

func (a *RoaringBoolArray) ScalarAt(i int) scalar.Scalar {
	return scalar.Bool(a.bitmap.Contains(uint32(i)), false)
}

func (a *RoaringBoolArray) Canonicalize() array.CanonicalArray {
	bools := make([]bool, a.length)
	it := a.bitmap.Iterator()
	for it.HasNext() {
		pos := it.Next()
		if int(pos) < a.length {
			bools[pos] = true
		}
	}
	return array.NewBool(mask.FromBools(bools), validity.NonNullable(a.length))
}

func (a *RoaringBoolArray) VisitBuffers(v func(name string, bytes []byte)) {
	raw, _ := a.bitmap.ToBytes()
	v("bitmap", raw)
}
func (a *RoaringBoolArray) VisitChildren(v func(name string, child array.Array)) {}
func (a *RoaringBoolArray) WithChildren(children []array.Array) array.Array       { return a }

// ComputeFastPath implements invert directly against the bitmap (spec.md
// §4.2, "RoaringBool").
func (a *RoaringBoolArray) ComputeFastPath(fn string, args []any) (any, bool) {
	if fn != compute.FnNot {
		return nil, false
	}
	flipped := a.bitmap.Clone()
	flipped.Flip(0, uint64(a.length))
	return NewRoaringBool(flipped, a.length), true
}

func init() {
	array.DefaultRegistry.Register(array.EncodingRoaringBool, "roaringbool", func(dt dtype.DType, length int, metadata []byte, segments [][]byte, children []array.Array) (array.Array, error) {
		bm := roaring.New()
		if len(segments) > 0 {
			_, _ = bm.FromBuffer(segments[0])
		}
		return NewRoaringBool(bm, length), nil
	})
}

// Metadata implements array.Serde; RoaringBool carries no metadata
// beyond its serialized bitmap buffer.
func (a *RoaringBoolArray) Metadata() []byte { return nil }

// RoaringIntArray stores a sorted, distinct, non-nullable unsigned
// integer column as a Roaring bitmap whose members ARE the logical
// values (spec.md §4.2, "RoaringInt"): row i is the bitmap's i-th
// smallest member, read via its contains-at-rank (Select) operation.
type RoaringIntArray struct {
	ptype  dtype.PType
	bitmap *roaring.Bitmap
	st     *stats.StatsSet
}

// NewRoaringInt constructs a RoaringIntArray. ptype must be an unsigned
// integer type wide enough to hold the bitmap's maximum member.
func NewRoaringInt(ptype dtype.PType, bitmap *roaring.Bitmap) *RoaringIntArray {
	return &RoaringIntArray{ptype: ptype, bitmap: bitmap, st: stats.New()}
}

func (a *RoaringIntArray) Len() int                   { return int(a.bitmap.GetCardinality()) }
func (a *RoaringIntArray) DType() dtype.DType         { return dtype.Primitive(a.ptype, false) }
func (a *RoaringIntArray) Encoding() array.EncodingID { return array.EncodingRoaringInt }
func (a *RoaringIntArray) EncodingName() array.Name   { return "roaringint" }
func (a *RoaringIntArray) Stats() *stats.StatsSet     { return a.st }

func (a *RoaringIntArray) IsValid(i int) bool      { return true }
func (a *RoaringIntArray) AllValid() bool          { return true }
func (a *RoaringIntArray) AllInvalid() bool        { return a.Len() == 0 }
func (a *RoaringIntArray) ValidityMask() mask.Mask { return mask.AllTrue(a.Len()) }

func (a *RoaringIntArray) Slice(start, stop int) array.Array {
	values := a.bitmap.ToArray()
	return NewRoaringInt(a.ptype, roaring.BitmapOf(values[start:stop]...))
}

func (a *RoaringIntArray) ScalarAt(i int) scalar.Scalar {
	v, err := a.bitmap.Select(uint32(i))
	if err != nil {
		return scalar.Null(dtype.Primitive(a.ptype, true))
	}
	return scalar.FromInt(a.ptype, int64(v), false)
}

func (a *RoaringIntArray) Canonicalize() array.CanonicalArray {
	n := a.Len()
	values := make([]scalar.Scalar, n)
	for i := 0; i < n; i++ {
		values[i] = a.ScalarAt(i)
	}
	return array.FromScalars(dtype.Primitive(a.ptype, false), values)
}

func (a *RoaringIntArray) VisitBuffers(v func(name string, bytes []byte)) {
	raw, _ := a.bitmap.ToBytes()
	v("bitmap", raw)
}
func (a *RoaringIntArray) VisitChildren(v func(name string, child array.Array)) {}
func (a *RoaringIntArray) WithChildren(children []array.Array) array.Array       { return a }

// Metadata implements array.Serde: a single byte holding the ptype.
func (a *RoaringIntArray) Metadata() []byte { return []byte{byte(a.ptype)} }

func init() {
	array.DefaultRegistry.Register(array.EncodingRoaringInt, "roaringint", func(dt dtype.DType, length int, metadata []byte, segments [][]byte, children []array.Array) (array.Array, error) {
		ptype := dt.PType()
		if len(metadata) >= 1 {
			ptype = dtype.PType(metadata[0])
		}
		bm := roaring.New()
		if len(segments) > 0 {
			_, _ = bm.FromBuffer(segments[0])
		}
		return NewRoaringInt(ptype, bm), nil
	})
}

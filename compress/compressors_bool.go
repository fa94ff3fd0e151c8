package compress

import (
	"math"

	"github.com/RoaringBitmap/roaring"

	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/encoding"
	"github.com/deepteams/vortex/stats"
)

// roaringBoolMaxSetRatio bounds how far the fraction of true bits may sit
// from 0 (sparse) or from 1 (dense) for RoaringBool to be tried.
const roaringBoolMaxSetRatio = 0.4

// RoaringBoolCompressor packs a non-nullable boolean array whose true bits
// are either sparse or dense into a Roaring bitmap of its set positions
// (spec.md §4.2, "RoaringBool"). It
// declines on nullable input: RoaringBool has no validity child of its
// own, so encoding one would silently discard null rows.
type RoaringBoolCompressor struct{}

func (RoaringBoolCompressor) ID() string { return "roaringbool" }
func (RoaringBoolCompressor) Cost() uint8 { return 2 }
func (RoaringBoolCompressor) UsedEncodings() []array.EncodingID {
	return []array.EncodingID{array.EncodingRoaringBool}
}

func (RoaringBoolCompressor) CanCompress(a array.Array) bool {
	dt := a.DType()
	if dt.Kind() != dtype.KindBool || dt.Nullable() || !a.AllValid() {
		return false
	}
	n := a.Len()
	if n == 0 {
		return false
	}
	trueCount := 0
	for i := 0; i < n; i++ {
		if array.ScalarAt(a, i).AsBool() {
			trueCount++
		}
	}
	ratio := float64(trueCount) / float64(n)
	return ratio <= roaringBoolMaxSetRatio || ratio >= 1-roaringBoolMaxSetRatio
}

func (c RoaringBoolCompressor) Compress(ctx *Context, a array.Array, like *CompressionTree) CompressedArray {
	n := a.Len()
	bm := roaring.New()
	for i := 0; i < n; i++ {
		if array.ScalarAt(a, i).AsBool() {
			bm.Add(uint32(i))
		}
	}
	bm.RunOptimize()
	out := encoding.NewRoaringBool(bm, n)
	return CompressedArray{Array: out, Tree: &CompressionTree{CompressorID: c.ID()}}
}

// RoaringIntCompressor packs a non-nullable, sorted-distinct unsigned
// integer array into a Roaring bitmap whose members are the values
// themselves (spec.md §4.2, "RoaringInt").
type RoaringIntCompressor struct{}

func (RoaringIntCompressor) ID() string { return "roaringint" }
func (RoaringIntCompressor) Cost() uint8 { return 2 }
func (RoaringIntCompressor) UsedEncodings() []array.EncodingID {
	return []array.EncodingID{array.EncodingRoaringInt}
}

func (RoaringIntCompressor) CanCompress(a array.Array) bool {
	dt := a.DType()
	if dt.Kind() != dtype.KindPrimitive || !dt.PType().IsUnsignedInt() || dt.Nullable() || !a.AllValid() {
		return false
	}
	n := a.Len()
	if n == 0 {
		return false
	}
	if v, ok := a.Stats().Get(stats.IsStrictSorted); ok && !v.Scalar.AsBool() {
		return false
	}
	prev := uint64(0)
	for i := 0; i < n; i++ {
		v := uint64(array.ScalarAt(a, i).AsInt())
		if (i > 0 && v <= prev) || v > math.MaxUint32 {
			return false
		}
		prev = v
	}
	return true
}

func (c RoaringIntCompressor) Compress(ctx *Context, a array.Array, like *CompressionTree) CompressedArray {
	n := a.Len()
	members := make([]uint32, n)
	for i := 0; i < n; i++ {
		members[i] = uint32(array.ScalarAt(a, i).AsInt())
	}
	bm := roaring.BitmapOf(members...)
	bm.RunOptimize()
	out := encoding.NewRoaringInt(a.DType().PType(), bm)
	return CompressedArray{Array: out, Tree: &CompressionTree{CompressorID: c.ID()}}
}

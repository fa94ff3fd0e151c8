package compress

import (
	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/encoding"
	"github.com/deepteams/vortex/internal/bitpack"
	"github.com/deepteams/vortex/scalar"
	"github.com/deepteams/vortex/stats"
	"github.com/deepteams/vortex/validity"
)

// ConstantCompressor wraps an array whose every row, nulls included, holds
// the same value into array.ConstantArray — the cheapest possible encoding and always
// tried first (spec.md §4.2, "Constant").
type ConstantCompressor struct{}

func (ConstantCompressor) ID() string { return "constant" }
func (ConstantCompressor) Cost() uint8 { return 1 }
func (ConstantCompressor) UsedEncodings() []array.EncodingID { return []array.EncodingID{array.EncodingConstant} }

func (ConstantCompressor) CanCompress(a array.Array) bool {
	if v, ok := a.Stats().Get(stats.IsConstant); ok && v.Precision == stats.Exact {
		return v.Scalar.AsBool()
	}
	n := a.Len()
	if n == 0 {
		return false
	}
	first := array.ScalarAt(a, 0)
	for i := 1; i < n; i++ {
		if !array.ScalarAt(a, i).Equal(first) {
			return false
		}
	}
	return true
}

func (c ConstantCompressor) Compress(ctx *Context, a array.Array, like *CompressionTree) CompressedArray {
	var value scalar.Scalar
	if a.Len() > 0 {
		value = array.ScalarAt(a, 0)
	} else {
		value = scalar.Null(a.DType())
	}
	out := array.NewConstant(value, a.Len())
	return CompressedArray{Array: out, Tree: &CompressionTree{CompressorID: c.ID()}}
}

// FoRCompressor subtracts the observed minimum from every integer value
// (spec.md §4.2, "FoR"), shrinking the value range. Its encoded child is
// a plain primitive array; it is not bit-packed further.
type FoRCompressor struct{}

func (FoRCompressor) ID() string { return "for" }
func (FoRCompressor) Cost() uint8 { return 2 }
func (FoRCompressor) UsedEncodings() []array.EncodingID { return []array.EncodingID{array.EncodingFoR} }

func (FoRCompressor) CanCompress(a array.Array) bool {
	if !isIntPrimitive(a) {
		return false
	}
	min, _, ok := intMinMax(a)
	return ok && min != 0
}

func (c FoRCompressor) Compress(ctx *Context, a array.Array, like *CompressionTree) CompressedArray {
	p := a.DType().PType()
	min, max, ok := intMinMax(a)
	if !ok {
		return CompressedArray{Array: a}
	}
	reference := scalar.FromInt(p, min, false)
	n := a.Len()
	unsignedP := p.UnsignedEquivalent()
	encodedValues := make([]scalar.Scalar, n)
	for i := 0; i < n; i++ {
		if !array.IsValid(a, i) {
			encodedValues[i] = scalar.Null(dtype.Primitive(unsignedP, true))
			continue
		}
		v := array.ScalarAt(a, i).AsInt()
		encodedValues[i] = scalar.FromInt(unsignedP, int64(uint64(v)-uint64(min)), false)
	}
	encoded := array.FromScalars(dtype.Primitive(unsignedP, false), encodedValues).(*array.PrimitiveArray)
	_ = max

	out := encoding.NewFoR(a.DType(), reference, encoded)
	return CompressedArray{Array: out, Tree: &CompressionTree{CompressorID: c.ID()}}
}

// DeltaCompressor stores consecutive differences, single-laned, for
// monotonic or slowly varying integer sequences (spec.md §4.2, "Delta").
type DeltaCompressor struct{}

func (DeltaCompressor) ID() string { return "delta" }
func (DeltaCompressor) Cost() uint8 { return 2 }
func (DeltaCompressor) UsedEncodings() []array.EncodingID { return []array.EncodingID{array.EncodingDelta} }

func (DeltaCompressor) CanCompress(a array.Array) bool {
	if !isIntPrimitive(a) || a.Len() == 0 {
		return false
	}
	if v, ok := a.Stats().Get(stats.IsSorted); ok {
		return v.Scalar.AsBool()
	}
	return true
}

func (c DeltaCompressor) Compress(ctx *Context, a array.Array, like *CompressionTree) CompressedArray {
	p := a.DType().PType()
	n := a.Len()
	var base int64
	if n > 0 && array.IsValid(a, 0) {
		base = array.ScalarAt(a, 0).AsInt()
	}
	bases := array.FromScalars(dtype.Primitive(p, false), []scalar.Scalar{scalar.FromInt(p, base, false)}).(*array.PrimitiveArray)
	deltas := make([]scalar.Scalar, n)
	prev := base
	for i := 0; i < n; i++ {
		if !array.IsValid(a, i) {
			deltas[i] = scalar.Null(dtype.Primitive(p, true))
			continue
		}
		v := array.ScalarAt(a, i).AsInt()
		if i == 0 {
			deltas[i] = scalar.FromInt(p, 0, false)
		} else {
			deltas[i] = scalar.FromInt(p, v-prev, false)
		}
		prev = v
	}
	deltasArr := array.FromScalars(dtype.Primitive(p, false), deltas).(*array.PrimitiveArray)
	out := encoding.NewDelta(a.DType(), 1, bases, deltasArr)
	return CompressedArray{Array: out, Tree: &CompressionTree{CompressorID: c.ID()}}
}

// ZigZagCompressor maps a signed integer array to its zigzag-coded
// unsigned equivalent (spec.md §4.2, "ZigZag"). Its encoded child is a
// plain primitive array; it is not bit-packed further.
type ZigZagCompressor struct{}

func (ZigZagCompressor) ID() string { return "zigzag" }
func (ZigZagCompressor) Cost() uint8 { return 1 }
func (ZigZagCompressor) UsedEncodings() []array.EncodingID { return []array.EncodingID{array.EncodingZigZag} }

func (ZigZagCompressor) CanCompress(a array.Array) bool {
	return isIntPrimitive(a) && a.DType().PType().IsSignedInt()
}

func (c ZigZagCompressor) Compress(ctx *Context, a array.Array, like *CompressionTree) CompressedArray {
	p := a.DType().PType()
	unsignedP := p.UnsignedEquivalent()
	n := a.Len()
	encodedValues := make([]scalar.Scalar, n)
	for i := 0; i < n; i++ {
		if !array.IsValid(a, i) {
			encodedValues[i] = scalar.Null(dtype.Primitive(unsignedP, true))
			continue
		}
		v := array.ScalarAt(a, i).AsInt()
		encodedValues[i] = scalar.FromInt(unsignedP, int64(uint64((v<<1)^(v>>63))), false)
	}
	encoded := array.FromScalars(dtype.Primitive(unsignedP, false), encodedValues).(*array.PrimitiveArray)
	out := encoding.NewZigZag(a.DType(), encoded)
	return CompressedArray{Array: out, Tree: &CompressionTree{CompressorID: c.ID()}}
}

// BitPackedCompressor packs an integer array down to the minimum bit width
// its value range needs, with no patches (spec.md §4.2, "Bit-packed").
// Signed ptypes get one extra bit for the sign, since BitPacked decode
// sign-extends them. It is an independent candidate: FoR/ZigZag output is
// not fed into it.
type BitPackedCompressor struct{}

// bitPackedWidth returns the bit width that round-trips every value in
// [min, max] through BitPacked for ptype p.
func bitPackedWidth(p dtype.PType, min, max int64) int {
	if !p.IsSignedInt() {
		return bitpack.MinBitWidth(uint64(max))
	}
	width := 0
	if max > 0 {
		width = bitpack.MinBitWidth(uint64(max))
	}
	if min < 0 {
		if w := bitpack.MinBitWidth(uint64(^min)); w > width {
			width = w
		}
	}
	return width + 1
}

func (BitPackedCompressor) ID() string { return "bitpacked" }
func (BitPackedCompressor) Cost() uint8 { return 3 }
func (BitPackedCompressor) UsedEncodings() []array.EncodingID {
	return []array.EncodingID{array.EncodingBitPacked}
}

func (BitPackedCompressor) CanCompress(a array.Array) bool {
	if !isIntPrimitive(a) || a.Len() == 0 {
		return false
	}
	min, max, ok := intMinMax(a)
	if !ok {
		return false
	}
	width := bitPackedWidth(a.DType().PType(), min, max)
	return width < a.DType().PType().ByteWidth()*8
}

func (c BitPackedCompressor) Compress(ctx *Context, a array.Array, like *CompressionTree) CompressedArray {
	min, max, ok := intMinMax(a)
	width := 0
	if ok {
		width = bitPackedWidth(a.DType().PType(), min, max)
	}
	if width == 0 {
		width = 1
	}
	packed := bitpack.Pack(asUint64Slice(a), width)
	out := encoding.NewBitPacked(a.DType(), width, packed, a.Len(), validityOf(a), nil, nil)
	return CompressedArray{Array: out, Tree: &CompressionTree{CompressorID: c.ID(), Metadata: []byte{byte(width)}}}
}

// SparseCompressor is the canonical-adjacent "mostly one value, with rare
// exceptions" encoding (spec.md §4.2, "Sparse"): a fill value plus a
// sorted (index, value) patch list for every row that differs from it.
type SparseCompressor struct {
	// MaxExceptionRatio bounds how many rows may diverge from the fill
	// value (as a fraction of length) before Sparse stops being worth it.
	MaxExceptionRatio float64
}

func (SparseCompressor) ID() string { return "sparse" }
func (SparseCompressor) Cost() uint8 { return 2 }
func (SparseCompressor) UsedEncodings() []array.EncodingID { return []array.EncodingID{array.EncodingSparse} }

func (c SparseCompressor) threshold() float64 {
	if c.MaxExceptionRatio <= 0 {
		return 0.1
	}
	return c.MaxExceptionRatio
}

func (c SparseCompressor) CanCompress(a array.Array) bool {
	n := a.Len()
	if n == 0 {
		return false
	}
	fill, exceptions := sparseFillAndExceptions(a)
	_ = fill
	return float64(len(exceptions)) <= c.threshold()*float64(n)
}

func (c SparseCompressor) Compress(ctx *Context, a array.Array, like *CompressionTree) CompressedArray {
	fill, exceptions := sparseFillAndExceptions(a)
	idxValues := make([]scalar.Scalar, len(exceptions))
	valValues := make([]scalar.Scalar, len(exceptions))
	for i, e := range exceptions {
		idxValues[i] = scalar.FromInt(dtype.U64, int64(e.index), false)
		valValues[i] = e.value
	}
	indices := array.FromScalars(dtype.Primitive(dtype.U64, false), idxValues).(*array.PrimitiveArray)
	values := array.FromScalars(dtype.Primitive(a.DType().PType(), a.DType().Nullable()), valValues)
	out := encoding.NewSparse(a.DType(), fill, indices, values, a.Len())
	return CompressedArray{Array: out, Tree: &CompressionTree{CompressorID: c.ID()}}
}

type sparseException struct {
	index int
	value scalar.Scalar
}

// sparseFillAndExceptions picks the most frequent value as fill and
// returns every row that diverges from it as an exception.
func sparseFillAndExceptions(a array.Array) (scalar.Scalar, []sparseException) {
	n := a.Len()
	counts := make(map[string]int)
	reps := make(map[string]scalar.Scalar)
	for i := 0; i < n; i++ {
		var key string
		var v scalar.Scalar
		if array.IsValid(a, i) {
			v = array.ScalarAt(a, i)
			key = v.String()
		} else {
			v = scalar.Null(a.DType())
			key = "null"
		}
		counts[key]++
		reps[key] = v
	}
	bestKey, bestCount := "", -1
	for k, cnt := range counts {
		if cnt > bestCount {
			bestKey, bestCount = k, cnt
		}
	}
	fill := reps[bestKey]
	var exceptions []sparseException
	for i := 0; i < n; i++ {
		var key string
		var v scalar.Scalar
		if array.IsValid(a, i) {
			v = array.ScalarAt(a, i)
			key = v.String()
		} else {
			v = scalar.Null(a.DType())
			key = "null"
		}
		if key != bestKey {
			exceptions = append(exceptions, sparseException{index: i, value: v})
		}
	}
	return fill, exceptions
}

// recurse applies the sampling compressor recursively to a compressible
// child, used by compressors whose output has a further-compressible
// primitive child (spec.md §4.3, step 5: "Recurse into its children").
func recurse(ctx *Context, child array.Array, like *CompressionTree) CompressedArray {
	return SamplingCompressor{}.Compress(ctx, child, like)
}

func likeChild(like *CompressionTree, i int) *CompressionTree {
	if like == nil || i >= len(like.Children) {
		return nil
	}
	return like.Children[i]
}

func validityOf(a array.Array) validity.Validity {
	if a.AllValid() {
		return validity.AllValid(a.Len())
	}
	if a.AllInvalid() {
		return validity.AllInvalid(a.Len())
	}
	return validity.FromMask(a.ValidityMask())
}

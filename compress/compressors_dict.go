package compress

import (
	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/encoding"
	"github.com/deepteams/vortex/scalar"
)

// dictMaxDistinctRatio bounds how many distinct values a column may carry,
// as a fraction of its length, before dictionary coding stops paying for
// its codes + values overhead.
const dictMaxDistinctRatio = 0.5

// dictMaxDistinct is an absolute cap on distinct values, independent of
// length, so CanCompress stays cheap on huge low-cardinality columns.
const dictMaxDistinct = 1 << 16

// DictCompressor replaces a low-cardinality column with a dense code array
// indexing a deduplicated values array (spec.md §4.2, "Dict"). The values
// child is itself compressed recursively via the sampling search, since
// DictArray's values child is typed as a generic array.Array and so is the
// one place in the encoding catalog where true nested composition applies.
type DictCompressor struct{}

func (DictCompressor) ID() string { return "dict" }
func (DictCompressor) Cost() uint8 { return 2 }
func (DictCompressor) UsedEncodings() []array.EncodingID {
	return []array.EncodingID{array.EncodingDict}
}

func (DictCompressor) CanCompress(a array.Array) bool {
	n := a.Len()
	if n == 0 {
		return false
	}
	limit := dictMaxDistinct
	if byRatio := int(float64(n) * dictMaxDistinctRatio); byRatio < limit {
		limit = byRatio
	}
	if limit < 1 {
		limit = 1
	}
	_, ok := distinctValues(a, limit)
	return ok
}

func (c DictCompressor) Compress(ctx *Context, a array.Array, like *CompressionTree) CompressedArray {
	limit := dictMaxDistinct
	if n := a.Len(); int(float64(n)*dictMaxDistinctRatio) < limit {
		limit = int(float64(n) * dictMaxDistinctRatio)
	}
	if limit < 1 {
		limit = 1
	}
	values, ok := distinctValues(a, limit)
	if !ok {
		return CompressedArray{Array: a}
	}
	if array.InvalidCount(a) > 0 {
		// Reserve a distinguished dictionary slot for null rows: DictArray
		// has no validity storage of its own, it inherits validity from
		// values via the code at each position (spec.md §4.2, "Dict").
		values = append(values, scalar.Null(a.DType()))
	}
	codes := codeArrayFor(a, values)
	valuesArr := array.FromScalars(a.DType(), values)

	compressedValues := recurse(ctx, valuesArr, likeChild(like, 1))

	out := encoding.NewDict(codes, compressedValues.Array)
	tree := &CompressionTree{CompressorID: c.ID(), Children: []*CompressionTree{nil, compressedValues.Tree}}
	return CompressedArray{Array: out, Tree: tree}
}

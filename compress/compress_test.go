package compress_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/compress"
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/scalar"
)

func intArray(p dtype.PType, vals ...int64) array.Array {
	values := make([]scalar.Scalar, len(vals))
	for i, v := range vals {
		values[i] = scalar.FromInt(p, v, false)
	}
	return array.FromScalars(dtype.Primitive(p, false), values)
}

func roundTrip(t *testing.T, ctx *compress.Context, a array.Array) array.Array {
	t.Helper()
	result := compress.SamplingCompressor{}.Compress(ctx, a, nil)
	return result.Array
}

func assertSameValues(t *testing.T, want, got array.Array) {
	t.Helper()
	require.Equal(t, want.Len(), got.Len())
	for i := 0; i < want.Len(); i++ {
		if !array.IsValid(want, i) {
			assert.False(t, array.IsValid(got, i), "row %d should be invalid", i)
			continue
		}
		require.True(t, array.IsValid(got, i), "row %d should be valid", i)
		assert.Equal(t, array.ScalarAt(want, i).String(), array.ScalarAt(got, i).String())
	}
}

func TestSamplingCompressorConstant(t *testing.T) {
	ctx := compress.NewContext(compress.DefaultCompressors())
	a := intArray(dtype.I64, 7, 7, 7, 7, 7)
	result := compress.SamplingCompressor{}.Compress(ctx, a, nil)
	require.NotNil(t, result.Tree)
	assert.Equal(t, "constant", result.Tree.CompressorID)
	assertSameValues(t, a, result.Array)
}

func TestSamplingCompressorFoR(t *testing.T) {
	ctx := compress.NewContext([]compress.Compressor{compress.FoRCompressor{}})
	a := intArray(dtype.I64, 1000, 1001, 1002, 1003, 1004, 1005)
	result := roundTrip(t, ctx, a)
	assertSameValues(t, a, result)
}

func TestSamplingCompressorDelta(t *testing.T) {
	ctx := compress.NewContext([]compress.Compressor{compress.DeltaCompressor{}})
	a := intArray(dtype.I64, 10, 12, 14, 16, 18, 20)
	result := roundTrip(t, ctx, a)
	assertSameValues(t, a, result)
}

func TestSamplingCompressorZigZag(t *testing.T) {
	ctx := compress.NewContext([]compress.Compressor{compress.ZigZagCompressor{}})
	a := intArray(dtype.I32, -3, -1, 0, 1, 3, -5, 7)
	result := roundTrip(t, ctx, a)
	assertSameValues(t, a, result)
}

func TestSamplingCompressorBitPacked(t *testing.T) {
	ctx := compress.NewContext([]compress.Compressor{compress.BitPackedCompressor{}})
	a := intArray(dtype.U32, 1, 2, 3, 0, 2, 1, 3, 2)
	result := roundTrip(t, ctx, a)
	assertSameValues(t, a, result)
}

func TestSamplingCompressorWithNulls(t *testing.T) {
	for _, c := range []compress.Compressor{
		compress.FoRCompressor{},
		compress.DeltaCompressor{},
		compress.ZigZagCompressor{},
	} {
		ctx := compress.NewContext([]compress.Compressor{c})
		values := []scalar.Scalar{
			scalar.FromInt(dtype.I64, 100, true),
			scalar.Null(dtype.Primitive(dtype.I64, true)),
			scalar.FromInt(dtype.I64, 103, true),
			scalar.Null(dtype.Primitive(dtype.I64, true)),
			scalar.FromInt(dtype.I64, 107, true),
		}
		a := array.FromScalars(dtype.Primitive(dtype.I64, true), values)
		if !c.CanCompress(a) {
			continue
		}
		result := c.Compress(ctx, a, nil)
		assertSameValues(t, a, result.Array)
	}
}

func TestSamplingCompressorSparse(t *testing.T) {
	ctx := compress.NewContext([]compress.Compressor{compress.SparseCompressor{}})
	vals := make([]int64, 100)
	for i := range vals {
		vals[i] = 5
	}
	vals[10] = 99
	vals[50] = -1
	a := intArray(dtype.I64, vals...)
	result := roundTrip(t, ctx, a)
	assertSameValues(t, a, result)
}

func TestSamplingCompressorDict(t *testing.T) {
	ctx := compress.NewContext(compress.DefaultCompressors())
	vals := make([]int64, 40)
	for i := range vals {
		vals[i] = int64(i % 3)
	}
	a := intArray(dtype.I64, vals...)
	result := compress.SamplingCompressor{}.Compress(ctx, a, nil)
	assertSameValues(t, a, result.Array)
}

func TestSamplingCompressorALP(t *testing.T) {
	ctx := compress.NewContext([]compress.Compressor{compress.ALPCompressor{}})
	values := []scalar.Scalar{
		scalar.FromFloat(dtype.F64, 1.23, false),
		scalar.FromFloat(dtype.F64, 4.56, false),
		scalar.FromFloat(dtype.F64, 7.89, false),
		scalar.FromFloat(dtype.F64, 0.12, false),
	}
	a := array.FromScalars(dtype.Primitive(dtype.F64, false), values)
	result := roundTrip(t, ctx, a)
	require.Equal(t, a.Len(), result.Len())
	for i := 0; i < a.Len(); i++ {
		assert.InDelta(t, array.ScalarAt(a, i).AsFloat(), array.ScalarAt(result, i).AsFloat(), 1e-9)
	}
}

func TestSamplingCompressorFSST(t *testing.T) {
	ctx := compress.NewContext([]compress.Compressor{compress.FSSTCompressor{}})
	words := []string{"hello", "world", "hello", "there", "world", "hello"}
	values := make([]scalar.Scalar, len(words))
	for i, w := range words {
		values[i] = scalar.FromBuffer(dtype.Utf8(false), []byte(w))
	}
	a := array.FromScalars(dtype.Utf8(false), values)
	result := roundTrip(t, ctx, a)
	assertSameValues(t, a, result)
}

func TestSamplingCompressorRoaringBool(t *testing.T) {
	ctx := compress.NewContext([]compress.Compressor{compress.RoaringBoolCompressor{}})
	bools := []bool{false, false, false, true, false, false, false, false, false, true}
	values := make([]scalar.Scalar, len(bools))
	for i, b := range bools {
		values[i] = scalar.Bool(b, false)
	}
	a := array.FromScalars(dtype.Bool(false), values)
	result := roundTrip(t, ctx, a)
	assertSameValues(t, a, result)
}

func TestBtrBlocksPicksConstant(t *testing.T) {
	b := compress.DefaultBtrBlocks()
	ctx := compress.NewContext(compress.DefaultCompressors())
	a := intArray(dtype.I64, 3, 3, 3, 3, 3, 3, 3, 3)
	result := b.Compress(ctx, a)
	require.NotNil(t, result.Tree)
	assert.Equal(t, "constant", result.Tree.CompressorID)
}

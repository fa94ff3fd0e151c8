package compute_test

import (
	"testing"

	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/compute"
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/mask"
	"github.com/deepteams/vortex/scalar"
	"github.com/deepteams/vortex/validity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func primArray(t *testing.T, vals []int64) array.Array {
	t.Helper()
	raw := make([]byte, len(vals)*8)
	for i, v := range vals {
		u := uint64(v)
		for j := 0; j < 8; j++ {
			raw[i*8+j] = byte(u >> (8 * uint(j)))
		}
	}
	return array.NewPrimitiveFromBytes(dtype.I64, raw, validity.AllValid(len(vals)))
}

func newCtx() *array.Context { return array.NewContext() }

func TestCompareEq(t *testing.T) {
	a := primArray(t, []int64{1, 2, 3, 2})
	out, err := compute.Compare(newCtx(), a, scalar.FromInt(dtype.I64, 2, false), compute.Eq)
	require.NoError(t, err)
	assert.False(t, array.ScalarAt(out, 0).AsBool())
	assert.True(t, array.ScalarAt(out, 1).AsBool())
	assert.True(t, array.ScalarAt(out, 3).AsBool())
}

func TestFilter(t *testing.T) {
	a := primArray(t, []int64{10, 20, 30})
	m := mask.FromBools([]bool{true, false, true})
	out, err := compute.Filter(newCtx(), a, m)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Len())
	assert.Equal(t, int64(10), array.ScalarAt(out, 0).AsInt())
	assert.Equal(t, int64(30), array.ScalarAt(out, 1).AsInt())
}

func TestTake(t *testing.T) {
	a := primArray(t, []int64{5, 6, 7, 8})
	out, err := compute.Take(newCtx(), a, []int{3, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Len())
	assert.Equal(t, int64(8), array.ScalarAt(out, 0).AsInt())
	assert.Equal(t, int64(5), array.ScalarAt(out, 1).AsInt())
}

func TestBetween(t *testing.T) {
	a := primArray(t, []int64{1, 5, 10, 15})
	out, err := compute.Between(newCtx(), a, scalar.FromInt(dtype.I64, 5, false), scalar.FromInt(dtype.I64, 10, false), compute.Inclusive, compute.Inclusive)
	require.NoError(t, err)
	assert.False(t, array.ScalarAt(out, 0).AsBool())
	assert.True(t, array.ScalarAt(out, 1).AsBool())
	assert.True(t, array.ScalarAt(out, 2).AsBool())
	assert.False(t, array.ScalarAt(out, 3).AsBool())
}

func TestSearchSorted(t *testing.T) {
	a := primArray(t, []int64{1, 3, 5, 7})
	idx, err := compute.SearchSorted(newCtx(), a, scalar.FromInt(dtype.I64, 5, false), compute.Left)
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
}

func TestIsSorted(t *testing.T) {
	a := primArray(t, []int64{1, 2, 2, 3})
	ok, err := compute.IsSorted(newCtx(), a, false)
	require.NoError(t, err)
	assert.True(t, ok)
	strict, err := compute.IsSorted(newCtx(), a, true)
	require.NoError(t, err)
	assert.False(t, strict)
}

func TestSum(t *testing.T) {
	a := primArray(t, []int64{1, 2, 3})
	s, err := compute.Sum(newCtx(), a)
	require.NoError(t, err)
	assert.Equal(t, int64(6), s.AsInt())
}

func TestMinMax(t *testing.T) {
	a := primArray(t, []int64{4, 1, 9, 3})
	mn, mx, err := compute.MinMax(newCtx(), a)
	require.NoError(t, err)
	assert.Equal(t, int64(1), mn.AsInt())
	assert.Equal(t, int64(9), mx.AsInt())
}

func TestIsConstant(t *testing.T) {
	a := primArray(t, []int64{7, 7, 7})
	ok, err := compute.IsConstant(newCtx(), a)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCastWidenInt(t *testing.T) {
	a := primArray(t, []int64{1, 2, 3})
	out, err := compute.Cast(newCtx(), a, dtype.Primitive(dtype.F64, false))
	require.NoError(t, err)
	assert.Equal(t, 2.0, array.ScalarAt(out, 1).AsFloat())
}

func TestUncompressedSize(t *testing.T) {
	a := primArray(t, []int64{1, 2, 3, 4})
	sz, err := compute.UncompressedSize(newCtx(), a)
	require.NoError(t, err)
	assert.Equal(t, int64(32), sz)
}

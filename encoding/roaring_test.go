package encoding_test

import (
	"testing"

	"github.com/RoaringBitmap/roaring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/compute"
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/encoding"
)

func TestRoaringBoolArrayScalarAt(t *testing.T) {
	bm := roaring.BitmapOf(1, 3)
	a := encoding.NewRoaringBool(bm, 5)
	require.Equal(t, 5, a.Len())
	assert.False(t, array.ScalarAt(a, 0).AsBool())
	assert.True(t, array.ScalarAt(a, 1).AsBool())
	assert.False(t, array.ScalarAt(a, 2).AsBool())
	assert.True(t, array.ScalarAt(a, 3).AsBool())
	assert.False(t, array.ScalarAt(a, 4).AsBool())
	for i := 0; i < a.Len(); i++ {
		assert.True(t, a.IsValid(i))
	}
}

func TestRoaringBoolArrayCanonicalize(t *testing.T) {
	bm := roaring.BitmapOf(0, 2)
	a := encoding.NewRoaringBool(bm, 3)
	c := array.Canonicalize(a)
	assert.True(t, array.ScalarAt(c, 0).AsBool())
	assert.False(t, array.ScalarAt(c, 1).AsBool())
	assert.True(t, array.ScalarAt(c, 2).AsBool())
}

func TestRoaringBoolArrayInvert(t *testing.T) {
	bm := roaring.BitmapOf(1, 3)
	a := encoding.NewRoaringBool(bm, 4)
	ctx := array.NewContext()
	out, err := compute.Not(ctx, a)
	require.NoError(t, err)
	assert.True(t, array.ScalarAt(out, 0).AsBool())
	assert.False(t, array.ScalarAt(out, 1).AsBool())
	assert.True(t, array.ScalarAt(out, 2).AsBool())
	assert.False(t, array.ScalarAt(out, 3).AsBool())
}

func TestRoaringIntArrayScalarAt(t *testing.T) {
	bm := roaring.BitmapOf(5, 10, 20)
	a := encoding.NewRoaringInt(dtype.U32, bm)
	require.Equal(t, 3, a.Len())
	assert.Equal(t, int64(5), array.ScalarAt(a, 0).AsInt())
	assert.Equal(t, int64(10), array.ScalarAt(a, 1).AsInt())
	assert.Equal(t, int64(20), array.ScalarAt(a, 2).AsInt())
}

func TestRoaringIntArraySlice(t *testing.T) {
	bm := roaring.BitmapOf(5, 10, 20, 30)
	a := encoding.NewRoaringInt(dtype.U32, bm)
	s := array.Slice(a, 1, 3)
	require.Equal(t, 2, s.Len())
	assert.Equal(t, int64(10), array.ScalarAt(s, 0).AsInt())
	assert.Equal(t, int64(20), array.ScalarAt(s, 1).AsInt())
}

func TestRoaringIntArrayCanonicalize(t *testing.T) {
	bm := roaring.BitmapOf(1, 2, 4)
	a := encoding.NewRoaringInt(dtype.U32, bm)
	c := array.Canonicalize(a)
	require.Equal(t, 3, c.Len())
	assert.Equal(t, int64(1), array.ScalarAt(c, 0).AsInt())
	assert.Equal(t, int64(4), array.ScalarAt(c, 2).AsInt())
}

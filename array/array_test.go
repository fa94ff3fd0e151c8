package array_test

import (
	"testing"

	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/mask"
	"github.com/deepteams/vortex/scalar"
	"github.com/deepteams/vortex/validity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullArray(t *testing.T) {
	a := array.NewNull(5)
	assert.Equal(t, 5, a.Len())
	assert.True(t, a.AllInvalid())
	assert.True(t, array.ScalarAt(a, 0).IsNull())
}

func TestBoolArrayRoundTrip(t *testing.T) {
	vals := mask.FromBools([]bool{true, false, true})
	a := array.NewBool(vals, validity.AllValid(3))
	require.Equal(t, 3, a.Len())
	assert.True(t, array.ScalarAt(a, 0).AsBool())
	assert.False(t, array.ScalarAt(a, 1).AsBool())
}

func TestPrimitiveArraySliceAndScalarAt(t *testing.T) {
	raw := make([]byte, 4*4)
	for i := 0; i < 4; i++ {
		raw[i*4] = byte(i + 1)
	}
	a := array.NewPrimitiveFromBytes(dtype.I32, raw, validity.AllValid(4))
	s := array.Slice(a, 1, 3)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, int64(2), array.ScalarAt(s, 0).AsInt())
}

func TestConstantArrayCanonicalize(t *testing.T) {
	sc := scalar.FromInt(dtype.I64, 7, false)
	c := array.NewConstant(sc, 5)
	canon := array.Canonicalize(c)
	assert.Equal(t, 5, canon.Len())
	for i := 0; i < 5; i++ {
		assert.Equal(t, int64(7), array.ScalarAt(canon, i).AsInt())
	}
}

func TestStructArrayFieldAccess(t *testing.T) {
	idt := dtype.Primitive(dtype.I32, false)
	dt := dtype.Struct([]dtype.Field{{Name: "x", Type: idt}}, false)
	raw := make([]byte, 4*3)
	for i := 0; i < 3; i++ {
		raw[i*4] = byte(i)
	}
	col := array.NewPrimitiveFromBytes(dtype.I32, raw, validity.AllValid(3))
	st := array.NewStruct(dt, []array.Array{col}, validity.AllValid(3))
	assert.Equal(t, 3, st.Len())
	f := st.Field("x")
	require.NotNil(t, f)
	assert.Equal(t, int64(1), array.ScalarAt(f, 1).AsInt())
}

func TestChunkedArrayScalarAtAndSlice(t *testing.T) {
	mkChunk := func(vals []int32) array.Array {
		raw := make([]byte, len(vals)*4)
		for i, v := range vals {
			raw[i*4] = byte(v)
		}
		return array.NewPrimitiveFromBytes(dtype.I32, raw, validity.AllValid(len(vals)))
	}
	dt := dtype.Primitive(dtype.I32, false)
	ch := array.NewChunked(dt, []array.Array{mkChunk([]int32{1, 2}), mkChunk(nil), mkChunk([]int32{3, 4, 5})})
	assert.Equal(t, 5, ch.Len())
	assert.Equal(t, int64(4), array.ScalarAt(ch, 3).AsInt())
	s := array.Slice(ch, 1, 4)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, int64(2), array.ScalarAt(s, 0).AsInt())
	assert.Equal(t, int64(4), array.ScalarAt(s, 2).AsInt())
}

func TestVarBinViewArray(t *testing.T) {
	dt := dtype.Utf8(false)
	data := []byte("hello")
	offsets := []uint32{0, 2, 5}
	a := array.NewVarBinView(dt, offsets, data, validity.AllValid(2))
	assert.Equal(t, "he", array.ScalarAt(a, 0).AsString())
	assert.Equal(t, "llo", array.ScalarAt(a, 1).AsString())
}

func TestFromScalarsPrimitive(t *testing.T) {
	dt := dtype.Primitive(dtype.I64, true)
	vals := []scalar.Scalar{scalar.FromInt(dtype.I64, 1, true), scalar.Null(dt), scalar.FromInt(dtype.I64, 3, true)}
	a := array.FromScalars(dt, vals)
	assert.Equal(t, 3, a.Len())
	assert.False(t, array.IsValid(a, 1))
	assert.Equal(t, int64(3), array.ScalarAt(a, 2).AsInt())
}

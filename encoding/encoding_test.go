package encoding_test

import (
	"testing"

	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/encoding"
	"github.com/deepteams/vortex/internal/bitpack"
	"github.com/deepteams/vortex/scalar"
	"github.com/deepteams/vortex/validity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func primU64(values []uint64, valid validity.Validity) *array.PrimitiveArray {
	raw := make([]byte, len(values)*8)
	for i, v := range values {
		for j := 0; j < 8; j++ {
			raw[i*8+j] = byte(v >> (8 * uint(j)))
		}
	}
	return array.NewPrimitiveFromBytes(dtype.U64, raw, valid)
}

func TestForArrayDecode(t *testing.T) {
	encoded := primU64([]uint64{0, 1, 2, 3}, validity.AllValid(4))
	dt := dtype.Primitive(dtype.I64, false)
	a := encoding.NewFoR(dt, scalar.FromInt(dtype.I64, 100, false), encoded)
	require.Equal(t, 4, a.Len())
	assert.Equal(t, int64(100), array.ScalarAt(a, 0).AsInt())
	assert.Equal(t, int64(103), array.ScalarAt(a, 3).AsInt())
}

func TestZigZagArrayDecode(t *testing.T) {
	encoded := primU64([]uint64{0, 1, 2, 3}, validity.AllValid(4))
	a := encoding.NewZigZag(dtype.Primitive(dtype.I64, false), encoded)
	assert.Equal(t, int64(0), array.ScalarAt(a, 0).AsInt())
	assert.Equal(t, int64(-1), array.ScalarAt(a, 1).AsInt())
	assert.Equal(t, int64(1), array.ScalarAt(a, 2).AsInt())
	assert.Equal(t, int64(-2), array.ScalarAt(a, 3).AsInt())
}

func TestDeltaArrayDecode(t *testing.T) {
	bases := primU64([]uint64{10}, validity.AllValid(1))
	deltas := primU64([]uint64{0, 1, 1, 2}, validity.AllValid(4))
	a := encoding.NewDelta(dtype.Primitive(dtype.I64, false), 1, bases, deltas)
	assert.Equal(t, int64(10), array.ScalarAt(a, 0).AsInt())
	assert.Equal(t, int64(11), array.ScalarAt(a, 1).AsInt())
	assert.Equal(t, int64(12), array.ScalarAt(a, 2).AsInt())
	assert.Equal(t, int64(14), array.ScalarAt(a, 3).AsInt())
}

func TestByteBoolArrayCanonicalize(t *testing.T) {
	a := encoding.NewByteBool([]byte{1, 0, 1}, validity.AllValid(3))
	c := array.Canonicalize(a)
	assert.True(t, array.ScalarAt(c, 0).AsBool())
	assert.False(t, array.ScalarAt(c, 1).AsBool())
}

func TestBitPackedArrayScalarAt(t *testing.T) {
	values := []uint64{0, 1, 2, 3, 4, 5, 6, 7}
	bitWidth := 3
	packed := bitpack.Pack(values, bitWidth)
	dt := dtype.Primitive(dtype.U8, false)
	a := encoding.NewBitPacked(dt, bitWidth, packed, len(values), validity.AllValid(len(values)), nil, nil)
	for i, want := range values {
		assert.Equal(t, int64(want), array.ScalarAt(a, i).AsInt())
	}
}

func TestBitPackedArrayWithPatches(t *testing.T) {
	values := []uint64{0, 1, 2, 3}
	packed := bitpack.Pack(values, 2)
	idxRaw := primU64([]uint64{2}, validity.NonNullable(1))
	patchValues := array.NewPrimitiveFromBytes(dtype.U64, func() []byte {
		raw := make([]byte, 8)
		u := uint64(999)
		for j := 0; j < 8; j++ {
			raw[j] = byte(u >> (8 * uint(j)))
		}
		return raw
	}(), validity.AllValid(1))
	dt := dtype.Primitive(dtype.U64, false)
	a := encoding.NewBitPacked(dt, 2, packed, len(values), validity.AllValid(len(values)), idxRaw, patchValues)
	assert.Equal(t, int64(0), array.ScalarAt(a, 0).AsInt())
	assert.Equal(t, int64(999), array.ScalarAt(a, 2).AsInt())
	assert.Equal(t, int64(3), array.ScalarAt(a, 3).AsInt())
}

func TestSparseArrayScalarAt(t *testing.T) {
	indices := primU64([]uint64{1, 3}, validity.NonNullable(2))
	values := primU64([]uint64{77, 88}, validity.AllValid(2))
	a := encoding.NewSparse(dtype.Primitive(dtype.U64, false), scalar.FromInt(dtype.U64, 0, false), indices, values, 5)
	assert.Equal(t, int64(0), array.ScalarAt(a, 0).AsInt())
	assert.Equal(t, int64(77), array.ScalarAt(a, 1).AsInt())
	assert.Equal(t, int64(0), array.ScalarAt(a, 2).AsInt())
	assert.Equal(t, int64(88), array.ScalarAt(a, 3).AsInt())
	assert.Equal(t, int64(0), array.ScalarAt(a, 4).AsInt())
}

func TestSparseArraySlice(t *testing.T) {
	indices := primU64([]uint64{1, 3}, validity.NonNullable(2))
	values := primU64([]uint64{77, 88}, validity.AllValid(2))
	a := encoding.NewSparse(dtype.Primitive(dtype.U64, false), scalar.FromInt(dtype.U64, 0, false), indices, values, 5)
	s := array.Slice(a, 2, 5)
	require.Equal(t, 3, s.Len())
	assert.Equal(t, int64(0), array.ScalarAt(s, 0).AsInt())
	assert.Equal(t, int64(88), array.ScalarAt(s, 1).AsInt())
}

package dtype_test

import (
	"testing"

	"github.com/deepteams/vortex/dtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPTypeByteWidth(t *testing.T) {
	cases := map[dtype.PType]int{
		dtype.U8: 1, dtype.I8: 1,
		dtype.U16: 2, dtype.I16: 2, dtype.F16: 2,
		dtype.U32: 4, dtype.I32: 4, dtype.F32: 4,
		dtype.U64: 8, dtype.I64: 8, dtype.F64: 8,
	}
	for p, w := range cases {
		assert.Equal(t, w, p.ByteWidth(), "ptype %s", p)
	}
}

func TestPTypeUnsignedEquivalent(t *testing.T) {
	assert.Equal(t, dtype.U32, dtype.I32.UnsignedEquivalent())
	assert.Equal(t, dtype.U8, dtype.U8.UnsignedEquivalent())
	assert.Panics(t, func() { dtype.F32.UnsignedEquivalent() })
}

func TestFitsRange(t *testing.T) {
	assert.True(t, dtype.FitsRange(dtype.U16, 0, 65535))
	assert.False(t, dtype.FitsRange(dtype.U16, 0, 65536))
	assert.False(t, dtype.FitsRange(dtype.U8, -1, 10))
}

func TestDTypeEqual(t *testing.T) {
	a := dtype.Primitive(dtype.I32, true)
	b := dtype.Primitive(dtype.I32, true)
	c := dtype.Primitive(dtype.I32, false)
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.True(t, a.EqualIgnoringNullability(c))
}

func TestDTypeStruct(t *testing.T) {
	s := dtype.Struct([]dtype.Field{
		{Name: "a", Type: dtype.Primitive(dtype.I64, false)},
		{Name: "b", Type: dtype.Utf8(true)},
	}, false)
	require.Equal(t, dtype.KindStruct, s.Kind())
	f, ok := s.Field("b")
	require.True(t, ok)
	assert.True(t, f.Type.Nullable())
	assert.Equal(t, "struct{a: i64, b: utf8?}", s.String())
}

func TestDTypeList(t *testing.T) {
	l := dtype.List(dtype.Primitive(dtype.F64, false), true)
	assert.Equal(t, dtype.KindList, l.Kind())
	assert.Equal(t, "list<f64>?", l.String())
}

func TestDTypeExtension(t *testing.T) {
	e := dtype.Extension(dtype.ExtDType{ID: "vortex.timestamp", Storage: dtype.Primitive(dtype.I64, false)}, false)
	assert.Equal(t, "ext<vortex.timestamp>", e.String())
	assert.Equal(t, "vortex.timestamp", e.ExtDType().ID)
}

func TestDTypeWithNullable(t *testing.T) {
	d := dtype.Primitive(dtype.U8, false)
	d2 := d.WithNullable(true)
	assert.False(t, d.Nullable())
	assert.True(t, d2.Nullable())
}

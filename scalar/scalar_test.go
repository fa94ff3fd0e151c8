package scalar_test

import (
	"math/big"
	"testing"

	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/scalar"
	"github.com/stretchr/testify/assert"
)

func TestNullScalar(t *testing.T) {
	n := scalar.Null(dtype.Primitive(dtype.I32, true))
	assert.True(t, n.IsNull())
	assert.Panics(t, func() { n.AsInt() })
}

func TestIntScalarRoundTrip(t *testing.T) {
	s := scalar.FromInt(dtype.I32, -42, false)
	assert.False(t, s.IsNull())
	assert.Equal(t, int64(-42), s.AsInt())
	assert.Equal(t, "-42", s.String())
}

func TestUintScalar(t *testing.T) {
	s := scalar.FromInt(dtype.U8, 200, false)
	assert.Equal(t, uint64(200), s.AsUint())
}

func TestFloatScalar(t *testing.T) {
	s := scalar.FromFloat(dtype.F64, 3.5, false)
	assert.Equal(t, 3.5, s.AsFloat())
}

func TestDecimalScalar(t *testing.T) {
	s := scalar.FromDecimal(10, 2, big.NewInt(12345), false)
	assert.Equal(t, "12345", s.AsDecimalUnscaled().String())
}

func TestBufferScalar(t *testing.T) {
	s := scalar.FromBuffer(dtype.Utf8(false), []byte("hello"))
	assert.Equal(t, "hello", s.AsString())
}

func TestScalarEqual(t *testing.T) {
	a := scalar.FromInt(dtype.I64, 7, false)
	b := scalar.FromInt(dtype.I64, 7, false)
	c := scalar.FromInt(dtype.I64, 8, false)
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestScalarCompare(t *testing.T) {
	a := scalar.FromInt(dtype.I32, 1, false)
	b := scalar.FromInt(dtype.I32, 2, false)
	assert.Equal(t, -1, scalar.Compare(a, b))
	assert.Equal(t, 1, scalar.Compare(b, a))
	assert.Equal(t, 0, scalar.Compare(a, a))
}

func TestScalarCompareBuffer(t *testing.T) {
	a := scalar.FromBuffer(dtype.Utf8(false), []byte("apple"))
	b := scalar.FromBuffer(dtype.Utf8(false), []byte("banana"))
	assert.Equal(t, -1, scalar.Compare(a, b))
}

func TestListScalar(t *testing.T) {
	elems := []scalar.Scalar{
		scalar.FromInt(dtype.I32, 1, false),
		scalar.FromInt(dtype.I32, 2, false),
	}
	l := scalar.FromList(dtype.Primitive(dtype.I32, false), false, elems)
	assert.Len(t, l.AsList(), 2)
}

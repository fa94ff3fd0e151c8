// Package scalar implements Vortex's single-value type (spec.md §3,
// "Scalar"): a (DType, ScalarValue) pair used for scalar_at results, compare
// constants, and min/max stats.
package scalar

import (
	"fmt"
	"math/big"

	"github.com/deepteams/vortex/dtype"
)

// valueKind discriminates the ScalarValue sum type.
type valueKind uint8

const (
	valueNull valueKind = iota
	valueBool
	valuePrimitive
	valueDecimal
	valueBuffer
	valueList
)

// Scalar is an immutable (DType, value) pair. The zero Scalar is not valid;
// use Null, Bool, FromInt, etc.
type Scalar struct {
	typ  dtype.DType
	kind valueKind

	b    bool
	i    int64   // signed/unsigned integer payload, reinterpreted per PType
	f    float64 // float payload
	dec  *big.Int
	buf  []byte
	list []Scalar
}

// DType returns the scalar's logical type.
func (s Scalar) DType() dtype.DType { return s.typ }

// IsNull reports whether this scalar carries the null value, either because
// it was constructed as Null(t) or because the dtype itself is dtype.Null.
func (s Scalar) IsNull() bool { return s.kind == valueNull }

// Null constructs a null scalar of the given type. t must be nullable unless
// t.Kind() == dtype.KindNull.
func Null(t dtype.DType) Scalar {
	return Scalar{typ: t, kind: valueNull}
}

// Bool constructs a non-null Bool scalar.
func Bool(v bool, nullable bool) Scalar {
	return Scalar{typ: dtype.Bool(nullable), kind: valueBool, b: v}
}

// FromInt constructs a non-null Primitive scalar over an integer ptype.
// Panics if p is not an integer ptype.
func FromInt(p dtype.PType, v int64, nullable bool) Scalar {
	if !p.IsInt() {
		panic(fmt.Sprintf("scalar: FromInt called with non-integer ptype %s", p))
	}
	return Scalar{typ: dtype.Primitive(p, nullable), kind: valuePrimitive, i: v}
}

// FromFloat constructs a non-null Primitive scalar over a float ptype.
func FromFloat(p dtype.PType, v float64, nullable bool) Scalar {
	if !p.IsFloat() {
		panic(fmt.Sprintf("scalar: FromFloat called with non-float ptype %s", p))
	}
	return Scalar{typ: dtype.Primitive(p, nullable), kind: valuePrimitive, f: v}
}

// FromDecimal constructs a non-null Decimal scalar from an unscaled i128
// (represented as *big.Int; Go has no native int128).
func FromDecimal(precision uint8, scale int8, unscaled *big.Int, nullable bool) Scalar {
	return Scalar{typ: dtype.Decimal(precision, scale, nullable), kind: valueDecimal, dec: new(big.Int).Set(unscaled)}
}

// FromBuffer constructs a non-null Utf8 or Binary scalar from raw bytes.
func FromBuffer(t dtype.DType, v []byte) Scalar {
	if t.Kind() != dtype.KindUtf8 && t.Kind() != dtype.KindBinary {
		panic(fmt.Sprintf("scalar: FromBuffer called with dtype %s", t.Kind()))
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return Scalar{typ: t, kind: valueBuffer, buf: cp}
}

// FromList constructs a non-null List scalar. Every element must already
// carry elemType (the caller is expected to have cast upstream).
func FromList(elemType dtype.DType, nullable bool, elems []Scalar) Scalar {
	cp := make([]Scalar, len(elems))
	copy(cp, elems)
	return Scalar{typ: dtype.List(elemType, nullable), kind: valueList, list: cp}
}

// AsBool returns the boolean payload. Panics on a null or non-bool scalar.
func (s Scalar) AsBool() bool {
	s.mustNonNull("AsBool")
	if s.kind != valueBool {
		panic("scalar: AsBool called on non-bool scalar")
	}
	return s.b
}

// AsInt returns the integer payload, valid for any integer Primitive ptype.
func (s Scalar) AsInt() int64 {
	s.mustNonNull("AsInt")
	if s.kind != valuePrimitive || !s.typ.PType().IsInt() {
		panic("scalar: AsInt called on non-integer scalar")
	}
	return s.i
}

// AsUint reinterprets AsInt's payload as unsigned, for unsigned ptypes.
func (s Scalar) AsUint() uint64 {
	return uint64(s.AsInt())
}

// AsFloat returns the float payload.
func (s Scalar) AsFloat() float64 {
	s.mustNonNull("AsFloat")
	if s.kind != valuePrimitive || !s.typ.PType().IsFloat() {
		panic("scalar: AsFloat called on non-float scalar")
	}
	return s.f
}

// AsDecimalUnscaled returns the unscaled i128 payload as a *big.Int.
func (s Scalar) AsDecimalUnscaled() *big.Int {
	s.mustNonNull("AsDecimalUnscaled")
	if s.kind != valueDecimal {
		panic("scalar: AsDecimalUnscaled called on non-decimal scalar")
	}
	return new(big.Int).Set(s.dec)
}

// AsBuffer returns the raw bytes of a Utf8/Binary scalar.
func (s Scalar) AsBuffer() []byte {
	s.mustNonNull("AsBuffer")
	if s.kind != valueBuffer {
		panic("scalar: AsBuffer called on non-buffer scalar")
	}
	return s.buf
}

// AsString returns a Utf8 scalar's payload as a string (no allocation beyond
// the conversion itself).
func (s Scalar) AsString() string {
	return string(s.AsBuffer())
}

// AsList returns a List scalar's element payload.
func (s Scalar) AsList() []Scalar {
	s.mustNonNull("AsList")
	if s.kind != valueList {
		panic("scalar: AsList called on non-list scalar")
	}
	return s.list
}

func (s Scalar) mustNonNull(op string) {
	if s.kind == valueNull {
		panic(fmt.Sprintf("scalar: %s called on null scalar", op))
	}
}

// Equal compares two scalars for dtype+value equality. Two null scalars of
// the same dtype compare equal; nulls of differing dtype do not.
func (s Scalar) Equal(o Scalar) bool {
	if !s.typ.Equal(o.typ) {
		return false
	}
	if s.kind != o.kind {
		return false
	}
	switch s.kind {
	case valueNull:
		return true
	case valueBool:
		return s.b == o.b
	case valuePrimitive:
		if s.typ.PType().IsFloat() {
			return s.f == o.f
		}
		return s.i == o.i
	case valueDecimal:
		return s.dec.Cmp(o.dec) == 0
	case valueBuffer:
		if len(s.buf) != len(o.buf) {
			return false
		}
		for i := range s.buf {
			if s.buf[i] != o.buf[i] {
				return false
			}
		}
		return true
	case valueList:
		if len(s.list) != len(o.list) {
			return false
		}
		for i := range s.list {
			if !s.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Compare returns -1, 0, or 1 comparing s and o, which must share a
// comparable (numeric, bool, or buffer) dtype and both be non-null. Used by
// compute.Compare's canonical fallback and by between/search-sorted.
func Compare(s, o Scalar) int {
	if s.kind == valueNull || o.kind == valueNull {
		panic("scalar: Compare called with a null scalar")
	}
	switch s.kind {
	case valueBool:
		if s.b == o.b {
			return 0
		}
		if !s.b {
			return -1
		}
		return 1
	case valuePrimitive:
		if s.typ.PType().IsFloat() {
			return cmpFloat(s.f, o.f)
		}
		if s.typ.PType().IsSignedInt() {
			return cmpInt(s.i, o.i)
		}
		return cmpUint(uint64(s.i), uint64(o.i))
	case valueDecimal:
		return s.dec.Cmp(o.dec)
	case valueBuffer:
		n := len(s.buf)
		if len(o.buf) < n {
			n = len(o.buf)
		}
		for i := 0; i < n; i++ {
			if s.buf[i] != o.buf[i] {
				if s.buf[i] < o.buf[i] {
					return -1
				}
				return 1
			}
		}
		return cmpInt(int64(len(s.buf)), int64(len(o.buf)))
	default:
		panic(fmt.Sprintf("scalar: Compare unsupported for kind %d", s.kind))
	}
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (s Scalar) String() string {
	if s.IsNull() {
		return "null"
	}
	switch s.kind {
	case valueBool:
		return fmt.Sprintf("%v", s.b)
	case valuePrimitive:
		if s.typ.PType().IsFloat() {
			return fmt.Sprintf("%g", s.f)
		}
		if s.typ.PType().IsSignedInt() {
			return fmt.Sprintf("%d", s.i)
		}
		return fmt.Sprintf("%d", uint64(s.i))
	case valueDecimal:
		return s.dec.String()
	case valueBuffer:
		if s.typ.Kind() == dtype.KindUtf8 {
			return fmt.Sprintf("%q", string(s.buf))
		}
		return fmt.Sprintf("%x", s.buf)
	case valueList:
		return fmt.Sprintf("%v", s.list)
	default:
		return "<invalid scalar>"
	}
}

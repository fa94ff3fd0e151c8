package array

import (
	"math/big"

	"github.com/deepteams/vortex/buffer"
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/scalar"
)

// primData is the non-generic bridge a PrimitiveArray uses to hold one of
// buffer.Buffer[T]'s eleven concrete instantiations behind a single field.
// Go interfaces can't carry generic methods, so PrimitiveArray itself stays
// a plain struct and delegates element access through this seam — the
// single unsafe-adjacent reinterpretation point for primitive storage,
// mirroring buffer.Buffer's own "one seam" discipline.
type primData interface {
	Len() int
	Slice(start, stop int) primData
	ScalarAt(p dtype.PType, i int, nullable bool) scalar.Scalar
	Bytes() []byte
	AsFloat64(i int) float64
	AsInt64(i int) int64
}

type typedPrimData[T buffer.Scalar] struct {
	buf buffer.Buffer[T]
}

func (t typedPrimData[T]) Len() int { return t.buf.Len() }

func (t typedPrimData[T]) Slice(start, stop int) primData {
	return typedPrimData[T]{buf: t.buf.Slice(start, stop)}
}

func (t typedPrimData[T]) Bytes() []byte { return t.buf.Bytes() }

func (t typedPrimData[T]) AsFloat64(i int) float64 { return float64(t.buf.At(i)) }

func (t typedPrimData[T]) AsInt64(i int) int64 { return int64(t.buf.At(i)) }

func (t typedPrimData[T]) ScalarAt(p dtype.PType, i int, nullable bool) scalar.Scalar {
	if p.IsFloat() {
		return scalar.FromFloat(p, float64(t.buf.At(i)), nullable)
	}
	return scalar.FromInt(p, int64(t.buf.At(i)), nullable)
}

// newPrimData builds the typed buffer matching p's Go representation from
// raw little-endian bytes.
func newPrimData(p dtype.PType, raw []byte) primData {
	switch p {
	case dtype.U8:
		return typedPrimData[uint8]{buf: buffer.FromBytes[uint8](raw)}
	case dtype.U16:
		return typedPrimData[uint16]{buf: buffer.FromBytes[uint16](raw)}
	case dtype.U32:
		return typedPrimData[uint32]{buf: buffer.FromBytes[uint32](raw)}
	case dtype.U64:
		return typedPrimData[uint64]{buf: buffer.FromBytes[uint64](raw)}
	case dtype.I8:
		return typedPrimData[int8]{buf: buffer.FromBytes[int8](raw)}
	case dtype.I16:
		return typedPrimData[int16]{buf: buffer.FromBytes[int16](raw)}
	case dtype.I32:
		return typedPrimData[int32]{buf: buffer.FromBytes[int32](raw)}
	case dtype.I64:
		return typedPrimData[int64]{buf: buffer.FromBytes[int64](raw)}
	case dtype.F32:
		return typedPrimData[float32]{buf: buffer.FromBytes[float32](raw)}
	case dtype.F64:
		return typedPrimData[float64]{buf: buffer.FromBytes[float64](raw)}
	case dtype.F16:
		// F16 has no native Go type; stored as raw uint16 bit patterns and
		// widened by callers that need arithmetic.
		return typedPrimData[uint16]{buf: buffer.FromBytes[uint16](raw)}
	default:
		panic("array: unknown ptype")
	}
}

// decimalUnscaled extracts the i128 unscaled payload of a Decimal buffer,
// stored as fixed 16-byte little-endian two's-complement words, as a
// math/big.Int since Go has no native int128.
func decimalUnscaled(raw []byte, i int) *big.Int {
	word := raw[i*16 : i*16+16]
	be := make([]byte, 16)
	for j := 0; j < 16; j++ {
		be[j] = word[15-j]
	}
	neg := be[0]&0x80 != 0
	v := new(big.Int).SetBytes(be)
	if neg {
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), 128))
	}
	return v
}

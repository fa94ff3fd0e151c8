package encoding

import (
	"math/big"

	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/mask"
	"github.com/deepteams/vortex/scalar"
	"github.com/deepteams/vortex/stats"
	"github.com/deepteams/vortex/validity"
)

// DecimalBytePartsArray splits a Decimal's 16-byte i128 word into its low
// and high 64-bit halves, stored as separately-compressible `low`
// (unsigned) and `high` (signed) Primitive children — the byte-plane
// split the catalog's "DecimalByteParts" entry names, letting each half
// pick up its own FoR/bit-pack/delta treatment downstream.
type DecimalBytePartsArray struct {
	dt    dtype.DType // Decimal
	low   *array.PrimitiveArray
	high  *array.PrimitiveArray
	valid validity.Validity
	st    *stats.StatsSet
}

// NewDecimalByteParts constructs a DecimalBytePartsArray.
func NewDecimalByteParts(precision uint8, scale int8, low, high *array.PrimitiveArray, valid validity.Validity) *DecimalBytePartsArray {
	return &DecimalBytePartsArray{
		dt:    dtype.Decimal(precision, scale, valid.Kind() != validity.KindNonNullable),
		low:   low, high: high, valid: valid, st: stats.New(),
	}
}

func (a *DecimalBytePartsArray) Len() int                   { return a.valid.Len() }
func (a *DecimalBytePartsArray) DType() dtype.DType         { return a.dt }
func (a *DecimalBytePartsArray) Encoding() array.EncodingID { return array.EncodingDecimalByteParts }
func (a *DecimalBytePartsArray) EncodingName() array.Name   { return "decimalbyteparts" }
func (a *DecimalBytePartsArray) Stats() *stats.StatsSet     { return a.st }

func (a *DecimalBytePartsArray) IsValid(i int) bool      { return a.valid.IsValid(i) }
func (a *DecimalBytePartsArray) AllValid() bool          { return a.valid.AllValidBool() }
func (a *DecimalBytePartsArray) AllInvalid() bool        { return a.valid.AllInvalidBool() }
func (a *DecimalBytePartsArray) ValidityMask() mask.Mask { return a.valid.AsMask() }

func (a *DecimalBytePartsArray) Slice(start, stop int) array.Array {
	precision, scale := a.dt.DecimalPrecisionScale()
	return NewDecimalByteParts(precision, scale,
		array.Slice(a.low, start, stop).(*array.PrimitiveArray),
		array.Slice(a.high, start, stop).(*array.PrimitiveArray),
		a.valid.Slice(start, stop))
}

// word16 renders row i's 128-bit two's-complement value as the same
// little-endian 16-byte layout array.DecimalArray stores: low's 8 bytes
// followed by high's 8 bytes.
func (a *DecimalBytePartsArray) word16(i int) [16]byte {
	var w [16]byte
	lo := array.ScalarAt(a.low, i).AsUint()
	hi := uint64(array.ScalarAt(a.high, i).AsInt())
	for j := 0; j < 8; j++ {
		w[j] = byte(lo >> (8 * uint(j)))
		w[8+j] = byte(hi >> (8 * uint(j)))
	}
	return w
}

// unscaledFromWord decodes a little-endian two's-complement 16-byte word
// into a big.Int, the same layout array.decimalUnscaled assumes but
// reimplemented here since that helper is private to package array.
func unscaledFromWord(w [16]byte) *big.Int {
	be := make([]byte, 16)
	for i := 0; i < 16; i++ {
		be[i] = w[15-i]
	}
	v := new(big.Int).SetBytes(be)
	if w[15]&0x80 != 0 {
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), 128))
	}
	return v
}

func (a *DecimalBytePartsArray) ScalarAt(i int) scalar.Scalar {
	if !a.valid.IsValid(i) {
		return scalar.Null(a.dt)
	}
	precision, scale := a.dt.DecimalPrecisionScale()
	return scalar.FromDecimal(precision, scale, unscaledFromWord(a.word16(i)), a.dt.Nullable())
}

func (a *DecimalBytePartsArray) Canonicalize() array.CanonicalArray {
	n := a.Len()
	precision, scale := a.dt.DecimalPrecisionScale()
	raw := make([]byte, n*16)
	for i := 0; i < n; i++ {
		w := a.word16(i)
		copy(raw[i*16:(i+1)*16], w[:])
	}
	return array.NewDecimal(precision, scale, raw, a.valid)
}

func (a *DecimalBytePartsArray) VisitBuffers(v func(name string, bytes []byte)) {}
func (a *DecimalBytePartsArray) VisitChildren(v func(name string, child array.Array)) {
	v("low", a.low)
	v("high", a.high)
}
func (a *DecimalBytePartsArray) WithChildren(children []array.Array) array.Array {
	precision, scale := a.dt.DecimalPrecisionScale()
	return NewDecimalByteParts(precision, scale, children[0].(*array.PrimitiveArray), children[1].(*array.PrimitiveArray), a.valid)
}

func init() {
	array.DefaultRegistry.Register(array.EncodingDecimalByteParts, "decimalbyteparts", func(dt dtype.DType, length int, metadata []byte, segments [][]byte, children []array.Array) (array.Array, error) {
		precision, scale := dt.DecimalPrecisionScale()
		vv := validity.AllValid(length)
		if dt.Nullable() && len(segments) > 0 {
			bools := make([]bool, length)
			for i := range bools {
				bools[i] = segments[0][i/8]&(1<<uint(i%8)) != 0
			}
			vv = validity.FromMask(mask.FromBools(bools))
		}
		return NewDecimalByteParts(precision, scale, children[0].(*array.PrimitiveArray), children[1].(*array.PrimitiveArray), vv), nil
	})
}

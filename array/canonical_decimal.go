package array

import (
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/mask"
	"github.com/deepteams/vortex/scalar"
	"github.com/deepteams/vortex/stats"
	"github.com/deepteams/vortex/validity"
)

// DecimalArray is the canonical form for dtype.Decimal: fixed 16-byte
// little-endian two's-complement i128 words, one per row.
type DecimalArray struct {
	dt    dtype.DType
	raw   []byte
	valid validity.Validity
	st    *stats.StatsSet
}

// NewDecimal constructs a DecimalArray over 16*n raw bytes.
func NewDecimal(precision uint8, scale int8, raw []byte, valid validity.Validity) *DecimalArray {
	return &DecimalArray{
		dt:    dtype.Decimal(precision, scale, valid.Kind() != validity.KindNonNullable),
		raw:   raw,
		valid: valid,
		st:    stats.New(),
	}
}

func (a *DecimalArray) isCanonical() {}

func (a *DecimalArray) Len() int               { return a.valid.Len() }
func (a *DecimalArray) DType() dtype.DType     { return a.dt }
func (a *DecimalArray) Encoding() EncodingID   { return EncodingDecimal }
func (a *DecimalArray) EncodingName() Name     { return "decimal" }
func (a *DecimalArray) Stats() *stats.StatsSet { return a.st }

func (a *DecimalArray) IsValid(i int) bool      { return a.valid.IsValid(i) }
func (a *DecimalArray) AllValid() bool          { return a.valid.AllValidBool() }
func (a *DecimalArray) AllInvalid() bool        { return a.valid.AllInvalidBool() }
func (a *DecimalArray) ValidityMask() mask.Mask { return a.valid.AsMask() }

func (a *DecimalArray) Slice(start, stop int) Array {
	return &DecimalArray{dt: a.dt, raw: a.raw[start*16 : stop*16], valid: a.valid.Slice(start, stop), st: stats.New()}
}

func (a *DecimalArray) ScalarAt(i int) scalar.Scalar {
	if !a.valid.IsValid(i) {
		return scalar.Null(a.dt)
	}
	precision, scale := a.dt.DecimalPrecisionScale()
	return scalar.FromDecimal(precision, scale, decimalUnscaled(a.raw, i), a.dt.Nullable())
}

func (a *DecimalArray) Canonicalize() CanonicalArray { return a }

func (a *DecimalArray) VisitBuffers(v func(name string, bytes []byte))  { v("values", a.raw) }
func (a *DecimalArray) VisitChildren(v func(name string, child Array)) {}
func (a *DecimalArray) WithChildren(children []Array) Array            { return a }

func init() {
	DefaultRegistry.Register(EncodingDecimal, "decimal", func(dt dtype.DType, length int, metadata []byte, segments [][]byte, children []Array) (Array, error) {
		var raw []byte
		if len(segments) > 0 {
			raw = segments[0]
		}
		vv := validity.AllValid(length)
		if dt.Nullable() && len(segments) > 1 {
			bools := make([]bool, length)
			for i := range bools {
				bools[i] = segments[1][i/8]&(1<<uint(i%8)) != 0
			}
			vv = validity.FromMask(mask.FromBools(bools))
		}
		precision, scale := dt.DecimalPrecisionScale()
		return NewDecimal(precision, scale, raw, vv), nil
	})
}

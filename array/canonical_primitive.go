package array

import (
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/mask"
	"github.com/deepteams/vortex/scalar"
	"github.com/deepteams/vortex/stats"
	"github.com/deepteams/vortex/validity"
)

// PrimitiveArray is the canonical form for any fixed-width numeric
// dtype.DType (spec.md §3, "Primitive"). Storage is bridged through
// primData so this struct itself stays non-generic, satisfying the Array
// interface uniformly across all eleven ptypes.
type PrimitiveArray struct {
	dt    dtype.DType
	data  primData
	valid validity.Validity
	st    *stats.StatsSet
}

// NewPrimitiveFromBytes constructs a PrimitiveArray reinterpreting raw as
// p's element type.
func NewPrimitiveFromBytes(p dtype.PType, raw []byte, valid validity.Validity) *PrimitiveArray {
	return &PrimitiveArray{
		dt:    dtype.Primitive(p, valid.Kind() != validity.KindNonNullable),
		data:  newPrimData(p, raw),
		valid: valid,
		st:    stats.New(),
	}
}

func newPrimitiveFromData(dt dtype.DType, data primData, valid validity.Validity) *PrimitiveArray {
	return &PrimitiveArray{dt: dt, data: data, valid: valid, st: stats.New()}
}

func (a *PrimitiveArray) isCanonical() {}

func (a *PrimitiveArray) Len() int               { return a.data.Len() }
func (a *PrimitiveArray) DType() dtype.DType     { return a.dt }
func (a *PrimitiveArray) Encoding() EncodingID   { return EncodingPrimitive }
func (a *PrimitiveArray) EncodingName() Name     { return "primitive" }
func (a *PrimitiveArray) Stats() *stats.StatsSet { return a.st }

func (a *PrimitiveArray) IsValid(i int) bool      { return a.valid.IsValid(i) }
func (a *PrimitiveArray) AllValid() bool          { return a.valid.AllValidBool() }
func (a *PrimitiveArray) AllInvalid() bool        { return a.valid.AllInvalidBool() }
func (a *PrimitiveArray) ValidityMask() mask.Mask { return a.valid.AsMask() }

// Float64At and Int64At give compute kernels cheap, allocation-free access
// to a row's numeric value without constructing a scalar.Scalar.
func (a *PrimitiveArray) Float64At(i int) float64 { return a.data.AsFloat64(i) }
func (a *PrimitiveArray) Int64At(i int) int64      { return a.data.AsInt64(i) }

// Bytes returns the raw little-endian backing bytes, used by segment
// writers flushing a primitive column verbatim.
func (a *PrimitiveArray) Bytes() []byte { return a.data.Bytes() }

func (a *PrimitiveArray) Slice(start, stop int) Array {
	return newPrimitiveFromData(a.dt, a.data.Slice(start, stop), a.valid.Slice(start, stop))
}

func (a *PrimitiveArray) ScalarAt(i int) scalar.Scalar {
	if !a.valid.IsValid(i) {
		return scalar.Null(a.dt)
	}
	return a.data.ScalarAt(a.dt.PType(), i, a.dt.Nullable())
}

func (a *PrimitiveArray) Canonicalize() CanonicalArray { return a }

func (a *PrimitiveArray) VisitBuffers(v func(name string, bytes []byte)) {
	v("values", a.data.Bytes())
}
func (a *PrimitiveArray) VisitChildren(v func(name string, child Array)) {}
func (a *PrimitiveArray) WithChildren(children []Array) Array            { return a }

func init() {
	DefaultRegistry.Register(EncodingPrimitive, "primitive", func(dt dtype.DType, length int, metadata []byte, segments [][]byte, children []Array) (Array, error) {
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
		return NewPrimitiveFromBytes(dt.PType(), raw, vv), nil
	})
}

package encoding

import (
	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/mask"
	"github.com/deepteams/vortex/scalar"
	"github.com/deepteams/vortex/stats"
	"github.com/deepteams/vortex/validity"
)

// ByteBoolArray stores one full byte per boolean value instead of a
// packed bit, with a separate Validity (spec.md §4.2, "ByteBool");
// canonical form is packed Bool. Byte-per-value storage is friendlier to
// SIMD/vectorized scans than a packed bitmap at the cost of 8x size.
type ByteBoolArray struct {
	dt    dtype.DType
	bytes []byte
	valid validity.Validity
	st    *stats.StatsSet
}

// NewByteBool constructs a ByteBoolArray; each byte is 0 (false) or
// non-zero (true).
func NewByteBool(bytes []byte, valid validity.Validity) *ByteBoolArray {
	return &ByteBoolArray{
		dt:    dtype.Bool(valid.Kind() != validity.KindNonNullable),
		bytes: bytes,
		valid: valid,
		st:    stats.New(),
	}
}

func (a *ByteBoolArray) Len() int                   { return a.valid.Len() }
func (a *ByteBoolArray) DType() dtype.DType         { return a.dt }
func (a *ByteBoolArray) Encoding() array.EncodingID { return array.EncodingByteBool }
func (a *ByteBoolArray) EncodingName() array.Name   { return "bytebool" }
func (a *ByteBoolArray) Stats() *stats.StatsSet     { return a.st }

func (a *ByteBoolArray) IsValid(i int) bool      { return a.valid.IsValid(i) }
func (a *ByteBoolArray) AllValid() bool          { return a.valid.AllValidBool() }
func (a *ByteBoolArray) AllInvalid() bool        { return a.valid.AllInvalidBool() }
func (a *ByteBoolArray) ValidityMask() mask.Mask { return a.valid.AsMask() }

func (a *ByteBoolArray) Slice(start, stop int) array.Array {
	return NewByteBool(a.bytes[start:stop], a.valid.Slice(start, stop))
}

func (a *ByteBoolArray) ScalarAt(i int) scalar.Scalar {
	if !a.valid.IsValid(i) {
		return scalar.Null(a.dt)
	}
	return scalar.Bool(a.bytes[i] != 0, a.dt.Nullable())
}

func (a *ByteBoolArray) Canonicalize() array.CanonicalArray {
	bools := make([]bool, len(a.bytes))
	for i, b := range a.bytes {
		bools[i] = b != 0
	}
	return array.NewBool(mask.FromBools(bools), a.valid)
}

func (a *ByteBoolArray) VisitBuffers(v func(name string, bytes []byte))  { v("values", a.bytes) }
func (a *ByteBoolArray) VisitChildren(v func(name string, child array.Array)) {}
func (a *ByteBoolArray) WithChildren(children []array.Array) array.Array      { return a }

func init() {
	array.DefaultRegistry.Register(array.EncodingByteBool, "bytebool", func(dt dtype.DType, length int, metadata []byte, segments [][]byte, children []array.Array) (array.Array, error) {
		var bytes []byte
		if len(segments) > 0 {
			bytes = segments[0]
		}
		vv := validity.AllValid(length)
		if dt.Nullable() && len(segments) > 1 {
			bools := make([]bool, length)
			for i := range bools {
				bools[i] = segments[1][i/8]&(1<<uint(i%8)) != 0
			}
			vv = validity.FromMask(mask.FromBools(bools))
		}
		return NewByteBool(bytes, vv), nil
	})
}

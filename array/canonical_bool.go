package array

import (
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/mask"
	"github.com/deepteams/vortex/scalar"
	"github.com/deepteams/vortex/stats"
	"github.com/deepteams/vortex/validity"
)

// BoolArray is the canonical form for dtype.Bool: a packed bitmap of
// values (reusing mask.Mask, itself a packed-bit row selector, as the
// storage for packed booleans) plus a Validity.
type BoolArray struct {
	dt     dtype.DType
	values mask.Mask
	valid  validity.Validity
	st     *stats.StatsSet
}

// NewBool constructs a BoolArray from a dense value mask and a validity.
func NewBool(values mask.Mask, valid validity.Validity) *BoolArray {
	if values.Len() != valid.Len() {
		panic("array: NewBool values/validity length mismatch")
	}
	return &BoolArray{
		dt:     dtype.Bool(valid.Kind() != validity.KindNonNullable),
		values: values,
		valid:  valid,
		st:     stats.New(),
	}
}

func (a *BoolArray) isCanonical() {}

func (a *BoolArray) Len() int               { return a.values.Len() }
func (a *BoolArray) DType() dtype.DType     { return a.dt }
func (a *BoolArray) Encoding() EncodingID   { return EncodingBool }
func (a *BoolArray) EncodingName() Name     { return "bool" }
func (a *BoolArray) Stats() *stats.StatsSet { return a.st }

func (a *BoolArray) IsValid(i int) bool      { return a.valid.IsValid(i) }
func (a *BoolArray) AllValid() bool          { return a.valid.AllValidBool() }
func (a *BoolArray) AllInvalid() bool        { return a.valid.AllInvalidBool() }
func (a *BoolArray) ValidityMask() mask.Mask { return a.valid.AsMask() }

// Value returns the packed boolean at position i, regardless of validity.
func (a *BoolArray) Value(i int) bool { return a.values.Value(i) }

func (a *BoolArray) Slice(start, stop int) Array {
	return NewBool(a.values.Slice(start, stop), a.valid.Slice(start, stop))
}

func (a *BoolArray) ScalarAt(i int) scalar.Scalar {
	if !a.valid.IsValid(i) {
		return scalar.Null(a.dt)
	}
	return scalar.Bool(a.values.Value(i), a.dt.Nullable())
}

func (a *BoolArray) Canonicalize() CanonicalArray { return a }

func (a *BoolArray) VisitBuffers(v func(name string, bytes []byte)) {
	bools := a.values.ToBools()
	packed := make([]byte, (len(bools)+7)/8)
	for i, b := range bools {
		if b {
			packed[i/8] |= 1 << uint(i%8)
		}
	}
	v("values", packed)
}
func (a *BoolArray) VisitChildren(v func(name string, child Array)) {}
func (a *BoolArray) WithChildren(children []Array) Array            { return a }

func init() {
	DefaultRegistry.Register(EncodingBool, "bool", func(dt dtype.DType, length int, metadata []byte, segments [][]byte, children []Array) (Array, error) {
		bools := make([]bool, length)
		if len(segments) > 0 {
			packed := segments[0]
			for i := range bools {
				bools[i] = packed[i/8]&(1<<uint(i%8)) != 0
			}
		}
		vv := validity.AllValid(length)
		if dt.Nullable() && len(segments) > 1 {
			vbools := make([]bool, length)
			for i := range vbools {
				vbools[i] = segments[1][i/8]&(1<<uint(i%8)) != 0
			}
			vv = validity.FromMask(mask.FromBools(vbools))
		}
		return NewBool(mask.FromBools(bools), vv), nil
	})
}

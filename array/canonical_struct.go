package array

import (
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/mask"
	"github.com/deepteams/vortex/scalar"
	"github.com/deepteams/vortex/stats"
	"github.com/deepteams/vortex/validity"
)

// StructArray is the canonical form for dtype.Struct: one child array per
// field plus a top-level Validity (a struct row may be null even if every
// field happens to hold a value).
type StructArray struct {
	dt       dtype.DType
	children []Array
	valid    validity.Validity
	st       *stats.StatsSet
}

// NewStruct constructs a StructArray. children must align 1:1 with
// dt.Fields() in order and share dt's row count.
func NewStruct(dt dtype.DType, children []Array, valid validity.Validity) *StructArray {
	if dt.Kind() != dtype.KindStruct {
		panic("array: NewStruct requires a Struct dtype")
	}
	if len(children) != len(dt.Fields()) {
		panic("array: NewStruct children count must match field count")
	}
	return &StructArray{dt: dt, children: children, valid: valid, st: stats.New()}
}

func (a *StructArray) isCanonical() {}

func (a *StructArray) Len() int               { return a.valid.Len() }
func (a *StructArray) DType() dtype.DType     { return a.dt }
func (a *StructArray) Encoding() EncodingID   { return EncodingStruct }
func (a *StructArray) EncodingName() Name     { return "struct" }
func (a *StructArray) Stats() *stats.StatsSet { return a.st }

func (a *StructArray) IsValid(i int) bool      { return a.valid.IsValid(i) }
func (a *StructArray) AllValid() bool          { return a.valid.AllValidBool() }
func (a *StructArray) AllInvalid() bool        { return a.valid.AllInvalidBool() }
func (a *StructArray) ValidityMask() mask.Mask { return a.valid.AsMask() }

// Field returns the named child array, or nil if no such field exists.
func (a *StructArray) Field(name string) Array {
	for i, f := range a.dt.Fields() {
		if f.Name == name {
			return a.children[i]
		}
	}
	return nil
}

func (a *StructArray) Slice(start, stop int) Array {
	sliced := make([]Array, len(a.children))
	for i, c := range a.children {
		sliced[i] = Slice(c, start, stop)
	}
	return NewStruct(a.dt, sliced, a.valid.Slice(start, stop))
}

func (a *StructArray) ScalarAt(i int) scalar.Scalar {
	if !a.valid.IsValid(i) {
		return scalar.Null(a.dt)
	}
	fields := a.dt.Fields()
	elems := make([]scalar.Scalar, len(fields))
	for j, c := range a.children {
		elems[j] = ScalarAt(c, i)
	}
	// Struct scalars are represented as a List scalar of field values in
	// field order; callers that need field-by-field access should prefer
	// StructArray.Field + ScalarAt over this aggregate form.
	return scalar.FromList(dtype.Null, a.dt.Nullable(), elems)
}

func (a *StructArray) Canonicalize() CanonicalArray { return a }

func (a *StructArray) VisitBuffers(v func(name string, bytes []byte)) {}
func (a *StructArray) VisitChildren(v func(name string, child Array)) {
	for i, f := range a.dt.Fields() {
		v(f.Name, a.children[i])
	}
}
func (a *StructArray) WithChildren(children []Array) Array {
	return NewStruct(a.dt, children, a.valid)
}

func init() {
	DefaultRegistry.Register(EncodingStruct, "struct", func(dt dtype.DType, length int, metadata []byte, segments [][]byte, children []Array) (Array, error) {
		vv := validity.AllValid(length)
		if dt.Nullable() && len(segments) > 0 {
			bools := make([]bool, length)
			for i := range bools {
				bools[i] = segments[0][i/8]&(1<<uint(i%8)) != 0
			}
			vv = validity.FromMask(mask.FromBools(bools))
		}
		return NewStruct(dt, children, vv), nil
	})
}

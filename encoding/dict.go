package encoding

import (
	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/compute"
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/mask"
	"github.com/deepteams/vortex/scalar"
	"github.com/deepteams/vortex/stats"
)

// DictArray is dictionary encoding (spec.md §4.2, "Dict"): a non-nullable
// `codes` child indexes into a `values` child of any dtype. Decode is
// take(values, codes); a row's validity is inherited from values via the
// code at that position, so DictArray itself carries no separate
// validity storage.
type DictArray struct {
	codes  *array.PrimitiveArray // non-nullable, unsigned
	values array.Array
	st     *stats.StatsSet
}

// NewDict constructs a DictArray.
func NewDict(codes *array.PrimitiveArray, values array.Array) *DictArray {
	return &DictArray{codes: codes, values: values, st: stats.New()}
}

func (a *DictArray) Len() int                   { return a.codes.Len() }
func (a *DictArray) DType() dtype.DType         { return a.values.DType() }
func (a *DictArray) Encoding() array.EncodingID { return array.EncodingDict }
func (a *DictArray) EncodingName() array.Name   { return "dict" }
func (a *DictArray) Stats() *stats.StatsSet     { return a.st }

func (a *DictArray) codeAt(i int) int { return int(array.ScalarAt(a.codes, i).AsUint()) }

func (a *DictArray) IsValid(i int) bool { return array.IsValid(a.values, a.codeAt(i)) }
func (a *DictArray) AllValid() bool {
	n := a.Len()
	for i := 0; i < n; i++ {
		if !a.IsValid(i) {
			return false
		}
	}
	return true
}
func (a *DictArray) AllInvalid() bool {
	n := a.Len()
	for i := 0; i < n; i++ {
		if a.IsValid(i) {
			return false
		}
	}
	return n > 0
}
func (a *DictArray) ValidityMask() mask.Mask {
	n := a.Len()
	bools := make([]bool, n)
	for i := 0; i < n; i++ {
		bools[i] = a.IsValid(i)
	}
	return mask.FromBools(bools)
}

func (a *DictArray) Slice(start, stop int) array.Array {
	return NewDict(array.Slice(a.codes, start, stop).(*array.PrimitiveArray), a.values)
}

func (a *DictArray) ScalarAt(i int) scalar.Scalar {
	return array.ScalarAt(a.values, a.codeAt(i))
}

func (a *DictArray) Canonicalize() array.CanonicalArray {
	ctx := array.NewContext()
	indices := make([]int, a.Len())
	for i := range indices {
		indices[i] = a.codeAt(i)
	}
	out, err := compute.Take(ctx, a.values, indices)
	if err != nil {
		panic(err)
	}
	return array.Canonicalize(out)
}

func (a *DictArray) VisitBuffers(v func(name string, bytes []byte)) {}
func (a *DictArray) VisitChildren(v func(name string, child array.Array)) {
	v("codes", a.codes)
	v("values", a.values)
}
func (a *DictArray) WithChildren(children []array.Array) array.Array {
	return NewDict(children[0].(*array.PrimitiveArray), children[1])
}

// ComputeFastPath: compare(dict, const) evaluates against values, then
// wraps the same codes into a new dict over the boolean result; take and
// filter rewrap codes instead of decompressing (spec.md §4.2, "Dict").
func (a *DictArray) ComputeFastPath(fn string, args []any) (any, bool) {
	ctx := array.NewContext()
	switch fn {
	case compute.FnCompare:
		rhs, ok := args[1].(scalar.Scalar)
		if !ok {
			return nil, false
		}
		op, ok := args[2].(compute.Operator)
		if !ok {
			return nil, false
		}
		boolValues, err := compute.Compare(ctx, a.values, rhs, op)
		if err != nil {
			return nil, false
		}
		return NewDict(a.codes, boolValues), true
	case compute.FnTake:
		indices, ok := args[1].([]int)
		if !ok {
			return nil, false
		}
		newCodes, err := compute.Take(ctx, a.codes, indices)
		if err != nil {
			return nil, false
		}
		return NewDict(newCodes.(*array.PrimitiveArray), a.values), true
	case compute.FnFilter:
		m, ok := args[1].(mask.Mask)
		if !ok {
			return nil, false
		}
		newCodes, err := compute.Filter(ctx, a.codes, m)
		if err != nil {
			return nil, false
		}
		return NewDict(newCodes.(*array.PrimitiveArray), a.values), true
	default:
		return nil, false
	}
}

func init() {
	array.DefaultRegistry.Register(array.EncodingDict, "dict", func(dt dtype.DType, length int, metadata []byte, segments [][]byte, children []array.Array) (array.Array, error) {
		return NewDict(children[0].(*array.PrimitiveArray), children[1]), nil
	})
}

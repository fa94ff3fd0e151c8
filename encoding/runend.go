package encoding

import (
	"sort"

	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/compute"
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/mask"
	"github.com/deepteams/vortex/scalar"
	"github.com/deepteams/vortex/stats"
)

// RunEndArray run-length-encodes repeated runs (spec.md §4.2,
// "RunEnd"/"RunEndBool"): `ends` is strictly increasing and
// ends[last] == len+offset; `values` holds one value per run.
// (RunEndBool's further optimization of storing only a single start-bit
// plus run lengths, rather than a full Bool values child, is not
// implemented — see DESIGN.md; RunEndBool here is RunEnd specialized to
// a Bool values child, registered under its own EncodingID so on-disk
// compatibility with a hypothetical start-bit-only writer is not
// claimed.)
type RunEndArray struct {
	dt       dtype.DType
	id       array.EncodingID
	ends     *array.PrimitiveArray // unsigned, strictly increasing
	values   array.Array
	offset   int
	length   int
	st       *stats.StatsSet
}

// NewRunEnd constructs a RunEndArray over the full logical range implied
// by ends (offset 0, length = ends[last]).
func NewRunEnd(dt dtype.DType, ends *array.PrimitiveArray, values array.Array) *RunEndArray {
	n := ends.Len()
	length := 0
	if n > 0 {
		length = int(array.ScalarAt(ends, n-1).AsUint())
	}
	return &RunEndArray{dt: dt, id: array.EncodingRunEnd, ends: ends, values: values, length: length, st: stats.New()}
}

// NewRunEndBool is NewRunEnd specialized for a Bool values child.
func NewRunEndBool(ends *array.PrimitiveArray, values array.Array) *RunEndArray {
	r := NewRunEnd(values.DType(), ends, values)
	r.id = array.EncodingRunEndBool
	return r
}

func (a *RunEndArray) Len() int                   { return a.length }
func (a *RunEndArray) DType() dtype.DType         { return a.dt }
func (a *RunEndArray) Encoding() array.EncodingID { return a.id }
func (a *RunEndArray) EncodingName() array.Name {
	if a.id == array.EncodingRunEndBool {
		return "runendbool"
	}
	return "runend"
}
func (a *RunEndArray) Stats() *stats.StatsSet { return a.st }

// runIndex returns the run containing logical position i (searchSortedRight
// against ends, per spec.md §4.2: "scalar_at(i) = values[searchSortedRight(ends, i+offset)]").
func (a *RunEndArray) runIndex(i int) int {
	pos := i + a.offset
	return sort.Search(a.ends.Len(), func(k int) bool {
		return int(array.ScalarAt(a.ends, k).AsUint()) > pos
	})
}

func (a *RunEndArray) IsValid(i int) bool      { return array.IsValid(a.values, a.runIndex(i)) }
func (a *RunEndArray) AllValid() bool          { return a.values.AllValid() }
func (a *RunEndArray) AllInvalid() bool        { return a.values.AllInvalid() }
func (a *RunEndArray) ValidityMask() mask.Mask {
	bools := make([]bool, a.length)
	for i := 0; i < a.length; i++ {
		bools[i] = a.IsValid(i)
	}
	return mask.FromBools(bools)
}

func (a *RunEndArray) Slice(start, stop int) array.Array {
	return &RunEndArray{dt: a.dt, id: a.id, ends: a.ends, values: a.values, offset: a.offset + start, length: stop - start, st: stats.New()}
}

func (a *RunEndArray) ScalarAt(i int) scalar.Scalar {
	return array.ScalarAt(a.values, a.runIndex(i))
}

func (a *RunEndArray) Canonicalize() array.CanonicalArray {
	values := make([]scalar.Scalar, a.length)
	for i := 0; i < a.length; i++ {
		values[i] = a.ScalarAt(i)
	}
	return array.FromScalars(a.dt, values)
}

func (a *RunEndArray) VisitBuffers(v func(name string, bytes []byte)) {}
func (a *RunEndArray) VisitChildren(v func(name string, child array.Array)) {
	v("ends", a.ends)
	v("values", a.values)
}
func (a *RunEndArray) WithChildren(children []array.Array) array.Array {
	return &RunEndArray{dt: a.dt, id: a.id, ends: children[0].(*array.PrimitiveArray), values: children[1], offset: a.offset, length: a.length, st: stats.New()}
}

// ComputeFastPath implements filter's two-strategy selectivity switch
// (spec.md §4.2: "true_count/nchunks < 0.1 => take-based; else rebuild
// new_ends and filter values").
func (a *RunEndArray) ComputeFastPath(fn string, args []any) (any, bool) {
	if fn != compute.FnFilter {
		return nil, false
	}
	m, ok := args[1].(mask.Mask)
	if !ok {
		return nil, false
	}
	ctx := array.NewContext()
	if m.Density() < 0.1 {
		idx := m.ToIndices()
		out, err := compute.Take(ctx, a, idx)
		if err != nil {
			return nil, false
		}
		return out, true
	}
	var newEnds []int64
	var keepRun []int
	count := 0
	for i := 0; i < a.length; i++ {
		if !m.Value(i) {
			continue
		}
		count++
		ri := a.runIndex(i)
		if len(keepRun) == 0 || keepRun[len(keepRun)-1] != ri {
			keepRun = append(keepRun, ri)
			newEnds = append(newEnds, int64(count))
		} else {
			newEnds[len(newEnds)-1] = int64(count)
		}
	}
	newValues, err := compute.Take(ctx, a.values, keepRun)
	if err != nil {
		return nil, false
	}
	raw := make([]byte, len(newEnds)*8)
	for i, e := range newEnds {
		u := uint64(e)
		for j := 0; j < 8; j++ {
			raw[i*8+j] = byte(u >> (8 * uint(j)))
		}
	}
	endsArr := array.NewPrimitiveFromBytes(dtype.U64, raw, allValidValidity(len(newEnds)))
	return NewRunEnd(a.dt, endsArr, newValues), true
}

func init() {
	b := func(dt dtype.DType, length int, metadata []byte, segments [][]byte, children []array.Array) (array.Array, error) {
		return NewRunEnd(dt, children[0].(*array.PrimitiveArray), children[1]), nil
	}
	array.DefaultRegistry.Register(array.EncodingRunEnd, "runend", b)
	array.DefaultRegistry.Register(array.EncodingRunEndBool, "runendbool", func(dt dtype.DType, length int, metadata []byte, segments [][]byte, children []array.Array) (array.Array, error) {
		return NewRunEndBool(children[0].(*array.PrimitiveArray), children[1]), nil
	})
}

package encoding

import (
	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/mask"
	"github.com/deepteams/vortex/scalar"
	"github.com/deepteams/vortex/stats"
)

// DeltaArray stores `deltas` (consecutive differences) segmented into
// `lanes` interleaved streams plus one `bases` value per lane, the
// FastLanes-style layout spec.md §4.2 describes for "Delta". Decoding is
// a segment-parallel prefix sum by lane, then a per-lane add of bases.
// Slicing at a lane-segment boundary is O(1); mid-segment slicing keeps
// an offset and recomputes the prefix sum lazily on first access.
type DeltaArray struct {
	dt     dtype.DType
	lanes  int
	bases  *array.PrimitiveArray // one value per lane
	deltas *array.PrimitiveArray // lanes-interleaved deltas, length == a.Len()
	offset int
	length int
	st     *stats.StatsSet
}

// NewDelta constructs a DeltaArray. deltas must be interleaved
// round-robin across lanes (deltas[i] belongs to lane i%lanes).
func NewDelta(dt dtype.DType, lanes int, bases, deltas *array.PrimitiveArray) *DeltaArray {
	if lanes <= 0 {
		lanes = 1
	}
	return &DeltaArray{dt: dt, lanes: lanes, bases: bases, deltas: deltas, length: deltas.Len(), st: stats.New()}
}

func (a *DeltaArray) Len() int                   { return a.length }
func (a *DeltaArray) DType() dtype.DType         { return a.dt }
func (a *DeltaArray) Encoding() array.EncodingID { return array.EncodingDelta }
func (a *DeltaArray) EncodingName() array.Name   { return "delta" }
func (a *DeltaArray) Stats() *stats.StatsSet     { return a.st }

func (a *DeltaArray) IsValid(i int) bool      { return a.deltas.IsValid(a.offset + i) }
func (a *DeltaArray) AllValid() bool          { return a.deltas.AllValid() }
func (a *DeltaArray) AllInvalid() bool        { return a.deltas.AllInvalid() }
func (a *DeltaArray) ValidityMask() mask.Mask { return array.Slice(a.deltas, a.offset, a.offset+a.length).ValidityMask() }

func (a *DeltaArray) Slice(start, stop int) array.Array {
	return &DeltaArray{dt: a.dt, lanes: a.lanes, bases: a.bases, deltas: a.deltas, offset: a.offset + start, length: stop - start, st: stats.New()}
}

// valueAtLogical reconstructs the prefix sum for absolute position pos
// (offset + i within the full deltas stream) by walking back to the lane
// boundary and summing forward. This keeps Slice O(1) at the cost of an
// O(segment length / lanes) scalar_at, matching the tradeoff spec.md §4.2
// documents for Delta's "mid-segment slicing keeps an offset".
func (a *DeltaArray) valueAtLogical(pos int) int64 {
	lane := pos % a.lanes
	base := array.ScalarAt(a.bases, lane).AsInt()
	var sum int64
	for p := lane; p <= pos; p += a.lanes {
		sum += array.ScalarAt(a.deltas, p).AsInt()
	}
	return base + sum
}

func (a *DeltaArray) ScalarAt(i int) scalar.Scalar {
	pos := a.offset + i
	if !a.deltas.IsValid(pos) {
		return scalar.Null(a.dt)
	}
	return scalar.FromInt(a.dt.PType(), a.valueAtLogical(pos), a.dt.Nullable())
}

func (a *DeltaArray) Canonicalize() array.CanonicalArray {
	values := make([]scalar.Scalar, a.length)
	for i := 0; i < a.length; i++ {
		values[i] = a.ScalarAt(i)
	}
	return array.FromScalars(a.dt, values)
}

func (a *DeltaArray) VisitBuffers(v func(name string, bytes []byte)) {}
func (a *DeltaArray) VisitChildren(v func(name string, child array.Array)) {
	v("bases", a.bases)
	v("deltas", a.deltas)
}
func (a *DeltaArray) WithChildren(children []array.Array) array.Array {
	return NewDelta(a.dt, a.lanes, children[0].(*array.PrimitiveArray), children[1].(*array.PrimitiveArray))
}

func init() {
	array.DefaultRegistry.Register(array.EncodingDelta, "delta", func(dt dtype.DType, length int, metadata []byte, segments [][]byte, children []array.Array) (array.Array, error) {
		lanes := 1
		if len(metadata) >= 4 {
			lanes = int(metadata[0]) | int(metadata[1])<<8 | int(metadata[2])<<16 | int(metadata[3])<<24
		}
		return NewDelta(dt, lanes, children[0].(*array.PrimitiveArray), children[1].(*array.PrimitiveArray)), nil
	})
}

package array

import (
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/mask"
	"github.com/deepteams/vortex/scalar"
	"github.com/deepteams/vortex/stats"
	"github.com/deepteams/vortex/validity"
)

// ListArray is the canonical form for dtype.List: an elements array plus
// n+1 offsets delimiting each row's slice of elements, plus a Validity.
type ListArray struct {
	dt       dtype.DType
	elements Array
	offsets  []uint32
	valid    validity.Validity
	st       *stats.StatsSet
}

// NewList constructs a ListArray. offsets must have length valid.Len()+1,
// be non-decreasing, and offsets[len] must equal elements.Len().
func NewList(dt dtype.DType, elements Array, offsets []uint32, valid validity.Validity) *ListArray {
	if dt.Kind() != dtype.KindList {
		panic("array: NewList requires a List dtype")
	}
	if len(offsets) != valid.Len()+1 {
		panic("array: NewList offsets length must be len+1")
	}
	return &ListArray{dt: dt, elements: elements, offsets: offsets, valid: valid, st: stats.New()}
}

func (a *ListArray) isCanonical() {}

func (a *ListArray) Len() int               { return a.valid.Len() }
func (a *ListArray) DType() dtype.DType     { return a.dt }
func (a *ListArray) Encoding() EncodingID   { return EncodingList }
func (a *ListArray) EncodingName() Name     { return "list" }
func (a *ListArray) Stats() *stats.StatsSet { return a.st }

func (a *ListArray) IsValid(i int) bool      { return a.valid.IsValid(i) }
func (a *ListArray) AllValid() bool          { return a.valid.AllValidBool() }
func (a *ListArray) AllInvalid() bool        { return a.valid.AllInvalidBool() }
func (a *ListArray) ValidityMask() mask.Mask { return a.valid.AsMask() }

// ElementsAt returns the sub-array of elements belonging to row i.
func (a *ListArray) ElementsAt(i int) Array {
	return Slice(a.elements, int(a.offsets[i]), int(a.offsets[i+1]))
}

func (a *ListArray) Slice(start, stop int) Array {
	return &ListArray{
		dt:       a.dt,
		elements: a.elements,
		offsets:  a.offsets[start : stop+1],
		valid:    a.valid.Slice(start, stop),
		st:       stats.New(),
	}
}

func (a *ListArray) ScalarAt(i int) scalar.Scalar {
	if !a.valid.IsValid(i) {
		return scalar.Null(a.dt)
	}
	elems := a.ElementsAt(i)
	out := make([]scalar.Scalar, elems.Len())
	for j := range out {
		out[j] = ScalarAt(elems, j)
	}
	return scalar.FromList(a.dt.ElemType(), a.dt.Nullable(), out)
}

func (a *ListArray) Canonicalize() CanonicalArray { return a }

func (a *ListArray) VisitBuffers(v func(name string, bytes []byte)) {
	off := make([]byte, len(a.offsets)*4)
	for i, o := range a.offsets {
		off[i*4] = byte(o)
		off[i*4+1] = byte(o >> 8)
		off[i*4+2] = byte(o >> 16)
		off[i*4+3] = byte(o >> 24)
	}
	v("offsets", off)
}
func (a *ListArray) VisitChildren(v func(name string, child Array)) {
	v("elements", a.elements)
}
func (a *ListArray) WithChildren(children []Array) Array {
	return NewList(a.dt, children[0], a.offsets, a.valid)
}

func init() {
	DefaultRegistry.Register(EncodingList, "list", func(dt dtype.DType, length int, metadata []byte, segments [][]byte, children []Array) (Array, error) {
		var offRaw []byte
		if len(segments) > 0 {
			offRaw = segments[0]
		}
		vv := validity.AllValid(length)
		if dt.Nullable() && len(segments) > 1 {
			bools := make([]bool, length)
			for i := range bools {
				bools[i] = segments[1][i/8]&(1<<uint(i%8)) != 0
			}
			vv = validity.FromMask(mask.FromBools(bools))
		}
		return NewList(dt, children[0], decodeOffsets(offRaw), vv), nil
	})
}

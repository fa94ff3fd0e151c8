package encoding

import (
	"sort"

	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/mask"
	"github.com/deepteams/vortex/scalar"
	"github.com/deepteams/vortex/stats"
)

// SparseArray holds a set of (index, value) patches over a fill value
// repeated across the array's full length (spec.md §4.2, "Sparse": "Holds
// a set of (index, value) patches over a fill value of length len.
// Participates in most DType variants transparently."). indices is
// sorted ascending and non-nullable; values holds one entry per patch.
type SparseArray struct {
	dt        dtype.DType
	fillValue scalar.Scalar
	indices   *array.PrimitiveArray
	values    array.Array
	length    int
	st        *stats.StatsSet
}

// NewSparse constructs a SparseArray. indices must be sorted ascending
// with indices.Len() == values.Len().
func NewSparse(dt dtype.DType, fillValue scalar.Scalar, indices *array.PrimitiveArray, values array.Array, length int) *SparseArray {
	return &SparseArray{dt: dt, fillValue: fillValue, indices: indices, values: values, length: length, st: stats.New()}
}

func (a *SparseArray) Len() int                   { return a.length }
func (a *SparseArray) DType() dtype.DType         { return a.dt }
func (a *SparseArray) Encoding() array.EncodingID { return array.EncodingSparse }
func (a *SparseArray) EncodingName() array.Name   { return "sparse" }
func (a *SparseArray) Stats() *stats.StatsSet     { return a.st }

// patchIndex returns the position within indices/values holding logical
// row i, or -1 if i is a fill position.
func (a *SparseArray) patchIndex(i int) int {
	n := a.indices.Len()
	k := sort.Search(n, func(j int) bool { return int(array.ScalarAt(a.indices, j).AsUint()) >= i })
	if k < n && int(array.ScalarAt(a.indices, k).AsUint()) == i {
		return k
	}
	return -1
}

func (a *SparseArray) IsValid(i int) bool {
	if k := a.patchIndex(i); k >= 0 {
		return a.values.IsValid(k)
	}
	return !a.fillValue.IsNull()
}
func (a *SparseArray) AllValid() bool {
	if a.fillValue.IsNull() {
		return a.indices.Len() == a.length && a.values.AllValid()
	}
	return a.values.AllValid()
}
func (a *SparseArray) AllInvalid() bool {
	if !a.fillValue.IsNull() {
		return false
	}
	return a.indices.Len() == a.length && a.values.AllInvalid() || a.length == 0
}
func (a *SparseArray) ValidityMask() mask.Mask {
	bools := make([]bool, a.length)
	for i := range bools {
		bools[i] = a.IsValid(i)
	}
	return mask.FromBools(bools)
}

func (a *SparseArray) Slice(start, stop int) array.Array {
	lo := sort.Search(a.indices.Len(), func(j int) bool { return int(array.ScalarAt(a.indices, j).AsUint()) >= start })
	hi := sort.Search(a.indices.Len(), func(j int) bool { return int(array.ScalarAt(a.indices, j).AsUint()) >= stop })
	newIndices := array.Slice(a.indices, lo, hi).(*array.PrimitiveArray)
	shifted := make([]scalar.Scalar, newIndices.Len())
	for i := 0; i < newIndices.Len(); i++ {
		shifted[i] = scalar.FromInt(newIndices.DType().PType(), array.ScalarAt(newIndices, i).AsInt()-int64(start), false)
	}
	rebasedIndices := array.FromScalars(newIndices.DType(), shifted).(*array.PrimitiveArray)
	newValues := array.Slice(a.values, lo, hi)
	return NewSparse(a.dt, a.fillValue, rebasedIndices, newValues, stop-start)
}

func (a *SparseArray) ScalarAt(i int) scalar.Scalar {
	if k := a.patchIndex(i); k >= 0 {
		return array.ScalarAt(a.values, k)
	}
	return a.fillValue
}

func (a *SparseArray) Canonicalize() array.CanonicalArray {
	values := make([]scalar.Scalar, a.length)
	for i := 0; i < a.length; i++ {
		values[i] = a.ScalarAt(i)
	}
	return array.FromScalars(a.dt, values)
}

func (a *SparseArray) VisitBuffers(v func(name string, bytes []byte)) {}
func (a *SparseArray) VisitChildren(v func(name string, child array.Array)) {
	v("indices", a.indices)
	v("values", a.values)
}
func (a *SparseArray) WithChildren(children []array.Array) array.Array {
	return NewSparse(a.dt, a.fillValue, children[0].(*array.PrimitiveArray), children[1], a.length)
}

// Metadata implements array.Serde: the fill value, encoded the same way
// FoR encodes its reference scalar.
func (a *SparseArray) Metadata() []byte {
	return encodeScalarWord(a.dt, a.fillValue)
}

func init() {
	array.DefaultRegistry.Register(array.EncodingSparse, "sparse", func(dt dtype.DType, length int, metadata []byte, segments [][]byte, children []array.Array) (array.Array, error) {
		fill, err := decodeScalarWord(dt, metadata)
		if err != nil {
			return nil, err
		}
		return NewSparse(dt, fill, children[0].(*array.PrimitiveArray), children[1], length), nil
	})
}

package encoding

import (
	"math"
	"sort"

	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/mask"
	"github.com/deepteams/vortex/scalar"
	"github.com/deepteams/vortex/stats"
)

// ALPRDArray is ALP's right-side residual variant (spec.md §4.2,
// "ALP-RD": "Right-side residual encoding for floats whose exponents
// don't cluster. Symmetric structure to ALP."). Each float's bit pattern
// is split at rightBitWidth: the high "left part" bits are dictionary
// coded through leftCodes/leftDict (mirroring Dict's non-nullable
// codes + values split), the low "right part" bits are stored densely in
// right. Rows whose left part isn't one of the dictionary's common
// values are recorded as (index, value) exceptions, ALP-RD's analogue of
// ALP's patches.
type ALPRDArray struct {
	dt                 dtype.DType // f32 or f64 Primitive
	rightBitWidth      uint8
	leftCodes          *array.PrimitiveArray // unsigned, non-nullable
	leftDict           *array.PrimitiveArray // unsigned, one entry per code
	right              *array.PrimitiveArray // unsigned, carries validity
	exceptionIndices   *array.PrimitiveArray // sorted, non-nullable, optional
	exceptionLeftParts *array.PrimitiveArray // optional, same width as leftDict entries
	st                 *stats.StatsSet
}

// NewALPRD constructs an ALPRDArray.
func NewALPRD(dt dtype.DType, rightBitWidth uint8, leftCodes, leftDict, right, exceptionIndices, exceptionLeftParts *array.PrimitiveArray) *ALPRDArray {
	return &ALPRDArray{
		dt: dt, rightBitWidth: rightBitWidth, leftCodes: leftCodes, leftDict: leftDict, right: right,
		exceptionIndices: exceptionIndices, exceptionLeftParts: exceptionLeftParts, st: stats.New(),
	}
}

func (a *ALPRDArray) Len() int                   { return a.right.Len() }
func (a *ALPRDArray) DType() dtype.DType         { return a.dt }
func (a *ALPRDArray) Encoding() array.EncodingID { return array.EncodingALPRD }
func (a *ALPRDArray) EncodingName() array.Name   { return "alprd" }
func (a *ALPRDArray) Stats() *stats.StatsSet     { return a.st }

func (a *ALPRDArray) IsValid(i int) bool      { return a.right.IsValid(i) }
func (a *ALPRDArray) AllValid() bool          { return a.right.AllValid() }
func (a *ALPRDArray) AllInvalid() bool        { return a.right.AllInvalid() }
func (a *ALPRDArray) ValidityMask() mask.Mask { return a.right.ValidityMask() }

func (a *ALPRDArray) Slice(start, stop int) array.Array {
	exIdx, exVals := a.exceptionIndices, a.exceptionLeftParts
	if a.exceptionIndices != nil {
		l := sort.Search(a.exceptionIndices.Len(), func(j int) bool { return int(array.ScalarAt(a.exceptionIndices, j).AsUint()) >= start })
		h := sort.Search(a.exceptionIndices.Len(), func(j int) bool { return int(array.ScalarAt(a.exceptionIndices, j).AsUint()) >= stop })
		shifted := make([]scalar.Scalar, h-l)
		for i := range shifted {
			shifted[i] = scalar.FromInt(a.exceptionIndices.DType().PType(), array.ScalarAt(a.exceptionIndices, l+i).AsInt()-int64(start), false)
		}
		exIdx = array.FromScalars(a.exceptionIndices.DType(), shifted).(*array.PrimitiveArray)
		exVals = array.Slice(a.exceptionLeftParts, l, h).(*array.PrimitiveArray)
	}
	return &ALPRDArray{
		dt: a.dt, rightBitWidth: a.rightBitWidth, leftDict: a.leftDict,
		leftCodes:          array.Slice(a.leftCodes, start, stop).(*array.PrimitiveArray),
		right:              array.Slice(a.right, start, stop).(*array.PrimitiveArray),
		exceptionIndices:   exIdx,
		exceptionLeftParts: exVals,
		st:                 stats.New(),
	}
}

func (a *ALPRDArray) leftPartAt(i int) uint64 {
	if a.exceptionIndices != nil && a.exceptionIndices.Len() > 0 {
		n := a.exceptionIndices.Len()
		k := sort.Search(n, func(j int) bool { return int(array.ScalarAt(a.exceptionIndices, j).AsUint()) >= i })
		if k < n && int(array.ScalarAt(a.exceptionIndices, k).AsUint()) == i {
			return array.ScalarAt(a.exceptionLeftParts, k).AsUint()
		}
	}
	code := int(array.ScalarAt(a.leftCodes, i).AsUint())
	return array.ScalarAt(a.leftDict, code).AsUint()
}

func (a *ALPRDArray) ScalarAt(i int) scalar.Scalar {
	if !a.right.IsValid(i) {
		return scalar.Null(a.dt)
	}
	left := a.leftPartAt(i)
	right := array.ScalarAt(a.right, i).AsUint()
	bits := (left << uint(a.rightBitWidth)) | right
	p := a.dt.PType()
	var f float64
	if p == dtype.F32 {
		f = float64(math.Float32frombits(uint32(bits)))
	} else {
		f = math.Float64frombits(bits)
	}
	return scalar.FromFloat(p, f, a.dt.Nullable())
}

func (a *ALPRDArray) Canonicalize() array.CanonicalArray {
	n := a.Len()
	values := make([]scalar.Scalar, n)
	for i := 0; i < n; i++ {
		values[i] = a.ScalarAt(i)
	}
	return array.FromScalars(a.dt, values)
}

func (a *ALPRDArray) VisitBuffers(v func(name string, bytes []byte)) {}
func (a *ALPRDArray) VisitChildren(v func(name string, child array.Array)) {
	v("left_codes", a.leftCodes)
	v("left_dict", a.leftDict)
	v("right", a.right)
	if a.exceptionIndices != nil {
		v("exception_indices", a.exceptionIndices)
		v("exception_left_parts", a.exceptionLeftParts)
	}
}
func (a *ALPRDArray) WithChildren(children []array.Array) array.Array {
	out := *a
	out.leftCodes = children[0].(*array.PrimitiveArray)
	out.leftDict = children[1].(*array.PrimitiveArray)
	out.right = children[2].(*array.PrimitiveArray)
	if len(children) >= 5 {
		out.exceptionIndices = children[3].(*array.PrimitiveArray)
		out.exceptionLeftParts = children[4].(*array.PrimitiveArray)
	}
	return &out
}

// Metadata implements array.Serde: a single byte holding rightBitWidth.
func (a *ALPRDArray) Metadata() []byte { return []byte{a.rightBitWidth} }

func init() {
	array.DefaultRegistry.Register(array.EncodingALPRD, "alprd", func(dt dtype.DType, length int, metadata []byte, segments [][]byte, children []array.Array) (array.Array, error) {
		rightBitWidth := uint8(0)
		if len(metadata) >= 1 {
			rightBitWidth = metadata[0]
		}
		var exIdx, exVals *array.PrimitiveArray
		if len(children) >= 5 {
			exIdx = children[3].(*array.PrimitiveArray)
			exVals = children[4].(*array.PrimitiveArray)
		}
		return NewALPRD(dt, rightBitWidth, children[0].(*array.PrimitiveArray), children[1].(*array.PrimitiveArray), children[2].(*array.PrimitiveArray), exIdx, exVals), nil
	})
}

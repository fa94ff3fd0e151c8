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

var pow10 = [...]float64{1, 1e1, 1e2, 1e3, 1e4, 1e5, 1e6, 1e7, 1e8, 1e9, 1e10, 1e11, 1e12, 1e13, 1e14, 1e15, 1e16, 1e17, 1e18}

func pow10At(e int) float64 {
	if e >= 0 && e < len(pow10) {
		return pow10[e]
	}
	out := 1.0
	for i := 0; i < e; i++ {
		out *= 10
	}
	for i := 0; i > e; i-- {
		out /= 10
	}
	return out
}

// ALPArray is Adaptive Lossless floating-point encoding (spec.md §4.2,
// "ALP"): an integer `encoded` child plus exponent pair (e, f), decode(v)
// = v * 10^-f * 10^e. Values that don't encode cleanly are recorded as
// (index, value) `patches` over the encoded-then-decoded result; patches
// may be nil for the no-patches variant.
type ALPArray struct {
	dt           dtype.DType // f32 or f64 Primitive
	e, f         uint8
	encoded      *array.PrimitiveArray
	patchIndices *array.PrimitiveArray // sorted, non-nullable, optional
	patchValues  *array.PrimitiveArray // same dtype as dt, optional
	st           *stats.StatsSet
}

// NewALP constructs an ALPArray.
func NewALP(dt dtype.DType, e, f uint8, encoded *array.PrimitiveArray, patchIndices, patchValues *array.PrimitiveArray) *ALPArray {
	return &ALPArray{dt: dt, e: e, f: f, encoded: encoded, patchIndices: patchIndices, patchValues: patchValues, st: stats.New()}
}

func (a *ALPArray) Len() int                   { return a.encoded.Len() }
func (a *ALPArray) DType() dtype.DType         { return a.dt }
func (a *ALPArray) Encoding() array.EncodingID { return array.EncodingALP }
func (a *ALPArray) EncodingName() array.Name   { return "alp" }
func (a *ALPArray) Stats() *stats.StatsSet     { return a.st }

func (a *ALPArray) IsValid(i int) bool      { return a.encoded.IsValid(i) }
func (a *ALPArray) AllValid() bool          { return a.encoded.AllValid() }
func (a *ALPArray) AllInvalid() bool        { return a.encoded.AllInvalid() }
func (a *ALPArray) ValidityMask() mask.Mask { return a.encoded.ValidityMask() }

func (a *ALPArray) Slice(start, stop int) array.Array {
	lo, hi := a.patchIndices, a.patchValues
	if a.patchIndices != nil {
		l := sort.Search(a.patchIndices.Len(), func(j int) bool { return int(array.ScalarAt(a.patchIndices, j).AsUint()) >= start })
		h := sort.Search(a.patchIndices.Len(), func(j int) bool { return int(array.ScalarAt(a.patchIndices, j).AsUint()) >= stop })
		shifted := make([]scalar.Scalar, h-l)
		for i := range shifted {
			shifted[i] = scalar.FromInt(a.patchIndices.DType().PType(), array.ScalarAt(a.patchIndices, l+i).AsInt()-int64(start), false)
		}
		lo = array.FromScalars(a.patchIndices.DType(), shifted).(*array.PrimitiveArray)
		hi = array.Slice(a.patchValues, l, h).(*array.PrimitiveArray)
	}
	return &ALPArray{dt: a.dt, e: a.e, f: a.f, encoded: array.Slice(a.encoded, start, stop).(*array.PrimitiveArray), patchIndices: lo, patchValues: hi, st: stats.New()}
}

func (a *ALPArray) decode(i int) float64 {
	v := array.ScalarAt(a.encoded, i).AsInt()
	return float64(v) * pow10At(int(a.e)-int(a.f))
}

func (a *ALPArray) patchAt(i int) (scalar.Scalar, bool) {
	if a.patchIndices == nil || a.patchIndices.Len() == 0 {
		return scalar.Scalar{}, false
	}
	n := a.patchIndices.Len()
	k := sort.Search(n, func(j int) bool { return int(array.ScalarAt(a.patchIndices, j).AsUint()) >= i })
	if k < n && int(array.ScalarAt(a.patchIndices, k).AsUint()) == i {
		return array.ScalarAt(a.patchValues, k), true
	}
	return scalar.Scalar{}, false
}

func (a *ALPArray) ScalarAt(i int) scalar.Scalar {
	if !a.encoded.IsValid(i) {
		return scalar.Null(a.dt)
	}
	if v, ok := a.patchAt(i); ok {
		return v
	}
	return scalar.FromFloat(a.dt.PType(), a.decode(i), a.dt.Nullable())
}

func (a *ALPArray) Canonicalize() array.CanonicalArray {
	n := a.Len()
	values := make([]scalar.Scalar, n)
	for i := 0; i < n; i++ {
		values[i] = a.ScalarAt(i)
	}
	return array.FromScalars(a.dt, values)
}

func (a *ALPArray) VisitBuffers(v func(name string, bytes []byte)) {}
func (a *ALPArray) VisitChildren(v func(name string, child array.Array)) {
	v("encoded", a.encoded)
	if a.patchIndices != nil {
		v("patch_indices", a.patchIndices)
		v("patch_values", a.patchValues)
	}
}
func (a *ALPArray) WithChildren(children []array.Array) array.Array {
	out := *a
	out.encoded = children[0].(*array.PrimitiveArray)
	if len(children) >= 3 {
		out.patchIndices = children[1].(*array.PrimitiveArray)
		out.patchValues = children[2].(*array.PrimitiveArray)
	}
	return &out
}

// ComputeFastPath implements between's in-domain kernel: encode lo/hi
// into the integer domain once and delegate to the encoded child,
// declining whenever patches are present (spec.md §4.2, "ALP").
func (a *ALPArray) ComputeFastPath(fn string, args []any) (any, bool) {
	if fn != compute.FnBetween || (a.patchIndices != nil && a.patchIndices.Len() > 0) {
		return nil, false
	}
	lo, ok := args[1].(scalar.Scalar)
	if !ok {
		return nil, false
	}
	hi, ok := args[2].(scalar.Scalar)
	if !ok {
		return nil, false
	}
	loBound, ok := args[3].(compute.BoundKind)
	if !ok {
		return nil, false
	}
	hiBound, ok := args[4].(compute.BoundKind)
	if !ok {
		return nil, false
	}
	scale := pow10At(int(a.f) - int(a.e))
	loInt := scalar.FromInt(a.encoded.DType().PType(), int64(lo.AsFloat()*scale), false)
	hiInt := scalar.FromInt(a.encoded.DType().PType(), int64(hi.AsFloat()*scale), false)
	ctx := array.NewContext()
	out, err := compute.Between(ctx, a.encoded, loInt, hiInt, loBound, hiBound)
	if err != nil {
		return nil, false
	}
	return out, true
}

func init() {
	array.DefaultRegistry.Register(array.EncodingALP, "alp", func(dt dtype.DType, length int, metadata []byte, segments [][]byte, children []array.Array) (array.Array, error) {
		var e, f uint8
		if len(metadata) >= 2 {
			e, f = metadata[0], metadata[1]
		}
		var patchIndices, patchValues *array.PrimitiveArray
		if len(children) >= 3 {
			patchIndices = children[1].(*array.PrimitiveArray)
			patchValues = children[2].(*array.PrimitiveArray)
		}
		return NewALP(dt, e, f, children[0].(*array.PrimitiveArray), patchIndices, patchValues), nil
	})
}

// Metadata implements array.Serde: the (e, f) exponent pair.
func (a *ALPArray) Metadata() []byte { return []byte{a.e, a.f} }

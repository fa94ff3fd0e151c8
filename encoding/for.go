// Package encoding implements the compressed encoding catalog (spec.md
// §4.2): each type is a separate array kind registered into
// array.DefaultRegistry for serde. Where the spec calls out an in-domain
// kernel, the type's ComputeFastPath method supplies it.
package encoding

import (
	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/compute"
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/mask"
	"github.com/deepteams/vortex/scalar"
	"github.com/deepteams/vortex/stats"
)

// ForArray is Frame-of-Reference (spec.md §4.2, "FoR"): an unsigned
// `encoded` child plus a `reference` scalar, decode(v) = v + reference
// (wrapping). Nulls are stored as 0 in the encoded child; the ForArray's
// validity is read from the encoded child.
type ForArray struct {
	dt        dtype.DType
	reference scalar.Scalar
	encoded   *array.PrimitiveArray
	st        *stats.StatsSet
}

// NewFoR constructs a ForArray. encoded's ptype must be the unsigned
// equivalent of dt's ptype.
func NewFoR(dt dtype.DType, reference scalar.Scalar, encoded *array.PrimitiveArray) *ForArray {
	return &ForArray{dt: dt, reference: reference, encoded: encoded, st: stats.New()}
}

func (a *ForArray) Len() int               { return a.encoded.Len() }
func (a *ForArray) DType() dtype.DType     { return a.dt }
func (a *ForArray) Encoding() array.EncodingID { return array.EncodingFoR }
func (a *ForArray) EncodingName() array.Name   { return "for" }
func (a *ForArray) Stats() *stats.StatsSet { return a.st }

func (a *ForArray) IsValid(i int) bool      { return a.encoded.IsValid(i) }
func (a *ForArray) AllValid() bool          { return a.encoded.AllValid() }
func (a *ForArray) AllInvalid() bool        { return a.encoded.AllInvalid() }
func (a *ForArray) ValidityMask() mask.Mask { return a.encoded.ValidityMask() }

func (a *ForArray) Slice(start, stop int) array.Array {
	return NewFoR(a.dt, a.reference, array.Slice(a.encoded, start, stop).(*array.PrimitiveArray))
}

func (a *ForArray) ScalarAt(i int) scalar.Scalar {
	if !a.encoded.IsValid(i) {
		return scalar.Null(a.dt)
	}
	return decodeFoR(a.dt, a.reference, array.ScalarAt(a.encoded, i))
}

func decodeFoR(dt dtype.DType, reference, encoded scalar.Scalar) scalar.Scalar {
	p := dt.PType()
	if p.IsFloat() {
		return scalar.FromFloat(p, reference.AsFloat()+encoded.AsFloat(), dt.Nullable())
	}
	// wrapping add in the unsigned domain, then reinterpret as the signed
	// result ptype (spec.md §4.2: "decode(v) = v.wrapping_add(reference)").
	sum := uint64(reference.AsInt()) + uint64(encoded.AsInt())
	return scalar.FromInt(p, int64(sum), dt.Nullable())
}

func (a *ForArray) Canonicalize() array.CanonicalArray {
	n := a.Len()
	values := make([]scalar.Scalar, n)
	for i := 0; i < n; i++ {
		values[i] = a.ScalarAt(i)
	}
	return array.FromScalars(a.dt, values)
}

func (a *ForArray) VisitBuffers(v func(name string, bytes []byte)) {}
func (a *ForArray) VisitChildren(v func(name string, child array.Array)) {
	v("encoded", a.encoded)
}
func (a *ForArray) WithChildren(children []array.Array) array.Array {
	return NewFoR(a.dt, a.reference, children[0].(*array.PrimitiveArray))
}

// ComputeFastPath implements compute's encoding-defined fast path seam:
// compare(Eq/NotEq, const) subtracts the reference (wrapping) and
// dispatches on the encoded child; ordered comparisons decline since
// wrapping comparisons are subtle (spec.md §4.2, "FoR" kernels).
func (a *ForArray) ComputeFastPath(fn string, args []any) (any, bool) {
	if fn != compute.FnCompare {
		return nil, false
	}
	rhs, ok := args[1].(scalar.Scalar)
	if !ok || rhs.IsNull() {
		return nil, false
	}
	op, ok := args[2].(compute.Operator)
	if !ok || (op != compute.Eq && op != compute.NotEq) {
		return nil, false
	}
	p := a.dt.PType()
	var shifted uint64
	if p.IsFloat() {
		return nil, false // wrapping subtraction is integer-only
	}
	shifted = uint64(rhs.AsInt()) - uint64(a.reference.AsInt())
	ctx := array.NewContext()
	out, err := compute.Compare(ctx, a.encoded, scalar.FromInt(p.UnsignedEquivalent(), int64(shifted), false), op)
	if err != nil {
		return nil, false
	}
	return out, true
}

func init() {
	array.DefaultRegistry.Register(array.EncodingFoR, "for", func(dt dtype.DType, length int, metadata []byte, segments [][]byte, children []array.Array) (array.Array, error) {
		ref, err := decodeForMetadata(dt, metadata)
		if err != nil {
			return nil, err
		}
		return NewFoR(dt, ref, children[0].(*array.PrimitiveArray)), nil
	})
}

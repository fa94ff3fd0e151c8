package compute

import (
	"fmt"

	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/internal/verrors"
	"github.com/deepteams/vortex/scalar"
)

// FnCast is the canonical name kernels register under for Cast.
const FnCast = "cast"

// Cast converts a to dtype to, following the numeric-widening and
// nullability-relaxation rules a reader relies on when a column's
// on-disk dtype differs from its requested projection dtype. Declines
// (returns a verrors.MismatchedTypes error) for float-to-integer casts and
// casts to a narrower integer width, which could lose information silently.
func Cast(ctx *array.Context, a array.Array, to dtype.DType) (array.Array, error) {
	if result, err := Invoke(ctx.Registry, FnCast, []any{a, to}); err == nil {
		return result.(array.Array), nil
	}
	from := a.DType()
	if from.EqualIgnoringNullability(to) {
		return castNullability(a, to), nil
	}
	if !from.IsNumeric() || !to.IsNumeric() || from.Kind() != dtype.KindPrimitive || to.Kind() != dtype.KindPrimitive {
		return nil, verrors.New("cast", verrors.MismatchedTypes, fmt.Errorf("cannot cast %s to %s", from, to))
	}
	if !to.PType().IsFloat() && (from.PType().IsFloat() || to.PType().ByteWidth() < from.PType().ByteWidth()) {
		return nil, verrors.New("cast", verrors.MismatchedTypes, fmt.Errorf("cast %s to %s may lose information", from, to))
	}
	c := array.Canonicalize(a)
	n := c.Len()
	values := make([]scalar.Scalar, n)
	for i := 0; i < n; i++ {
		if !array.IsValid(c, i) {
			values[i] = scalar.Null(to)
			continue
		}
		v := array.ScalarAt(c, i)
		values[i] = castScalar(v, to)
	}
	return array.FromScalars(to, values), nil
}

func castScalar(v scalar.Scalar, to dtype.DType) scalar.Scalar {
	p := to.PType()
	if p.IsFloat() {
		var f float64
		if v.DType().PType().IsFloat() {
			f = v.AsFloat()
		} else {
			f = float64(v.AsInt())
		}
		return scalar.FromFloat(p, f, to.Nullable())
	}
	var i int64
	if v.DType().PType().IsFloat() {
		i = int64(v.AsFloat())
	} else {
		i = v.AsInt()
	}
	return scalar.FromInt(p, i, to.Nullable())
}

func castNullability(a array.Array, to dtype.DType) array.Array {
	if a.DType().Nullable() == to.Nullable() {
		return a
	}
	c := array.Canonicalize(a)
	n := c.Len()
	values := make([]scalar.Scalar, n)
	for i := 0; i < n; i++ {
		values[i] = array.ScalarAt(c, i)
	}
	return array.FromScalars(to, values)
}

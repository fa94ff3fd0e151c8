package compute

import (
	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/scalar"
	"github.com/deepteams/vortex/stats"
)

// FnSum is the canonical name kernels register under for Sum.
const FnSum = "sum"

// Sum reduces a's non-null rows, returning a null scalar if every row is
// null. Numeric dtypes only.
func Sum(ctx *array.Context, a array.Array) (scalar.Scalar, error) {
	if result, err := Invoke(ctx.Registry, FnSum, []any{a}); err == nil {
		return result.(scalar.Scalar), nil
	}
	c := array.Canonicalize(a)
	dt := c.DType()
	if !dt.IsNumeric() {
		return scalar.Scalar{}, ErrDeclined
	}
	n := c.Len()
	anyValid := false
	if dt.Kind() == dtype.KindPrimitive && dt.PType().IsFloat() {
		var total float64
		for i := 0; i < n; i++ {
			if !array.IsValid(c, i) {
				continue
			}
			anyValid = true
			total += array.ScalarAt(c, i).AsFloat()
		}
		if !anyValid {
			return scalar.Null(dt), nil
		}
		return scalar.FromFloat(dt.PType(), total, dt.Nullable()), nil
	}
	var total int64
	for i := 0; i < n; i++ {
		if !array.IsValid(c, i) {
			continue
		}
		anyValid = true
		total += array.ScalarAt(c, i).AsInt()
	}
	if !anyValid {
		return scalar.Null(dt), nil
	}
	return scalar.FromInt(dt.PType(), total, dt.Nullable()), nil
}

// FnMinMax is the canonical name kernels register under for MinMax.
const FnMinMax = "min_max"

type minMaxResult struct {
	min, max scalar.Scalar
}

// MinMax returns the (min, max) of a's non-null rows, consulting and
// populating stats.Min/stats.Max.
func MinMax(ctx *array.Context, a array.Array) (min, max scalar.Scalar, err error) {
	if minV, ok := a.Stats().Get(stats.Min); ok {
		if maxV, ok2 := a.Stats().Get(stats.Max); ok2 {
			return minV.Scalar, maxV.Scalar, nil
		}
	}
	if result, err := Invoke(ctx.Registry, FnMinMax, []any{a}); err == nil {
		r := result.(minMaxResult)
		return r.min, r.max, nil
	}
	c := array.Canonicalize(a)
	n := c.Len()
	dt := c.DType()
	var mn, mx scalar.Scalar
	found := false
	for i := 0; i < n; i++ {
		if !array.IsValid(c, i) {
			continue
		}
		v := array.ScalarAt(c, i)
		if !found {
			mn, mx = v, v
			found = true
			continue
		}
		if scalar.Compare(v, mn) < 0 {
			mn = v
		}
		if scalar.Compare(v, mx) > 0 {
			mx = v
		}
	}
	if !found {
		mn, mx = scalar.Null(dt), scalar.Null(dt)
	}
	a.Stats().SetExact(stats.Min, mn)
	a.Stats().SetExact(stats.Max, mx)
	return mn, mx, nil
}

// FnIsConstant is the canonical name kernels register under for
// IsConstant.
const FnIsConstant = "is_constant"

// IsConstant reports whether every valid row of a holds the same value
// (nulls included in the comparison only against other nulls).
func IsConstant(ctx *array.Context, a array.Array) (bool, error) {
	if v, ok := a.Stats().Get(stats.IsConstant); ok {
		return v.Scalar.AsBool(), nil
	}
	if result, err := Invoke(ctx.Registry, FnIsConstant, []any{a}); err == nil {
		return result.(bool), nil
	}
	c := array.Canonicalize(a)
	n := c.Len()
	if n == 0 {
		return true, nil
	}
	first := array.ScalarAt(c, 0)
	isConst := true
	for i := 1; i < n; i++ {
		if !array.ScalarAt(c, i).Equal(first) {
			isConst = false
			break
		}
	}
	a.Stats().SetExact(stats.IsConstant, scalar.Bool(isConst, false))
	return isConst, nil
}

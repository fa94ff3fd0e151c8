package compute

import (
	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/mask"
	"github.com/deepteams/vortex/scalar"
	"github.com/deepteams/vortex/validity"
)

// FnBetween is the canonical name kernels register under for Between.
const FnBetween = "between"

// BoundKind controls whether Between's endpoints are inclusive.
type BoundKind uint8

const (
	Inclusive BoundKind = iota
	Exclusive
)

// Between returns a Bool array marking rows within [lo, hi] (or (lo, hi),
// etc., per loBound/hiBound). ALP's in-domain kernel encodes lo/hi once
// into the integer domain and delegates to the encoded child, declining
// whenever patches are present (spec.md §4.2, "ALP"); the fallback loops
// over canonical scalars.
func Between(ctx *array.Context, a array.Array, lo, hi scalar.Scalar, loBound, hiBound BoundKind) (array.Array, error) {
	if result, err := Invoke(ctx.Registry, FnBetween, []any{a, lo, hi, loBound, hiBound}); err == nil {
		return result.(array.Array), nil
	}
	c := array.Canonicalize(a)
	n := c.Len()
	bools := make([]bool, n)
	valid := make([]bool, n)
	for i := 0; i < n; i++ {
		if !array.IsValid(c, i) {
			continue
		}
		valid[i] = true
		v := array.ScalarAt(c, i)
		cmpLo := scalar.Compare(v, lo)
		cmpHi := scalar.Compare(v, hi)
		okLo := cmpLo > 0 || (cmpLo == 0 && loBound == Inclusive)
		okHi := cmpHi < 0 || (cmpHi == 0 && hiBound == Inclusive)
		bools[i] = okLo && okHi
	}
	return array.NewBool(mask.FromBools(bools), validity.FromMask(mask.FromBools(valid))), nil
}

package compute

import (
	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/mask"
	"github.com/deepteams/vortex/validity"
)

// FnNot is the canonical name kernels register under for boolean negation
// (spec.md §4.2, "RoaringBool": "invert operates directly on the
// bitmap").
const FnNot = "invert"

// Not returns a Bool array with every valid value negated.
func Not(ctx *array.Context, a array.Array) (array.Array, error) {
	if result, err := Invoke(ctx.Registry, FnNot, []any{a}); err == nil {
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
		bools[i] = !array.ScalarAt(c, i).AsBool()
	}
	return array.NewBool(mask.FromBools(bools), validity.FromMask(mask.FromBools(valid))), nil
}

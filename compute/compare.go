package compute

import (
	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/mask"
	"github.com/deepteams/vortex/scalar"
	"github.com/deepteams/vortex/validity"
)

// FnCompare is the canonical name kernels register under for Compare.
const FnCompare = "compare"

// Compare evaluates op between every row of a and a constant rhs,
// returning a Bool array (spec.md §4.1, compute function "compare").
// Registered kernels run first, then the encoding's ComputeFastPath (e.g.
// Dict, FoR, FSST); the canonical fallback decompresses and loops.
func Compare(ctx *array.Context, a array.Array, rhs scalar.Scalar, op Operator) (array.Array, error) {
	if result, err := Invoke(ctx.Registry, FnCompare, []any{a, rhs, op}); err == nil {
		return result.(array.Array), nil
	}
	return compareCanonical(array.Canonicalize(a), rhs, op), nil
}

func compareCanonical(c array.CanonicalArray, rhs scalar.Scalar, op Operator) array.Array {
	n := c.Len()
	bools := make([]bool, n)
	validBits := make([]bool, n)
	for i := 0; i < n; i++ {
		if !array.IsValid(c, i) || rhs.IsNull() {
			validBits[i] = false
			continue
		}
		validBits[i] = true
		bools[i] = op.apply(scalar.Compare(array.ScalarAt(c, i), rhs))
	}
	return array.NewBool(mask.FromBools(bools), validity.FromMask(mask.FromBools(validBits)))
}

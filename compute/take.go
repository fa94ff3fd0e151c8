package compute

import (
	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/scalar"
)

// FnTake is the canonical name kernels register under for Take.
const FnTake = "take"

// Take gathers rows of a at the given indices, in order, possibly with
// repeats (spec.md §4.1, "take"). Dict's fast path rewraps its codes and
// BitPacked's reads its packed bytes instead of decompressing; the
// fallback canonicalizes and gathers scalar-by-scalar.
func Take(ctx *array.Context, a array.Array, indices []int) (array.Array, error) {
	if result, err := Invoke(ctx.Registry, FnTake, []any{a, indices}); err == nil {
		return result.(array.Array), nil
	}
	c := array.Canonicalize(a)
	values := make([]scalar.Scalar, len(indices))
	for i, idx := range indices {
		values[i] = array.ScalarAt(c, idx)
	}
	return array.FromScalars(c.DType(), values), nil
}

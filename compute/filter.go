package compute

import (
	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/mask"
)

// FnFilter is the canonical name kernels register under for Filter.
const FnFilter = "filter"

// Filter selects the rows of a where m is true (spec.md §4.1, "filter").
// RunEnd's two-strategy selectivity switch and Dict's codes-rewrap both
// live in those encodings' ComputeFastPath methods; the fallback here is a generic
// canonicalize-then-slice-by-index, correct but not selectivity-aware.
func Filter(ctx *array.Context, a array.Array, m mask.Mask) (array.Array, error) {
	if result, err := Invoke(ctx.Registry, FnFilter, []any{a, m}); err == nil {
		return result.(array.Array), nil
	}
	idx := m.ToIndices()
	return Take(ctx, a, idx)
}

package compute

import (
	"sort"

	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/scalar"
	"github.com/deepteams/vortex/stats"
)

// FnSearchSorted is the canonical name kernels register under for
// SearchSorted.
const FnSearchSorted = "search_sorted"

// Side selects which edge SearchSorted returns on ties.
type Side uint8

const (
	Left Side = iota
	Right
)

// SearchSorted returns the insertion point for target in a, which must
// already be sorted ascending. No built-in encoding has a search_sorted
// kernel or fast path (BitPacked included), so unless a caller registers
// one the fallback binary-searches canonical scalars.
func SearchSorted(ctx *array.Context, a array.Array, target scalar.Scalar, side Side) (int, error) {
	if result, err := Invoke(ctx.Registry, FnSearchSorted, []any{a, target, side}); err == nil {
		return result.(int), nil
	}
	c := array.Canonicalize(a)
	n := c.Len()
	idx := sort.Search(n, func(i int) bool {
		cmp := scalar.Compare(array.ScalarAt(c, i), target)
		if side == Left {
			return cmp >= 0
		}
		return cmp > 0
	})
	return idx, nil
}

// FnIsSorted is the canonical name kernels register under for IsSorted.
const FnIsSorted = "is_sorted"

// IsSorted reports whether a's rows are non-decreasing (or, if strict,
// strictly increasing). Falls back to a canonical linear scan, caching
// the result in a's stats set under stats.IsSorted/IsStrictSorted.
func IsSorted(ctx *array.Context, a array.Array, strict bool) (bool, error) {
	if result, err := Invoke(ctx.Registry, FnIsSorted, []any{a, strict}); err == nil {
		return result.(bool), nil
	}
	stat := stats.IsSorted
	if strict {
		stat = stats.IsStrictSorted
	}
	if v, ok := a.Stats().Get(stat); ok && v.Precision == stats.Exact {
		return v.Scalar.AsBool(), nil
	}
	c := array.Canonicalize(a)
	n := c.Len()
	sorted := true
	for i := 1; i < n && sorted; i++ {
		if !array.IsValid(c, i-1) || !array.IsValid(c, i) {
			continue
		}
		cmp := scalar.Compare(array.ScalarAt(c, i-1), array.ScalarAt(c, i))
		if (strict && cmp >= 0) || (!strict && cmp > 0) {
			sorted = false
		}
	}
	a.Stats().SetExact(stat, scalar.Bool(sorted, false))
	return sorted, nil
}

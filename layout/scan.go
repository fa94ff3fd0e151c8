package layout

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/mask"
)

// DefaultScanConcurrency bounds how many row ranges a Scan evaluates at
// once, the same "bounded in-flight work" posture as the file package's
// IODriver (spec.md §5, "Shared-resource policy").
const DefaultScanConcurrency = 8

// ScanOptions configures Scan (spec.md §4.4, "scan algorithm").
type ScanOptions struct {
	// Filter, if non-nil, restricts output rows to those it matches;
	// ranges it can refute via Prune are skipped without being read.
	Filter *Predicate
	// RowMask, if set, further restricts rows independent of Filter
	// (e.g. a caller resuming a partially-consumed scan).
	RowMask mask.Mask
	// Concurrency bounds in-flight row ranges; DefaultScanConcurrency if 0.
	Concurrency int
}

// ScanResult pairs a row range with the array materialized for it. Row
// ranges that were fully pruned or fully filtered out do not appear.
type ScanResult struct {
	Range RowRange
	Array array.Array
}

// Scan executes the algorithm spec.md §4.4 describes: ask the layout for
// its natural split points, form non-overlapping ranges, then for each
// range — up to Concurrency in flight — prune, filter, and project,
// skipping ranges a step proves are empty (spec.md §4.4, "scan
// algorithm"). Results are returned in row order regardless of which
// goroutine finished first (spec.md §5, "Ordering guarantees").
func Scan(ctx context.Context, reader LayoutReader, root *Layout, opts ScanOptions) ([]ScanResult, error) {
	ranges := splitRanges(root.RowCount, reader.Splits())
	if opts.RowMask.Len() != 0 {
		ranges = intersectMask(ranges, opts.RowMask)
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultScanConcurrency
	}
	sem := semaphore.NewWeighted(int64(concurrency))
	results := make([]*ScanResult, len(ranges))

	g, gctx := errgroup.WithContext(ctx)
	for i, rr := range ranges {
		i, rr := i, rr
		if err := sem.Acquire(gctx, 1); err != nil {
			return nil, err
		}
		g.Go(func() error {
			defer sem.Release(1)
			res, err := scanRange(gctx, reader, rr, opts)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]ScanResult, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

func scanRange(ctx context.Context, reader LayoutReader, rr RowRange, opts ScanOptions) (*ScanResult, error) {
	if opts.Filter != nil {
		prune, err := reader.Prune(ctx, rr, opts.Filter)
		if err != nil {
			return nil, err
		}
		if prune == CanPrune {
			return nil, nil
		}
	}
	m, err := reader.Filter(ctx, rr, opts.Filter)
	if err != nil {
		return nil, err
	}
	if opts.RowMask.Len() != 0 {
		m = mask.And(m, opts.RowMask.Slice(rr.Start, rr.End))
	}
	if m.TrueCount() == 0 {
		return nil, nil
	}
	a, err := reader.Project(ctx, rr, m)
	if err != nil {
		return nil, err
	}
	return &ScanResult{Range: rr, Array: a}, nil
}

// splitRanges turns a (possibly unsorted, possibly duplicate-containing)
// list of interior split points into a contiguous list of
// [start,end) ranges covering [0, rowCount).
func splitRanges(rowCount int, interior []int) []RowRange {
	bounds := append([]int{0}, interior...)
	bounds = append(bounds, rowCount)
	sort.Ints(bounds)

	var ranges []RowRange
	prev := -1
	for _, b := range bounds {
		if b == prev {
			continue
		}
		if prev >= 0 {
			ranges = append(ranges, RowRange{Start: prev, End: b})
		}
		prev = b
	}
	return ranges
}

// intersectMask drops ranges in which the client mask selects no row, so
// a caller resuming a partial scan never pays to prune/project them.
// Kept ranges are not trimmed; scanRange removes the rows the mask
// excludes within them.
func intersectMask(ranges []RowRange, m mask.Mask) []RowRange {
	var out []RowRange
	for _, rr := range ranges {
		hasTrue := false
		for i := rr.Start; i < rr.End; i++ {
			if m.Value(i) {
				hasTrue = true
				break
			}
		}
		if hasTrue {
			out = append(out, rr)
		}
	}
	return out
}

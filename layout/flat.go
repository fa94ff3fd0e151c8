package layout

import (
	"context"
	"sync"

	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/compute"
	"github.com/deepteams/vortex/mask"
)

// flatReader implements LayoutReader over a single segment holding one
// self-describing encoded array (spec.md §4.4, "Flat"). The segment is
// fetched and decoded once, on first use, and cached: every subsequent
// Prune/Filter/Project slices the same in-memory array rather than
// re-fetching or re-decoding.
type flatReader struct {
	l  *Layout
	rc *readerContext

	once    sync.Once
	arr     array.Array
	loadErr error
}

func (r *flatReader) load(ctx context.Context) (array.Array, error) {
	r.once.Do(func() {
		segs, err := r.rc.fetch(ctx, r.l.Segment)
		if err != nil {
			r.loadErr = err
			return
		}
		r.arr, r.loadErr = DecodeArray(r.rc.actx.Registry, segs[r.l.Segment])
	})
	return r.arr, r.loadErr
}

func (r *flatReader) Prune(ctx context.Context, rr RowRange, pred *Predicate) (PruneKind, error) {
	if pred == nil {
		return CannotPrune, nil
	}
	a, err := r.load(ctx)
	if err != nil {
		return CannotPrune, err
	}
	sub := array.Slice(a, rr.Start, rr.End)
	return pred.PruneStats(sub.Stats()), nil
}

func (r *flatReader) Filter(ctx context.Context, rr RowRange, pred *Predicate) (mask.Mask, error) {
	a, err := r.load(ctx)
	if err != nil {
		return mask.Mask{}, err
	}
	sub := array.Slice(a, rr.Start, rr.End)
	if pred == nil {
		return mask.AllTrue(sub.Len()), nil
	}
	return pred.Evaluate(r.rc.actx, sub)
}

func (r *flatReader) Project(ctx context.Context, rr RowRange, m mask.Mask) (array.Array, error) {
	a, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	sub := array.Slice(a, rr.Start, rr.End)
	if m.TrueCount() == sub.Len() {
		return sub, nil
	}
	return compute.Filter(r.rc.actx, sub, m)
}

func (r *flatReader) Splits() []int { return nil }

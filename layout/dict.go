package layout

import (
	"context"
	"fmt"
	"sync"

	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/compute"
	"github.com/deepteams/vortex/encoding"
	"github.com/deepteams/vortex/mask"
)

// dictReader implements LayoutReader over a values child (read once and
// cached) and a codes child (spec.md §4.4, "Dict"). Values is typically
// far smaller than the full column, so it is fetched once regardless of
// how many row ranges a scan touches.
type dictReader struct {
	l      *Layout
	rc     *readerContext
	values LayoutReader
	codes  LayoutReader

	once      sync.Once
	valuesArr array.Array
	loadErr   error
}

func newDictReader(l *Layout, rc *readerContext) (*dictReader, error) {
	values, err := build(l.Values, rc)
	if err != nil {
		return nil, err
	}
	codes, err := build(l.Codes, rc)
	if err != nil {
		return nil, err
	}
	return &dictReader{l: l, rc: rc, values: values, codes: codes}, nil
}

func (r *dictReader) loadValues(ctx context.Context) (array.Array, error) {
	r.once.Do(func() {
		r.valuesArr, r.loadErr = r.values.Project(ctx, RowRange{Start: 0, End: r.l.Values.RowCount}, mask.AllTrue(r.l.Values.RowCount))
	})
	return r.valuesArr, r.loadErr
}

func (r *dictReader) materialize(ctx context.Context, rr RowRange) (*encoding.DictArray, error) {
	values, err := r.loadValues(ctx)
	if err != nil {
		return nil, err
	}
	codesArr, err := r.codes.Project(ctx, rr, mask.AllTrue(rr.Len()))
	if err != nil {
		return nil, err
	}
	codes, ok := array.Canonicalize(codesArr).(*array.PrimitiveArray)
	if !ok {
		return nil, fmt.Errorf("layout: dict codes child did not canonicalize to a primitive array")
	}
	return encoding.NewDict(codes, values), nil
}

func (r *dictReader) Prune(ctx context.Context, rr RowRange, pred *Predicate) (PruneKind, error) {
	if pred == nil {
		return CannotPrune, nil
	}
	values, err := r.loadValues(ctx)
	if err != nil {
		return CannotPrune, err
	}
	return pred.PruneStats(values.Stats()), nil
}

func (r *dictReader) Filter(ctx context.Context, rr RowRange, pred *Predicate) (mask.Mask, error) {
	if pred == nil {
		return mask.AllTrue(rr.Len()), nil
	}
	d, err := r.materialize(ctx, rr)
	if err != nil {
		return mask.Mask{}, err
	}
	return pred.Evaluate(r.rc.actx, d)
}

func (r *dictReader) Project(ctx context.Context, rr RowRange, m mask.Mask) (array.Array, error) {
	d, err := r.materialize(ctx, rr)
	if err != nil {
		return nil, err
	}
	if m.TrueCount() == d.Len() {
		return d, nil
	}
	return compute.Filter(r.rc.actx, d, m)
}

func (r *dictReader) Splits() []int { return r.codes.Splits() }

package layout

import (
	"context"

	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/mask"
	"github.com/deepteams/vortex/validity"
)

// columnReader implements LayoutReader over a Struct DType's fields, one
// child Layout per field (spec.md §4.4, "Column"). A predicate naming a
// single field is routed to that field's reader alone; pruning/filtering
// over multiple fields intersects each field's result.
type columnReader struct {
	l        *Layout
	rc       *readerContext
	children []LayoutReader
	fields   []string
}

func newColumnReader(l *Layout, rc *readerContext) (*columnReader, error) {
	children := make([]LayoutReader, len(l.Column))
	for i, c := range l.Column {
		cr, err := build(c, rc)
		if err != nil {
			return nil, err
		}
		children[i] = cr
	}
	names := make([]string, len(l.DT.Fields()))
	for i, f := range l.DT.Fields() {
		names[i] = f.Name
	}
	return &columnReader{l: l, rc: rc, children: children, fields: names}, nil
}

func (r *columnReader) fieldIndex(name string) int {
	for i, n := range r.fields {
		if n == name {
			return i
		}
	}
	return -1
}

func (r *columnReader) Prune(ctx context.Context, rr RowRange, pred *Predicate) (PruneKind, error) {
	if pred == nil {
		return CannotPrune, nil
	}
	if pred.isLeaf() {
		idx := r.fieldIndex(pred.Field)
		if idx < 0 {
			return CannotPrune, nil
		}
		return r.children[idx].Prune(ctx, rr, pred)
	}
	for _, sub := range pred.And {
		k, err := r.Prune(ctx, rr, sub)
		if err != nil {
			return CannotPrune, err
		}
		if k == CanPrune {
			return CanPrune, nil
		}
	}
	return CannotPrune, nil
}

func (r *columnReader) Filter(ctx context.Context, rr RowRange, pred *Predicate) (mask.Mask, error) {
	if pred == nil {
		return mask.AllTrue(rr.Len()), nil
	}
	if pred.isLeaf() {
		idx := r.fieldIndex(pred.Field)
		if idx < 0 {
			return mask.AllFalse(rr.Len()), nil
		}
		return r.children[idx].Filter(ctx, rr, pred)
	}
	m := mask.AllTrue(rr.Len())
	for _, sub := range pred.And {
		sm, err := r.Filter(ctx, rr, sub)
		if err != nil {
			return mask.Mask{}, err
		}
		m = andMasks(m, sm)
	}
	return m, nil
}

// Project materializes every field (column pruning by projected-field-set
// is a caller-side concern layered on top of Scan, not modeled here) and
// assembles a StructArray.
func (r *columnReader) Project(ctx context.Context, rr RowRange, m mask.Mask) (array.Array, error) {
	children := make([]array.Array, len(r.children))
	for i, cr := range r.children {
		a, err := cr.Project(ctx, rr, m)
		if err != nil {
			return nil, err
		}
		children[i] = a
	}
	n := m.TrueCount()
	return array.NewStruct(r.l.DT, children, validity.AllValid(n)), nil
}

func (r *columnReader) Splits() []int {
	var splits []int
	seen := make(map[int]bool)
	for _, c := range r.children {
		for _, s := range c.Splits() {
			if !seen[s] {
				seen[s] = true
				splits = append(splits, s)
			}
		}
	}
	return splits
}

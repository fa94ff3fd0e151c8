package layout

import (
	"context"
	"sync"

	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/mask"
	"github.com/deepteams/vortex/stats"
)

// zonedReader implements LayoutReader over a data child plus a zones
// child holding one stats row per fixed-size block (spec.md §4.4,
// "Stats/Zoned"). Pruning consults zones; filtering and projection
// delegate straight to data, since zones exists purely to let pruning
// skip blocks without ever materializing data's segments.
type zonedReader struct {
	l     *Layout
	rc    *readerContext
	data  LayoutReader
	zones LayoutReader

	once      sync.Once
	zonesArr  array.Array
	loadZones error
}

func newZonedReader(l *Layout, rc *readerContext) (*zonedReader, error) {
	data, err := build(l.Data, rc)
	if err != nil {
		return nil, err
	}
	zones, err := build(l.Zones, rc)
	if err != nil {
		return nil, err
	}
	return &zonedReader{l: l, rc: rc, data: data, zones: zones}, nil
}

func (r *zonedReader) loadZoneStats(ctx context.Context) (array.Array, error) {
	r.once.Do(func() {
		r.zonesArr, r.loadZones = r.zones.Project(ctx, RowRange{Start: 0, End: r.l.Zones.RowCount}, mask.AllTrue(r.l.Zones.RowCount))
	})
	return r.zonesArr, r.loadZones
}

// blockRange returns the [start, end] (both inclusive) zone-block indices
// overlapping rr.
func (r *zonedReader) blockRange(rr RowRange) (int, int) {
	start := rr.Start / r.l.ZoneLen
	end := (rr.End - 1) / r.l.ZoneLen
	return start, end
}

func (r *zonedReader) Prune(ctx context.Context, rr RowRange, pred *Predicate) (PruneKind, error) {
	if pred == nil {
		return CannotPrune, nil
	}
	zones, err := r.loadZoneStats(ctx)
	if err != nil {
		return CannotPrune, err
	}
	startBlock, endBlock := r.blockRange(rr)
	for b := startBlock; b <= endBlock; b++ {
		st := zoneStatsAt(zones, b)
		if pred.PruneStats(st) != CanPrune {
			return CannotPrune, nil
		}
	}
	return CanPrune, nil
}

// zoneStatsAt builds an ad-hoc StatsSet from the zones StructArray's
// min/max fields at block index b, for use by Predicate.PruneStats.
func zoneStatsAt(zones array.Array, b int) *stats.StatsSet {
	st := stats.New()
	sa, ok := array.Canonicalize(zones).(*array.StructArray)
	if !ok {
		return st
	}
	if minField := sa.Field("min"); minField != nil {
		st.SetExact(stats.Min, array.ScalarAt(minField, b))
	}
	if maxField := sa.Field("max"); maxField != nil {
		st.SetExact(stats.Max, array.ScalarAt(maxField, b))
	}
	return st
}

func (r *zonedReader) Filter(ctx context.Context, rr RowRange, pred *Predicate) (mask.Mask, error) {
	return r.data.Filter(ctx, rr, pred)
}

func (r *zonedReader) Project(ctx context.Context, rr RowRange, m mask.Mask) (array.Array, error) {
	return r.data.Project(ctx, rr, m)
}

func (r *zonedReader) Splits() []int {
	splits := make([]int, 0, r.l.RowCount/r.l.ZoneLen)
	for i := r.l.ZoneLen; i < r.l.RowCount; i += r.l.ZoneLen {
		splits = append(splits, i)
	}
	return append(splits, r.data.Splits()...)
}

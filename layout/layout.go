package layout

import (
	"context"
	"fmt"

	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/internal/telemetry"
	"github.com/deepteams/vortex/mask"
)

// Kind discriminates the five built-in Layout variants (spec.md §4.4's
// Layout kinds table).
type Kind uint8

const (
	KindFlat Kind = iota
	KindChunked
	KindColumn
	KindZoned
	KindDict
)

func (k Kind) String() string {
	switch k {
	case KindFlat:
		return "flat"
	case KindChunked:
		return "chunked"
	case KindColumn:
		return "column"
	case KindZoned:
		return "zoned"
	case KindDict:
		return "dict"
	default:
		return "unknown"
	}
}

// Layout is one node of the tree describing how an array's rows are
// physically organized across the file's segments (spec.md §4.4). The
// tree is purely descriptive: building a LayoutReader over it is a
// separate step (Build), so the same tree can be read against different
// SegmentSources (e.g. a test's in-memory source vs. the real file
// reader's cache-backed one).
type Layout struct {
	Kind     Kind
	DT       dtype.DType
	RowCount int

	// Flat
	Segment SegmentID

	// Chunked: Children is one Layout per row-chunk, in order.
	// ChunkOffsets has len(Children)+1 entries, ChunkOffsets[0] == 0,
	// the row-count prefix sum (spec.md §4.4, "Chunked: chunk_offsets[]").
	ChunkOffsets []int

	// Column: one Layout per struct field, parallel to
	// DT.Fields().
	Column []*Layout

	// Zoned
	Data    *Layout
	Zones   *Layout // a Flat layout holding a StructArray of per-block stats
	ZoneLen int

	// Dict
	Values *Layout
	Codes  *Layout

	Children []*Layout // Chunked's row-chunks, parallel structure to ChunkOffsets
}

// NewFlat wraps a single segment holding one self-describing encoded
// array (spec.md §4.4, "Flat: 1 segment").
func NewFlat(dt dtype.DType, rowCount int, seg SegmentID) *Layout {
	return &Layout{Kind: KindFlat, DT: dt, RowCount: rowCount, Segment: seg}
}

// NewChunked assembles rowCount-ordered children into a Chunked layout,
// computing the chunk_offsets prefix sum (spec.md §4.4, "Chunked").
func NewChunked(dt dtype.DType, children []*Layout) *Layout {
	offsets := make([]int, len(children)+1)
	for i, c := range children {
		offsets[i+1] = offsets[i] + c.RowCount
	}
	return &Layout{Kind: KindChunked, DT: dt, RowCount: offsets[len(offsets)-1], ChunkOffsets: offsets, Children: children}
}

// NewColumn assembles one child Layout per struct field (spec.md §4.4,
// "Column: one child per struct field"). children must be parallel to
// dt.Fields().
func NewColumn(dt dtype.DType, children []*Layout) *Layout {
	rowCount := 0
	if len(children) > 0 {
		rowCount = children[0].RowCount
	}
	return &Layout{Kind: KindColumn, DT: dt, RowCount: rowCount, Column: children}
}

// NewZoned wraps data with a zones child holding per-block stats for
// pruning (spec.md §4.4, "Stats/Zoned"). zoneLen is the row count of
// every block except the last, which may be shorter.
func NewZoned(dt dtype.DType, data, zones *Layout, zoneLen int) *Layout {
	return &Layout{Kind: KindZoned, DT: dt, RowCount: data.RowCount, Data: data, Zones: zones, ZoneLen: zoneLen}
}

// NewDict wraps a values child (read once and cached) and a codes child
// (spec.md §4.4, "Dict").
func NewDict(dt dtype.DType, values, codes *Layout) *Layout {
	return &Layout{Kind: KindDict, DT: dt, RowCount: codes.RowCount, Values: values, Codes: codes}
}

// RowRange is a half-open [Start, End) range of logical row indices,
// always relative to the layout's own row numbering (spec.md §4.4,
// "scan... forms non-overlapping row ranges").
type RowRange struct {
	Start, End int
}

func (r RowRange) Len() int { return r.End - r.Start }

// LayoutReader is the behavior every Layout kind exposes once built
// against a SegmentSource (spec.md §4.4, "LayoutReader"). The spec's
// poll-based PollRead<Prune> protocol (needed by a single cooperative
// async runtime that cannot block) is collapsed here into plain blocking
// calls: Go's goroutines already let a blocked segment fetch yield the
// thread, so there is no cooperative-scheduling reason to surface a
// ReadMore(segment_ids) intermediate state to callers. Implementations
// fetch whatever segments they need directly from their SegmentSource.
type LayoutReader interface {
	// Prune reports whether every row in rr can be skipped without being
	// read, using whatever stats this layout subtree carries (spec.md
	// §4.4, "pruning_evaluation").
	Prune(ctx context.Context, rr RowRange, pred *Predicate) (PruneKind, error)
	// Filter evaluates pred over rr, materializing only what's needed to
	// produce the Mask (spec.md §4.4, "filter_evaluation").
	Filter(ctx context.Context, rr RowRange, pred *Predicate) (mask.Mask, error)
	// Project reads rr restricted to m, producing the output array
	// (spec.md §4.4, "projection_evaluation").
	Project(ctx context.Context, rr RowRange, m mask.Mask) (array.Array, error)
	// Splits returns this subtree's natural row-range split points
	// (spec.md §4.4, "register_splits"), e.g. a Chunked layout's chunk
	// boundaries, so the scan algorithm can schedule ranges that align
	// with physical chunk/zone boundaries instead of reading across them.
	Splits() []int
}

// readerContext bundles what every concrete reader needs to resolve segments
// and run compute kernels, threaded explicitly rather than via package
// globals (spec.md §9; SPEC_FULL §10).
type readerContext struct {
	source SegmentSource
	actx   *array.Context
	log    *telemetry.Logger
}

// Build constructs a LayoutReader for l backed by src, dispatching on
// l.Kind. actx supplies the encoding registry and compute kernels; if
// actx is nil, array.NewContext() is used.
func Build(l *Layout, src SegmentSource, actx *array.Context) (LayoutReader, error) {
	if actx == nil {
		actx = array.NewContext()
	}
	rc := &readerContext{source: src, actx: actx, log: actx.Logger}
	return build(l, rc)
}

func build(l *Layout, rc *readerContext) (LayoutReader, error) {
	switch l.Kind {
	case KindFlat:
		return &flatReader{l: l, rc: rc}, nil
	case KindChunked:
		return newChunkedReader(l, rc)
	case KindColumn:
		return newColumnReader(l, rc)
	case KindZoned:
		return newZonedReader(l, rc)
	case KindDict:
		return newDictReader(l, rc)
	default:
		return nil, fmt.Errorf("layout: unknown layout kind %d", l.Kind)
	}
}

func (rc *readerContext) fetch(ctx context.Context, ids ...SegmentID) (map[SegmentID][]byte, error) {
	return rc.source.Request(ctx, ids)
}

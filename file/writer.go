package file

import (
	"io"

	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/internal/telemetry"
	"github.com/deepteams/vortex/layout"
)

// DefaultChunkRows is the row-chunk size a LayoutStrategy splits a leaf
// column into (spec.md §4.4, "Chunked: child layouts, one per row range").
const DefaultChunkRows = 64 * 1024

// VortexWriteOptions configures Writer (spec.md §6, "VortexWriteOptions").
type VortexWriteOptions struct {
	// ChunkRows overrides DefaultChunkRows.
	ChunkRows int
	// SegmentAlignment is recorded in each segment map entry's alignment
	// field (log2 bytes); callers that memory-map segments may want this
	// non-zero. Defaults to 0 (no alignment requirement).
	SegmentAlignment uint8
	Logger           *telemetry.Logger
	Metrics          *telemetry.Metrics
}

// Writer accumulates segments and a Layout tree for one Vortex file and
// flushes them, followed by the schema segment, layout segment,
// postscript, and EOF trailer, on Close (spec.md §4.4 "writer").
type Writer struct {
	w         io.Writer
	chunkRows int
	alignment uint8
	logger    *telemetry.Logger
	metrics   *telemetry.Metrics

	offset   uint64
	segments []SegmentMapEntry
	nextSeg  layout.SegmentID
}

// NewWriter returns a Writer that appends to w starting at the current
// write position (w must be positioned at offset 0 of a new file).
func NewWriter(w io.Writer, opts VortexWriteOptions) *Writer {
	chunkRows := opts.ChunkRows
	if chunkRows <= 0 {
		chunkRows = DefaultChunkRows
	}
	logger := opts.Logger
	if logger == nil {
		logger = telemetry.Nop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = telemetry.NopMetrics()
	}
	return &Writer{w: w, chunkRows: chunkRows, alignment: opts.SegmentAlignment, logger: logger, metrics: metrics}
}

// WriteArray lays out a (applying the default chunked/column/flat
// strategy recursively over its dtype) and writes every resulting
// segment to the underlying writer, returning the root Layout. Call
// Close afterward to write the footer.
func (w *Writer) WriteArray(a array.Array) (*layout.Layout, error) {
	return w.layoutFor(a)
}

// Close writes the schema segment, layout segment, postscript, and EOF
// trailer for root (spec.md §4.4, end-of-stream sequence).
func (w *Writer) Close(schema dtype.DType, root *layout.Layout) error {
	_, err := WriteFooter(w.w, w.offset, Footer{Schema: schema, Root: root, Segments: w.segments})
	return err
}

// layoutFor picks a layout for a per spec.md §4.4's default strategy:
// Struct arrays become Column (one child layout per field, sharing row
// count), everything else becomes Chunked-of-Flat (or a bare Flat when
// it already fits in one chunk).
func (w *Writer) layoutFor(a array.Array) (*layout.Layout, error) {
	if sa, ok := array.Canonicalize(a).(*array.StructArray); ok {
		return w.layoutForStruct(sa)
	}
	return w.layoutForLeaf(a)
}

func (w *Writer) layoutForStruct(sa *array.StructArray) (*layout.Layout, error) {
	fields := sa.DType().Fields()
	children := make([]*layout.Layout, len(fields))
	for i, f := range fields {
		child := sa.Field(f.Name)
		l, err := w.layoutFor(child)
		if err != nil {
			return nil, err
		}
		children[i] = l
	}
	return layout.NewColumn(sa.DType(), children), nil
}

func (w *Writer) layoutForLeaf(a array.Array) (*layout.Layout, error) {
	n := a.Len()
	if n <= w.chunkRows {
		return w.writeFlat(a)
	}
	var chunks []*layout.Layout
	for start := 0; start < n; start += w.chunkRows {
		end := start + w.chunkRows
		if end > n {
			end = n
		}
		sub := array.Slice(a, start, end)
		l, err := w.writeFlat(sub)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, l)
	}
	return layout.NewChunked(a.DType(), chunks), nil
}

func (w *Writer) writeFlat(a array.Array) (*layout.Layout, error) {
	data := layout.EncodeArray(a)
	id := w.nextSeg
	w.nextSeg++
	w.segments = append(w.segments, SegmentMapEntry{Offset: w.offset, Length: uint32(len(data)), Alignment: w.alignment})
	if _, err := w.w.Write(data); err != nil {
		return nil, err
	}
	w.offset += uint64(len(data))
	return layout.NewFlat(a.DType(), a.Len(), id), nil
}

package vortex

import (
	"context"
	"io"

	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/file"
	"github.com/deepteams/vortex/layout"
)

// OpenOptions is file.VortexOpenOptions, aliased so callers that only
// need the top-level package don't also have to import file.
type OpenOptions = file.VortexOpenOptions

// WriteOptions is file.VortexWriteOptions.
type WriteOptions = file.VortexWriteOptions

// ScanOptions is layout.ScanOptions.
type ScanOptions = layout.ScanOptions

// ScanResult is layout.ScanResult.
type ScanResult = layout.ScanResult

// Predicate is layout.Predicate.
type Predicate = layout.Predicate

// File is an opened Vortex file, ready to Scan.
type File = file.VortexFile

// Open opens r as a Vortex file: it reads the footer, wires a
// segment cache and IO driver, and builds the root LayoutReader, ready
// for Scan (spec.md §6, "Open").
func Open(ctx context.Context, r file.ReaderAtSizer, opts OpenOptions) (*File, error) {
	return file.Open(ctx, r, opts)
}

// Scan runs the prune/filter/project scan algorithm over an opened
// file's root layout (spec.md §4.4, "scan algorithm").
func Scan(ctx context.Context, vf *File, opts ScanOptions) ([]ScanResult, error) {
	return layout.Scan(ctx, vf.Reader, vf.Root, opts)
}

// Writer accumulates one Vortex file's segments and layout tree.
type Writer struct {
	w *file.Writer
}

// NewWriter returns a Writer appending to w, which must be positioned
// at the start of a new file.
func NewWriter(w io.Writer, opts WriteOptions) *Writer {
	return &Writer{w: file.NewWriter(w, opts)}
}

// WriteArray lays out a using the default Struct-to-Column,
// leaf-to-Chunked-of-Flat strategy and writes its segments.
func (wr *Writer) WriteArray(a array.Array) (*layout.Layout, error) {
	return wr.w.WriteArray(a)
}

// Close writes the schema segment, layout segment, postscript, and EOF
// trailer for root, the layout WriteArray returned.
func (wr *Writer) Close(schema dtype.DType, root *layout.Layout) error {
	return wr.w.Close(schema, root)
}

// Eq, Compare, And build Predicates for Scan's Filter option.
var (
	Eq      = layout.Eq
	Compare = layout.Compare
	And     = layout.And
)

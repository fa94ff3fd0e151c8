package file

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/internal/telemetry"
	"github.com/deepteams/vortex/internal/verrors"
	"github.com/deepteams/vortex/layout"
)

// VortexOpenOptions configures Open (spec.md §6, "VortexOpenOptions").
type VortexOpenOptions struct {
	// InitialReadBytes overrides DefaultInitialReadBytes.
	InitialReadBytes int
	// SegmentCacheBytes overrides DefaultSegmentCacheBytes.
	SegmentCacheBytes int64
	// IOConcurrency overrides DefaultIODriverConcurrency.
	IOConcurrency int
	// IOBytesPerSecond, if > 0, throttles segment reads.
	IOBytesPerSecond int
	// Registry resolves encoding ids while decoding Flat-layout segments;
	// array.DefaultRegistry if nil.
	Registry *array.Registry
	// Logger receives structured diagnostics for this file's lifetime;
	// telemetry.Nop() if nil.
	Logger *telemetry.Logger
	// Metrics records cache/IO counters; a no-op sink if nil.
	Metrics *telemetry.Metrics
}

// ReaderAtSizer is the minimal handle Open needs on the backing file: a
// way to read byte ranges and to learn its total size.
type ReaderAtSizer interface {
	io.ReaderAt
	Size() (int64, error)
}

// VortexFile is an opened Vortex file: its schema, its root LayoutReader,
// and a correlation id for diagnostics, generated fresh on every open.
type VortexFile struct {
	ID     uuid.UUID
	Schema dtype.DType
	Root   *layout.Layout
	Reader layout.LayoutReader
	cache  *SegmentCache
	logger *telemetry.Logger
}

// Open implements spec.md §6's Open() sequence: read the file's last
// InitialReadBytes, parse the EOF trailer and postscript from that
// window, decode the schema and layout segments, and wire a
// cache-backed SegmentSource plus the root LayoutReader.
func Open(ctx context.Context, r ReaderAtSizer, opts VortexOpenOptions) (*VortexFile, error) {
	size, err := r.Size()
	if err != nil {
		return nil, err
	}

	initialReadBytes := opts.InitialReadBytes
	if initialReadBytes <= 0 {
		initialReadBytes = DefaultInitialReadBytes
	}
	tailBase := int64(0)
	if size > int64(initialReadBytes) {
		tailBase = size - int64(initialReadBytes)
	}
	tail := make([]byte, size-tailBase)
	if _, err := r.ReadAt(tail, tailBase); err != nil && err != io.EOF {
		return nil, verrors.New("file.Open", verrors.IOError, err)
	}

	footer, err := ParseFooter(tail, uint64(tailBase))
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = telemetry.Nop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = telemetry.NopMetrics()
	}

	driver := NewIODriver(r, IODriverOptions{Concurrency: opts.IOConcurrency, BytesPerSecond: opts.IOBytesPerSecond})
	locate := locateFunc(footer.Segments)
	initial := segmentsWithinTail(footer.Segments, tail, uint64(tailBase))
	cache, err := NewSegmentCache(driver, locate, initial, SegmentCacheOptions{MaxBytes: opts.SegmentCacheBytes, Metrics: metrics})
	if err != nil {
		return nil, err
	}

	registry := opts.Registry
	if registry == nil {
		registry = array.DefaultRegistry
	}
	actx := array.NewContext().WithLogger(logger)
	actx.Registry = registry

	reader, err := layout.Build(footer.Root, cache, actx)
	if err != nil {
		return nil, err
	}

	logger.Info("opened vortex file", telemetry.Bytes("size", size), telemetry.Bytes("footer_bytes", int64(len(tail))))

	return &VortexFile{
		ID:     uuid.New(),
		Schema: footer.Schema,
		Root:   footer.Root,
		Reader: reader,
		cache:  cache,
		logger: logger,
	}, nil
}

// Close releases resources held by the file's segment cache.
func (f *VortexFile) Close() error {
	f.cache.Close()
	return nil
}

func locateFunc(entries []SegmentMapEntry) func(layout.SegmentID) (SegmentMapEntry, bool) {
	return func(id layout.SegmentID) (SegmentMapEntry, bool) {
		if int(id) < 0 || int(id) >= len(entries) {
			return SegmentMapEntry{}, false
		}
		return entries[id], true
	}
}

// segmentsWithinTail pre-populates the initial-read tier of the cache
// with any segment whose entire byte range already fell inside the
// tail window Open read speculatively, saving a round trip for small
// files and footer-adjacent segments (spec.md §6, "initial read buffer").
func segmentsWithinTail(entries []SegmentMapEntry, tail []byte, tailBase uint64) map[layout.SegmentID][]byte {
	out := make(map[layout.SegmentID][]byte)
	for i, e := range entries {
		if e.Offset < tailBase {
			continue
		}
		start := e.Offset - tailBase
		end := start + uint64(e.Length)
		if end > uint64(len(tail)) {
			continue
		}
		out[layout.SegmentID(i)] = tail[start:end]
	}
	return out
}

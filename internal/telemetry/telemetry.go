// Package telemetry centralizes structured logging and optional metrics
// for every Vortex subsystem (SPEC_FULL.md §10, "Ambient stack"): a
// *zap.Logger threaded explicitly through array.Context and
// file.VortexOpenOptions/VortexWriteOptions rather than a package-global
// logger, and a Metrics
// struct registered against a caller-supplied *prometheus.Registry,
// mirroring the teacher's gateway package (health.go, connection_pool.go)
// which holds *zap.Logger/*prometheus collectors as explicit struct
// fields rather than reaching for globals.
package telemetry

import (
	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Logger wraps *zap.Logger with the handful of fields Vortex subsystems
// log: Nop() is the default so library code never forces output on a
// caller that never wired one in.
type Logger struct {
	z *zap.Logger
}

// Nop returns a Logger that discards everything, the default carried by
// every *Context constructor in this module.
func Nop() *Logger { return &Logger{z: zap.NewNop()} }

// NewLogger wraps an existing *zap.Logger, e.g. zap.NewProduction()'s result.
func NewLogger(z *zap.Logger) *Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return &Logger{z: z}
}

// Bytes formats a byte count field the way log lines in this module
// render segment/cache sizes (e.g. "256 MB" rather than a raw integer),
// grounded on the teacher's own preference for human-facing log fields.
func Bytes(key string, n int64) zap.Field {
	return zap.String(key, humanize.Bytes(uint64(n)))
}

func (l *Logger) Debug(msg string, fields ...zap.Field) { l.z.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...zap.Field)  { l.z.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...zap.Field)  { l.z.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...zap.Field) { l.z.Error(msg, fields...) }

// With returns a Logger with fields attached to every subsequent entry.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{z: l.z.With(fields...)}
}

// Metrics is the optional instrumentation surface for the file-format
// scan/cache/compressor paths, registered against a caller-supplied
// *prometheus.Registry, never the global default (SPEC_FULL.md §10). A
// nil *Metrics is valid
// and every method becomes a no-op, so callers that don't supply a
// registry pay nothing.
type Metrics struct {
	segmentsRequested *prometheus.CounterVec
	cacheHits         prometheus.Counter
	cacheMisses       prometheus.Counter
	bytesRead         prometheus.Counter
	compressRatio     prometheus.Histogram
}

// NewMetrics registers Vortex's collectors against reg and returns a
// Metrics handle. reg must not be nil; use NopMetrics() when no registry
// was supplied.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		segmentsRequested: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vortex",
			Subsystem: "file",
			Name:      "segments_requested_total",
			Help:      "Segments requested from a SegmentSource, by source (initial_read, cache, io).",
		}, []string{"source"}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "vortex", Subsystem: "file", Name: "segment_cache_hits_total",
			Help: "Segment cache lookups served without I/O.",
		}),
		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "vortex", Subsystem: "file", Name: "segment_cache_misses_total",
			Help: "Segment cache lookups that required a read.",
		}),
		bytesRead: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "vortex", Subsystem: "file", Name: "bytes_read_total",
			Help: "Bytes fetched via VortexReadAt.",
		}),
		compressRatio: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "vortex", Subsystem: "compress", Name: "ratio",
			Help:    "uncompressed_size / compressed_size per sampling-compressor decision.",
			Buckets: prometheus.ExponentialBuckets(1, 1.5, 12),
		}),
	}
}

// NopMetrics returns a Metrics whose methods are safe no-ops, for callers
// that don't want Prometheus wired in at all.
func NopMetrics() *Metrics { return nil }

func (m *Metrics) SegmentRequested(source string) {
	if m == nil {
		return
	}
	m.segmentsRequested.WithLabelValues(source).Inc()
}

func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.cacheMisses.Inc()
}

func (m *Metrics) BytesRead(n int) {
	if m == nil {
		return
	}
	m.bytesRead.Add(float64(n))
}

func (m *Metrics) CompressRatio(ratio float64) {
	if m == nil {
		return
	}
	m.compressRatio.Observe(ratio)
}

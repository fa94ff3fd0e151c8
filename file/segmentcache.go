package file

import (
	"context"
	"sync"

	"github.com/dgraph-io/ristretto"

	"github.com/deepteams/vortex/internal/telemetry"
	"github.com/deepteams/vortex/layout"
)

// DefaultSegmentCacheBytes is VORTEX_SEGMENT_CACHE_BYTES' default
// (spec.md §6, "Configuration knobs").
const DefaultSegmentCacheBytes = 256 << 20

// DefaultInitialReadBytes is VORTEX_INITIAL_READ_BYTES' default: the
// size of the tail window Open reads speculatively, hoping it already
// covers the footer (spec.md §6, "Open(): read the last
// INITIAL_READ_SIZE bytes").
const DefaultInitialReadBytes = 1 << 20

// SegmentFetcher pulls the authoritative bytes for segments not already
// held by an initial read or the cache — normally an IODriver reading
// from the backing file.
type SegmentFetcher interface {
	Fetch(ctx context.Context, ids []layout.SegmentID, locate func(layout.SegmentID) (SegmentMapEntry, bool)) (map[layout.SegmentID][]byte, error)
}

// SegmentCache is a layout.SegmentSource layering two tiers in front of
// a SegmentFetcher: an initial-read window (bytes the Open call already
// has in memory, serviced for free) and a ristretto weighted-LFU cache
// for everything read afterward (spec.md §6, "segment cache" /
// "initial read buffer").
type SegmentCache struct {
	fetch   SegmentFetcher
	locate  func(layout.SegmentID) (SegmentMapEntry, bool)
	initial map[layout.SegmentID][]byte
	cache   *ristretto.Cache
	metrics *telemetry.Metrics

	mu sync.RWMutex
}

// SegmentCacheOptions configures NewSegmentCache.
type SegmentCacheOptions struct {
	// MaxBytes bounds the ristretto cache's weighted cost; defaults to
	// DefaultSegmentCacheBytes.
	MaxBytes int64
	Metrics  *telemetry.Metrics
}

// NewSegmentCache builds a SegmentCache. initial holds segments already
// materialized from the file's initial read window (may be nil/empty);
// locate maps a segment id to its offset/length within the file so
// fetch can be asked for exactly the missing bytes.
func NewSegmentCache(fetch SegmentFetcher, locate func(layout.SegmentID) (SegmentMapEntry, bool), initial map[layout.SegmentID][]byte, opts SegmentCacheOptions) (*SegmentCache, error) {
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultSegmentCacheBytes
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = telemetry.NopMetrics()
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxBytes / 10,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	if initial == nil {
		initial = map[layout.SegmentID][]byte{}
	}
	return &SegmentCache{fetch: fetch, locate: locate, initial: initial, cache: cache, metrics: metrics}, nil
}

// Request implements layout.SegmentSource, resolving ids against the
// initial window first, then the ristretto cache, then dispatching any
// remaining ids to the underlying fetcher and populating the cache with
// the result.
func (c *SegmentCache) Request(ctx context.Context, ids []layout.SegmentID) (map[layout.SegmentID][]byte, error) {
	out := make(map[layout.SegmentID][]byte, len(ids))
	var missing []layout.SegmentID

	for _, id := range ids {
		if b, ok := c.initial[id]; ok {
			c.metrics.SegmentRequested("initial_read")
			out[id] = b
			continue
		}
		c.mu.RLock()
		v, ok := c.cache.Get(id)
		c.mu.RUnlock()
		if ok {
			c.metrics.SegmentRequested("cache")
			c.metrics.CacheHit()
			out[id] = v.([]byte)
			continue
		}
		c.metrics.SegmentRequested("io")
		c.metrics.CacheMiss()
		missing = append(missing, id)
	}

	if len(missing) == 0 {
		return out, nil
	}

	fetched, err := c.fetch.Fetch(ctx, missing, c.locate)
	if err != nil {
		return nil, err
	}
	for id, b := range fetched {
		out[id] = b
		c.metrics.BytesRead(len(b))
		c.mu.Lock()
		c.cache.Set(id, b, int64(len(b)))
		c.mu.Unlock()
	}
	c.cache.Wait()
	return out, nil
}

// Close releases the cache's background goroutines.
func (c *SegmentCache) Close() { c.cache.Close() }

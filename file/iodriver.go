package file

import (
	"context"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/deepteams/vortex/layout"
)

// DefaultIODriverConcurrency bounds how many segment reads are in
// flight at once, the same posture as layout.DefaultScanConcurrency
// (spec.md §5, "Shared-resource policy").
const DefaultIODriverConcurrency = 8

// IODriver fetches segments from a backing io.ReaderAt, one ReadAt per
// requested segment, bounded to a fixed number in flight and optionally
// throttled by a token-bucket rate limiter (spec.md §6, "IO driver:
// bounded-concurrency coalescing segment reads").
type IODriver struct {
	r           io.ReaderAt
	concurrency int
	limiter     *rate.Limiter
}

// IODriverOptions configures NewIODriver.
type IODriverOptions struct {
	// Concurrency bounds in-flight reads; DefaultIODriverConcurrency if 0.
	Concurrency int
	// BytesPerSecond, if > 0, caps aggregate read throughput via a
	// token-bucket limiter (spec.md §6, "optional throughput cap").
	BytesPerSecond int
}

// NewIODriver builds an IODriver reading segment bytes from r.
func NewIODriver(r io.ReaderAt, opts IODriverOptions) *IODriver {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultIODriverConcurrency
	}
	var limiter *rate.Limiter
	if opts.BytesPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.BytesPerSecond), opts.BytesPerSecond)
	}
	return &IODriver{r: r, concurrency: concurrency, limiter: limiter}
}

// Fetch implements SegmentFetcher, resolving each id's location via
// locate and reading its bytes, up to Concurrency requests in flight.
func (d *IODriver) Fetch(ctx context.Context, ids []layout.SegmentID, locate func(layout.SegmentID) (SegmentMapEntry, bool)) (map[layout.SegmentID][]byte, error) {
	out := make(map[layout.SegmentID][]byte, len(ids))
	var mu sync.Mutex

	sem := semaphore.NewWeighted(int64(d.concurrency))
	g, gctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		id := id
		entry, ok := locate(id)
		if !ok {
			return nil, &layout.SegmentNotFoundError{ID: id}
		}
		if err := sem.Acquire(gctx, 1); err != nil {
			return nil, err
		}
		g.Go(func() error {
			defer sem.Release(1)
			if d.limiter != nil {
				if err := d.limiter.WaitN(gctx, int(entry.Length)); err != nil {
					return err
				}
			}
			buf := make([]byte, entry.Length)
			if _, err := d.r.ReadAt(buf, int64(entry.Offset)); err != nil && err != io.EOF {
				return fmt.Errorf("file: reading segment %d at offset %d: %w", id, entry.Offset, err)
			}
			mu.Lock()
			out[id] = buf
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

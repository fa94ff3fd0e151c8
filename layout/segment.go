package layout

import (
	"context"
	"fmt"
)

// SegmentID identifies one contiguous byte range within a Vortex file, as
// recorded in the on-disk segment map (spec.md §6, "segment_map[i] =
// {offset, length, alignment}"). The mapping from id to bytes is resolved
// by a SegmentSource, never by the layout tree itself.
type SegmentID uint32

// SegmentSource resolves segment ids to their bytes (spec.md §4.4,
// "SegmentSource / SegmentCache"). Implementations are expected to
// coalesce adjacent requests and cache results; see file.SegmentCache and
// file.IODriver for the on-disk-backed implementation. Request may be
// called concurrently by independent scan ranges.
type SegmentSource interface {
	Request(ctx context.Context, ids []SegmentID) (map[SegmentID][]byte, error)
}

// staticSource is a SegmentSource backed by an in-memory map, used by
// tests and by callers that already hold every segment resident.
type staticSource struct {
	segments map[SegmentID][]byte
}

// NewStaticSource returns a SegmentSource that serves only from segments,
// never performing I/O. Useful for tests and for small in-memory layouts.
func NewStaticSource(segments map[SegmentID][]byte) SegmentSource {
	return &staticSource{segments: segments}
}

func (s *staticSource) Request(_ context.Context, ids []SegmentID) (map[SegmentID][]byte, error) {
	out := make(map[SegmentID][]byte, len(ids))
	for _, id := range ids {
		b, ok := s.segments[id]
		if !ok {
			return nil, &SegmentNotFoundError{ID: id}
		}
		out[id] = b
	}
	return out, nil
}

// SegmentNotFoundError reports a SegmentSource that was asked for a
// segment id it doesn't carry.
type SegmentNotFoundError struct{ ID SegmentID }

func (e *SegmentNotFoundError) Error() string {
	return fmt.Sprintf("layout: segment %d not found", e.ID)
}

package layout

import (
	"context"

	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/mask"
)

// chunkedReader implements LayoutReader over N row-chunks (spec.md §4.4,
// "Chunked"). Each overlapping chunk is delegated to independently, so a
// chunk that Prune rules out is never filtered or projected (a Flat
// chunk's Prune still loads its segment to read its stats).
type chunkedReader struct {
	l        *Layout
	rc       *readerContext
	children []LayoutReader
}

func newChunkedReader(l *Layout, rc *readerContext) (*chunkedReader, error) {
	children := make([]LayoutReader, len(l.Children))
	for i, c := range l.Children {
		cr, err := build(c, rc)
		if err != nil {
			return nil, err
		}
		children[i] = cr
	}
	return &chunkedReader{l: l, rc: rc, children: children}, nil
}

// overlap returns, for chunks intersecting rr, the chunk index and the
// portion of rr expressed in that chunk's own local row numbering.
func (r *chunkedReader) overlap(rr RowRange) []struct {
	idx   int
	local RowRange
	// global is the [start,end) of this overlap in rr's own numbering,
	// used by Filter to place results into the combined mask.
	global RowRange
} {
	offsets := r.l.ChunkOffsets
	var out []struct {
		idx    int
		local  RowRange
		global RowRange
	}
	for i := 0; i+1 < len(offsets); i++ {
		chunkStart, chunkEnd := offsets[i], offsets[i+1]
		start := max(chunkStart, rr.Start)
		end := min(chunkEnd, rr.End)
		if start >= end {
			continue
		}
		out = append(out, struct {
			idx    int
			local  RowRange
			global RowRange
		}{
			idx:    i,
			local:  RowRange{Start: start - chunkStart, End: end - chunkStart},
			global: RowRange{Start: start - rr.Start, End: end - rr.Start},
		})
	}
	return out
}

func (r *chunkedReader) Prune(ctx context.Context, rr RowRange, pred *Predicate) (PruneKind, error) {
	if pred == nil {
		return CannotPrune, nil
	}
	for _, o := range r.overlap(rr) {
		k, err := r.children[o.idx].Prune(ctx, o.local, pred)
		if err != nil {
			return CannotPrune, err
		}
		if k != CanPrune {
			return CannotPrune, nil
		}
	}
	return CanPrune, nil
}

func (r *chunkedReader) Filter(ctx context.Context, rr RowRange, pred *Predicate) (mask.Mask, error) {
	bools := make([]bool, rr.Len())
	for _, o := range r.overlap(rr) {
		m, err := r.children[o.idx].Filter(ctx, o.local, pred)
		if err != nil {
			return mask.Mask{}, err
		}
		for i := 0; i < m.Len(); i++ {
			bools[o.global.Start+i] = m.Value(i)
		}
	}
	return mask.FromBools(bools), nil
}

func (r *chunkedReader) Project(ctx context.Context, rr RowRange, m mask.Mask) (array.Array, error) {
	var chunks []array.Array
	for _, o := range r.overlap(rr) {
		sub := sliceMask(m, o.global.Start, o.global.End)
		if sub.TrueCount() == 0 {
			continue
		}
		a, err := r.children[o.idx].Project(ctx, o.local, sub)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, a)
	}
	if len(chunks) == 1 {
		return chunks[0], nil
	}
	return array.NewChunked(r.l.DT, chunks), nil
}

func (r *chunkedReader) Splits() []int {
	splits := make([]int, 0, len(r.l.ChunkOffsets))
	for i := 1; i+1 < len(r.l.ChunkOffsets); i++ {
		splits = append(splits, r.l.ChunkOffsets[i])
	}
	return splits
}

func sliceMask(m mask.Mask, start, end int) mask.Mask {
	bools := make([]bool, end-start)
	for i := range bools {
		bools[i] = m.Value(start + i)
	}
	return mask.FromBools(bools)
}

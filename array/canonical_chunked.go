package array

import (
	"sort"

	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/mask"
	"github.com/deepteams/vortex/scalar"
	"github.com/deepteams/vortex/stats"
)

// ChunkedArray is the canonical form for an ordered sequence of arrays of
// the same dtype (spec.md §4.2, "Chunked"). scalar_at does a binary
// search over cumulative chunk offsets; empty chunks are skipped during
// construction so the offset table stays strictly increasing.
type ChunkedArray struct {
	dt      dtype.DType
	chunks  []Array
	offsets []int // len(chunks)+1, cumulative row counts, offsets[0] == 0
	st      *stats.StatsSet
}

// NewChunked constructs a ChunkedArray from chunks, dropping any
// zero-length chunk (spec.md §4.2: "empty intermediate chunks are
// dropped").
func NewChunked(dt dtype.DType, chunks []Array) *ChunkedArray {
	nonEmpty := make([]Array, 0, len(chunks))
	offsets := []int{0}
	total := 0
	for _, c := range chunks {
		if c.Len() == 0 {
			continue
		}
		nonEmpty = append(nonEmpty, c)
		total += c.Len()
		offsets = append(offsets, total)
	}
	return &ChunkedArray{dt: dt, chunks: nonEmpty, offsets: offsets, st: stats.New()}
}

func (a *ChunkedArray) isCanonical() {}

func (a *ChunkedArray) Len() int               { return a.offsets[len(a.offsets)-1] }
func (a *ChunkedArray) DType() dtype.DType     { return a.dt }
func (a *ChunkedArray) Encoding() EncodingID   { return EncodingChunked }
func (a *ChunkedArray) EncodingName() Name     { return "chunked" }
func (a *ChunkedArray) Stats() *stats.StatsSet { return a.st }

// Chunks returns the underlying non-empty chunk arrays.
func (a *ChunkedArray) Chunks() []Array { return a.chunks }

// chunkOf returns the chunk index containing logical row i, and i's
// position within that chunk.
func (a *ChunkedArray) chunkOf(i int) (chunkIdx, localIdx int) {
	// offsets[1:] are the exclusive upper bounds of each chunk; find the
	// first one strictly greater than i.
	chunkIdx = sort.Search(len(a.offsets)-1, func(k int) bool { return a.offsets[k+1] > i })
	return chunkIdx, i - a.offsets[chunkIdx]
}

func (a *ChunkedArray) IsValid(i int) bool {
	ci, li := a.chunkOf(i)
	return IsValid(a.chunks[ci], li)
}

func (a *ChunkedArray) AllValid() bool {
	for _, c := range a.chunks {
		if !c.AllValid() {
			return false
		}
	}
	return true
}

func (a *ChunkedArray) AllInvalid() bool {
	for _, c := range a.chunks {
		if !c.AllInvalid() {
			return false
		}
	}
	return len(a.chunks) > 0 || a.Len() == 0
}

func (a *ChunkedArray) ValidityMask() mask.Mask {
	bools := make([]bool, a.Len())
	pos := 0
	for _, c := range a.chunks {
		m := ValidityMask(c)
		for i := 0; i < c.Len(); i++ {
			bools[pos] = m.Value(i)
			pos++
		}
	}
	return mask.FromBools(bools)
}

// Slice may straddle chunks; the resulting ChunkedArray's first and last
// chunks are sub-sliced and any empty result is dropped.
func (a *ChunkedArray) Slice(start, stop int) Array {
	startChunk, startLocal := a.chunkOf(start)
	var stopChunk, stopLocal int
	if stop == a.Len() {
		stopChunk, stopLocal = len(a.chunks)-1, a.chunks[len(a.chunks)-1].Len()
	} else {
		stopChunk, stopLocal = a.chunkOf(stop)
	}
	if startChunk == stopChunk {
		return NewChunked(a.dt, []Array{Slice(a.chunks[startChunk], startLocal, stopLocal)})
	}
	out := make([]Array, 0, stopChunk-startChunk+1)
	out = append(out, Slice(a.chunks[startChunk], startLocal, a.chunks[startChunk].Len()))
	for ci := startChunk + 1; ci < stopChunk; ci++ {
		out = append(out, a.chunks[ci])
	}
	if stopLocal > 0 {
		out = append(out, Slice(a.chunks[stopChunk], 0, stopLocal))
	}
	return NewChunked(a.dt, out)
}

func (a *ChunkedArray) ScalarAt(i int) scalar.Scalar {
	ci, li := a.chunkOf(i)
	return ScalarAt(a.chunks[ci], li)
}

// Canonicalize decompresses every chunk and re-wraps, preserving the
// Chunked shape (canonicalizing away Chunked itself is the job of the
// compute layer's chunk-wise distribution, not of this method).
func (a *ChunkedArray) Canonicalize() CanonicalArray {
	out := make([]Array, len(a.chunks))
	for i, c := range a.chunks {
		out[i] = Canonicalize(c)
	}
	return NewChunked(a.dt, out)
}

func (a *ChunkedArray) VisitBuffers(v func(name string, bytes []byte)) {}
func (a *ChunkedArray) VisitChildren(v func(name string, child Array)) {
	for i, c := range a.chunks {
		v(chunkName(i), c)
	}
}
func (a *ChunkedArray) WithChildren(children []Array) Array { return NewChunked(a.dt, children) }

func chunkName(i int) string {
	const digits = "0123456789"
	if i == 0 {
		return "chunk[0]"
	}
	buf := make([]byte, 0, 8)
	for i > 0 {
		buf = append([]byte{digits[i%10]}, buf...)
		i /= 10
	}
	return "chunk[" + string(buf) + "]"
}

func init() {
	DefaultRegistry.Register(EncodingChunked, "chunked", func(dt dtype.DType, length int, metadata []byte, segments [][]byte, children []Array) (Array, error) {
		return NewChunked(dt, children), nil
	})
}

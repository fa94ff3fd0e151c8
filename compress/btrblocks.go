package compress

import (
	"github.com/cespare/xxhash/v2"

	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/scalar"
	"github.com/deepteams/vortex/stats"
)

// BtrBlocks is the cheaper, non-sampling heuristic compressor (spec.md
// §4.3, "BtrBlocks heuristic"): it reads the array's existing pruning
// stats (null count, value count, an estimated distinct count, average
// run length) and picks at most one compressor directly, with no
// cost-model search. Used by the file layer's pruning-stats pass when
// "good enough" beats the sampling compressor's extra cost.
type BtrBlocks struct {
	Compressors []Compressor
}

// NewBtrBlocks returns a BtrBlocks heuristic over the given compressors,
// tried in the order given until one both CanCompress and reports a
// compressed size smaller than the input.
func NewBtrBlocks(compressors []Compressor) *BtrBlocks {
	return &BtrBlocks{Compressors: compressors}
}

// Compress evaluates a's stats once, then walks Compressors in order,
// applying the first whose CanCompress accepts a and whose result
// actually shrinks it. Returns a uncompressed if none qualify.
func (b *BtrBlocks) Compress(ctx *Context, a array.Array) CompressedArray {
	distinct, runLen := scanStats(a)
	if distinct <= 1 && a.Len() > 0 {
		a.Stats().SetExact(stats.IsConstant, scalar.Bool(true, false))
	}
	if a.Len() > 0 {
		a.Stats().SetInexact(stats.RunCount, scalar.FromInt(dtype.U64, int64(float64(a.Len())/runLen), false))
	}

	for _, c := range b.Compressors {
		if !c.CanCompress(a) {
			continue
		}
		attempt := c.Compress(ctx, a, nil)
		if ratio(ctx, a, attempt.Array) < 1.0 {
			return attempt
		}
	}
	return CompressedArray{Array: a, Tree: nil}
}

// scanStats performs BtrBlocks' one full scan, returning the distinct-
// value count and the average run length. Distinct values are tracked
// by their xxhash digest rather than the formatted string itself, so
// the working set stays a fixed 8 bytes per distinct value regardless
// of how wide the underlying strings/decimals are.
func scanStats(a array.Array) (distinct int, avgRunLength float64) {
	n := a.Len()
	if n == 0 {
		return 0, 0
	}
	seen := make(map[uint64]struct{}, n)
	runs := 1
	var prev scalar.Scalar
	havePrev := false
	for i := 0; i < n; i++ {
		if !array.IsValid(a, i) {
			continue
		}
		v := array.ScalarAt(a, i)
		seen[xxhash.Sum64String(v.String())] = struct{}{}
		if havePrev && !prev.Equal(v) {
			runs++
		}
		prev, havePrev = v, true
	}
	return len(seen), float64(n) / float64(runs)
}

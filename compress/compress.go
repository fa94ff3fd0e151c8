// Package compress implements the sampling compressor (spec.md §4.3): a
// depth-first, cost-model-driven search that chooses an encoding tree for
// an input array, plus the cheaper BtrBlocks heuristic used by the file
// layer's pruning-stats pass.
package compress

import (
	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/compute"
	"github.com/deepteams/vortex/dtype"
)

// CompressionTree is a lazily inspectable record of the compressor chosen
// for an array and, recursively, for its children. It is handed back as
// the `like` hint on the next chunk of a Chunked compression.
type CompressionTree struct {
	CompressorID string
	Metadata     []byte
	Children     []*CompressionTree
	Ratio        float64
}

// CompressedArray pairs a possibly-rewritten array with the tree that
// produced it. Tree is nil when the input was left uncompressed.
type CompressedArray struct {
	Array array.Array
	Tree  *CompressionTree
}

// Compressor is the per-encoding compressor interface (spec.md §4.3,
// "Per-encoding compressor interface").
type Compressor interface {
	// ID is the compressor's stable name, stored in CompressionTree and
	// matched against a `like` hint on replay.
	ID() string
	// Cost is a coarse relative decode-cost weight (lower is cheaper),
	// used to break ties between compressors with similar ratios.
	Cost() uint8
	// CanCompress is a fast, no-heavy-work check: dtype/width/stats only.
	CanCompress(a array.Array) bool
	// Compress applies this compressor to a, optionally replaying a prior
	// `like` tree's metadata/child trees.
	Compress(ctx *Context, a array.Array, like *CompressionTree) CompressedArray
	// UsedEncodings lists the EncodingIDs this compressor may produce, so
	// a Context can pre-register them.
	UsedEncodings() []array.EncodingID
}

// Context carries the state a compressor needs at every recursion level:
// the enabled compressor set, the array-level registry/stats context, and
// the sampling/chunking knobs (spec.md §4.3).
type Context struct {
	ArrayCtx    *array.Context
	Compressors []Compressor

	// TargetBlockBytes and TargetBlockSize are carried with their defaults
	// but are not read by the compressor; Chunked input is not rechunked.
	TargetBlockBytes int64
	TargetBlockSize  int

	// SampleSize and SampleCount control the strata taken before the
	// per-compressor cost search (spec.md §4.3, step 2). Defaults 128/8.
	SampleSize  int
	SampleCount int
}

// RelativelyGoodRatio is the threshold a replayed `like` tree's ratio must
// stay within of the previous chunk's ratio to be accepted without a fresh
// search (spec.md §4.3, step 1).
const RelativelyGoodRatio = 1.2

// NewContext returns a Context with the given compressors and the spec's
// documented defaults for sampling and block sizing.
func NewContext(compressors []Compressor) *Context {
	return &Context{
		ArrayCtx:         array.NewContext(),
		Compressors:      compressors,
		TargetBlockBytes: 16 << 20,
		TargetBlockSize:  1 << 20,
		SampleSize:       128,
		SampleCount:      8,
	}
}

// Including returns a shallow copy of ctx whose Compressors is guaranteed
// to contain c, used when a compressor recurses into a child and wants the
// same compressor available there (spec.md §4.3: "ctx.including(c)").
func (ctx *Context) Including(c Compressor) *Context {
	for _, existing := range ctx.Compressors {
		if existing.ID() == c.ID() {
			cp := *ctx
			return &cp
		}
	}
	cp := *ctx
	cp.Compressors = append(append([]Compressor{}, ctx.Compressors...), c)
	return &cp
}

// CompressedSize walks a (possibly already-compressed) array's owned
// buffers, Serde metadata, and children, summing actual bytes — the
// ratio-computation counterpart to compute.UncompressedSize.
func CompressedSize(a array.Array) int64 {
	var total int64
	a.VisitBuffers(func(name string, bytes []byte) { total += int64(len(bytes)) })
	if serde, ok := a.(array.Serde); ok {
		total += int64(len(serde.Metadata()))
	}
	a.VisitChildren(func(name string, child array.Array) {
		total += CompressedSize(child)
	})
	return total
}

// ratio returns compressed/uncompressed nbytes, computed against the
// input array's own estimated uncompressed size.
func ratio(ctx *Context, original array.Array, compressed array.Array) float64 {
	uncompressed, err := uncompressedSize(ctx, original)
	if err != nil || uncompressed == 0 {
		return 1.0
	}
	return float64(CompressedSize(compressed)) / float64(uncompressed)
}

func uncompressedSize(ctx *Context, a array.Array) (int64, error) {
	return compute.UncompressedSize(ctx.ArrayCtx, a)
}

// intRangeFits reports whether every value of a primitive array of ptype
// p fits within target's representable range, used by both the
// integer/float pre-processing downscale step and several per-encoding
// CanCompress checks.
func intRangeFits(target dtype.PType, min, max int64) bool {
	return dtype.FitsRange(target, min, max)
}

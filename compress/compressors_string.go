package compress

import (
	"sort"

	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/encoding"
	"github.com/deepteams/vortex/mask"
	"github.com/deepteams/vortex/scalar"
	"github.com/deepteams/vortex/validity"
)

// fsstMaxSymbols is the symbol table size FSST reserves one escape code
// out of the 256 possible one-byte code values for (spec.md §4.2, "FSST").
const fsstMaxSymbols = 255

// fsstMaxSymbolLen bounds how long a trained symbol may be; longer common
// substrings give diminishing returns against the per-symbol table cost.
const fsstMaxSymbolLen = 8

// FSSTCompressor trains a small per-column symbol table from the array's
// most frequent substrings and re-encodes every row as a sequence of
// one-byte symbol references (spec.md §4.2, "FSST").
type FSSTCompressor struct{}

func (FSSTCompressor) ID() string { return "fsst" }
func (FSSTCompressor) Cost() uint8 { return 4 }
func (FSSTCompressor) UsedEncodings() []array.EncodingID {
	return []array.EncodingID{array.EncodingFSST}
}

func (FSSTCompressor) CanCompress(a array.Array) bool {
	dt := a.DType()
	return (dt.Kind() == dtype.KindUtf8 || dt.Kind() == dtype.KindBinary) && a.Len() > 0
}

func (c FSSTCompressor) Compress(ctx *Context, a array.Array, like *CompressionTree) CompressedArray {
	dt := a.DType()
	n := a.Len()

	symbols := trainFSSTSymbols(a)

	offsets := make([]uint32, n+1)
	var codeBytes []byte
	valid := make([]bool, n)
	lengths := make([]scalar.Scalar, n)
	for i := 0; i < n; i++ {
		if !array.IsValid(a, i) {
			offsets[i+1] = uint32(len(codeBytes))
			lengths[i] = scalar.FromInt(dtype.U32, 0, false)
			continue
		}
		valid[i] = true
		raw := array.ScalarAt(a, i).AsBuffer()
		codeBytes = append(codeBytes, fsstEncodeRow(symbols, raw)...)
		offsets[i+1] = uint32(len(codeBytes))
		lengths[i] = scalar.FromInt(dtype.U32, int64(len(raw)), false)
	}

	codes := array.NewVarBinView(dtype.Binary(false), offsets, codeBytes, validity.FromMask(mask.FromBools(valid)))
	uncompressedLengths := array.FromScalars(dtype.Primitive(dtype.U32, false), lengths).(*array.PrimitiveArray)

	out := encoding.NewFSST(dt, symbols, codes, uncompressedLengths)
	return CompressedArray{Array: out, Tree: &CompressionTree{CompressorID: c.ID()}}
}

const fsstEscape = 0xFF

// fsstEncodeRow greedily matches the longest trained symbol at each
// position, escaping unmatched bytes — mirrors encoding.compressWithSymbols,
// duplicated here since that helper is unexported outside package encoding.
func fsstEncodeRow(symbols [][]byte, s []byte) []byte {
	var out []byte
	for i := 0; i < len(s); {
		best := -1
		bestLen := 0
		for code, sym := range symbols {
			if len(sym) > bestLen && len(sym) <= len(s)-i && bytesEqual(s[i:i+len(sym)], sym) {
				best = code
				bestLen = len(sym)
			}
		}
		if best >= 0 {
			out = append(out, byte(best))
			i += bestLen
			continue
		}
		out = append(out, fsstEscape, s[i])
		i++
	}
	return out
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// trainFSSTSymbols builds a symbol table from the most frequent substrings
// (length 2..fsstMaxSymbolLen) observed across a's valid rows, the same
// frequency-counting shape FSST's real trainer uses, simplified to a single
// greedy pass rather than the iterative gain-based refinement.
func trainFSSTSymbols(a array.Array) [][]byte {
	counts := make(map[string]int)
	n := a.Len()
	rows := n
	if rows > 512 {
		rows = 512
	}
	for i := 0; i < rows; i++ {
		if !array.IsValid(a, i) {
			continue
		}
		raw := array.ScalarAt(a, i).AsBuffer()
		for l := 2; l <= fsstMaxSymbolLen; l++ {
			for j := 0; j+l <= len(raw); j++ {
				counts[string(raw[j:j+l])]++
			}
		}
	}

	type cand struct {
		s     string
		gain  int
		count int
	}
	cands := make([]cand, 0, len(counts))
	for s, cnt := range counts {
		if cnt < 2 {
			continue
		}
		cands = append(cands, cand{s: s, gain: cnt * (len(s) - 1), count: cnt})
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].gain > cands[j].gain })

	symbols := make([][]byte, 0, fsstMaxSymbols)
	for _, c := range cands {
		if len(symbols) >= fsstMaxSymbols {
			break
		}
		symbols = append(symbols, []byte(c.s))
	}
	return symbols
}

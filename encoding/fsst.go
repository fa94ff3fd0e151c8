package encoding

import (
	"bytes"

	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/compute"
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/mask"
	"github.com/deepteams/vortex/scalar"
	"github.com/deepteams/vortex/stats"
	"github.com/deepteams/vortex/validity"
)

// fsstEscape is the code byte meaning "the next byte is a literal, not a
// symbol table reference" — FSST's usual escape mechanism for bytes that
// never clustered into a trained symbol.
const fsstEscape = 0xFF

// FSSTArray is a string compressor built on a small per-column symbol
// table (spec.md §4.2, "FSST"): each row's `codes` entry is a sequence of
// one-byte symbol references (fsstEscape followed by a literal byte for
// unmatched bytes); `uncompressedLengths` records each row's decoded byte
// length for the empty-string compare fast path and for canonical-buffer
// preallocation.
type FSSTArray struct {
	dt                  dtype.DType // Utf8 or Binary
	symbols             [][]byte    // up to 255 entries, indexed by code
	codes               *array.VarBinViewArray
	uncompressedLengths *array.PrimitiveArray
	st                  *stats.StatsSet
}

// NewFSST constructs an FSSTArray.
func NewFSST(dt dtype.DType, symbols [][]byte, codes *array.VarBinViewArray, uncompressedLengths *array.PrimitiveArray) *FSSTArray {
	return &FSSTArray{dt: dt, symbols: symbols, codes: codes, uncompressedLengths: uncompressedLengths, st: stats.New()}
}

func (a *FSSTArray) Len() int                   { return a.codes.Len() }
func (a *FSSTArray) DType() dtype.DType         { return a.dt }
func (a *FSSTArray) Encoding() array.EncodingID { return array.EncodingFSST }
func (a *FSSTArray) EncodingName() array.Name   { return "fsst" }
func (a *FSSTArray) Stats() *stats.StatsSet     { return a.st }

func (a *FSSTArray) IsValid(i int) bool      { return a.codes.IsValid(i) }
func (a *FSSTArray) AllValid() bool          { return a.codes.AllValid() }
func (a *FSSTArray) AllInvalid() bool        { return a.codes.AllInvalid() }
func (a *FSSTArray) ValidityMask() mask.Mask { return a.codes.ValidityMask() }

func (a *FSSTArray) Slice(start, stop int) array.Array {
	return NewFSST(a.dt, a.symbols,
		array.Slice(a.codes, start, stop).(*array.VarBinViewArray),
		array.Slice(a.uncompressedLengths, start, stop).(*array.PrimitiveArray))
}

// decodeRow expands one row's symbol-code bytes back to its original
// uncompressed bytes.
func (a *FSSTArray) decodeRow(code []byte) []byte {
	var out []byte
	for i := 0; i < len(code); i++ {
		c := code[i]
		if c == fsstEscape && i+1 < len(code) {
			out = append(out, code[i+1])
			i++
			continue
		}
		if int(c) < len(a.symbols) {
			out = append(out, a.symbols[c]...)
		}
	}
	return out
}

func (a *FSSTArray) ScalarAt(i int) scalar.Scalar {
	if !a.codes.IsValid(i) {
		return scalar.Null(a.dt)
	}
	decoded := a.decodeRow(a.codes.BytesAt(i))
	return scalar.FromBuffer(a.dt, decoded)
}

func (a *FSSTArray) Canonicalize() array.CanonicalArray {
	n := a.Len()
	offsets := make([]uint32, n+1)
	var data []byte
	for i := 0; i < n; i++ {
		if a.codes.IsValid(i) {
			data = append(data, a.decodeRow(a.codes.BytesAt(i))...)
		}
		offsets[i+1] = uint32(len(data))
	}
	return array.NewVarBinView(a.dt, offsets, data, validity.FromMask(a.codes.ValidityMask()))
}

func (a *FSSTArray) VisitBuffers(v func(name string, bytes []byte)) {}
func (a *FSSTArray) VisitChildren(v func(name string, child array.Array)) {
	v("codes", a.codes)
	v("uncompressed_lengths", a.uncompressedLengths)
}
func (a *FSSTArray) WithChildren(children []array.Array) array.Array {
	return NewFSST(a.dt, a.symbols, children[0].(*array.VarBinViewArray), children[1].(*array.PrimitiveArray))
}

// compressWithSymbols greedily matches the longest symbol at each
// position, escaping unmatched bytes, the same encode-side algorithm an
// FSST compressor would have used to build codes in the first place.
func compressWithSymbols(symbols [][]byte, s []byte) []byte {
	var out []byte
	for i := 0; i < len(s); {
		best := -1
		bestLen := 0
		for code, sym := range symbols {
			if len(sym) > bestLen && len(sym) <= len(s)-i && bytes.Equal(s[i:i+len(sym)], sym) {
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

// ComputeFastPath implements compare(fsst, const) for Eq/NotEq by
// compressing the constant with the same symbol table and comparing
// compressed bytes directly; an empty-string constant short-circuits to
// a length check against uncompressedLengths (spec.md §4.2, "FSST").
func (a *FSSTArray) ComputeFastPath(fn string, args []any) (any, bool) {
	if fn != compute.FnCompare {
		return nil, false
	}
	rhs, ok := args[1].(scalar.Scalar)
	if !ok || rhs.IsNull() {
		return nil, false
	}
	op, ok := args[2].(compute.Operator)
	if !ok || (op != compute.Eq && op != compute.NotEq) {
		return nil, false
	}
	n := a.Len()
	rhsBytes := rhs.AsBuffer()
	bools := make([]bool, n)
	valid := make([]bool, n)
	if len(rhsBytes) == 0 {
		for i := 0; i < n; i++ {
			if !a.codes.IsValid(i) {
				continue
			}
			valid[i] = true
			eq := array.ScalarAt(a.uncompressedLengths, i).AsUint() == 0
			bools[i] = eq == (op == compute.Eq)
		}
	} else {
		encoded := compressWithSymbols(a.symbols, rhsBytes)
		for i := 0; i < n; i++ {
			if !a.codes.IsValid(i) {
				continue
			}
			valid[i] = true
			eq := bytes.Equal(a.codes.BytesAt(i), encoded)
			bools[i] = eq == (op == compute.Eq)
		}
	}
	out := array.NewBool(mask.FromBools(bools), validity.FromMask(mask.FromBools(valid)))
	return out, true
}

func init() {
	array.DefaultRegistry.Register(array.EncodingFSST, "fsst", func(dt dtype.DType, length int, metadata []byte, segments [][]byte, children []array.Array) (array.Array, error) {
		symbols := decodeFSSTSymbols(metadata)
		return NewFSST(dt, symbols, children[0].(*array.VarBinViewArray), children[1].(*array.PrimitiveArray)), nil
	})
}

// Metadata implements array.Serde: a length-prefixed symbol table.
func (a *FSSTArray) Metadata() []byte { return encodeFSSTSymbols(a.symbols) }

func encodeFSSTSymbols(symbols [][]byte) []byte {
	var out []byte
	out = append(out, byte(len(symbols)))
	for _, s := range symbols {
		out = append(out, byte(len(s)))
		out = append(out, s...)
	}
	return out
}

func decodeFSSTSymbols(metadata []byte) [][]byte {
	if len(metadata) == 0 {
		return nil
	}
	count := int(metadata[0])
	symbols := make([][]byte, 0, count)
	pos := 1
	for i := 0; i < count && pos < len(metadata); i++ {
		l := int(metadata[pos])
		pos++
		if pos+l > len(metadata) {
			break
		}
		symbols = append(symbols, metadata[pos:pos+l])
		pos += l
	}
	return symbols
}

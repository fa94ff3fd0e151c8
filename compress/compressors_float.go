package compress

import (
	"math"

	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/encoding"
	"github.com/deepteams/vortex/scalar"
)

// alpMaxExponent bounds the decimal exponents ALPCompressor searches (spec.md
// §4.2, "ALP" decodes v*10^-f*10^e with both stored as a single byte).
const alpMaxExponent = 18

// ALPCompressor finds the (e, f) exponent pair that round-trips the most
// values through the integer domain losslessly, storing the rest as sparse
// (index, value) patches (spec.md §4.2, "ALP").
type ALPCompressor struct{}

func (ALPCompressor) ID() string { return "alp" }
func (ALPCompressor) Cost() uint8 { return 3 }
func (ALPCompressor) UsedEncodings() []array.EncodingID {
	return []array.EncodingID{array.EncodingALP}
}

func (ALPCompressor) CanCompress(a array.Array) bool {
	dt := a.DType()
	return dt.Kind() == dtype.KindPrimitive && dt.PType().IsFloat() && a.Len() > 0
}

func (c ALPCompressor) Compress(ctx *Context, a array.Array, like *CompressionTree) CompressedArray {
	p := a.DType().PType()
	n := a.Len()

	var e, f uint8
	if like != nil && len(like.Metadata) >= 2 {
		e, f = like.Metadata[0], like.Metadata[1]
	} else {
		e, f = bestALPExponents(a)
	}
	scale := pow10Of(int(f) - int(e))
	unscale := pow10Of(int(e) - int(f))

	encodedP := dtype.I32
	if p == dtype.F64 {
		encodedP = dtype.I64
	}

	encodedValues := make([]scalar.Scalar, n)
	var patchIdx []scalar.Scalar
	var patchVal []scalar.Scalar
	for i := 0; i < n; i++ {
		if !array.IsValid(a, i) {
			encodedValues[i] = scalar.Null(dtype.Primitive(encodedP, true))
			continue
		}
		v := array.ScalarAt(a, i).AsFloat()
		enc := math.Round(v * scale)
		if enc < alpEncodedMin(encodedP) || enc > alpEncodedMax(encodedP) || enc*unscale != v {
			encodedValues[i] = scalar.FromInt(encodedP, 0, false)
			patchIdx = append(patchIdx, scalar.FromInt(dtype.U64, int64(i), false))
			patchVal = append(patchVal, scalar.FromFloat(p, v, false))
			continue
		}
		encodedValues[i] = scalar.FromInt(encodedP, int64(enc), false)
	}

	encoded := array.FromScalars(dtype.Primitive(encodedP, false), encodedValues).(*array.PrimitiveArray)
	var patchIndices, patchValues *array.PrimitiveArray
	if len(patchIdx) > 0 {
		patchIndices = array.FromScalars(dtype.Primitive(dtype.U64, false), patchIdx).(*array.PrimitiveArray)
		patchValues = array.FromScalars(dtype.Primitive(p, false), patchVal).(*array.PrimitiveArray)
	}

	out := encoding.NewALP(a.DType(), e, f, encoded, patchIndices, patchValues)
	return CompressedArray{
		Array: out,
		Tree:  &CompressionTree{CompressorID: c.ID(), Metadata: []byte{e, f}},
	}
}

// bestALPExponents samples up to alpSampleRows values and returns the (e, f)
// pair that round-trips the most of them losslessly through the integer
// domain, preferring fewer patches over a wider value range.
func bestALPExponents(a array.Array) (e, f uint8) {
	n := a.Len()
	step := 1
	if n > alpSampleRows {
		step = (n + alpSampleRows - 1) / alpSampleRows
	}

	bestE, bestF := uint8(0), uint8(0)
	bestHits := -1
	for candE := 0; candE <= alpMaxExponent; candE++ {
		for candF := 0; candF <= candE; candF++ {
			scale := pow10Of(candF - candE)
			hits := 0
			total := 0
			for i := 0; i < n; i += step {
				if !array.IsValid(a, i) {
					continue
				}
				v := array.ScalarAt(a, i).AsFloat()
				total++
				enc := math.Round(v * scale)
				if enc*pow10Of(candE-candF) == v {
					hits++
				}
			}
			if total == 0 {
				continue
			}
			if hits > bestHits {
				bestHits = hits
				bestE, bestF = uint8(candE), uint8(candF)
			}
			if hits == total {
				return uint8(candE), uint8(candF)
			}
		}
	}
	return bestE, bestF
}

const alpSampleRows = 256

func pow10Of(e int) float64 {
	if e >= 0 {
		out := 1.0
		for i := 0; i < e; i++ {
			out *= 10
		}
		return out
	}
	out := 1.0
	for i := 0; i > e; i-- {
		out /= 10
	}
	return out
}

func alpEncodedMin(p dtype.PType) float64 {
	if p == dtype.I64 {
		return math.MinInt64
	}
	return math.MinInt32
}

func alpEncodedMax(p dtype.PType) float64 {
	if p == dtype.I64 {
		return math.MaxInt64
	}
	return math.MaxInt32
}

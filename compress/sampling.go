package compress

import (
	"math/rand"

	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/scalar"
)

// SamplingCompressor is the recursive, cost-model-driven search described
// in spec.md §4.3. It owns no state of its own beyond what a Context
// already carries; its methods take ctx explicitly the way the teacher's
// VP8Encoder passes its config into free functions rather than closing
// over package globals.
type SamplingCompressor struct{}

// Compress runs the main loop (spec.md §4.3, "Main loop"): replay `like`
// if it stays within RelativelyGoodRatio, else sample, rank enabled
// compressors by ratio×cost, and apply the winner to the full input.
func (SamplingCompressor) Compress(ctx *Context, a array.Array, like *CompressionTree) CompressedArray {
	a = downscale(a)

	if like != nil {
		if replayed, ok := replay(ctx, a, like); ok {
			return replayed
		}
	}

	sample := takeSample(a, ctx.SampleSize, ctx.SampleCount)

	var best Compressor
	var bestRatio float64 = 1.0
	for _, c := range ctx.Compressors {
		if !c.CanCompress(sample) {
			continue
		}
		attempt := c.Compress(ctx.Including(c), sample, nil)
		r := ratio(ctx, sample, attempt.Array)
		score := r * float64(c.Cost())
		if best == nil || score < bestRatio*float64(best.Cost()) {
			best = c
			bestRatio = r
		}
	}

	if best == nil || bestRatio >= 1.0 {
		return CompressedArray{Array: a, Tree: nil}
	}

	result := best.Compress(ctx, a, nil)
	if result.Tree != nil {
		result.Tree.Ratio = ratio(ctx, a, result.Array)
	}
	return result
}

// replay calls the compressor named by like against a, reusing its
// metadata/shape, and accepts the result if it stays within
// RelativelyGoodRatio of like's previously recorded ratio and still
// actually compresses (spec.md §4.3, step 1).
func replay(ctx *Context, a array.Array, like *CompressionTree) (CompressedArray, bool) {
	for _, c := range ctx.Compressors {
		if c.ID() != like.CompressorID {
			continue
		}
		if !c.CanCompress(a) {
			return CompressedArray{}, false
		}
		attempt := c.Compress(ctx, a, like)
		r := ratio(ctx, a, attempt.Array)
		if r < like.Ratio*RelativelyGoodRatio && r < 1.0 {
			if attempt.Tree != nil {
				attempt.Tree.Ratio = r
			}
			return attempt, true
		}
		return CompressedArray{}, false
	}
	return CompressedArray{}, false
}

// takeSample concatenates sampleCount random contiguous strata of
// sampleSize rows each (spec.md §4.3, step 2). If the input is already no
// larger than one full sample, it is returned unchanged — sampling a
// small array would only add noise.
func takeSample(a array.Array, sampleSize, sampleCount int) array.Array {
	n := a.Len()
	if n <= sampleSize*sampleCount {
		return a
	}
	var values []scalar.Scalar
	for s := 0; s < sampleCount; s++ {
		start := rand.Intn(n - sampleSize + 1)
		for i := start; i < start+sampleSize; i++ {
			values = append(values, array.ScalarAt(a, i))
		}
	}
	return array.FromScalars(a.DType(), values)
}

// downscale narrows a primitive array to the tightest ptype that fits its
// observed min/max range (spec.md §4.3, "Integer/float pre-processing").
// Only integer ptypes are narrowed; floats and non-primitive dtypes pass
// through untouched.
func downscale(a array.Array) array.Array {
	p, ok := a.(*array.PrimitiveArray)
	if !ok {
		return a
	}
	dt := p.DType()
	if dt.Kind() != dtype.KindPrimitive || !dt.PType().IsInt() {
		return a
	}
	n := p.Len()
	if n == 0 {
		return a
	}
	var min, max int64
	first := true
	for i := 0; i < n; i++ {
		if !p.IsValid(i) {
			continue
		}
		v := p.Int64At(i)
		if first {
			min, max = v, v
			first = false
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if first {
		return a
	}
	target := dt.PType()
	for _, candidate := range narrowerPTypes(dt.PType()) {
		if intRangeFits(candidate, min, max) {
			target = candidate
			break
		}
	}
	if target == dt.PType() {
		return a
	}
	values := make([]scalar.Scalar, n)
	for i := 0; i < n; i++ {
		if !p.IsValid(i) {
			values[i] = scalar.Null(dtype.Primitive(target, true))
			continue
		}
		values[i] = scalar.FromInt(target, p.Int64At(i), dt.Nullable())
	}
	return array.FromScalars(dtype.Primitive(target, dt.Nullable()), values)
}

// narrowerPTypes lists, narrowest-to-widest among those strictly narrower
// than p, the integer ptypes worth trying as a downscale target.
func narrowerPTypes(p dtype.PType) []dtype.PType {
	all := []dtype.PType{dtype.I8, dtype.U8, dtype.I16, dtype.U16, dtype.I32, dtype.U32}
	out := make([]dtype.PType, 0, len(all))
	for _, c := range all {
		if c.ByteWidth() < p.ByteWidth() {
			out = append(out, c)
		}
	}
	return out
}

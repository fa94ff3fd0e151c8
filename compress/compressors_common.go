package compress

import (
	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/scalar"
)

// intMinMax scans a's valid rows for the int64 min/max, treating unsigned
// ptypes' bit patterns as unsigned. ok is false if a carries no valid rows.
func intMinMax(a array.Array) (min, max int64, ok bool) {
	n := a.Len()
	unsigned := a.DType().Kind() == dtype.KindPrimitive && a.DType().PType().IsUnsignedInt()
	for i := 0; i < n; i++ {
		if !array.IsValid(a, i) {
			continue
		}
		v := array.ScalarAt(a, i).AsInt()
		if !ok {
			min, max, ok = v, v, true
			continue
		}
		if unsigned {
			if uint64(v) < uint64(min) {
				min = v
			}
			if uint64(v) > uint64(max) {
				max = v
			}
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max, ok
}

// distinctValues collects up to limit distinct scalar values (by their
// String() form); ok is false if the array has more than limit distinct
// values, the cheap early-exit a dictionary compressor's CanCompress needs.
func distinctValues(a array.Array, limit int) (values []scalar.Scalar, ok bool) {
	seen := make(map[string]int, limit+1)
	n := a.Len()
	for i := 0; i < n; i++ {
		if !array.IsValid(a, i) {
			continue
		}
		v := array.ScalarAt(a, i)
		key := v.String()
		if _, exists := seen[key]; exists {
			continue
		}
		if len(seen) >= limit {
			return nil, false
		}
		seen[key] = len(values)
		values = append(values, v)
	}
	return values, true
}

// codeArrayFor builds a non-nullable unsigned PrimitiveArray of codes, one
// per row of a, indexing into values (as produced by distinctValues),
// picking the narrowest unsigned ptype that fits len(values).
func codeArrayFor(a array.Array, values []scalar.Scalar) *array.PrimitiveArray {
	index := make(map[string]int64, len(values))
	for i, v := range values {
		index[v.String()] = int64(i)
	}
	codeType := dtype.U32
	switch {
	case len(values) <= 1<<8:
		codeType = dtype.U8
	case len(values) <= 1<<16:
		codeType = dtype.U16
	}
	n := a.Len()
	codes := make([]scalar.Scalar, n)
	for i := 0; i < n; i++ {
		var key string
		if array.IsValid(a, i) {
			key = array.ScalarAt(a, i).String()
		} else {
			key = "null"
		}
		codes[i] = scalar.FromInt(codeType, index[key], false)
	}
	return array.FromScalars(dtype.Primitive(codeType, false), codes).(*array.PrimitiveArray)
}

// asUint64Slice reads a's int64 payload (reinterpreted unsigned) into a
// plain slice for bit-packing; invalid rows are left as 0.
func asUint64Slice(a array.Array) []uint64 {
	n := a.Len()
	out := make([]uint64, n)
	for i := 0; i < n; i++ {
		if array.IsValid(a, i) {
			out[i] = uint64(array.ScalarAt(a, i).AsInt())
		}
	}
	return out
}

func isIntPrimitive(a array.Array) bool {
	dt := a.DType()
	return dt.Kind() == dtype.KindPrimitive && dt.PType().IsInt()
}

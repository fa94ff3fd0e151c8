package array

import (
	"math"

	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/validity"
)

func invalidValidity(n int) validity.Validity { return validity.AllInvalid(n) }

func validValidity(n int, nullable bool) validity.Validity {
	if nullable {
		return validity.AllValid(n)
	}
	return validity.NonNullable(n)
}

func materializeConstantPrimitive(a *ConstantArray, dt dtype.DType) CanonicalArray {
	p := dt.PType()
	width := p.ByteWidth()
	raw := make([]byte, a.length*width)
	if !a.value.IsNull() {
		word := make([]byte, width)
		if p.IsFloat() {
			encodeFloatWord(word, p, a.value.AsFloat())
		} else {
			encodeIntWord(word, p, a.value.AsInt())
		}
		for i := 0; i < a.length; i++ {
			copy(raw[i*width:(i+1)*width], word)
		}
		return NewPrimitiveFromBytes(p, raw, validValidity(a.length, dt.Nullable()))
	}
	return NewPrimitiveFromBytes(p, raw, invalidValidity(a.length))
}

func encodeIntWord(word []byte, p dtype.PType, v int64) {
	u := uint64(v)
	for i := range word {
		word[i] = byte(u >> (8 * uint(i)))
	}
}

func encodeFloatWord(word []byte, p dtype.PType, v float64) {
	switch p {
	case dtype.F32:
		bits := math.Float32bits(float32(v))
		for i := range word {
			word[i] = byte(bits >> (8 * uint(i)))
		}
	case dtype.F64:
		bits := math.Float64bits(v)
		for i := range word {
			word[i] = byte(bits >> (8 * uint(i)))
		}
	default:
		panic("array: unsupported float ptype for constant materialization")
	}
}

func materializeConstantVarBin(a *ConstantArray, dt dtype.DType) CanonicalArray {
	if a.value.IsNull() {
		offsets := make([]uint32, a.length+1)
		return NewVarBinView(dt, offsets, nil, invalidValidity(a.length))
	}
	b := a.value.AsBuffer()
	data := make([]byte, 0, len(b)*a.length)
	offsets := make([]uint32, a.length+1)
	for i := 0; i < a.length; i++ {
		data = append(data, b...)
		offsets[i+1] = uint32(len(data))
	}
	return NewVarBinView(dt, offsets, data, validValidity(a.length, dt.Nullable()))
}

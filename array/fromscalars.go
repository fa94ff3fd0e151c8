package array

import (
	"math/big"

	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/mask"
	"github.com/deepteams/vortex/scalar"
	"github.com/deepteams/vortex/validity"
)

// FromScalars builds a canonical array of dtype dt from a column of
// per-row scalars, recursing into nested dtypes (Struct, List,
// Extension). It is the generic fallback every compute kernel's
// canonicalization path uses when no registered kernel can operate on an
// encoding's compressed representation directly (spec.md §4.1,
// "Invocation order" step 4).
func FromScalars(dt dtype.DType, values []scalar.Scalar) CanonicalArray {
	n := len(values)
	switch dt.Kind() {
	case dtype.KindNull:
		return NewNull(n)
	case dtype.KindBool:
		bools := make([]bool, n)
		valid := make([]bool, n)
		for i, s := range values {
			if !s.IsNull() {
				valid[i] = true
				bools[i] = s.AsBool()
			}
		}
		return NewBool(mask.FromBools(bools), validity.FromMask(mask.FromBools(valid)))
	case dtype.KindPrimitive:
		return primitiveFromScalars(dt, values)
	case dtype.KindDecimal:
		return decimalFromScalars(dt, values)
	case dtype.KindUtf8, dtype.KindBinary:
		return varBinFromScalars(dt, values)
	case dtype.KindStruct:
		return structFromScalars(dt, values)
	case dtype.KindList:
		return listFromScalars(dt, values)
	case dtype.KindExtension:
		storage := FromScalars(dt.ExtDType().Storage, values)
		return NewExtension(dt, storage)
	default:
		panic("array: FromScalars unsupported dtype kind " + dt.Kind().String())
	}
}

func primitiveFromScalars(dt dtype.DType, values []scalar.Scalar) CanonicalArray {
	p := dt.PType()
	width := p.ByteWidth()
	raw := make([]byte, len(values)*width)
	valid := make([]bool, len(values))
	for i, s := range values {
		if s.IsNull() {
			continue
		}
		valid[i] = true
		word := raw[i*width : (i+1)*width]
		if p.IsFloat() {
			encodeFloatWord(word, p, s.AsFloat())
		} else {
			encodeIntWord(word, p, s.AsInt())
		}
	}
	return NewPrimitiveFromBytes(p, raw, validity.FromMask(mask.FromBools(valid)))
}

func decimalFromScalars(dt dtype.DType, values []scalar.Scalar) CanonicalArray {
	precision, scale := dt.DecimalPrecisionScale()
	raw := make([]byte, len(values)*16)
	valid := make([]bool, len(values))
	for i, s := range values {
		if s.IsNull() {
			continue
		}
		valid[i] = true
		copy(raw[i*16:(i+1)*16], encodeDecimalWord(s.AsDecimalUnscaled()))
	}
	return NewDecimal(precision, scale, raw, validity.FromMask(mask.FromBools(valid)))
}

// encodeDecimalWord renders an i128 unscaled value as 16 little-endian
// two's-complement bytes, the inverse of decimalUnscaled.
func encodeDecimalWord(v *big.Int) []byte {
	u := v
	if v.Sign() < 0 {
		u = new(big.Int).Add(v, new(big.Int).Lsh(big.NewInt(1), 128))
	}
	be := u.FillBytes(make([]byte, 16))
	le := make([]byte, 16)
	for j := 0; j < 16; j++ {
		le[j] = be[15-j]
	}
	return le
}

func varBinFromScalars(dt dtype.DType, values []scalar.Scalar) CanonicalArray {
	data := make([]byte, 0, len(values)*8)
	offsets := make([]uint32, len(values)+1)
	valid := make([]bool, len(values))
	for i, s := range values {
		if !s.IsNull() {
			valid[i] = true
			data = append(data, s.AsBuffer()...)
		}
		offsets[i+1] = uint32(len(data))
	}
	return NewVarBinView(dt, offsets, data, validity.FromMask(mask.FromBools(valid)))
}

func structFromScalars(dt dtype.DType, values []scalar.Scalar) CanonicalArray {
	fields := dt.Fields()
	valid := make([]bool, len(values))
	cols := make([][]scalar.Scalar, len(fields))
	for j := range cols {
		cols[j] = make([]scalar.Scalar, len(values))
	}
	for i, s := range values {
		if s.IsNull() {
			for j, f := range fields {
				cols[j][i] = scalar.Null(f.Type)
			}
			continue
		}
		valid[i] = true
		elems := s.AsList()
		for j := range fields {
			cols[j][i] = elems[j]
		}
	}
	children := make([]Array, len(fields))
	for j, f := range fields {
		children[j] = FromScalars(f.Type, cols[j])
	}
	return NewStruct(dt, children, validity.FromMask(mask.FromBools(valid)))
}

func listFromScalars(dt dtype.DType, values []scalar.Scalar) CanonicalArray {
	elemType := dt.ElemType()
	valid := make([]bool, len(values))
	offsets := make([]uint32, len(values)+1)
	var flat []scalar.Scalar
	for i, s := range values {
		if !s.IsNull() {
			valid[i] = true
			flat = append(flat, s.AsList()...)
		}
		offsets[i+1] = uint32(len(flat))
	}
	elements := FromScalars(elemType, flat)
	return NewList(dt, elements, offsets, validity.FromMask(mask.FromBools(valid)))
}

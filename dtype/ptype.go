package dtype

import "fmt"

// PType enumerates the physical primitive widths a Primitive or Decimal
// DType may be backed by (spec.md §3, "ptype is one of u8/u16/...").
type PType uint8

const (
	U8 PType = iota
	U16
	U32
	U64
	I8
	I16
	I32
	I64
	F16
	F32
	F64
)

var ptypeNames = [...]string{"u8", "u16", "u32", "u64", "i8", "i16", "i32", "i64", "f16", "f32", "f64"}

func (p PType) String() string {
	if int(p) < len(ptypeNames) {
		return ptypeNames[p]
	}
	return fmt.Sprintf("ptype(%d)", p)
}

// ByteWidth returns the number of bytes a single value of this ptype
// occupies in a packed buffer.
func (p PType) ByteWidth() int {
	switch p {
	case U8, I8:
		return 1
	case U16, I16, F16:
		return 2
	case U32, I32, F32:
		return 4
	case U64, I64, F64:
		return 8
	default:
		panic(fmt.Sprintf("dtype: unknown ptype %d", p))
	}
}

// IsSignedInt reports whether p is one of i8/i16/i32/i64.
func (p PType) IsSignedInt() bool {
	switch p {
	case I8, I16, I32, I64:
		return true
	default:
		return false
	}
}

// IsUnsignedInt reports whether p is one of u8/u16/u32/u64.
func (p PType) IsUnsignedInt() bool {
	switch p {
	case U8, U16, U32, U64:
		return true
	default:
		return false
	}
}

// IsInt reports whether p is any integer width, signed or unsigned.
func (p PType) IsInt() bool { return p.IsSignedInt() || p.IsUnsignedInt() }

// IsFloat reports whether p is f16/f32/f64.
func (p PType) IsFloat() bool {
	switch p {
	case F16, F32, F64:
		return true
	default:
		return false
	}
}

// unsignedEquivalents maps each ptype to the unsigned ptype of equal width,
// used when down-scaling / re-basing (e.g. Frame-of-Reference, §4.2 "FoR").
var unsignedEquivalents = map[PType]PType{
	U8: U8, U16: U16, U32: U32, U64: U64,
	I8: U8, I16: U16, I32: U32, I64: U64,
}

// UnsignedEquivalent returns the unsigned integer ptype of the same width.
// Panics if p is not an integer ptype; callers are expected to have already
// checked p.IsInt().
func (p PType) UnsignedEquivalent() PType {
	u, ok := unsignedEquivalents[p]
	if !ok {
		panic(fmt.Sprintf("dtype: %s has no unsigned equivalent", p))
	}
	return u
}

// FitsRange reports whether the inclusive range [min, max] (interpreted in
// this ptype's domain) fits within the target ptype without loss. Used by
// the sampling compressor's down-scaling pre-processing pass (spec.md §4.3).
func FitsRange(target PType, min, max int64) bool {
	lo, hi := intPTypeRange(target)
	return min >= lo && max <= hi
}

func intPTypeRange(p PType) (lo, hi int64) {
	switch p {
	case U8:
		return 0, 1<<8 - 1
	case U16:
		return 0, 1<<16 - 1
	case U32:
		return 0, 1<<32 - 1
	case U64:
		return 0, (1<<63 - 1) // conservatively representable in int64
	case I8:
		return -1 << 7, 1<<7 - 1
	case I16:
		return -1 << 15, 1<<15 - 1
	case I32:
		return -1 << 31, 1<<31 - 1
	case I64:
		return -1 << 63, 1<<63 - 1
	default:
		panic(fmt.Sprintf("dtype: %s is not an integer ptype", p))
	}
}

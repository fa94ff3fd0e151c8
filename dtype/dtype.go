// Package dtype implements Vortex's logical type system (spec.md §3,
// "DType"). A DType is one of a closed set of kinds; nullability is part of
// the type itself, so casting may change it.
package dtype

import (
	"fmt"
	"strings"
)

// Kind discriminates the DType sum type.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindPrimitive
	KindDecimal
	KindUtf8
	KindBinary
	KindStruct
	KindList
	KindExtension
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindPrimitive:
		return "primitive"
	case KindDecimal:
		return "decimal"
	case KindUtf8:
		return "utf8"
	case KindBinary:
		return "binary"
	case KindStruct:
		return "struct"
	case KindList:
		return "list"
	case KindExtension:
		return "extension"
	default:
		return "unknown"
	}
}

// Field is a named, typed member of a Struct DType.
type Field struct {
	Name string
	Type DType
}

// ExtDType carries an extension type's identity and opaque metadata
// (spec.md §3, "Extension(ext_dtype)"; §6, "Extension types carry a string
// id and optional metadata bytes").
type ExtDType struct {
	ID       string
	Metadata []byte
	Storage  DType // the canonical storage dtype this extension is backed by
}

// DType is Vortex's logical type. It is an immutable value type: all
// "mutating" helpers (WithNullable, etc.) return a new DType.
type DType struct {
	kind Kind

	nullable bool

	ptype PType // valid when kind == KindPrimitive or KindDecimal

	precision uint8 // valid when kind == KindDecimal
	scale     int8  // valid when kind == KindDecimal

	fields []Field // valid when kind == KindStruct
	elem   *DType  // valid when kind == KindList

	ext *ExtDType // valid when kind == KindExtension
}

// Null is the singleton null DType (never nullable in the usual sense: every
// value simply is null).
var Null = DType{kind: KindNull}

// Bool constructs a Bool DType.
func Bool(nullable bool) DType { return DType{kind: KindBool, nullable: nullable} }

// Primitive constructs a Primitive DType over the given ptype.
func Primitive(p PType, nullable bool) DType {
	return DType{kind: KindPrimitive, ptype: p, nullable: nullable}
}

// Decimal constructs a Decimal DType. precision is the total number of
// significant digits, scale the number of digits after the decimal point
// (may be negative, per spec.md §6 "scale i8").
func Decimal(precision uint8, scale int8, nullable bool) DType {
	return DType{kind: KindDecimal, precision: precision, scale: scale, nullable: nullable}
}

// Utf8 constructs a Utf8 (string) DType.
func Utf8(nullable bool) DType { return DType{kind: KindUtf8, nullable: nullable} }

// Binary constructs a Binary DType.
func Binary(nullable bool) DType { return DType{kind: KindBinary, nullable: nullable} }

// Struct constructs a Struct DType over the given fields. nullable governs
// the struct's own top-level validity, independent of each field's.
func Struct(fields []Field, nullable bool) DType {
	cp := make([]Field, len(fields))
	copy(cp, fields)
	return DType{kind: KindStruct, fields: cp, nullable: nullable}
}

// List constructs a List DType over elem.
func List(elem DType, nullable bool) DType {
	e := elem
	return DType{kind: KindList, elem: &e, nullable: nullable}
}

// Extension constructs an Extension DType.
func Extension(ext ExtDType, nullable bool) DType {
	e := ext
	return DType{kind: KindExtension, ext: &e, nullable: nullable}
}

// Kind returns the DType's discriminant.
func (d DType) Kind() Kind { return d.kind }

// Nullable reports whether values of this type may be null. Always false
// for Null itself (every value trivially "is" null, there is nothing to
// validate).
func (d DType) Nullable() bool { return d.nullable }

// WithNullable returns a copy of d with nullability set to n. Used by cast
// kernels (spec.md §4.1, ComputeVTable "cast") when a cast changes
// nullability (e.g. decoding a dictionary whose values are nullable even
// though the codes child never contains nulls).
func (d DType) WithNullable(n bool) DType {
	d2 := d
	d2.nullable = n
	return d2
}

// PType returns the primitive width. Panics if Kind() is not Primitive or
// Decimal.
func (d DType) PType() PType {
	if d.kind != KindPrimitive && d.kind != KindDecimal {
		panic(fmt.Sprintf("dtype: PType() called on %s", d.kind))
	}
	return d.ptype
}

// DecimalPrecisionScale returns (precision, scale). Panics if Kind() != KindDecimal.
func (d DType) DecimalPrecisionScale() (precision uint8, scale int8) {
	if d.kind != KindDecimal {
		panic(fmt.Sprintf("dtype: DecimalPrecisionScale() called on %s", d.kind))
	}
	return d.precision, d.scale
}

// Fields returns the struct's fields. Panics if Kind() != KindStruct.
func (d DType) Fields() []Field {
	if d.kind != KindStruct {
		panic(fmt.Sprintf("dtype: Fields() called on %s", d.kind))
	}
	return d.fields
}

// Field looks up a struct field by name.
func (d DType) Field(name string) (Field, bool) {
	for _, f := range d.Fields() {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// ElemType returns the list element type. Panics if Kind() != KindList.
func (d DType) ElemType() DType {
	if d.kind != KindList {
		panic(fmt.Sprintf("dtype: ElemType() called on %s", d.kind))
	}
	return *d.elem
}

// ExtDType returns the extension metadata. Panics if Kind() != KindExtension.
func (d DType) ExtDType() ExtDType {
	if d.kind != KindExtension {
		panic(fmt.Sprintf("dtype: ExtDType() called on %s", d.kind))
	}
	return *d.ext
}

// IsNumeric reports whether d is a Primitive or Decimal dtype.
func (d DType) IsNumeric() bool { return d.kind == KindPrimitive || d.kind == KindDecimal }

// Equal reports structural, nullability-sensitive equality, used throughout
// by pre/post-condition checks (spec.md §4.1 "validate pre-conditions...
// matching dtypes").
func (d DType) Equal(o DType) bool {
	if d.kind != o.kind || d.nullable != o.nullable {
		return false
	}
	switch d.kind {
	case KindPrimitive:
		return d.ptype == o.ptype
	case KindDecimal:
		return d.ptype == o.ptype && d.precision == o.precision && d.scale == o.scale
	case KindStruct:
		if len(d.fields) != len(o.fields) {
			return false
		}
		for i, f := range d.fields {
			if f.Name != o.fields[i].Name || !f.Type.Equal(o.fields[i].Type) {
				return false
			}
		}
		return true
	case KindList:
		return d.elem.Equal(*o.elem)
	case KindExtension:
		return d.ext.ID == o.ext.ID
	default:
		return true
	}
}

// EqualIgnoringNullability compares two DTypes ignoring the top-level
// nullable flag; used by cast kernels that only change nullability.
func (d DType) EqualIgnoringNullability(o DType) bool {
	return d.WithNullable(false).Equal(o.WithNullable(false))
}

func (d DType) String() string {
	var sb strings.Builder
	d.writeString(&sb)
	return sb.String()
}

func (d DType) writeString(sb *strings.Builder) {
	switch d.kind {
	case KindPrimitive:
		sb.WriteString(d.ptype.String())
	case KindDecimal:
		fmt.Fprintf(sb, "decimal(%d,%d)", d.precision, d.scale)
	case KindStruct:
		sb.WriteString("struct{")
		for i, f := range d.fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(sb, "%s: %s", f.Name, f.Type)
		}
		sb.WriteString("}")
	case KindList:
		fmt.Fprintf(sb, "list<%s>", d.elem)
	case KindExtension:
		fmt.Fprintf(sb, "ext<%s>", d.ext.ID)
	default:
		sb.WriteString(d.kind.String())
	}
	if d.nullable && d.kind != KindNull {
		sb.WriteString("?")
	}
}

// Package layout implements the Layout tree, LayoutReader family, and the
// scan algorithm described in spec.md §4.4 ("Layouts and File Format"):
// the component the spec itself calls out as THE CORE of the engine. A
// Layout is a small recursive tree describing how an array's rows are
// physically organized across segments — Flat (one segment), Chunked (N
// row-chunks), Column (one child per struct field), Zoned (a data child
// plus a per-block stats "zones" child for pruning), and Dict (a values
// child plus a codes child).
//
// Every array, however deeply compressed, is captured by a Flat layout
// holding exactly one segment: the array's encoding id, dtype, metadata,
// buffers and any encoding-level children (e.g. Bit-packed's patches) are
// all packed into that single segment by the self-describing codec in
// this file. This keeps "one Layout leaf == one segment" literally true
// (spec.md §4.4's Layout kinds table) while still letting compressed
// encodings carry their own internal child arrays.
package layout

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/internal/verrors"
)

func encodeDType(dt dtype.DType, buf *bytes.Buffer) {
	var nullable byte
	if dt.Nullable() {
		nullable = 1
	}
	buf.WriteByte(byte(dt.Kind()))
	buf.WriteByte(nullable)
	switch dt.Kind() {
	case dtype.KindPrimitive:
		buf.WriteByte(byte(dt.PType()))
	case dtype.KindDecimal:
		precision, scale := dt.DecimalPrecisionScale()
		buf.WriteByte(precision)
		buf.WriteByte(byte(scale))
	case dtype.KindStruct:
		fields := dt.Fields()
		writeU32(buf, uint32(len(fields)))
		for _, f := range fields {
			writeString(buf, f.Name)
			encodeDType(f.Type, buf)
		}
	case dtype.KindList:
		encodeDType(dt.ElemType(), buf)
	case dtype.KindExtension:
		ext := dt.ExtDType()
		writeString(buf, ext.ID)
		writeBytes(buf, ext.Metadata)
		encodeDType(ext.Storage, buf)
	}
}

func decodeDType(r *bytes.Reader) (dtype.DType, error) {
	kindByte, err := r.ReadByte()
	if err != nil {
		return dtype.DType{}, err
	}
	nullableByte, err := r.ReadByte()
	if err != nil {
		return dtype.DType{}, err
	}
	nullable := nullableByte != 0
	switch dtype.Kind(kindByte) {
	case dtype.KindNull:
		return dtype.Null, nil
	case dtype.KindBool:
		return dtype.Bool(nullable), nil
	case dtype.KindUtf8:
		return dtype.Utf8(nullable), nil
	case dtype.KindBinary:
		return dtype.Binary(nullable), nil
	case dtype.KindPrimitive:
		p, err := r.ReadByte()
		if err != nil {
			return dtype.DType{}, err
		}
		return dtype.Primitive(dtype.PType(p), nullable), nil
	case dtype.KindDecimal:
		precision, err := r.ReadByte()
		if err != nil {
			return dtype.DType{}, err
		}
		scaleByte, err := r.ReadByte()
		if err != nil {
			return dtype.DType{}, err
		}
		return dtype.Decimal(precision, int8(scaleByte), nullable), nil
	case dtype.KindStruct:
		n, err := readU32(r)
		if err != nil {
			return dtype.DType{}, err
		}
		fields := make([]dtype.Field, n)
		for i := range fields {
			name, err := readString(r)
			if err != nil {
				return dtype.DType{}, err
			}
			ft, err := decodeDType(r)
			if err != nil {
				return dtype.DType{}, err
			}
			fields[i] = dtype.Field{Name: name, Type: ft}
		}
		return dtype.Struct(fields, nullable), nil
	case dtype.KindList:
		elem, err := decodeDType(r)
		if err != nil {
			return dtype.DType{}, err
		}
		return dtype.List(elem, nullable), nil
	case dtype.KindExtension:
		id, err := readString(r)
		if err != nil {
			return dtype.DType{}, err
		}
		meta, err := readBytes(r)
		if err != nil {
			return dtype.DType{}, err
		}
		storage, err := decodeDType(r)
		if err != nil {
			return dtype.DType{}, err
		}
		return dtype.Extension(dtype.ExtDType{ID: id, Metadata: meta, Storage: storage}, nullable), nil
	default:
		return dtype.DType{}, fmt.Errorf("layout: unknown dtype kind byte %d", kindByte)
	}
}

// EncodeDType serializes dt as the schema segment's payload (spec.md §6,
// "schema segment: flatbuffer-wrapped DType bytes").
func EncodeDType(dt dtype.DType) []byte {
	var buf bytes.Buffer
	encodeDType(dt, &buf)
	return buf.Bytes()
}

// DecodeDType is the inverse of EncodeDType.
func DecodeDType(data []byte) (dtype.DType, error) {
	dt, err := decodeDType(bytes.NewReader(data))
	if err != nil {
		return dtype.DType{}, verrors.New("layout.DecodeDType", verrors.InvalidSerde, err)
	}
	return dt, nil
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	buf.Write(tmp[:])
}

func readU32(r *bytes.Reader) (uint32, error) {
	var tmp [4]byte
	if _, err := readFull(r, tmp[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(tmp[:]), nil
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	buf.Write(tmp[:])
}

func readU16(r *bytes.Reader) (uint16, error) {
	var tmp [2]byte
	if _, err := readFull(r, tmp[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(tmp[:]), nil
}

func readFull(r *bytes.Reader, p []byte) (int, error) {
	n := 0
	for n < len(p) {
		m, err := r.Read(p[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

func writeBytes(buf *bytes.Buffer, b []byte) {
	writeU32(buf, uint32(len(b)))
	buf.Write(b)
}

func readBytes(r *bytes.Reader) ([]byte, error) {
	n, err := readU32(r)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	if n > 0 {
		if _, err := readFull(r, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func writeString(buf *bytes.Buffer, s string) { writeBytes(buf, []byte(s)) }

func readString(r *bytes.Reader) (string, error) {
	b, err := readBytes(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// EncodeArray serializes a, including its full encoding-level child tree
// (e.g. Bit-packed patches, Dict values), into one self-describing byte
// blob suitable for a single segment (spec.md §4.4, Flat: "1 segment").
func EncodeArray(a array.Array) []byte {
	var buf bytes.Buffer
	encodeNode(a, &buf)
	return buf.Bytes()
}

func encodeNode(a array.Array, buf *bytes.Buffer) {
	encodeDType(a.DType(), buf)
	writeU16(buf, uint16(a.Encoding()))
	writeU32(buf, uint32(a.Len()))

	var metadata []byte
	if s, ok := a.(array.Serde); ok {
		metadata = s.Metadata()
	}
	writeBytes(buf, metadata)

	var bufNames []string
	var bufBytes [][]byte
	a.VisitBuffers(func(name string, b []byte) {
		bufNames = append(bufNames, name)
		bufBytes = append(bufBytes, b)
	})
	writeU16(buf, uint16(len(bufBytes)))
	for _, b := range bufBytes {
		writeBytes(buf, b)
	}

	var children []array.Array
	a.VisitChildren(func(name string, child array.Array) {
		children = append(children, child)
	})
	writeU16(buf, uint16(len(children)))
	for _, c := range children {
		encodeNode(c, buf)
	}
}

// DecodeArray deserializes a blob produced by EncodeArray, rebuilding the
// array (and its children, recursively) via reg.
func DecodeArray(reg *array.Registry, data []byte) (array.Array, error) {
	r := bytes.NewReader(data)
	a, err := decodeNode(reg, r)
	if err != nil {
		return nil, verrors.New("layout.DecodeArray", verrors.InvalidSerde, err)
	}
	return a, nil
}

func decodeNode(reg *array.Registry, r *bytes.Reader) (array.Array, error) {
	dt, err := decodeDType(r)
	if err != nil {
		return nil, err
	}
	encID, err := readU16(r)
	if err != nil {
		return nil, err
	}
	length, err := readU32(r)
	if err != nil {
		return nil, err
	}
	metadata, err := readBytes(r)
	if err != nil {
		return nil, err
	}
	numBuffers, err := readU16(r)
	if err != nil {
		return nil, err
	}
	segments := make([][]byte, numBuffers)
	for i := range segments {
		segments[i], err = readBytes(r)
		if err != nil {
			return nil, err
		}
	}
	numChildren, err := readU16(r)
	if err != nil {
		return nil, err
	}
	children := make([]array.Array, numChildren)
	for i := range children {
		children[i], err = decodeNode(reg, r)
		if err != nil {
			return nil, err
		}
	}
	return reg.Build(array.EncodingID(encID), dt, int(length), metadata, segments, children)
}

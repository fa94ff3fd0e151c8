// Package fb hand-encodes the small flatbuffer tables the Vortex file
// format's footer carries (spec.md §6: "Postscript (flatbuffer)",
// "Layout flatbuffer"), using the real github.com/google/flatbuffers Go
// runtime's low-level Builder/Table API directly rather than flatc
// generated accessors (this environment has no flatc to run). Every
// table here is a flat list of fields, each either a little-endian
// uint64 or a byte vector; the richer recursive payloads (the DType
// tree, the Layout tree, the segment map) are encoded by this module's
// own compact binary codecs (layout.EncodeTree, file.encodeSegmentMap)
// and carried as opaque byte vectors, since hand-rolling flatbuffers
// unions for a variant tree without flatc is its own large, error-prone
// undertaking (documented as a scope decision in DESIGN.md).
package fb

import (
	"fmt"

	flatbuffers "github.com/google/flatbuffers/go"
)

// BuildU64Pair encodes a two-field table of plain uint64s, used for the
// Postscript (spec.md §6: "{schema_offset: u64, layout_offset: u64}").
func BuildU64Pair(a, b uint64) []byte {
	builder := flatbuffers.NewBuilder(32)
	builder.StartObject(2)
	builder.PrependUint64Slot(1, b, 0)
	builder.PrependUint64Slot(0, a, 0)
	end := builder.EndObject()
	builder.Finish(end)
	return builder.FinishedBytes()
}

// ParseU64Pair decodes a table built by BuildU64Pair.
func ParseU64Pair(buf []byte) (a, b uint64, err error) {
	t, err := rootTable(buf)
	if err != nil {
		return 0, 0, err
	}
	if o := t.Offset(4); o != 0 {
		a = t.GetUint64(o + t.Pos)
	}
	if o := t.Offset(6); o != 0 {
		b = t.GetUint64(o + t.Pos)
	}
	return a, b, nil
}

// BuildByteVectors encodes a flatbuffer table whose N fields are each a
// byte vector, in order. Used for the schema segment (one field: the
// dtype codec's bytes) and the layout segment (two fields: the layout
// tree bytes and the segment map bytes).
func BuildByteVectors(vectors ...[]byte) []byte {
	builder := flatbuffers.NewBuilder(256)
	offsets := make([]flatbuffers.UOffsetT, len(vectors))
	// Vectors must be fully written before the table that references
	// them calls StartObject (flatbuffers builds back-to-front).
	for i := len(vectors) - 1; i >= 0; i-- {
		offsets[i] = builder.CreateByteVector(vectors[i])
	}
	builder.StartObject(len(vectors))
	for i := len(vectors) - 1; i >= 0; i-- {
		builder.PrependUOffsetTSlot(i, offsets[i], 0)
	}
	end := builder.EndObject()
	builder.Finish(end)
	return builder.FinishedBytes()
}

// ParseByteVectors decodes a table built by BuildByteVectors with n
// fields, returning each field's bytes (nil for an absent/empty field).
func ParseByteVectors(buf []byte, n int) ([][]byte, error) {
	t, err := rootTable(buf)
	if err != nil {
		return nil, err
	}
	out := make([][]byte, n)
	for i := 0; i < n; i++ {
		voffset := flatbuffers.VOffsetT(4 + 2*i)
		if o := t.Offset(voffset); o != 0 {
			out[i] = t.ByteVector(o + t.Pos)
		}
	}
	return out, nil
}

func rootTable(buf []byte) (*flatbuffers.Table, error) {
	if len(buf) < 4 {
		return nil, fmt.Errorf("fb: buffer too short (%d bytes) to hold a root offset", len(buf))
	}
	pos := flatbuffers.GetUOffsetT(buf)
	return &flatbuffers.Table{Bytes: buf, Pos: pos}, nil
}

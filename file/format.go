// Package file implements the on-disk Vortex file format: magic/version/
// EOF framing, the postscript and layout/schema segments, a
// SegmentSource backed by an initial-read cache plus a ristretto-backed
// fallback cache, a bounded-concurrency segment-fetch driver, and a
// writer (spec.md §4.4 "Layouts and File Format", §6 "External
// Interfaces"). Every piece here consumes the layout package's Layout
// tree and LayoutReader family; this package owns only bytes-on-disk
// concerns.
package file

import (
	"encoding/binary"
	"fmt"

	"github.com/deepteams/vortex/file/fb"
	"github.com/deepteams/vortex/internal/verrors"
)

// Magic identifies a Vortex file, checked at both ends of the EOF
// trailer protocol (spec.md §6, "EOF trailer bytes [version][size]['VRTX']").
var Magic = [4]byte{'V', 'R', 'T', 'X'}

// Version is the current on-disk format version this package writes and
// the only version it reads (spec.md §6: "version currently 1").
const Version uint16 = 1

// EOFTrailerSize is the fixed-size footer every Vortex file ends with:
// version (u16 LE) + postscript_size (u16 LE) + magic (4 bytes).
const EOFTrailerSize = 8

// EOFTrailer is the parsed form of the file's final 8 bytes.
type EOFTrailer struct {
	Version        uint16
	PostscriptSize uint16
}

// EncodeEOFTrailer serializes t per spec.md §6's exact byte layout.
func EncodeEOFTrailer(t EOFTrailer) [EOFTrailerSize]byte {
	var out [EOFTrailerSize]byte
	binary.LittleEndian.PutUint16(out[0:2], t.Version)
	binary.LittleEndian.PutUint16(out[2:4], t.PostscriptSize)
	copy(out[4:8], Magic[:])
	return out
}

// DecodeEOFTrailer parses the last EOFTrailerSize bytes of a file,
// validating the magic and that the version is one this reader supports
// (spec.md §7, InvalidSerde: "failed magic/version checks").
func DecodeEOFTrailer(b []byte) (EOFTrailer, error) {
	if len(b) != EOFTrailerSize {
		return EOFTrailer{}, verrors.Newf("file.DecodeEOFTrailer", verrors.InvalidSerde, "expected %d trailer bytes, got %d", EOFTrailerSize, len(b))
	}
	var magic [4]byte
	copy(magic[:], b[4:8])
	if magic != Magic {
		return EOFTrailer{}, verrors.Newf("file.DecodeEOFTrailer", verrors.InvalidSerde, "bad magic %q", magic)
	}
	t := EOFTrailer{
		Version:        binary.LittleEndian.Uint16(b[0:2]),
		PostscriptSize: binary.LittleEndian.Uint16(b[2:4]),
	}
	if t.Version != Version {
		return EOFTrailer{}, verrors.Newf("file.DecodeEOFTrailer", verrors.InvalidSerde, "unsupported version %d (want %d)", t.Version, Version)
	}
	return t, nil
}

// Postscript locates the schema and layout segments (spec.md §6:
// "schema_offset <= layout_offset < postscript_offset"). Both offsets
// are absolute byte offsets from the start of the file.
type Postscript struct {
	SchemaOffset uint64
	LayoutOffset uint64
}

// EncodePostscript serializes p as the tiny flatbuffer table spec.md §6
// describes.
func EncodePostscript(p Postscript) []byte {
	return fb.BuildU64Pair(p.SchemaOffset, p.LayoutOffset)
}

// DecodePostscript parses bytes produced by EncodePostscript.
func DecodePostscript(b []byte) (Postscript, error) {
	schemaOffset, layoutOffset, err := fb.ParseU64Pair(b)
	if err != nil {
		return Postscript{}, verrors.New("file.DecodePostscript", verrors.InvalidSerde, err)
	}
	return Postscript{SchemaOffset: schemaOffset, LayoutOffset: layoutOffset}, nil
}

// SegmentMapEntry locates one segment's bytes within the file (spec.md
// §6: "segment_map[i] = {offset: u64, length: u32, alignment: u8 (log2)}").
type SegmentMapEntry struct {
	Offset    uint64
	Length    uint32
	Alignment uint8
}

func encodeSegmentMap(entries []SegmentMapEntry) []byte {
	buf := make([]byte, 4+len(entries)*13)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(entries)))
	off := 4
	for _, e := range entries {
		binary.LittleEndian.PutUint64(buf[off:off+8], e.Offset)
		binary.LittleEndian.PutUint32(buf[off+8:off+12], e.Length)
		buf[off+12] = e.Alignment
		off += 13
	}
	return buf
}

func decodeSegmentMap(buf []byte) ([]SegmentMapEntry, error) {
	if len(buf) < 4 {
		return nil, fmt.Errorf("file: segment map too short")
	}
	n := binary.LittleEndian.Uint32(buf[0:4])
	entries := make([]SegmentMapEntry, n)
	off := 4
	for i := range entries {
		if off+13 > len(buf) {
			return nil, fmt.Errorf("file: segment map truncated at entry %d", i)
		}
		entries[i] = SegmentMapEntry{
			Offset:    binary.LittleEndian.Uint64(buf[off : off+8]),
			Length:    binary.LittleEndian.Uint32(buf[off+8 : off+12]),
			Alignment: buf[off+12],
		}
		off += 13
	}
	return entries, nil
}

package layout

import (
	"bytes"

	"github.com/deepteams/vortex/internal/verrors"
)

// EncodeTree serializes l's structure (kind, dtype, row counts, segment
// ids, chunk offsets, zone length) without touching any segment bytes —
// this is the payload of the file's "layout segment" (spec.md §6, "Layout
// flatbuffer {root_layout, segment_map[], stats_sets[]}"). file.WriteFooter
// stores it next to the segment map via file/fb.BuildByteVectors; no
// stats_sets are written.
func EncodeTree(l *Layout) []byte {
	var buf bytes.Buffer
	encodeLayoutNode(l, &buf)
	return buf.Bytes()
}

func encodeLayoutNode(l *Layout, buf *bytes.Buffer) {
	buf.WriteByte(byte(l.Kind))
	encodeDType(l.DT, buf)
	writeU32(buf, uint32(l.RowCount))
	switch l.Kind {
	case KindFlat:
		writeU32(buf, uint32(l.Segment))
	case KindChunked:
		writeU32(buf, uint32(len(l.Children)))
		for _, c := range l.Children {
			encodeLayoutNode(c, buf)
		}
	case KindColumn:
		writeU32(buf, uint32(len(l.Column)))
		for _, c := range l.Column {
			encodeLayoutNode(c, buf)
		}
	case KindZoned:
		writeU32(buf, uint32(l.ZoneLen))
		encodeLayoutNode(l.Data, buf)
		encodeLayoutNode(l.Zones, buf)
	case KindDict:
		encodeLayoutNode(l.Values, buf)
		encodeLayoutNode(l.Codes, buf)
	}
}

// DecodeTree deserializes a blob produced by EncodeTree.
func DecodeTree(data []byte) (*Layout, error) {
	r := bytes.NewReader(data)
	l, err := decodeLayoutNode(r)
	if err != nil {
		return nil, verrors.New("layout.DecodeTree", verrors.InvalidSerde, err)
	}
	return l, nil
}

func decodeLayoutNode(r *bytes.Reader) (*Layout, error) {
	kindByte, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	dt, err := decodeDType(r)
	if err != nil {
		return nil, err
	}
	rowCount, err := readU32(r)
	if err != nil {
		return nil, err
	}
	l := &Layout{Kind: Kind(kindByte), DT: dt, RowCount: int(rowCount)}
	switch l.Kind {
	case KindFlat:
		seg, err := readU32(r)
		if err != nil {
			return nil, err
		}
		l.Segment = SegmentID(seg)
	case KindChunked:
		n, err := readU32(r)
		if err != nil {
			return nil, err
		}
		l.Children = make([]*Layout, n)
		l.ChunkOffsets = make([]int, n+1)
		for i := range l.Children {
			c, err := decodeLayoutNode(r)
			if err != nil {
				return nil, err
			}
			l.Children[i] = c
			l.ChunkOffsets[i+1] = l.ChunkOffsets[i] + c.RowCount
		}
	case KindColumn:
		n, err := readU32(r)
		if err != nil {
			return nil, err
		}
		l.Column = make([]*Layout, n)
		for i := range l.Column {
			c, err := decodeLayoutNode(r)
			if err != nil {
				return nil, err
			}
			l.Column[i] = c
		}
	case KindZoned:
		zoneLen, err := readU32(r)
		if err != nil {
			return nil, err
		}
		l.ZoneLen = int(zoneLen)
		l.Data, err = decodeLayoutNode(r)
		if err != nil {
			return nil, err
		}
		l.Zones, err = decodeLayoutNode(r)
		if err != nil {
			return nil, err
		}
	case KindDict:
		var err error
		l.Values, err = decodeLayoutNode(r)
		if err != nil {
			return nil, err
		}
		l.Codes, err = decodeLayoutNode(r)
		if err != nil {
			return nil, err
		}
	}
	return l, nil
}

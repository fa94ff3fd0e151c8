package file

import (
	"fmt"
	"io"

	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/file/fb"
	"github.com/deepteams/vortex/internal/verrors"
	"github.com/deepteams/vortex/layout"
)

// Footer is everything a reader needs beyond the raw segment bytes: the
// top-level schema, the root layout tree, and where each segment lives
// in the file (spec.md §6, "footer: schema segment + layout segment +
// postscript + EOF trailer").
type Footer struct {
	Schema   dtype.DType
	Root     *layout.Layout
	Segments []SegmentMapEntry
}

// WriteFooter appends the schema segment, layout segment, postscript,
// and EOF trailer to w, in that order, starting at file offset base
// (the number of bytes already written for data segments). It returns
// the total number of footer bytes written.
func WriteFooter(w io.Writer, base uint64, f Footer) (int64, error) {
	schemaBytes := fb.BuildByteVectors(layout.EncodeDType(f.Schema))
	schemaOffset := base
	if _, err := w.Write(schemaBytes); err != nil {
		return 0, err
	}

	layoutOffset := schemaOffset + uint64(len(schemaBytes))
	layoutBytes := fb.BuildByteVectors(layout.EncodeTree(f.Root), encodeSegmentMap(f.Segments))
	if _, err := w.Write(layoutBytes); err != nil {
		return 0, err
	}

	postscriptBytes := EncodePostscript(Postscript{SchemaOffset: schemaOffset, LayoutOffset: layoutOffset})
	if len(postscriptBytes) > 0xFFFF {
		return 0, fmt.Errorf("file: postscript too large (%d bytes)", len(postscriptBytes))
	}
	if _, err := w.Write(postscriptBytes); err != nil {
		return 0, err
	}

	trailer := EncodeEOFTrailer(EOFTrailer{Version: Version, PostscriptSize: uint16(len(postscriptBytes))})
	if _, err := w.Write(trailer[:]); err != nil {
		return 0, err
	}

	total := int64(len(schemaBytes)) + int64(len(layoutBytes)) + int64(len(postscriptBytes)) + EOFTrailerSize
	return total, nil
}

// ParseFooter reconstructs a Footer from the trailing region of a
// Vortex file. tail must contain at least the last
// VORTEX_INITIAL_READ_BYTES of the file (spec.md §6, "Open(): read the
// last INITIAL_READ_SIZE bytes"); tailBase is the absolute file offset
// of tail[0].
func ParseFooter(tail []byte, tailBase uint64) (Footer, error) {
	if len(tail) < EOFTrailerSize {
		return Footer{}, verrors.New("file.ParseFooter", verrors.InvalidSerde, fmt.Errorf("tail region too short"))
	}
	var trailerBuf [EOFTrailerSize]byte
	copy(trailerBuf[:], tail[len(tail)-EOFTrailerSize:])
	trailer, err := DecodeEOFTrailer(trailerBuf[:])
	if err != nil {
		return Footer{}, err
	}

	postscriptEnd := uint64(len(tail)) - EOFTrailerSize
	if uint64(trailer.PostscriptSize) > postscriptEnd {
		return Footer{}, verrors.New("file.ParseFooter", verrors.InvalidSerde, fmt.Errorf("initial read window too small for postscript"))
	}
	postscriptStart := postscriptEnd - uint64(trailer.PostscriptSize)
	postscript, err := DecodePostscript(tail[postscriptStart:postscriptEnd])
	if err != nil {
		return Footer{}, err
	}
	postscriptAbs := tailBase + postscriptStart

	if postscript.SchemaOffset < tailBase || postscript.LayoutOffset < tailBase {
		return Footer{}, verrors.New("file.ParseFooter", verrors.InvalidSerde, fmt.Errorf("initial read window did not cover schema/layout segments; caller must re-read with a larger window"))
	}
	schemaStart := postscript.SchemaOffset - tailBase
	layoutStart := postscript.LayoutOffset - tailBase
	layoutEnd := postscriptAbs - tailBase
	if layoutEnd > uint64(len(tail)) || layoutStart > layoutEnd || schemaStart > layoutStart {
		return Footer{}, verrors.New("file.ParseFooter", verrors.InvalidSerde, fmt.Errorf("malformed postscript offsets"))
	}

	schemaFields, err := fb.ParseByteVectors(tail[schemaStart:layoutStart], 1)
	if err != nil {
		return Footer{}, err
	}
	schema, err := layout.DecodeDType(schemaFields[0])
	if err != nil {
		return Footer{}, err
	}

	layoutFields, err := fb.ParseByteVectors(tail[layoutStart:layoutEnd], 2)
	if err != nil {
		return Footer{}, err
	}
	root, err := layout.DecodeTree(layoutFields[0])
	if err != nil {
		return Footer{}, err
	}
	segments, err := decodeSegmentMap(layoutFields[1])
	if err != nil {
		return Footer{}, verrors.New("file.ParseFooter", verrors.InvalidSerde, err)
	}

	return Footer{Schema: schema, Root: root, Segments: segments}, nil
}

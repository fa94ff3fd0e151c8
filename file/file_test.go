package file_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/file"
	"github.com/deepteams/vortex/layout"
	"github.com/deepteams/vortex/mask"
	"github.com/deepteams/vortex/scalar"
	"github.com/deepteams/vortex/validity"
)

func TestEOFTrailerRoundTrip(t *testing.T) {
	trailer := file.EncodeEOFTrailer(file.EOFTrailer{Version: file.Version, PostscriptSize: 42})
	decoded, err := file.DecodeEOFTrailer(trailer[:])
	require.NoError(t, err)
	assert.Equal(t, file.Version, decoded.Version)
	assert.Equal(t, uint16(42), decoded.PostscriptSize)
}

func TestDecodeEOFTrailerBadMagic(t *testing.T) {
	var bad [file.EOFTrailerSize]byte
	_, err := file.DecodeEOFTrailer(bad[:])
	assert.Error(t, err)
}

func TestPostscriptRoundTrip(t *testing.T) {
	encoded := file.EncodePostscript(file.Postscript{SchemaOffset: 100, LayoutOffset: 250})
	decoded, err := file.DecodePostscript(encoded)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), decoded.SchemaOffset)
	assert.Equal(t, uint64(250), decoded.LayoutOffset)
}

// memFile is an in-memory ReaderAtSizer, standing in for an *os.File.
type memFile struct {
	data []byte
}

func (m *memFile) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *memFile) Size() (int64, error) { return int64(len(m.data)), nil }

func intArray(vals ...int64) array.Array {
	values := make([]scalar.Scalar, len(vals))
	for i, v := range vals {
		values[i] = scalar.FromInt(dtype.I64, v, false)
	}
	return array.FromScalars(dtype.Primitive(dtype.I64, false), values)
}

func TestWriteThenOpenRoundTrip(t *testing.T) {
	a := intArray(1, 2, 3, 4, 5, 6, 7, 8)

	var buf bytes.Buffer
	w := file.NewWriter(&buf, file.VortexWriteOptions{ChunkRows: 3})
	root, err := w.WriteArray(a)
	require.NoError(t, err)
	require.NoError(t, w.Close(a.DType(), root))

	mf := &memFile{data: buf.Bytes()}
	vf, err := file.Open(context.Background(), mf, file.VortexOpenOptions{})
	require.NoError(t, err)
	defer vf.Close()

	require.True(t, a.DType().Equal(vf.Schema))

	results, err := layout.Scan(context.Background(), vf.Reader, vf.Root, layout.ScanOptions{})
	require.NoError(t, err)

	var got []string
	for _, r := range results {
		for i := 0; i < r.Array.Len(); i++ {
			got = append(got, array.ScalarAt(r.Array, i).String())
		}
	}
	require.Len(t, got, a.Len())
	for i := 0; i < a.Len(); i++ {
		assert.Equal(t, array.ScalarAt(a, i).String(), got[i])
	}
}

func TestWriteThenOpenStructRoundTrip(t *testing.T) {
	ids := intArray(1, 2, 3)
	vals := intArray(10, 20, 30)
	structDT := dtype.Struct([]dtype.Field{
		{Name: "id", Type: ids.DType()},
		{Name: "val", Type: vals.DType()},
	}, false)
	sa := array.NewStruct(structDT, []array.Array{ids, vals}, validity.AllValid(ids.Len()))

	var buf bytes.Buffer
	w := file.NewWriter(&buf, file.VortexWriteOptions{})
	root, err := w.WriteArray(sa)
	require.NoError(t, err)
	require.NoError(t, w.Close(structDT, root))

	mf := &memFile{data: buf.Bytes()}
	vf, err := file.Open(context.Background(), mf, file.VortexOpenOptions{})
	require.NoError(t, err)
	defer vf.Close()

	out, err := vf.Reader.Project(context.Background(), layout.RowRange{Start: 0, End: 3}, mask.AllTrue(3))
	require.NoError(t, err)
	outSA, ok := array.Canonicalize(out).(*array.StructArray)
	require.True(t, ok)
	assert.Equal(t, "20", array.ScalarAt(outSA.Field("val"), 1).String())
}

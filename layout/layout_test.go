package layout_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/compute"
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/layout"
	"github.com/deepteams/vortex/mask"
	"github.com/deepteams/vortex/scalar"
	"github.com/deepteams/vortex/stats"
	"github.com/deepteams/vortex/validity"
)

func intArray(vals ...int64) array.Array {
	values := make([]scalar.Scalar, len(vals))
	for i, v := range vals {
		values[i] = scalar.FromInt(dtype.I64, v, false)
	}
	return array.FromScalars(dtype.Primitive(dtype.I64, false), values)
}

func buildFlat(t *testing.T, segID layout.SegmentID, a array.Array) (*layout.Layout, map[layout.SegmentID][]byte) {
	t.Helper()
	l := layout.NewFlat(a.DType(), a.Len(), segID)
	segs := map[layout.SegmentID][]byte{segID: layout.EncodeArray(a)}
	return l, segs
}

func TestArrayCodecRoundTrip(t *testing.T) {
	a := intArray(1, 2, 3, 4, 5)
	encoded := layout.EncodeArray(a)
	decoded, err := layout.DecodeArray(array.DefaultRegistry, encoded)
	require.NoError(t, err)
	require.Equal(t, a.Len(), decoded.Len())
	for i := 0; i < a.Len(); i++ {
		assert.Equal(t, array.ScalarAt(a, i).String(), array.ScalarAt(decoded, i).String())
	}
}

func TestDTypeCodecRoundTrip(t *testing.T) {
	dt := dtype.Struct([]dtype.Field{
		{Name: "a", Type: dtype.Primitive(dtype.I32, true)},
		{Name: "b", Type: dtype.Utf8(false)},
		{Name: "c", Type: dtype.Decimal(10, 2, false)},
	}, false)
	encoded := layout.EncodeDType(dt)
	decoded, err := layout.DecodeDType(encoded)
	require.NoError(t, err)
	assert.True(t, dt.Equal(decoded))
}

func TestFlatReaderScan(t *testing.T) {
	a := intArray(10, 20, 30, 40, 50)
	l, segs := buildFlat(t, 0, a)
	src := layout.NewStaticSource(segs)
	reader, err := layout.Build(l, src, nil)
	require.NoError(t, err)

	results, err := layout.Scan(context.Background(), reader, l, layout.ScanOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 5, results[0].Array.Len())
}

func TestChunkedReaderScan(t *testing.T) {
	chunk1 := intArray(1, 2, 3)
	chunk2 := intArray(4, 5, 6, 7)
	l1, segs1 := buildFlat(t, 0, chunk1)
	l2, segs2 := buildFlat(t, 1, chunk2)
	root := layout.NewChunked(chunk1.DType(), []*layout.Layout{l1, l2})

	segs := map[layout.SegmentID][]byte{}
	for k, v := range segs1 {
		segs[k] = v
	}
	for k, v := range segs2 {
		segs[k] = v
	}
	src := layout.NewStaticSource(segs)
	reader, err := layout.Build(root, src, nil)
	require.NoError(t, err)

	assert.Equal(t, []int{3}, reader.Splits())

	results, err := layout.Scan(context.Background(), reader, root, layout.ScanOptions{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 3, results[0].Array.Len())
	assert.Equal(t, 4, results[1].Array.Len())
}

func TestColumnReaderProject(t *testing.T) {
	idArr := intArray(1, 2, 3)
	valArr := intArray(100, 200, 300)
	idLayout, idSegs := buildFlat(t, 0, idArr)
	valLayout, valSegs := buildFlat(t, 1, valArr)

	structDT := dtype.Struct([]dtype.Field{
		{Name: "id", Type: idArr.DType()},
		{Name: "val", Type: valArr.DType()},
	}, false)
	root := layout.NewColumn(structDT, []*layout.Layout{idLayout, valLayout})

	segs := map[layout.SegmentID][]byte{}
	for k, v := range idSegs {
		segs[k] = v
	}
	for k, v := range valSegs {
		segs[k] = v
	}
	src := layout.NewStaticSource(segs)
	reader, err := layout.Build(root, src, nil)
	require.NoError(t, err)

	out, err := reader.Project(context.Background(), layout.RowRange{Start: 0, End: 3}, mask.AllTrue(3))
	require.NoError(t, err)
	sa, ok := array.Canonicalize(out).(*array.StructArray)
	require.True(t, ok)
	assert.Equal(t, 3, sa.Len())
	assert.Equal(t, "200", array.ScalarAt(sa.Field("val"), 1).String())
}

func TestPredicateEvaluateAndPrune(t *testing.T) {
	a := intArray(1, 2, 3, 4, 5)
	pred := layout.Compare("", compute.Gt, scalar.FromInt(dtype.I64, 3, false))
	m, err := pred.Evaluate(array.NewContext(), a)
	require.NoError(t, err)
	assert.Equal(t, 2, m.TrueCount())

	a.Stats().SetExact(stats.Min, scalar.FromInt(dtype.I64, 1, false))
	a.Stats().SetExact(stats.Max, scalar.FromInt(dtype.I64, 2, false))
	assert.Equal(t, layout.CanPrune, pred.PruneStats(a.Stats()))
}

func TestZonedReaderPrune(t *testing.T) {
	data := intArray(1, 2, 3, 4, 5, 6)
	dataLayout, dataSegs := buildFlat(t, 0, data)

	mins := intArray(1, 4)
	maxes := intArray(3, 6)
	zonesDT := dtype.Struct([]dtype.Field{
		{Name: "min", Type: mins.DType()},
		{Name: "max", Type: maxes.DType()},
	}, false)
	zonesStruct := array.NewStruct(zonesDT, []array.Array{mins, maxes}, validity.AllValid(2))
	zonesLayout, zonesSegs := buildFlat(t, 1, zonesStruct)

	root := layout.NewZoned(data.DType(), dataLayout, zonesLayout, 3)

	segs := map[layout.SegmentID][]byte{}
	for k, v := range dataSegs {
		segs[k] = v
	}
	for k, v := range zonesSegs {
		segs[k] = v
	}
	src := layout.NewStaticSource(segs)
	reader, err := layout.Build(root, src, nil)
	require.NoError(t, err)

	pred := layout.Compare("", compute.Gt, scalar.FromInt(dtype.I64, 100, false))
	prune, err := reader.Prune(context.Background(), layout.RowRange{Start: 0, End: 3}, pred)
	require.NoError(t, err)
	assert.Equal(t, layout.CanPrune, prune)

	pred2 := layout.Compare("", compute.Gt, scalar.FromInt(dtype.I64, 2, false))
	prune2, err := reader.Prune(context.Background(), layout.RowRange{Start: 0, End: 3}, pred2)
	require.NoError(t, err)
	assert.Equal(t, layout.CannotPrune, prune2)
}

func TestDictReaderProject(t *testing.T) {
	values := intArray(10, 20, 30)
	codes := codeArray(0, 1, 2, 0, 1)
	valuesLayout, valuesSegs := buildFlat(t, 0, values)
	codesLayout, codesSegs := buildFlat(t, 1, codes)
	root := layout.NewDict(values.DType(), valuesLayout, codesLayout)

	segs := map[layout.SegmentID][]byte{}
	for k, v := range valuesSegs {
		segs[k] = v
	}
	for k, v := range codesSegs {
		segs[k] = v
	}
	src := layout.NewStaticSource(segs)
	reader, err := layout.Build(root, src, nil)
	require.NoError(t, err)

	out, err := reader.Project(context.Background(), layout.RowRange{Start: 0, End: 5}, mask.AllTrue(5))
	require.NoError(t, err)
	require.Equal(t, 5, out.Len())
	assert.Equal(t, "10", array.ScalarAt(out, 0).String())
	assert.Equal(t, "20", array.ScalarAt(out, 1).String())
	assert.Equal(t, "30", array.ScalarAt(out, 2).String())
}

func codeArray(codes ...int64) array.Array {
	values := make([]scalar.Scalar, len(codes))
	for i, c := range codes {
		values[i] = scalar.FromInt(dtype.U32, c, false)
	}
	return array.FromScalars(dtype.Primitive(dtype.U32, false), values)
}

func TestScanWithFilterPrunesChunks(t *testing.T) {
	chunk1 := intArray(1, 2, 3)
	chunk2 := intArray(100, 200, 300)
	l1, segs1 := buildFlat(t, 0, chunk1)
	l2, segs2 := buildFlat(t, 1, chunk2)
	root := layout.NewChunked(chunk1.DType(), []*layout.Layout{l1, l2})

	segs := map[layout.SegmentID][]byte{}
	for k, v := range segs1 {
		segs[k] = v
	}
	for k, v := range segs2 {
		segs[k] = v
	}
	src := layout.NewStaticSource(segs)
	reader, err := layout.Build(root, src, nil)
	require.NoError(t, err)

	pred := layout.Compare("", compute.Gt, scalar.FromInt(dtype.I64, 50, false))
	results, err := layout.Scan(context.Background(), reader, root, layout.ScanOptions{Filter: pred})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 3, results[0].Array.Len())
}

package compute

import (
	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/dtype"
)

// FnUncompressedSize is the canonical name kernels register under for
// UncompressedSize.
const FnUncompressedSize = "uncompressed_size"

// UncompressedSize estimates the byte size of a were it canonicalized and
// densely packed, without materializing it — used by the sampling
// compressor's ratio computation and by stats.UncompressedSizeInBytes.
func UncompressedSize(ctx *array.Context, a array.Array) (int64, error) {
	if result, err := Invoke(ctx.Registry, FnUncompressedSize, []any{a}); err == nil {
		return result.(int64), nil
	}
	dt := a.DType()
	n := int64(a.Len())
	var perRow int64
	switch dt.Kind() {
	case dtype.KindNull:
		return 0, nil
	case dtype.KindBool:
		return (n + 7) / 8, nil
	case dtype.KindPrimitive:
		perRow = int64(dt.PType().ByteWidth())
	case dtype.KindDecimal:
		perRow = 16
	default:
		// Variable-width and nested kinds: canonicalize and sum actual
		// buffer sizes, the only way to get a faithful estimate.
		c := array.Canonicalize(a)
		var total int64
		c.VisitBuffers(func(name string, bytes []byte) { total += int64(len(bytes)) })
		c.VisitChildren(func(name string, child array.Array) {
			if sz, err := UncompressedSize(ctx, child); err == nil {
				total += sz
			}
		})
		return total, nil
	}
	return perRow * n, nil
}

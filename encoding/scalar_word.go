package encoding

import (
	"fmt"
	"math"

	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/internal/verrors"
	"github.com/deepteams/vortex/scalar"
)

// encodeScalarWord and decodeScalarWord extend decodeForMetadata's 8-byte
// primitive scalar encoding with a leading null flag, the shape Sparse's
// fill value needs (spec.md §4.2, "Sparse") that FoR's always-non-null
// reference does not.
func encodeScalarWord(dt dtype.DType, v scalar.Scalar) []byte {
	out := make([]byte, 9)
	if v.IsNull() {
		return out
	}
	out[0] = 1
	var u uint64
	if dt.PType().IsFloat() {
		u = math.Float64bits(v.AsFloat())
	} else {
		u = uint64(v.AsInt())
	}
	for i := 0; i < 8; i++ {
		out[1+i] = byte(u >> (8 * uint(i)))
	}
	return out
}

func decodeScalarWord(dt dtype.DType, metadata []byte) (scalar.Scalar, error) {
	if len(metadata) != 9 {
		return scalar.Scalar{}, verrors.New("sparse.metadata", verrors.InvalidSerde, fmt.Errorf("expected 9 bytes, got %d", len(metadata)))
	}
	if metadata[0] == 0 {
		return scalar.Null(dt), nil
	}
	var u uint64
	for i := 0; i < 8; i++ {
		u |= uint64(metadata[1+i]) << (8 * uint(i))
	}
	p := dt.PType()
	if p.IsFloat() {
		return scalar.FromFloat(p, math.Float64frombits(u), dt.Nullable()), nil
	}
	return scalar.FromInt(p, int64(u), dt.Nullable()), nil
}

package encoding

import (
	"fmt"
	"math"

	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/internal/verrors"
	"github.com/deepteams/vortex/scalar"
)

// decodeForMetadata reads an 8-byte little-endian reference scalar,
// reinterpreted per dt's ptype (spec.md §4.2, "FoR" metadata: "reference:
// Scalar").
func decodeForMetadata(dt dtype.DType, metadata []byte) (scalar.Scalar, error) {
	if len(metadata) != 8 {
		return scalar.Scalar{}, verrors.New("for.metadata", verrors.InvalidSerde, fmt.Errorf("expected 8 bytes, got %d", len(metadata)))
	}
	var u uint64
	for i := 0; i < 8; i++ {
		u |= uint64(metadata[i]) << (8 * uint(i))
	}
	p := dt.PType()
	if p.IsFloat() {
		return scalar.FromFloat(p, math.Float64frombits(u), false), nil
	}
	return scalar.FromInt(p, int64(u), false), nil
}

// Metadata implements array.Serde.
func (a *ForArray) Metadata() []byte {
	out := make([]byte, 8)
	var u uint64
	if a.dt.PType().IsFloat() {
		u = math.Float64bits(a.reference.AsFloat())
	} else {
		u = uint64(a.reference.AsInt())
	}
	for i := 0; i < 8; i++ {
		out[i] = byte(u >> (8 * uint(i)))
	}
	return out
}

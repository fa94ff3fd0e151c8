package encoding

import (
	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/mask"
	"github.com/deepteams/vortex/scalar"
	"github.com/deepteams/vortex/stats"
)

// ZigZagArray maps a signed primitive to an unsigned `encoded` child via
// zigzag coding (spec.md §4.2, "ZigZag"): decode(v) = (v >> 1) ^ -(v & 1).
// Nulls are inherited directly from the encoded child's validity.
type ZigZagArray struct {
	dt      dtype.DType
	encoded *array.PrimitiveArray
	st      *stats.StatsSet
}

// NewZigZag constructs a ZigZagArray. dt must be a signed-integer
// Primitive dtype; encoded must be its unsigned equivalent.
func NewZigZag(dt dtype.DType, encoded *array.PrimitiveArray) *ZigZagArray {
	return &ZigZagArray{dt: dt, encoded: encoded, st: stats.New()}
}

func (a *ZigZagArray) Len() int                   { return a.encoded.Len() }
func (a *ZigZagArray) DType() dtype.DType         { return a.dt }
func (a *ZigZagArray) Encoding() array.EncodingID { return array.EncodingZigZag }
func (a *ZigZagArray) EncodingName() array.Name   { return "zigzag" }
func (a *ZigZagArray) Stats() *stats.StatsSet     { return a.st }

func (a *ZigZagArray) IsValid(i int) bool      { return a.encoded.IsValid(i) }
func (a *ZigZagArray) AllValid() bool          { return a.encoded.AllValid() }
func (a *ZigZagArray) AllInvalid() bool        { return a.encoded.AllInvalid() }
func (a *ZigZagArray) ValidityMask() mask.Mask { return a.encoded.ValidityMask() }

func (a *ZigZagArray) Slice(start, stop int) array.Array {
	return NewZigZag(a.dt, array.Slice(a.encoded, start, stop).(*array.PrimitiveArray))
}

// decodeZigZag unpacks a zigzag-coded unsigned word back to its signed value.
func decodeZigZag(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

// encodeZigZag packs a signed value into its zigzag-coded unsigned word.
func encodeZigZag(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

func (a *ZigZagArray) ScalarAt(i int) scalar.Scalar {
	if !a.encoded.IsValid(i) {
		return scalar.Null(a.dt)
	}
	u := uint64(array.ScalarAt(a.encoded, i).AsInt())
	return scalar.FromInt(a.dt.PType(), decodeZigZag(u), a.dt.Nullable())
}

func (a *ZigZagArray) Canonicalize() array.CanonicalArray {
	n := a.Len()
	values := make([]scalar.Scalar, n)
	for i := 0; i < n; i++ {
		values[i] = a.ScalarAt(i)
	}
	return array.FromScalars(a.dt, values)
}

func (a *ZigZagArray) VisitBuffers(v func(name string, bytes []byte)) {}
func (a *ZigZagArray) VisitChildren(v func(name string, child array.Array)) {
	v("encoded", a.encoded)
}
func (a *ZigZagArray) WithChildren(children []array.Array) array.Array {
	return NewZigZag(a.dt, children[0].(*array.PrimitiveArray))
}

func init() {
	array.DefaultRegistry.Register(array.EncodingZigZag, "zigzag", func(dt dtype.DType, length int, metadata []byte, segments [][]byte, children []array.Array) (array.Array, error) {
		return NewZigZag(dt, children[0].(*array.PrimitiveArray)), nil
	})
}

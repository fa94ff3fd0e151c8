package bitpack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	for _, bw := range []int{1, 3, 7, 8, 9, 17, 31, 32, 47, 63, 64} {
		values := make([]uint64, 50)
		maxVal := maskLow(bw)
		for i := range values {
			values[i] = (uint64(i) * 2654435761) & maxVal
		}
		packed := Pack(values, bw)
		got := Unpack(packed, len(values), bw)
		require.Equal(t, len(values), len(got))
		for i := range values {
			assert.Equalf(t, values[i], got[i], "bitWidth=%d index=%d", bw, i)
		}
	}
}

func TestExtractAtMatchesUnpack(t *testing.T) {
	bw := 11
	values := make([]uint64, 30)
	for i := range values {
		values[i] = uint64(i*37) & maskLow(bw)
	}
	packed := Pack(values, bw)
	for i := range values {
		assert.Equal(t, values[i], ExtractAt(packed, bw, i))
	}
}

func TestSignExtend(t *testing.T) {
	assert.Equal(t, int64(-1), SignExtend(0x7, 3))
	assert.Equal(t, int64(3), SignExtend(0x3, 3))
	assert.Equal(t, int64(-4), SignExtend(0x4, 3))
}

func TestMinBitWidth(t *testing.T) {
	assert.Equal(t, 0, MinBitWidth(0))
	assert.Equal(t, 1, MinBitWidth(1))
	assert.Equal(t, 8, MinBitWidth(255))
	assert.Equal(t, 9, MinBitWidth(256))
}

func TestWriterFinishIsIdempotentShape(t *testing.T) {
	w := NewWriter(4, 5)
	w.WriteBits(17, 5)
	w.WriteBits(3, 5)
	out := w.Finish()
	assert.NotEmpty(t, out)
	got := Unpack(out, 2, 5)
	assert.Equal(t, []uint64{17, 3}, got)
}

package buffer_test

import (
	"testing"

	"github.com/deepteams/vortex/buffer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferFromSlice(t *testing.T) {
	b := buffer.FromSlice([]int32{1, 2, 3, 4})
	require.Equal(t, 4, b.Len())
	assert.Equal(t, int32(3), b.At(2))
}

func TestBufferSliceIsZeroCopy(t *testing.T) {
	b := buffer.FromSlice([]int64{10, 20, 30, 40, 50})
	s := b.Slice(1, 4)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, int64(20), s.At(0))
	assert.Equal(t, int64(40), s.At(2))
}

func TestBufferSliceFullIdentity(t *testing.T) {
	b := buffer.FromSlice([]uint8{1, 2, 3})
	s := b.Slice(0, b.Len())
	assert.Equal(t, b.ToSlice(), s.ToSlice())
}

func TestBufferBuilder(t *testing.T) {
	bld := buffer.NewBuilder[uint16](0)
	bld.Append(1)
	bld.AppendN(5, 3)
	b := bld.Finish()
	assert.Equal(t, []uint16{1, 5, 5, 5}, b.ToSlice())
}

func TestBufferFromBytesRoundTrip(t *testing.T) {
	orig := buffer.FromSlice([]uint32{7, 8, 9})
	raw := orig.Bytes()
	reinterp := buffer.FromBytes[uint32](raw)
	assert.Equal(t, orig.ToSlice(), reinterp.ToSlice())
}

func TestBufferMakeZeroed(t *testing.T) {
	b := buffer.Make[int32](5)
	for i := 0; i < 5; i++ {
		assert.Equal(t, int32(0), b.At(i))
	}
}

func TestBufferOutOfBoundsSlicePanics(t *testing.T) {
	b := buffer.FromSlice([]int8{1, 2, 3})
	assert.Panics(t, func() { b.Slice(0, 4) })
	assert.Panics(t, func() { b.Slice(-1, 2) })
}

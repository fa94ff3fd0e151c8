package mask_test

import (
	"testing"

	"github.com/deepteams/vortex/mask"
	"github.com/stretchr/testify/assert"
)

func TestAllTrueAllFalse(t *testing.T) {
	at := mask.AllTrue(5)
	af := mask.AllFalse(5)
	assert.Equal(t, 5, at.TrueCount())
	assert.Equal(t, 0, af.TrueCount())
	assert.True(t, at.Value(3))
	assert.False(t, af.Value(3))
}

func TestFromIndices(t *testing.T) {
	m := mask.FromIndices(10, []int{1, 3, 7})
	assert.Equal(t, 3, m.TrueCount())
	assert.True(t, m.Value(3))
	assert.False(t, m.Value(4))
	assert.Equal(t, []int{1, 3, 7}, m.ToIndices())
}

func TestFromRanges(t *testing.T) {
	m := mask.FromRanges(10, []mask.Range{{Start: 2, End: 5}, {Start: 8, End: 9}})
	assert.Equal(t, 4, m.TrueCount())
	assert.True(t, m.Value(2))
	assert.True(t, m.Value(4))
	assert.False(t, m.Value(5))
	assert.True(t, m.Value(8))
}

func TestFromBoolsDensity(t *testing.T) {
	m := mask.FromBools([]bool{true, false, true, true})
	assert.Equal(t, 0.75, m.Density())
}

func TestMaskSlice(t *testing.T) {
	m := mask.FromIndices(10, []int{1, 3, 7, 9})
	s := m.Slice(2, 8)
	assert.Equal(t, 6, s.Len())
	assert.Equal(t, []int{1, 5}, s.ToIndices())
}

func TestMaskAndOr(t *testing.T) {
	a := mask.FromBools([]bool{true, true, false, false})
	b := mask.FromBools([]bool{true, false, true, false})
	and := mask.And(a, b)
	or := mask.Or(a, b)
	assert.Equal(t, []bool{true, false, false, false}, and.ToBools())
	assert.Equal(t, []bool{true, true, true, false}, or.ToBools())
}

func TestMaskNot(t *testing.T) {
	m := mask.FromBools([]bool{true, false})
	n := mask.Not(m)
	assert.Equal(t, []bool{false, true}, n.ToBools())
}

func TestMaskAndAllTrueShortCircuit(t *testing.T) {
	a := mask.AllTrue(4)
	b := mask.FromBools([]bool{true, false, true, false})
	assert.Equal(t, b.ToBools(), mask.And(a, b).ToBools())
}

func TestThresholdIterEarlyStop(t *testing.T) {
	m := mask.FromIndices(100, []int{1, 2, 3, 4, 5})
	seen := 0
	m.ThresholdIter(func(i int) bool {
		seen++
		return i < 3
	})
	assert.Equal(t, 3, seen)
}

package validity_test

import (
	"testing"

	"github.com/deepteams/vortex/mask"
	"github.com/deepteams/vortex/validity"
	"github.com/stretchr/testify/assert"
)

func TestNonNullable(t *testing.T) {
	v := validity.NonNullable(5)
	assert.True(t, v.IsValid(0))
	assert.Equal(t, 0, v.NullCount())
	assert.True(t, v.AllValidBool())
}

func TestAllValidAllInvalid(t *testing.T) {
	av := validity.AllValid(4)
	ai := validity.AllInvalid(4)
	assert.Equal(t, 0, av.NullCount())
	assert.Equal(t, 4, ai.NullCount())
	assert.True(t, ai.AllInvalidBool())
	assert.False(t, av.AllInvalidBool())
}

func TestFromMask(t *testing.T) {
	m := mask.FromBools([]bool{true, false, true, true})
	v := validity.FromMask(m)
	assert.Equal(t, 1, v.NullCount())
	assert.Equal(t, 3, v.ValidCount())
	assert.False(t, v.IsValid(1))
	assert.True(t, v.IsValid(2))
}

func TestValiditySlice(t *testing.T) {
	m := mask.FromBools([]bool{true, false, true, true, false})
	v := validity.FromMask(m)
	s := v.Slice(1, 4)
	assert.Equal(t, 3, s.Len())
	assert.False(t, s.IsValid(0))
	assert.True(t, s.IsValid(1))
}

func TestValidityTake(t *testing.T) {
	m := mask.FromBools([]bool{true, false, true, true})
	v := validity.FromMask(m)
	out := validity.Take(v, []int{3, 1, 0})
	assert.True(t, out.IsValid(0))
	assert.False(t, out.IsValid(1))
	assert.True(t, out.IsValid(2))
}

func TestValidityFilter(t *testing.T) {
	m := mask.FromBools([]bool{true, false, true, true})
	v := validity.FromMask(m)
	sel := mask.FromBools([]bool{true, true, false, true})
	out := validity.Filter(v, sel)
	assert.Equal(t, 3, out.Len())
	assert.True(t, out.IsValid(0))
	assert.False(t, out.IsValid(1))
	assert.True(t, out.IsValid(2))
}

func TestValidityCombine(t *testing.T) {
	a := validity.FromMask(mask.FromBools([]bool{true, true, false}))
	b := validity.FromMask(mask.FromBools([]bool{true, false, false}))
	c := validity.Combine(a, b)
	assert.True(t, c.IsValid(0))
	assert.False(t, c.IsValid(1))
	assert.False(t, c.IsValid(2))
}

func TestValidityCombineWithAllValid(t *testing.T) {
	a := validity.AllValid(3)
	b := validity.FromMask(mask.FromBools([]bool{true, false, true}))
	c := validity.Combine(a, b)
	assert.Equal(t, b.NullCount(), c.NullCount())
}

func TestValidityAsMaskRoundTrip(t *testing.T) {
	v := validity.AllInvalid(3)
	m := v.AsMask()
	assert.Equal(t, 0, m.TrueCount())
}

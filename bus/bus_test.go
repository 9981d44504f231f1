package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClockAdvance(t *testing.T) {
	var c Clock
	c.Advance(4)
	c.Advance(3)
	assert.Equal(t, uint64(7), c.Cycles())
	assert.Equal(t, 7*Period, c.SimTime())
}

func TestClockReset(t *testing.T) {
	var c Clock
	c.Advance(10)
	c.Reset()
	assert.Equal(t, uint64(0), c.Cycles())
}

func TestStrobeAssertDeassert(t *testing.T) {
	var s Strobe
	assert.False(t, s.Asserted())
	s.Assert()
	assert.True(t, s.Asserted())
	s.Deassert()
	assert.False(t, s.Asserted())
}

func TestStrobeDoubleAssertPanics(t *testing.T) {
	var s Strobe
	s.Assert()
	assert.Panics(t, func() { s.Assert() })
}

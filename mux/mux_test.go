package mux

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Galarius/intel-8080-simulator/register"
)

func newTestMux() (*Mux, *[7]*register.Register) {
	regs := [7]*register.Register{
		{}, {}, {}, {}, {}, {}, {},
	}
	m := New(regs[0], regs[1], regs[2], regs[3], regs[4], regs[5], regs[6])
	return m, &regs
}

func TestWriteRoutesToSelectedRegisterOnly(t *testing.T) {
	m, regs := newTestMux()
	ok := m.Write(SelectC, 0x99)
	assert.True(t, ok)
	assert.Equal(t, uint8(0x99), regs[SelectC].Read())
	for sel, r := range regs {
		if Selector(sel) == SelectC {
			continue
		}
		assert.Equal(t, uint8(0), r.Read())
	}
}

func TestReadRoutesFromSelectedRegister(t *testing.T) {
	m, regs := newTestMux()
	regs[SelectH].Write(0x55)
	v, ok := m.Read(SelectH)
	assert.True(t, ok)
	assert.Equal(t, uint8(0x55), v)
}

func TestOutOfRangeSelectorHasNoEffect(t *testing.T) {
	m, _ := newTestMux()
	_, ok := m.Read(Selector(7))
	assert.False(t, ok)
	ok = m.Write(Selector(200), 1)
	assert.False(t, ok)
}

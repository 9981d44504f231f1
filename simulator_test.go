package simulator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Galarius/intel-8080-simulator/mux"
)

func runToHalt(t *testing.T, program []byte) *Processor {
	t.Helper()
	p := New()
	require.NoError(t, p.Load(program))
	err := p.StartFor(context.Background(), 3*time.Second)
	require.NoError(t, err)
	return p
}

func TestResetZeroesEverything(t *testing.T) {
	p := New()
	p.Reset()
	assert.False(t, p.Halted())
	assert.Equal(t, uint16(0), p.PC())
	assert.Equal(t, uint16(0), p.SP())
	assert.Equal(t, uint8(0), p.Register(mux.SelectA))
	assert.Equal(t, [5]bool{}, [5]bool{
		p.Flags().Zero, p.Flags().Carry, p.Flags().Sign, p.Flags().Parity, p.Flags().AuxCarry,
	})
}

func TestLoadRoundTrip(t *testing.T) {
	image := []byte{0x00, 0x01, 0x02, 0x03}
	p := New()
	require.NoError(t, p.Load(image))
	for i, want := range image {
		assert.Equal(t, want, p.MemoryAt(uint16(i)))
	}
}

// S1: MVI fills every working register.
func TestScenarioMVIFillsEveryWorkingRegister(t *testing.T) {
	program := []byte{
		0x00,
		0x06, 0x12,
		0x0E, 0x13,
		0x16, 0x14,
		0x1E, 0x15,
		0x26, 0x16,
		0x2E, 0x17,
		0x3E, 0x18,
		0x76,
	}
	p := runToHalt(t, program)

	assert.True(t, p.Halted())
	assert.Equal(t, uint16(15), p.PC())
	assert.Equal(t, uint8(18), p.Register(mux.SelectB))
	assert.Equal(t, uint8(19), p.Register(mux.SelectC))
	assert.Equal(t, uint8(20), p.Register(mux.SelectD))
	assert.Equal(t, uint8(21), p.Register(mux.SelectE))
	assert.Equal(t, uint8(22), p.Register(mux.SelectH))
	assert.Equal(t, uint8(23), p.Register(mux.SelectL))
	assert.Equal(t, uint8(24), p.Register(mux.SelectA))
}

// S2: MVI M writes into memory through HL.
func TestScenarioMVIMemoryWritesThroughHL(t *testing.T) {
	program := []byte{0x00, 0x26, 0x01, 0x2E, 0x08, 0x36, 0x75, 0x76}
	p := runToHalt(t, program)

	assert.True(t, p.Halted())
	assert.Equal(t, uint8(0x01), p.Register(mux.SelectH))
	assert.Equal(t, uint8(0x08), p.Register(mux.SelectL))
	assert.Equal(t, uint8(117), p.MemoryAt(0x0108))
}

// S3: ADI adds an immediate into A.
func TestScenarioADIAddsImmediate(t *testing.T) {
	program := []byte{0x00, 0xC6, 0x05, 0x76}
	p := runToHalt(t, program)

	assert.True(t, p.Halted())
	assert.Equal(t, uint8(5), p.Register(mux.SelectA))
	assert.False(t, p.Flags().Zero)
	assert.False(t, p.Flags().Carry)
}

// S4: LXI loads register pairs and SP.
func TestScenarioLXILoadsRegisterPairsAndSP(t *testing.T) {
	program := []byte{
		0x00,
		0x01, 0x05, 0x07,
		0x11, 0x03, 0x09,
		0x21, 0x06, 0x02,
		0x31, 0x34, 0x12,
		0x76,
	}
	p := runToHalt(t, program)

	assert.True(t, p.Halted())
	assert.Equal(t, uint8(7), p.Register(mux.SelectB))
	assert.Equal(t, uint8(5), p.Register(mux.SelectC))
	assert.Equal(t, uint8(9), p.Register(mux.SelectD))
	assert.Equal(t, uint8(3), p.Register(mux.SelectE))
	assert.Equal(t, uint8(2), p.Register(mux.SelectH))
	assert.Equal(t, uint8(6), p.Register(mux.SelectL))
	assert.Equal(t, uint16(0x1234), p.SP())
}

func TestStartRespectsContextCancellation(t *testing.T) {
	// A program with no HLT never halts on its own; StartFor must still
	// return once its timeout elapses rather than looping forever.
	p := New()
	require.NoError(t, p.Load([]byte{0x00}))

	err := p.StartFor(context.Background(), 5*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStopEndsARunningLoop(t *testing.T) {
	p := New()
	require.NoError(t, p.Load([]byte{0x00}))

	done := make(chan error, 1)
	go func() { done <- p.Start(context.Background()) }()

	time.Sleep(5 * time.Millisecond)
	p.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Start did not return after Stop")
	}
}

func TestSnapshotReflectsHaltedState(t *testing.T) {
	p := runToHalt(t, []byte{0x3E, 0x07, 0x76})
	snap := p.Snapshot()
	assert.True(t, snap.Halted)
	assert.Equal(t, uint8(7), snap.A)
}

// Package memory implements the 8080's 64 KiB byte-addressable RAM: an
// address-latched byte store exposing address bus, data-in, data-out,
// read-enable, and write-enable.
package memory

import (
	"errors"
	"log/slog"
)

// Size is the full address space: 16-bit address lines, 64 KiB.
const Size = 65536

// ErrImageTooLarge is returned by Load when the supplied image would not
// fit in the 64 KiB address space. The load is rejected at the boundary;
// nothing is partially copied.
var ErrImageTooLarge = errors.New("memory: image exceeds 64 KiB address space")

// Memory is the backing byte array for the whole machine. The zero value
// is a ready-to-use, silent 64 KiB of zeroed RAM; Logger may be set
// afterward to observe reads/writes the way the original logged every
// bus access at info level.
type Memory struct {
	Logger *slog.Logger

	buf [Size]uint8
}

// Read returns the byte at addr, wrapped modulo 65536 (16-bit address
// lines cannot express a larger domain, so Go's uint16 wraparound already
// gives us this for free on the happy path; the explicit mask below also
// covers callers that compute an address with extra bits set).
func (m *Memory) Read(addr uint16) uint8 {
	a := addr & (Size - 1)
	v := m.buf[a]
	if m.Logger != nil {
		m.Logger.Debug("read", slog.Int("address", int(a)), slog.Int("data", int(v)))
	}
	return v
}

// Write stores value at addr, wrapped modulo 65536.
func (m *Memory) Write(addr uint16, value uint8) {
	a := addr & (Size - 1)
	m.buf[a] = value
	if m.Logger != nil {
		m.Logger.Debug("write", slog.Int("address", int(a)), slog.Int("data", int(value)))
	}
}

// Reset zero-fills the backing array.
func (m *Memory) Reset() {
	m.buf = [Size]uint8{}
}

// Load copies image into the backing array starting at offset 0. Bytes
// beyond len(image) are left as whatever the array currently holds;
// callers that want the "rest is zero-padded" behaviour described in the
// program-load interface should Reset before Load (the processor's own
// Load does exactly this).
func (m *Memory) Load(image []uint8) error {
	if len(image) > Size {
		return ErrImageTooLarge
	}
	copy(m.buf[:], image)
	return nil
}

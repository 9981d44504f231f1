// Package mux implements the crossbar between the control unit and the
// register file. Given a 3-bit register selector plus read/write
// strobes, it routes the control unit's data line to/from exactly one
// register.
package mux

import (
	"log/slog"

	"github.com/Galarius/intel-8080-simulator/register"
)

// Selector identifies a MUX target register. Unlike the instruction set's
// 3-bit register encoding (which also has an M=110 value meaning "memory
// at HL"), a Selector only ever names one of the seven register-file
// cells the MUX actually routes to.
type Selector uint8

const (
	SelectA Selector = iota
	SelectB
	SelectC
	SelectD
	SelectE
	SelectH
	SelectL

	numRegisters = int(SelectL) + 1
)

// Mux wires seven registers behind a single selector-addressed port.
// Logger may be set to observe selector routing, as the original traced
// every mux selection.
type Mux struct {
	Logger *slog.Logger

	registers [numRegisters]*register.Register
}

// New builds a Mux bound to the given register cells.
func New(a, b, c, d, e, h, l *register.Register) *Mux {
	return &Mux{registers: [numRegisters]*register.Register{
		SelectA: a, SelectB: b, SelectC: c, SelectD: d, SelectE: e, SelectH: h, SelectL: l,
	}}
}

// Read routes the selected register's output onto the MUX's data-out
// port. Selector values outside {0..6} produce no effect and a false ok.
func (m *Mux) Read(sel Selector) (value uint8, ok bool) {
	if int(sel) >= numRegisters {
		return 0, false
	}
	v := m.registers[sel].Read()
	if m.Logger != nil {
		m.Logger.Debug("read", slog.Int("selector", int(sel)), slog.Int("data", int(v)))
	}
	return v, true
}

// Write asserts the write-enable of the selected register and routes
// data-in onto that register's input port. Selector values outside
// {0..6} produce no effect and a false ok.
func (m *Mux) Write(sel Selector, value uint8) (ok bool) {
	if int(sel) >= numRegisters {
		return false
	}
	m.registers[sel].Write(value)
	if m.Logger != nil {
		m.Logger.Debug("write", slog.Int("selector", int(sel)), slog.Int("data", int(value)))
	}
	return true
}

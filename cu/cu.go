// Package cu implements the control unit: the sequencer that fetches an
// instruction byte, decodes it, and drives the ALU, the register file
// (through the MUX), and memory through a handful of bus primitives,
// each of which costs exactly one simulated clock cycle. It owns the
// program counter, stack pointer, flags, and halted state that the
// original's Register/Multiplexer modules did not themselves hold.
package cu

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/Galarius/intel-8080-simulator/alu"
	"github.com/Galarius/intel-8080-simulator/bus"
	"github.com/Galarius/intel-8080-simulator/internal/simlog"
	"github.com/Galarius/intel-8080-simulator/memory"
	"github.com/Galarius/intel-8080-simulator/mux"
)

// DecodeError reports an instruction byte the control unit has no
// dispatch rule for. It carries the program counter the byte was
// fetched from, so a caller can point at the offending location.
type DecodeError struct {
	PC     uint16
	Opcode byte
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cu: unrecognized opcode %s at pc=%04X", simlog.Binary(e.Opcode), e.PC)
}

// ControlUnit sequences the machine. It is safe for the Halted/PC/SP/
// Flags observers to be called from a goroutine other than the one
// driving Step, matching the concurrency model of a debugger polling a
// running simulation.
type ControlUnit struct {
	logger *slog.Logger

	regs  *mux.Mux
	mem   *memory.Memory
	clock *bus.Clock

	memStrobe bus.Strobe
	regStrobe bus.Strobe

	mu      sync.Mutex
	pc      uint16
	sp      uint16
	flags   alu.Flags
	halted  bool
	lastErr error
}

// New builds a control unit wired to the given register file and
// memory. logger may be nil, in which case the control unit logs
// nothing.
func New(regs *mux.Mux, mem *memory.Memory, clock *bus.Clock, logger *slog.Logger) *ControlUnit {
	if logger == nil {
		logger = simlog.Discard()
	}
	return &ControlUnit{logger: logger, regs: regs, mem: mem, clock: clock}
}

// Reset zeroes the program counter, stack pointer, flags, and halted
// bit. It does not touch the register file or memory; callers that want
// a fully clean machine reset those separately, the way the original
// reset each sc_module independently.
func (c *ControlUnit) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pc = 0
	c.sp = 0
	c.flags = alu.Flags{}
	c.halted = false
	c.lastErr = nil
}

func (c *ControlUnit) Halted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.halted
}

func (c *ControlUnit) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *ControlUnit) PC() uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pc
}

func (c *ControlUnit) SP() uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sp
}

func (c *ControlUnit) Flags() alu.Flags {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flags
}

// --- bus primitives. Each consumes exactly one simulated clock cycle,
// mirroring the original's waitFor(SC_ZERO_TIME) call inside every bus
// accessor.

func (c *ControlUnit) tick() {
	c.clock.Advance(1)
}

func (c *ControlUnit) wait(cycles uint64) {
	c.clock.Advance(cycles)
}

func (c *ControlUnit) readMemAt(addr uint16) uint8 {
	c.memStrobe.Assert()
	defer c.memStrobe.Deassert()
	v := c.mem.Read(addr)
	c.tick()
	return v
}

func (c *ControlUnit) writeMemAt(addr uint16, value uint8) {
	c.memStrobe.Assert()
	defer c.memStrobe.Deassert()
	c.mem.Write(addr, value)
	c.tick()
}

func (c *ControlUnit) readReg(sel mux.Selector) uint8 {
	c.regStrobe.Assert()
	defer c.regStrobe.Deassert()
	v, _ := c.regs.Read(sel)
	c.tick()
	return v
}

func (c *ControlUnit) writeReg(sel mux.Selector, value uint8) {
	c.regStrobe.Assert()
	defer c.regStrobe.Deassert()
	c.regs.Write(sel, value)
	c.tick()
}

// getRegisterValue fetches the operand named by code: a direct MUX read
// for a register code, or an (H<<8)|L indirection through memory for
// RegM. Both paths are costed in cycles by their constituent bus calls.
func (c *ControlUnit) getRegisterValue(code RegCode) uint8 {
	if code == RegM {
		h := c.readReg(mux.SelectH)
		l := c.readReg(mux.SelectL)
		addr := uint16(h)<<8 | uint16(l)
		return c.readMemAt(addr)
	}
	sel, ok := selector(code)
	if !ok {
		return 0
	}
	return c.readReg(sel)
}

func (c *ControlUnit) setRegisterValue(code RegCode, value uint8) {
	if code == RegM {
		h := c.readReg(mux.SelectH)
		l := c.readReg(mux.SelectL)
		addr := uint16(h)<<8 | uint16(l)
		c.writeMemAt(addr, value)
		return
	}
	sel, ok := selector(code)
	if !ok {
		return
	}
	c.writeReg(sel, value)
}

func (c *ControlUnit) fetch() byte {
	c.mu.Lock()
	pc := c.pc
	c.pc++
	c.mu.Unlock()
	return c.readMemAt(pc)
}

// Step fetches, decodes, and executes exactly one instruction. It
// returns false once the machine has halted via HLT; an unrecognized
// opcode is non-fatal (see reportUnknownOpcode) and Step keeps returning
// true so the caller's loop keeps making progress.
func (c *ControlUnit) Step() bool {
	c.mu.Lock()
	if c.halted {
		c.mu.Unlock()
		return false
	}
	c.mu.Unlock()

	startPC := c.pc
	inst := c.fetch()
	d := decode(inst)

	c.logger.Debug("fetch", slog.String("opcode", simlog.Binary(inst)), slog.Int("pc", int(startPC)))

	switch d.group {
	case groupDataTransfer:
		return c.execDataTransfer(inst, d)
	case groupMOV:
		return c.execMOV(inst, d)
	case groupALU:
		return c.execALU(d, false)
	case groupSpecial:
		if d.source == 0b110 {
			return c.execALU(d, true)
		}
		return c.reportUnknownOpcode(startPC, inst)
	default:
		return c.reportUnknownOpcode(startPC, inst)
	}
}

// reportUnknownOpcode handles an instruction byte the control unit has
// no dispatch rule for. It is non-fatal: the fetch loop has already
// advanced PC past the offending byte, so logging a diagnostic and
// returning true preserves the invariant that the sequencer always
// makes progress, rather than stalling on the first unimplemented
// encoding it meets.
func (c *ControlUnit) reportUnknownOpcode(pc uint16, opcode byte) bool {
	c.mu.Lock()
	c.lastErr = &DecodeError{PC: pc, Opcode: opcode}
	c.mu.Unlock()
	c.logger.Warn("unrecognized opcode, skipping", slog.String("opcode", simlog.Binary(opcode)), slog.Int("pc", int(pc)))
	return true
}

func (c *ControlUnit) execDataTransfer(inst byte, d decoded) bool {
	switch {
	case inst == instNOP:
		c.wait(4)
		return true

	case d.rpOp == 0b0001: // LXI rp, data16
		mark := c.clock.Cycles()
		lo := c.fetch()
		hi := c.fetch()
		switch d.rp {
		case RPBC:
			c.writeReg(mux.SelectB, hi)
			c.writeReg(mux.SelectC, lo)
		case RPDE:
			c.writeReg(mux.SelectD, hi)
			c.writeReg(mux.SelectE, lo)
		case RPHL:
			c.writeReg(mux.SelectH, hi)
			c.writeReg(mux.SelectL, lo)
		case RPSP:
			c.mu.Lock()
			c.sp = uint16(hi)<<8 | uint16(lo)
			c.mu.Unlock()
		}
		c.padTo(mark, 10)
		return true

	case d.source == 0b110: // MVI r/M, data8
		mark := c.clock.Cycles()
		dest := RegCode(d.opcode)
		imm := c.fetch()
		c.setRegisterValue(dest, imm)
		if dest == RegM {
			c.padTo(mark, 10)
		} else {
			c.padTo(mark, 7)
		}
		return true
	}
	return c.reportUnknownOpcode(c.pc-1, inst)
}

// execMOV handles opgroup 01. Only HLT (0x76) is in scope; every other
// encoding in this group is MOV, which this revision decodes into
// (destination, source) for a future implementation but does not
// execute — no register or memory transfer happens, and no register
// read/write bus cycles are charged.
func (c *ControlUnit) execMOV(inst byte, d decoded) bool {
	if inst == instHLT {
		c.wait(7)
		c.mu.Lock()
		c.pc-- // HLT leaves PC on its own address
		c.halted = true
		c.mu.Unlock()
		c.logger.Info("halted")
		return false
	}
	dest := RegCode(d.opcode)
	src := RegCode(d.source)
	c.logger.Debug("mov decoded, not executed (out of scope)",
		slog.String("destination", dest.String()), slog.String("source", src.String()))
	return true
}

// execALU executes either an ALU r instruction (immediate=false, operand
// taken from the register named by d.source) or an ALU immediate
// instruction (immediate=true, operand fetched from the instruction
// stream). The cycle counts below already total to the figures the
// original's own arithmetic produces for each case, so no padding is
// needed here the way MVI/LXI need it.
func (c *ControlUnit) execALU(d decoded, immediate bool) bool {
	a := c.readReg(mux.SelectA)

	var operand uint8
	if immediate {
		operand = c.fetch()
		c.wait(4)
	} else {
		operand = c.getRegisterValue(RegCode(d.source))
		if RegCode(d.source) == RegM {
			c.wait(2)
		} else {
			c.wait(1)
		}
	}

	c.mu.Lock()
	carryIn := c.flags.Carry
	c.mu.Unlock()

	result := alu.Execute(a, operand, alu.Op(d.opcode&0b111), carryIn)

	if alu.Op(d.opcode&0b111) != alu.OpCMP {
		c.writeReg(mux.SelectA, result.Value)
	} else {
		c.tick()
	}

	c.mu.Lock()
	c.flags = result.Flags
	c.mu.Unlock()

	return true
}

// padTo advances the clock by whatever is left to reach target cycles
// since mark. It exists because the bus primitives above cost only what
// the signal transitions they model actually cost, which for MVI/LXI is
// fewer cycles than the timing table promises; the remainder is an idle
// wait state, same as real 8080 hardware burns finishing internal work
// with no external bus activity.
func (c *ControlUnit) padTo(mark, target uint64) {
	spent := c.clock.Cycles() - mark
	if spent < target {
		c.wait(target - spent)
	}
}

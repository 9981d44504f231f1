// Package simulator wires an ALU, a seven-register file, a multiplexer,
// 64 KiB of memory, and a control unit into a complete Intel 8080
// functional simulator, and drives the control unit's fetch-decode-
// execute loop. Simulated time is counted in 2 MHz clock cycles; the
// loop is not paced against wall-clock time.
package simulator

import (
	"context"
	"log/slog"
	"time"

	"github.com/Galarius/intel-8080-simulator/alu"
	"github.com/Galarius/intel-8080-simulator/bus"
	"github.com/Galarius/intel-8080-simulator/cu"
	"github.com/Galarius/intel-8080-simulator/internal/simlog"
	"github.com/Galarius/intel-8080-simulator/memory"
	"github.com/Galarius/intel-8080-simulator/mux"
	"github.com/Galarius/intel-8080-simulator/register"
)

// Snapshot is an observation of processor state, the Go equivalent of
// the original's ENABLE_TESTING accessors gathered into one value for a
// debugger or test assertion to consume. Processor.Snapshot fills it by
// calling each observation accessor in turn, so it is not captured
// atomically while the control unit is running.
type Snapshot struct {
	PC      uint16
	SP      uint16
	Flags   alu.Flags
	Halted  bool
	A, B, C uint8
	D, E    uint8
	H, L    uint8
}

// Processor is the assembled machine. The zero value is not usable;
// build one with New.
type Processor struct {
	logger *slog.Logger

	a, b, c, d, e, h, l register.Register
	regs                *mux.Mux
	mem                 *memory.Memory
	clock               *bus.Clock
	control             *cu.ControlUnit

	stop chan struct{}
	done chan struct{}
}

// Option configures a Processor at construction time.
type Option func(*Processor)

// WithLogger attaches a root logger; module-tagged children are derived
// from it for the MUX, memory, and control unit. A nil logger (or no
// WithLogger option at all) leaves the processor silent.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) { p.logger = logger }
}

// New assembles a Processor with an empty 64 KiB memory image and every
// register zeroed.
func New(opts ...Option) *Processor {
	p := &Processor{clock: &bus.Clock{}}
	for _, opt := range opts {
		opt(p)
	}

	p.mem = &memory.Memory{Logger: simlog.For(p.logger, simlog.ModuleMemory)}
	p.regs = mux.New(&p.a, &p.b, &p.c, &p.d, &p.e, &p.h, &p.l)
	p.regs.Logger = simlog.For(p.logger, simlog.ModuleMux)
	p.control = cu.New(p.regs, p.mem, p.clock, simlog.For(p.logger, simlog.ModuleCU))

	return p
}

// Load resets the machine and copies program into memory starting at
// address 0, matching the original's loadMemory(program) entry point.
func (p *Processor) Load(program []byte) error {
	p.Reset()
	return p.mem.Load(program)
}

// Reset returns every component to its power-on state: zeroed registers,
// zeroed memory, a zeroed clock, and the control unit's PC/SP/flags/
// halted state cleared.
func (p *Processor) Reset() {
	p.a.Reset()
	p.b.Reset()
	p.c.Reset()
	p.d.Reset()
	p.e.Reset()
	p.h.Reset()
	p.l.Reset()
	p.mem.Reset()
	p.clock.Reset()
	p.control.Reset()
}

// Step executes exactly one instruction and reports whether the machine
// is still runnable afterward.
func (p *Processor) Step() bool {
	return p.control.Step()
}

// Start runs the control unit's fetch-decode-execute loop until the
// machine halts, ctx is cancelled, or Stop is called, whichever happens
// first. It blocks the calling goroutine; callers that want the
// original's background-thread execution model should invoke Start in
// its own goroutine.
func (p *Processor) Start(ctx context.Context) error {
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	defer close(p.done)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.stop:
			return nil
		default:
		}
		if !p.control.Step() {
			return p.control.Err()
		}
	}
}

// StartFor runs Start with a derived context bounded by timeout, the Go
// analogue of the original's sc_start(3, SC_SEC) fixed simulation
// budget.
func (p *Processor) StartFor(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.Start(ctx)
}

// Stop requests that a running Start loop return at its next iteration.
// It is safe to call even if no Start call is in flight.
func (p *Processor) Stop() {
	if p.stop == nil {
		return
	}
	select {
	case <-p.stop:
	default:
		close(p.stop)
	}
}

func (p *Processor) Halted() bool     { return p.control.Halted() }
func (p *Processor) Err() error       { return p.control.Err() }
func (p *Processor) PC() uint16       { return p.control.PC() }
func (p *Processor) SP() uint16       { return p.control.SP() }
func (p *Processor) Flags() alu.Flags { return p.control.Flags() }

// Register returns the current value of one of the seven MUX-addressable
// registers (A, B, C, D, E, H, L).
func (p *Processor) Register(sel mux.Selector) uint8 {
	v, _ := p.regs.Read(sel)
	return v
}

// MemoryAt returns the byte stored at addr.
func (p *Processor) MemoryAt(addr uint16) uint8 {
	return p.mem.Read(addr)
}

// Cycles returns the number of simulated clock cycles elapsed since the
// last Reset.
func (p *Processor) Cycles() uint64 {
	return p.clock.Cycles()
}

// Snapshot captures every observable piece of processor state at once.
func (p *Processor) Snapshot() Snapshot {
	return Snapshot{
		PC:     p.PC(),
		SP:     p.SP(),
		Flags:  p.Flags(),
		Halted: p.Halted(),
		A:      p.Register(mux.SelectA),
		B:      p.Register(mux.SelectB),
		C:      p.Register(mux.SelectC),
		D:      p.Register(mux.SelectD),
		E:      p.Register(mux.SelectE),
		H:      p.Register(mux.SelectH),
		L:      p.Register(mux.SelectL),
	}
}

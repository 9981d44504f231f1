// Package panel implements an interactive terminal debugger for the
// simulator: a memory-page view centred on the program counter, a
// register/flag status block, and a dump of the live processor
// snapshot, stepped one instruction at a time.
package panel

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	simulator "github.com/Galarius/intel-8080-simulator"
)

type model struct {
	proc    *simulator.Processor
	program []byte

	prevPC uint16
	err    error
}

// Run loads program into the processor and starts an interactive TUI.
// Space or j single-steps one instruction; q quits.
func Run(proc *simulator.Processor, program []byte) error {
	if err := proc.Load(program); err != nil {
		return err
	}
	m, err := tea.NewProgram(model{proc: proc, program: program}).Run()
	if err != nil {
		return err
	}
	if x, ok := m.(model); ok && x.err != nil {
		return x.err
	}
	return nil
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case " ", "j":
			m.prevPC = m.proc.PC()
			if !m.proc.Step() {
				m.err = m.proc.Err()
				return m, nil
			}
		}
	}
	return m, nil
}

// renderPage renders the 16 bytes starting at start as a line, with the
// byte at the program counter bracketed.
func (m model) renderPage(start uint16) string {
	s := fmt.Sprintf("%04x | ", start)
	for i := uint16(0); i < 16; i++ {
		addr := start + i
		b := m.proc.MemoryAt(addr)
		if addr == m.proc.PC() {
			s += fmt.Sprintf("[%02x] ", b)
		} else {
			s += fmt.Sprintf(" %02x  ", b)
		}
	}
	return s
}

func (m model) status() string {
	snap := m.proc.Snapshot()
	var flags string
	for _, flag := range []bool{
		snap.Flags.Zero,
		snap.Flags.Carry,
		snap.Flags.Sign,
		snap.Flags.Parity,
		snap.Flags.AuxCarry,
	} {
		if flag {
			flags += "/ "
		} else {
			flags += "  "
		}
	}
	return fmt.Sprintf(`
PC: %04x (%04x)
SP: %04x
 A: %02x
 B: %02x  C: %02x
 D: %02x  E: %02x
 H: %02x  L: %02x
halted: %v
Z C S P AC
`,
		snap.PC, m.prevPC,
		snap.SP,
		snap.A,
		snap.B, snap.C,
		snap.D, snap.E,
		snap.H, snap.L,
		snap.Halted,
	) + flags
}

func (m model) pageTable() string {
	header := "page | "
	for b := range 16 {
		header += fmt.Sprintf("  %01x  ", b)
	}

	pc := m.proc.PC()
	base := pc &^ 0x0F
	rows := []string{header}
	for i := -2; i <= 2; i++ {
		start := int(base) + i*16
		if start < 0 || start >= 0x10000 {
			continue
		}
		rows = append(rows, m.renderPage(uint16(start)))
	}
	return strings.Join(rows, "\n")
}

func (m model) View() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			m.pageTable(),
			m.status(),
		),
		"",
		spew.Sdump(m.proc.Snapshot()),
	)
}

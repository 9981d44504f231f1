package cu

import "github.com/Galarius/intel-8080-simulator/mux"

// RegCode is the instruction set's 3-bit register encoding (bits 2..0 or
// 5..3 of an opcode byte). Unlike mux.Selector, it includes RegM, which
// means "memory at HL" rather than a seventh MUX target.
type RegCode uint8

const (
	RegB RegCode = 0b000
	RegC RegCode = 0b001
	RegD RegCode = 0b010
	RegE RegCode = 0b011
	RegH RegCode = 0b100
	RegL RegCode = 0b101
	RegM RegCode = 0b110 // memory operand, addressed by (H<<8)|L
	RegA RegCode = 0b111
)

func (r RegCode) String() string {
	switch r {
	case RegB:
		return "B"
	case RegC:
		return "C"
	case RegD:
		return "D"
	case RegE:
		return "E"
	case RegH:
		return "H"
	case RegL:
		return "L"
	case RegM:
		return "M"
	case RegA:
		return "A"
	}
	return "?"
}

// selector translates an instruction-level RegCode into the MUX's
// Selector space. RegM has no MUX target; ok is false in that case and
// the caller must route through memory via H:L instead.
func selector(r RegCode) (mux.Selector, bool) {
	switch r {
	case RegA:
		return mux.SelectA, true
	case RegB:
		return mux.SelectB, true
	case RegC:
		return mux.SelectC, true
	case RegD:
		return mux.SelectD, true
	case RegE:
		return mux.SelectE, true
	case RegH:
		return mux.SelectH, true
	case RegL:
		return mux.SelectL, true
	default:
		return 0, false
	}
}

// RegPair is the 2-bit register-pair selector used by LXI (bits 5..4).
type RegPair uint8

const (
	RPBC RegPair = 0b00
	RPDE RegPair = 0b01
	RPHL RegPair = 0b10
	RPSP RegPair = 0b11
)

// opGroup is the top 2 bits of an opcode byte, classifying the
// instruction into one of the four 8080 instruction groups.
type opGroup uint8

const (
	groupDataTransfer opGroup = 0b00 // NOP, MVI, LXI, and (unimplemented) other data-transfer forms
	groupMOV          opGroup = 0b01 // MOV and HLT (HLT == MOV M,M's encoding)
	groupALU          opGroup = 0b10 // ALU r
	groupSpecial      opGroup = 0b11 // ALU immediate, plus branch/stack/IO/machine-control (unimplemented)
)

const (
	instNOP byte = 0b00000000
	instHLT byte = 0b01110110
)

// decoded holds every field the dispatch logic needs, extracted once per
// fetched instruction byte per the data model's opcode layout:
// opgroup=bits 7..6, opcode=bits 5..3, source=bits 2..0, rp=bits 5..4,
// rp_op=bits 3..0.
type decoded struct {
	raw    byte
	group  opGroup
	opcode uint8
	source uint8
	rp     RegPair
	rpOp   uint8
}

func decode(b byte) decoded {
	return decoded{
		raw:    b,
		group:  opGroup((b >> 6) & 0b11),
		opcode: (b >> 3) & 0b111,
		source: b & 0b111,
		rp:     RegPair((b >> 4) & 0b11),
		rpOp:   b & 0b1111,
	}
}

// Package instruction defines the opcode encoding, the fixed-size binary
// record format and the producers of instruction streams.
package instruction

import (
	"errors"
	"fmt"

	"github.com/hupe1980/cabaliser/clifford"
)

var (
	// ErrUnknownOpcode is returned for an opcode outside the encoding.
	ErrUnknownOpcode = errors.New("unknown opcode")
	// ErrTruncated is returned when a stream ends inside a record.
	ErrTruncated = errors.New("truncated instruction record")
)

// Opcode is the first byte of every record.
type Opcode uint8

// Type bits.
const (
	TypeLocal    Opcode = 0x20
	TypeTwoQubit Opcode = 0x40
	TypeRZ       Opcode = 0x80
	typeMask     Opcode = 0xe0
)

const (
	CNOT Opcode = 0x40
	CZ   Opcode = 0x41
	RZ   Opcode = 0x80
	NOP  Opcode = 0xff
)

// LocalOpcode returns the opcode of the local Clifford id.
func LocalOpcode(id clifford.ID) Opcode {
	return TypeLocal | Opcode(id)
}

// Type returns the type bits of o, or NOP.
func (o Opcode) Type() Opcode {
	if o == NOP {
		return NOP
	}
	return o & typeMask
}

// Clifford returns the local Clifford encoded by o.
func (o Opcode) Clifford() (clifford.ID, bool) {
	if o.Type() != TypeLocal {
		return clifford.I, false
	}
	id := clifford.ID(o &^ typeMask)
	return id, id.Valid()
}

// Valid reports whether o is part of the encoding.
func (o Opcode) Valid() bool {
	switch o.Type() {
	case TypeLocal:
		_, ok := o.Clifford()
		return ok
	case TypeTwoQubit:
		return o == CNOT || o == CZ
	case TypeRZ:
		return o == RZ
	case NOP:
		return true
	default:
		return false
	}
}

func (o Opcode) String() string {
	if id, ok := o.Clifford(); ok {
		return id.String()
	}
	switch o {
	case CNOT:
		return "CNOT"
	case CZ:
		return "CZ"
	case RZ:
		return "RZ"
	case NOP:
		return "NOP"
	default:
		return fmt.Sprintf("Opcode(0x%02x)", uint8(o))
	}
}

// ParseOpcode returns the opcode for a gate name such as "H", "CNOT" or "RZ".
func ParseOpcode(name string) (Opcode, error) {
	switch name {
	case "CNOT", "cnot", "CX", "cx":
		return CNOT, nil
	case "CZ", "cz":
		return CZ, nil
	case "RZ", "rz":
		return RZ, nil
	case "NOP", "nop":
		return NOP, nil
	}
	if id, ok := clifford.Parse(name); ok {
		return LocalOpcode(id), nil
	}
	return NOP, fmt.Errorf("%w: %q", ErrUnknownOpcode, name)
}

// Instruction is one decoded record.
//
//	local:     A = qubit
//	two-qubit: A = control, B = target
//	RZ:        A = qubit,   B = tag
type Instruction struct {
	Op Opcode
	A  uint32
	B  uint32
}

// Local returns the instruction applying id to qubit q.
func Local(id clifford.ID, q uint32) Instruction {
	return Instruction{Op: LocalOpcode(id), A: q}
}

// NewCNOT returns CNOT(ctrl, targ).
func NewCNOT(ctrl, targ uint32) Instruction {
	return Instruction{Op: CNOT, A: ctrl, B: targ}
}

// NewCZ returns CZ(a, b).
func NewCZ(a, b uint32) Instruction {
	return Instruction{Op: CZ, A: a, B: b}
}

// NewRZ returns a non-Clifford rotation on q carrying tag.
func NewRZ(q, tag uint32) Instruction {
	return Instruction{Op: RZ, A: q, B: tag}
}

func (i Instruction) String() string {
	switch i.Op.Type() {
	case TypeLocal:
		return fmt.Sprintf("%s(%d)", i.Op, i.A)
	case TypeTwoQubit, TypeRZ:
		return fmt.Sprintf("%s(%d, %d)", i.Op, i.A, i.B)
	default:
		return i.Op.String()
	}
}

package cabaliser

import (
	"errors"
	"fmt"

	"github.com/hupe1980/cabaliser/instruction"
)

var (
	// ErrQubitLimitExceeded is returned when an operation would grow the
	// widget beyond its maximum qubit count.
	ErrQubitLimitExceeded = errors.New("qubit limit exceeded")

	// ErrInvariantViolation is returned by Decompose when the tableau is not
	// a valid stabilizer state.
	ErrInvariantViolation = errors.New("tableau invariant violated")

	// ErrUnknownOpcode is returned for instructions outside the encoding.
	ErrUnknownOpcode = instruction.ErrUnknownOpcode

	// ErrSameQubit is returned for a two-qubit gate whose operands coincide.
	ErrSameQubit = errors.New("two-qubit gate operands must differ")

	// ErrDecomposed is returned when a widget is modified after Decompose.
	ErrDecomposed = errors.New("widget already decomposed")

	// ErrNotDecomposed is returned when a graph query precedes Decompose.
	ErrNotDecomposed = errors.New("widget not decomposed")

	// ErrTeleportInput is returned when input teleportation is not possible.
	ErrTeleportInput = errors.New("cannot teleport input")

	// ErrClosed is returned by operations on a closed widget.
	ErrClosed = errors.New("widget closed")
)

// ErrQubitLimit reports the limit an RZ or teleportation ran into.
//
// errors.Is(err, ErrQubitLimitExceeded) holds for every ErrQubitLimit.
type ErrQubitLimit struct {
	Max int
	Op  string
}

func (e *ErrQubitLimit) Error() string {
	return fmt.Sprintf("%s: %v (max %d)", e.Op, ErrQubitLimitExceeded, e.Max)
}

func (e *ErrQubitLimit) Unwrap() error { return ErrQubitLimitExceeded }

// ErrInvalidQubitCount indicates unusable widget sizes.
type ErrInvalidQubitCount struct {
	Initial int
	Max     int
}

func (e *ErrInvalidQubitCount) Error() string {
	return fmt.Sprintf("invalid qubit count: initial %d, max %d", e.Initial, e.Max)
}

// ErrQubitOutOfRange indicates a logical qubit outside [0, NInitialQubits).
type ErrQubitOutOfRange struct {
	Qubit  uint32
	Qubits int
}

func (e *ErrQubitOutOfRange) Error() string {
	return fmt.Sprintf("qubit %d out of range [0, %d)", e.Qubit, e.Qubits)
}

package tableau

import (
	"errors"
	"fmt"
)

// ErrInvalidSize is returned when a tableau is created with unusable sizes.
var ErrInvalidSize = errors.New("invalid tableau size")

// InvariantViolation is the panic value raised when the tableau reaches a
// state its algorithms assume impossible, such as a column with no usable
// pivot during decomposition or a row operation in the wrong orientation.
type InvariantViolation struct {
	Op     string
	Detail string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("tableau: %s: %s", e.Op, e.Detail)
}

func violate(op, format string, args ...any) {
	panic(&InvariantViolation{Op: op, Detail: fmt.Sprintf(format, args...)})
}

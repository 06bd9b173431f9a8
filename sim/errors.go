package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCircuit indicates a circuit the engine refuses to simulate.
	ErrInvalidCircuit = errors.New("sim: invalid circuit")
	// ErrTooManyQubits indicates NumQubits is above the engine limit.
	ErrTooManyQubits = fmt.Errorf("%w: too many qubits", ErrInvalidCircuit)
	// ErrInvalidGateReference indicates a gate that points at a qubit outside the register,
	// or a CNOT whose control is missing or equal to its target.
	ErrInvalidGateReference = fmt.Errorf("%w: invalid gate reference", ErrInvalidCircuit)
	// ErrUnsupportedGate is only reported by engines built WithStrictGates.
	ErrUnsupportedGate = errors.New("sim: unsupported gate")
)

// GateError ties a failure to the position of the offending gate.
type GateError struct {
	Index int
	Gate  Gate
	Err   error
}

func (e *GateError) Error() string {
	return fmt.Sprintf("gate %d (%s on q[%d]): %v", e.Index, e.Gate.Type, e.Gate.Target, e.Err)
}

func (e *GateError) Unwrap() error { return e.Err }

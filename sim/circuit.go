package sim

import "fmt"

// GateType names a gate. Types outside the known set are accepted and act as identity
// unless the engine is strict.
type GateType string

const (
	GateH    GateType = "H"
	GateX    GateType = "X"
	GateY    GateType = "Y"
	GateZ    GateType = "Z"
	GateCNOT GateType = "CNOT"
	GateRX   GateType = "RX"
	GateRY   GateType = "RY"
	GateRZ   GateType = "RZ"
)

// KnownGates lists the gate types the engine implements, in menu order.
var KnownGates = []GateType{GateH, GateX, GateY, GateZ, GateCNOT, GateRX, GateRY, GateRZ}

// Known reports whether t is one of KnownGates.
func (t GateType) Known() bool {
	switch t {
	case GateH, GateX, GateY, GateZ, GateCNOT, GateRX, GateRY, GateRZ:
		return true
	}
	return false
}

// Rotation reports whether t takes an angle.
func (t GateType) Rotation() bool {
	return t == GateRX || t == GateRY || t == GateRZ
}

// Gate is one operation in a circuit.
type Gate struct {
	Type    GateType `json:"type"`
	Target  int      `json:"target"`
	Control *int     `json:"control,omitempty"` // CNOT only
	Angle   *float64 `json:"angle,omitempty"`   // radians, RX/RY/RZ only
}

func H(target int) Gate { return Gate{Type: GateH, Target: target} }
func X(target int) Gate { return Gate{Type: GateX, Target: target} }
func Y(target int) Gate { return Gate{Type: GateY, Target: target} }
func Z(target int) Gate { return Gate{Type: GateZ, Target: target} }

// CNOT flips target when control is 1.
func CNOT(control, target int) Gate {
	return Gate{Type: GateCNOT, Target: target, Control: &control}
}

func RX(target int, theta float64) Gate { return Gate{Type: GateRX, Target: target, Angle: &theta} }
func RY(target int, theta float64) Gate { return Gate{Type: GateRY, Target: target, Angle: &theta} }
func RZ(target int, theta float64) Gate { return Gate{Type: GateRZ, Target: target, Angle: &theta} }

// String renders the gate the way the editor status line shows it.
func (g Gate) String() string {
	switch {
	case g.Control != nil:
		return fmt.Sprintf("%s q[%d]->q[%d]", g.Type, *g.Control, g.Target)
	case g.Angle != nil:
		return fmt.Sprintf("%s(%g) q[%d]", g.Type, *g.Angle, g.Target)
	default:
		return fmt.Sprintf("%s q[%d]", g.Type, g.Target)
	}
}

// Circuit is the engine input. Gates apply in slice order.
type Circuit struct {
	NumQubits     int            `json:"numQubits"`
	Gates         []Gate         `json:"gates"`
	InitialStates map[int]string `json:"initialStates,omitempty"`
}

// InitialIndex is the basis index the simulation starts from: bit q is set
// for every qubit whose initial state is "1".
func (c *Circuit) InitialIndex() int {
	idx := 0
	for q := 0; q < c.NumQubits; q++ {
		if c.InitialStates[q] == "1" {
			idx |= 1 << q
		}
	}
	return idx
}

// Append adds gates to the end of the circuit.
func (c *Circuit) Append(gates ...Gate) {
	c.Gates = append(c.Gates, gates...)
}

// Clone returns a deep copy.
func (c Circuit) Clone() Circuit {
	out := Circuit{NumQubits: c.NumQubits}
	if c.Gates != nil {
		out.Gates = make([]Gate, len(c.Gates))
		for i, g := range c.Gates {
			out.Gates[i] = g.clone()
		}
	}
	if c.InitialStates != nil {
		out.InitialStates = make(map[int]string, len(c.InitialStates))
		for q, s := range c.InitialStates {
			out.InitialStates[q] = s
		}
	}
	return out
}

func (g Gate) clone() Gate {
	if g.Control != nil {
		c := *g.Control
		g.Control = &c
	}
	if g.Angle != nil {
		a := *g.Angle
		g.Angle = &a
	}
	return g
}

// Validate checks the register size and every qubit reference against maxQubits
// (0 means the engine ceiling). Unknown gate types are only rejected when strict.
func (c *Circuit) Validate(maxQubits int, strict bool) error {
	if maxQubits <= 0 || maxQubits > MaxQubits {
		maxQubits = MaxQubits
	}
	if c.NumQubits < 1 {
		return fmt.Errorf("%w: numQubits must be at least 1, got %d", ErrInvalidCircuit, c.NumQubits)
	}
	if c.NumQubits > maxQubits {
		return fmt.Errorf("%w: %d requested, limit is %d", ErrTooManyQubits, c.NumQubits, maxQubits)
	}
	inRange := func(q int) bool { return q >= 0 && q < c.NumQubits }

	for i, g := range c.Gates {
		if strict && !g.Type.Known() {
			return &GateError{Index: i, Gate: g, Err: ErrUnsupportedGate}
		}
		if !inRange(g.Target) {
			return &GateError{Index: i, Gate: g, Err: fmt.Errorf("%w: target %d outside [0, %d)", ErrInvalidGateReference, g.Target, c.NumQubits)}
		}
		if g.Type != GateCNOT {
			continue
		}
		switch {
		case g.Control == nil:
			return &GateError{Index: i, Gate: g, Err: fmt.Errorf("%w: CNOT without control", ErrInvalidGateReference)}
		case !inRange(*g.Control):
			return &GateError{Index: i, Gate: g, Err: fmt.Errorf("%w: control %d outside [0, %d)", ErrInvalidGateReference, *g.Control, c.NumQubits)}
		case *g.Control == g.Target:
			return &GateError{Index: i, Gate: g, Err: fmt.Errorf("%w: control equals target %d", ErrInvalidGateReference, g.Target)}
		}
	}
	return nil
}

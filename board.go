package main

import (
	"errors"
	"fmt"
	"slices"

	"qtermsim/sim"
)

// errCellBusy is returned when a placement overlaps a gate in the same step.
var errCellBusy = errors.New("qubit already used by another gate at this step")

// placedGate is a gate pinned to a column of the editor grid.
type placedGate struct {
	gate sim.Gate
	step int
}

// qubits returns every wire the gate touches.
func (p placedGate) qubits() []int {
	if p.gate.Control != nil {
		return []int{*p.gate.Control, p.gate.Target}
	}
	return []int{p.gate.Target}
}

func (p placedGate) touches(qubit int) bool {
	return slices.Contains(p.qubits(), qubit)
}

// span is the inclusive qubit range covered by the gate's vertical connector.
func (p placedGate) span() (lo, hi int) {
	qs := p.qubits()
	return slices.Min(qs), slices.Max(qs)
}

// Board is the editor's grid of steps by qubits. It is the single source of
// truth for the editor; the QASM pane and the state panel are derived from it.
type Board struct {
	NumQubits int
	initial   map[int]bool
	gates     []placedGate
}

func NewBoard(numQubits int) *Board {
	return &Board{NumQubits: max(numQubits, 1), initial: make(map[int]bool)}
}

// GateAt returns the gate occupying (step, qubit), if any.
func (b *Board) GateAt(step, qubit int) *placedGate {
	for i := range b.gates {
		if b.gates[i].step == step && b.gates[i].touches(qubit) {
			return &b.gates[i]
		}
	}
	return nil
}

// CanPlace reports whether qubits are free at step, ignoring single-qubit
// gates, which a new placement replaces.
func (b *Board) CanPlace(step int, qubits []int) bool {
	for _, q := range qubits {
		if g := b.GateAt(step, q); g != nil && g.gate.Control != nil {
			return false
		}
	}
	return true
}

// Place puts g at step, replacing single-qubit gates it overlaps.
func (b *Board) Place(step int, g sim.Gate) error {
	p := placedGate{gate: g, step: step}
	for _, q := range p.qubits() {
		if q < 0 || q >= b.NumQubits {
			return fmt.Errorf("qubit %d outside register of %d", q, b.NumQubits)
		}
	}
	if g.Control != nil && *g.Control == g.Target {
		return fmt.Errorf("control and target are both q[%d]", g.Target)
	}
	if !b.CanPlace(step, p.qubits()) {
		return errCellBusy
	}
	for _, q := range p.qubits() {
		b.RemoveAt(step, q)
	}
	b.gates = append(b.gates, p)
	return nil
}

// RemoveAt deletes the gate touching (step, qubit).
func (b *Board) RemoveAt(step, qubit int) {
	b.gates = slices.DeleteFunc(b.gates, func(p placedGate) bool {
		return p.step == step && p.touches(qubit)
	})
}

// RemoveOnQubit deletes every gate that references qubit.
func (b *Board) RemoveOnQubit(qubit int) {
	b.gates = slices.DeleteFunc(b.gates, func(p placedGate) bool {
		return p.touches(qubit)
	})
}

// Resize changes the register width, dropping gates and initial states on removed wires.
func (b *Board) Resize(n int) {
	n = max(n, 1)
	for q := n; q < b.NumQubits; q++ {
		b.RemoveOnQubit(q)
		delete(b.initial, q)
	}
	b.NumQubits = n
}

// Clear removes all gates and initial states.
func (b *Board) Clear() {
	b.gates = nil
	b.initial = make(map[int]bool)
}

// ToggleInitial flips qubit between |0> and |1> as its starting state.
func (b *Board) ToggleInitial(qubit int) {
	if qubit < 0 || qubit >= b.NumQubits {
		return
	}
	if b.initial[qubit] {
		delete(b.initial, qubit)
	} else {
		b.initial[qubit] = true
	}
}

func (b *Board) InitialOne(qubit int) bool { return b.initial[qubit] }

// MaxStep returns the last occupied step, or -1 for an empty board.
func (b *Board) MaxStep() int {
	last := -1
	for _, p := range b.gates {
		last = max(last, p.step)
	}
	return last
}

func (b *Board) Len() int { return len(b.gates) }

// Circuit flattens the board into engine order. Only gates at steps <= upTo
// are included; a negative upTo includes everything. Gates sharing a step
// act on disjoint qubits, so their relative order does not matter.
func (b *Board) Circuit(upTo int) sim.Circuit {
	placed := slices.Clone(b.gates)
	slices.SortStableFunc(placed, func(x, y placedGate) int {
		if x.step != y.step {
			return x.step - y.step
		}
		return x.gate.Target - y.gate.Target
	})

	c := sim.Circuit{NumQubits: b.NumQubits, Gates: []sim.Gate{}}
	for _, p := range placed {
		if upTo >= 0 && p.step > upTo {
			break
		}
		c.Append(p.gate)
	}
	if len(b.initial) > 0 {
		c.InitialStates = make(map[int]string, len(b.initial))
		for q := range b.initial {
			c.InitialStates[q] = "1"
		}
	}
	return c.Clone()
}

// BoardFromCircuit lays c out on a grid, putting every gate in the earliest
// step after the last gate on any of its qubits.
func BoardFromCircuit(c sim.Circuit) *Board {
	b := NewBoard(c.NumQubits)
	for q, s := range c.InitialStates {
		if s == "1" && q >= 0 && q < b.NumQubits {
			b.initial[q] = true
		}
	}

	next := make(map[int]int)
	for _, g := range c.Clone().Gates {
		p := placedGate{gate: g}
		for _, q := range p.qubits() {
			p.step = max(p.step, next[q])
		}
		for _, q := range p.qubits() {
			next[q] = p.step + 1
		}
		b.gates = append(b.gates, p)
	}
	return b
}

type cellInfo struct {
	gate        *sim.Gate
	isControl   bool
	isTarget    bool
	vertAbove   bool
	vertBelow   bool
	passThrough bool
}

// cellInfo returns rendering information for the cell at (step, qubit).
func (b *Board) cellInfo(step, qubit int) cellInfo {
	var info cellInfo

	if p := b.GateAt(step, qubit); p != nil {
		info.gate = &p.gate
		info.isControl = p.gate.Control != nil && *p.gate.Control == qubit
		info.isTarget = p.gate.Control != nil && p.gate.Target == qubit
	}

	// Vertical connections for two-qubit gates
	for _, p := range b.gates {
		if p.step != step || p.gate.Control == nil {
			continue
		}
		lo, hi := p.span()
		if qubit < lo || qubit > hi {
			continue
		}
		if qubit > lo {
			info.vertAbove = true
		}
		if qubit < hi {
			info.vertBelow = true
		}
		if qubit > lo && qubit < hi && info.gate == nil {
			info.passThrough = true
		}
	}
	return info
}

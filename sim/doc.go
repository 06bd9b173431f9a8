// Package sim is a statevector simulator for small quantum circuits.
//
// A Circuit lists gates that are applied in order to a 2^n amplitude vector
// starting from a single basis state. The supported gates are H, X, Y, Z,
// CNOT, RX, RY and RZ; any other type is treated as identity unless the
// engine is built with WithStrictGates.
//
// Qubit q is bit 1<<q of a basis index, but result labels are written most
// significant bit first, so qubit 0 is the rightmost character:
//
//	e := sim.NewEngine()
//	res, err := e.Simulate(sim.Circuit{NumQubits: 2, Gates: []sim.Gate{sim.X(0)}})
//	// res.Probabilities["01"] == 1
package sim

package sim

import (
	"math"
	"sort"
)

// presets are the algorithm demonstrations offered by the CLI, the API and the editor.
var presets = map[string]func() Circuit{
	"grover": func() Circuit {
		return Circuit{NumQubits: 3, Gates: []Gate{
			H(0), H(1), X(2), H(2),
			CNOT(1, 2), CNOT(0, 2),
			H(2),
		}}
	},
	"deutsch-jozsa": func() Circuit {
		return Circuit{NumQubits: 3, Gates: []Gate{X(2), H(0), H(1), H(2)}}
	},
	"shor": func() Circuit {
		return Circuit{NumQubits: 2, Gates: []Gate{H(0)}}
	},
	"qft": func() Circuit {
		return Circuit{NumQubits: 3, Gates: []Gate{
			H(0), RZ(1, math.Pi/2), RZ(2, math.Pi/4),
		}}
	},
	"qpe": func() Circuit {
		return Circuit{NumQubits: 3, Gates: []Gate{
			H(0), H(1), RZ(2, math.Pi/4), CNOT(0, 2),
		}}
	},
	"bernstein-vazirani": func() Circuit {
		return Circuit{NumQubits: 4, Gates: []Gate{
			X(3), H(0), H(1), H(2), H(3),
			CNOT(0, 3), CNOT(1, 3),
			H(0), H(1), H(2),
		}}
	},
	"simon": func() Circuit {
		return Circuit{NumQubits: 6, Gates: []Gate{
			H(0), H(1), H(2),
			CNOT(0, 3), CNOT(1, 4), CNOT(2, 5),
			H(0), H(1), H(2),
		}}
	},
	"qaoa": func() Circuit {
		return Circuit{NumQubits: 3, Gates: []Gate{
			X(0), H(1), H(2),
			RZ(0, math.Pi/3), RZ(1, math.Pi/4),
			CNOT(0, 1), CNOT(1, 2),
		}}
	},
	"vqe": func() Circuit {
		return Circuit{NumQubits: 2, Gates: []Gate{
			RY(0, math.Pi/4), RY(1, math.Pi/6),
			CNOT(0, 1), RZ(1, math.Pi/3),
		}}
	},
}

// Preset returns a fresh copy of the named algorithm circuit.
func Preset(id string) (Circuit, bool) {
	build, ok := presets[id]
	if !ok {
		return Circuit{}, false
	}
	return build(), true
}

// PresetIDs lists preset names in sorted order.
func PresetIDs() []string {
	ids := make([]string, 0, len(presets))
	for id := range presets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

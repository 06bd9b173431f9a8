package interchange

import (
	"encoding/json"
	"fmt"

	"qtermsim/sim"
)

// EnglishVersion is the version tag written by EncodeEnglish.
const EnglishVersion = "1.0.0"

// englishCircuit is the versioned, human oriented shape shared with the
// browser front end.
type englishCircuit struct {
	Version       string         `json:"version"`
	Qubits        int            `json:"qubits"`
	Gates         []sim.Gate     `json:"gates"`
	InitialStates map[int]string `json:"initialStates,omitempty"`
}

// EncodeJSON writes c in the engine's own field names.
func EncodeJSON(c sim.Circuit) ([]byte, error) {
	if c.Gates == nil {
		c.Gates = []sim.Gate{}
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode circuit: %w", err)
	}
	return b, nil
}

// EncodeEnglish writes c as {"version", "qubits", "gates"}.
func EncodeEnglish(c sim.Circuit) ([]byte, error) {
	ec := englishCircuit{
		Version:       EnglishVersion,
		Qubits:        c.NumQubits,
		Gates:         c.Gates,
		InitialStates: c.InitialStates,
	}
	if ec.Gates == nil {
		ec.Gates = []sim.Gate{}
	}
	b, err := json.MarshalIndent(ec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode circuit: %w", err)
	}
	return b, nil
}

// DecodeJSON reads either shape. numQubits wins over qubits when both are
// present; an english circuit with a missing or zero width gets one qubit.
// A document without a gates array is ErrUnsupportedShape.
func DecodeJSON(data []byte) (sim.Circuit, error) {
	var doc struct {
		NumQubits     *int           `json:"numQubits"`
		Qubits        *int           `json:"qubits"`
		Gates         *[]sim.Gate    `json:"gates"`
		InitialStates map[int]string `json:"initialStates"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return sim.Circuit{}, fmt.Errorf("decode circuit: %w", err)
	}
	if doc.Gates == nil {
		return sim.Circuit{}, ErrUnsupportedShape
	}

	c := sim.Circuit{Gates: *doc.Gates, InitialStates: doc.InitialStates}
	switch {
	case doc.NumQubits != nil:
		c.NumQubits = *doc.NumQubits
	case doc.Qubits != nil && *doc.Qubits != 0:
		c.NumQubits = *doc.Qubits
	default:
		c.NumQubits = 1
	}
	return c, nil
}

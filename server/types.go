package server

import (
	"qtermsim/sim"
)

// GateDTO is a gate as it arrives over the wire. Target is a pointer so a
// missing field is rejected instead of read as qubit 0.
type GateDTO struct {
	Type    string   `json:"type" validate:"required,max=16"`
	Target  *int     `json:"target" validate:"required,min=0"`
	Control *int     `json:"control,omitempty" validate:"omitempty,min=0"`
	Angle   *float64 `json:"angle,omitempty"`
}

// CircuitDTO mirrors sim.Circuit with request validation rules. Qubit and
// gate ceilings from configuration are checked by the handler.
type CircuitDTO struct {
	NumQubits     int            `json:"numQubits" validate:"min=1,max=30"`
	Gates         []GateDTO      `json:"gates" validate:"dive"`
	InitialStates map[int]string `json:"initialStates,omitempty" validate:"omitempty,dive,keys,min=0,endkeys,oneof=0 1"`
}

// Circuit converts the request into an engine circuit.
func (d CircuitDTO) Circuit() sim.Circuit {
	c := sim.Circuit{
		NumQubits:     d.NumQubits,
		Gates:         make([]sim.Gate, 0, len(d.Gates)),
		InitialStates: d.InitialStates,
	}
	for _, g := range d.Gates {
		gate := sim.Gate{Type: sim.GateType(g.Type), Control: g.Control, Angle: g.Angle}
		if g.Target != nil {
			gate.Target = *g.Target
		}
		c.Gates = append(c.Gates, gate)
	}
	return c
}

// BatchRequest is the body of POST /v1/simulate/batch.
type BatchRequest struct {
	Circuits []CircuitDTO `json:"circuits" validate:"required,min=1,dive"`
}

// BatchResponse holds results in request order.
type BatchResponse struct {
	Results []*sim.ExecutionResult `json:"results"`
}

// ImportRequest is the body of POST /v1/import. An empty format means detect.
type ImportRequest struct {
	Source string `json:"source" validate:"required"`
	Format string `json:"format,omitempty" validate:"omitempty,oneof=auto qasm openqasm cirq quil json english"`
}

// ExportRequest is the body of POST /v1/export.
type ExportRequest struct {
	Format  string     `json:"format" validate:"required,oneof=qasm cirq quil json english"`
	Circuit CircuitDTO `json:"circuit"`
}

type ExportResponse struct {
	Format string `json:"format"`
	Source string `json:"source"`
}

type PresetsResponse struct {
	Presets []string `json:"presets"`
}

type CacheResponse struct {
	Cleared int `json:"cleared"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is a stable machine readable identifier.
	Code string `json:"code"`

	// Details lists failing fields for validation errors.
	Details []string `json:"details,omitempty"`

	RequestID string `json:"request_id,omitempty"`
}

package sim

import (
	"fmt"
	"math/bits"
	"math/cmplx"
	"sort"
)

// ExecutionResult is the output of one simulation.
type ExecutionResult struct {
	// Probabilities maps every basis bitstring, qubit n-1 first, to |amplitude|².
	Probabilities map[string]float64 `json:"probabilities"`
	// StateVector holds amplitudes flattened as re0, im0, re1, im1, ...
	StateVector []float64 `json:"stateVector"`
	Warnings    []string  `json:"warnings,omitempty"`
}

func newResult(state []Complex, numQubits int) *ExecutionResult {
	res := &ExecutionResult{
		Probabilities: make(map[string]float64, len(state)),
		StateVector:   make([]float64, 0, 2*len(state)),
	}
	for i, amp := range state {
		res.Probabilities[BasisLabel(i, numQubits)] = Norm2(amp)
		res.StateVector = append(res.StateVector, real(amp), imag(amp))
	}
	return res
}

// BasisLabel formats index i as a zero padded binary string of width n.
// Bit 0 (qubit 0) is the last character.
func BasisLabel(i, n int) string {
	return fmt.Sprintf("%0*b", n, i)
}

// NumQubits recovers the register width from the state vector length.
func (r *ExecutionResult) NumQubits() int {
	size := len(r.StateVector) / 2
	if size == 0 {
		return 0
	}
	return bits.Len(uint(size)) - 1
}

// Amplitudes rebuilds the complex state vector.
func (r *ExecutionResult) Amplitudes() []Complex {
	amps := make([]Complex, len(r.StateVector)/2)
	for i := range amps {
		amps[i] = C(r.StateVector[2*i], r.StateVector[2*i+1])
	}
	return amps
}

// Total sums all probabilities. It is 1 up to rounding for a unitary circuit.
func (r *ExecutionResult) Total() float64 {
	total := 0.0
	for _, p := range r.Probabilities {
		total += p
	}
	return total
}

// QubitProbability is the marginal distribution of a single qubit.
type QubitProbability struct {
	Prob0 float64 `json:"p0"`
	Prob1 float64 `json:"p1"`
}

// Marginals returns P(0) and P(1) for each qubit, indexed by qubit.
func (r *ExecutionResult) Marginals() []QubitProbability {
	n := r.NumQubits()
	probs := make([]QubitProbability, n)
	for i, amp := range r.Amplitudes() {
		p := Norm2(amp)
		for q := 0; q < n; q++ {
			if i&(1<<q) != 0 {
				probs[q].Prob1 += p
			} else {
				probs[q].Prob0 += p
			}
		}
	}
	return probs
}

// StateEntry describes one basis state of the final vector.
type StateEntry struct {
	Index       int     `json:"index"`
	Label       string  `json:"label"`
	Amplitude   Complex `json:"-"`
	Probability float64 `json:"probability"`
	Phase       float64 `json:"phase"`
}

// Entries lists basis states with probability above minProb, most likely first.
// Ties keep index order.
func (r *ExecutionResult) Entries(minProb float64) []StateEntry {
	n := r.NumQubits()
	var out []StateEntry
	for i, amp := range r.Amplitudes() {
		p := Norm2(amp)
		if p <= minProb {
			continue
		}
		out = append(out, StateEntry{
			Index:       i,
			Label:       BasisLabel(i, n),
			Amplitude:   amp,
			Probability: p,
			Phase:       cmplx.Phase(amp),
		})
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Probability > out[b].Probability })
	return out
}

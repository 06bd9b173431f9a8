package sim

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

func simulate(t *testing.T, c Circuit, opts ...Option) *ExecutionResult {
	t.Helper()
	res, err := NewEngine(opts...).Simulate(c)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func TestSimulateKnownStates(t *testing.T) {
	tests := []struct {
		name    string
		circuit Circuit
		want    map[string]float64
	}{
		{
			name:    "empty circuit stays in |0>",
			circuit: Circuit{NumQubits: 1},
			want:    map[string]float64{"0": 1, "1": 0},
		},
		{
			name:    "hadamard superposition",
			circuit: Circuit{NumQubits: 1, Gates: []Gate{H(0)}},
			want:    map[string]float64{"0": 0.5, "1": 0.5},
		},
		{
			name:    "pauli x flip",
			circuit: Circuit{NumQubits: 1, Gates: []Gate{X(0)}},
			want:    map[string]float64{"0": 0, "1": 1},
		},
		{
			name:    "bell state",
			circuit: Circuit{NumQubits: 2, Gates: []Gate{H(0), CNOT(0, 1)}},
			want:    map[string]float64{"00": 0.5, "01": 0, "10": 0, "11": 0.5},
		},
		{
			name:    "x on qubit 0 is the rightmost label bit",
			circuit: Circuit{NumQubits: 3, Gates: []Gate{X(0)}},
			want:    map[string]float64{"001": 1},
		},
		{
			name:    "initial state override",
			circuit: Circuit{NumQubits: 2, InitialStates: map[int]string{1: "1"}},
			want:    map[string]float64{"10": 1, "01": 0, "00": 0, "11": 0},
		},
		{
			name:    "initial zero entries are ignored",
			circuit: Circuit{NumQubits: 2, InitialStates: map[int]string{0: "0", 1: "x"}},
			want:    map[string]float64{"00": 1},
		},
		{
			name:    "cnot with control set from the initial state",
			circuit: Circuit{NumQubits: 2, Gates: []Gate{CNOT(1, 0)}, InitialStates: map[int]string{1: "1"}},
			want:    map[string]float64{"11": 1},
		},
		{
			name:    "rx uses the full angle",
			circuit: Circuit{NumQubits: 1, Gates: []Gate{RX(0, math.Pi/2)}},
			want:    map[string]float64{"0": 0, "1": 1},
		},
		{
			name:    "ry uses the full angle",
			circuit: Circuit{NumQubits: 1, Gates: []Gate{RY(0, math.Pi/4)}},
			want:    map[string]float64{"0": 0.5, "1": 0.5},
		},
		{
			name:    "rz is phase only",
			circuit: Circuit{NumQubits: 1, Gates: []Gate{RZ(0, math.Pi)}},
			want:    map[string]float64{"0": 1, "1": 0},
		},
		{
			name:    "unknown gate is identity",
			circuit: Circuit{NumQubits: 1, Gates: []Gate{{Type: "S", Target: 0}}},
			want:    map[string]float64{"0": 1},
		},
		{
			name:    "unknown angled gate is identity",
			circuit: Circuit{NumQubits: 1, Gates: []Gate{H(0), RY(0, 0), {Type: "P", Target: 0, Angle: ptr(1.2)}, H(0)}},
			want:    map[string]float64{"0": 1, "1": 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := simulate(t, tt.circuit)
			assert.Len(t, res.Probabilities, 1<<tt.circuit.NumQubits)
			assert.Len(t, res.StateVector, 2<<tt.circuit.NumQubits)
			for key, want := range tt.want {
				got, ok := res.Probabilities[key]
				require.True(t, ok, "missing key %q", key)
				assert.InDelta(t, want, got, tolerance, "P(%s)", key)
			}
			assert.Empty(t, res.Warnings)
		})
	}
}

func TestRZPhaseDiffersFromZeroAngle(t *testing.T) {
	pi := simulate(t, Circuit{NumQubits: 1, Gates: []Gate{RZ(0, math.Pi)}})
	zero := simulate(t, Circuit{NumQubits: 1, Gates: []Gate{RZ(0, 0)}})

	// RZ(pi)|0> = e^(-i pi/2)|0> = -i|0>
	assert.InDelta(t, 0, pi.StateVector[0], tolerance)
	assert.InDelta(t, -1, pi.StateVector[1], tolerance)
	assert.InDelta(t, 1, zero.StateVector[0], tolerance)
	assert.InDelta(t, 0, zero.StateVector[1], tolerance)
}

func TestDoubleXRestoresState(t *testing.T) {
	before := simulate(t, Circuit{NumQubits: 2, Gates: []Gate{H(0), RY(1, 0.3)}})
	after := simulate(t, Circuit{NumQubits: 2, Gates: []Gate{H(0), RY(1, 0.3), X(1), X(1)}})
	require.Len(t, after.StateVector, len(before.StateVector))
	for i := range before.StateVector {
		assert.InDelta(t, before.StateVector[i], after.StateVector[i], tolerance, "component %d", i)
	}
}

func TestYPhases(t *testing.T) {
	// Y|0> = i|1>
	res := simulate(t, Circuit{NumQubits: 1, Gates: []Gate{Y(0)}})
	amps := res.Amplitudes()
	assert.InDelta(t, 0, real(amps[1]), tolerance)
	assert.InDelta(t, 1, imag(amps[1]), tolerance)
}

func TestNormalizationRandomCircuits(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for iter := 0; iter < 50; iter++ {
		n := 1 + rng.IntN(5)
		c := Circuit{NumQubits: n}
		for g := 0; g < 40; g++ {
			target := rng.IntN(n)
			theta := rng.Float64() * 2 * math.Pi
			switch k := rng.IntN(8); {
			case k == 4 && n > 1:
				control := (target + 1 + rng.IntN(n-1)) % n
				c.Append(CNOT(control, target))
			case k == 5:
				c.Append(RX(target, theta))
			case k == 6:
				c.Append(RY(target, theta))
			case k == 7:
				c.Append(RZ(target, theta))
			default:
				c.Append(Gate{Type: KnownGates[k%4], Target: target})
			}
		}
		res := simulate(t, c)
		assert.InDelta(t, 1, res.Total(), 1e-6, "iteration %d", iter)
	}
}

func TestSimulateDoesNotMutateCircuit(t *testing.T) {
	c := Circuit{NumQubits: 2, Gates: []Gate{H(0), CNOT(0, 1), RX(1, 0.25)}, InitialStates: map[int]string{0: "1"}}
	orig := c.Clone()
	simulate(t, c)
	assert.Equal(t, orig, c)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		circuit Circuit
		want    error
	}{
		{"zero qubits", Circuit{NumQubits: 0}, ErrInvalidCircuit},
		{"negative qubits", Circuit{NumQubits: -3}, ErrInvalidCircuit},
		{"too many qubits", Circuit{NumQubits: MaxQubits + 1}, ErrTooManyQubits},
		{"target out of range", Circuit{NumQubits: 2, Gates: []Gate{H(2)}}, ErrInvalidGateReference},
		{"negative target", Circuit{NumQubits: 2, Gates: []Gate{X(-1)}}, ErrInvalidGateReference},
		{"control out of range", Circuit{NumQubits: 2, Gates: []Gate{CNOT(5, 0)}}, ErrInvalidGateReference},
		{"cnot target out of range", Circuit{NumQubits: 2, Gates: []Gate{CNOT(0, 2)}}, ErrInvalidGateReference},
		{"control equals target", Circuit{NumQubits: 2, Gates: []Gate{CNOT(1, 1)}}, ErrInvalidGateReference},
		{"missing control", Circuit{NumQubits: 2, Gates: []Gate{{Type: GateCNOT, Target: 1}}}, ErrInvalidGateReference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewEngine().Simulate(tt.circuit)
			assert.Nil(t, res)
			require.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrInvalidCircuit)
		})
	}
}

func TestGateErrorCarriesIndex(t *testing.T) {
	_, err := NewEngine().Simulate(Circuit{NumQubits: 2, Gates: []Gate{H(0), X(1), CNOT(0, 3)}})
	var gerr *GateError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, 2, gerr.Index)
	assert.Equal(t, GateCNOT, gerr.Gate.Type)
}

func TestControlIgnoredOnSingleQubitGates(t *testing.T) {
	bogus := 9
	res := simulate(t, Circuit{NumQubits: 1, Gates: []Gate{{Type: GateX, Target: 0, Control: &bogus}}})
	assert.InDelta(t, 1, res.Probabilities["1"], tolerance)
}

func TestStrictGates(t *testing.T) {
	c := Circuit{NumQubits: 1, Gates: []Gate{{Type: "T", Target: 0}}}

	_, err := NewEngine().Simulate(c)
	assert.NoError(t, err)

	_, err = NewEngine(WithStrictGates(true)).Simulate(c)
	assert.ErrorIs(t, err, ErrUnsupportedGate)
	assert.False(t, errors.Is(err, ErrInvalidCircuit))
}

func TestWithMaxQubits(t *testing.T) {
	e := NewEngine(WithMaxQubits(3))
	assert.Equal(t, 3, e.MaxQubits())
	_, err := e.Simulate(Circuit{NumQubits: 4})
	assert.ErrorIs(t, err, ErrTooManyQubits)

	assert.Equal(t, MaxQubits, NewEngine(WithMaxQubits(99)).MaxQubits())
}

func TestDegeneracyWarning(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	res, err := NewEngine(WithMetrics(m)).Simulate(Circuit{NumQubits: 1, Gates: []Gate{RX(0, math.NaN())}})
	require.NoError(t, err)
	assert.Len(t, res.Warnings, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.degenerate))
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	e := NewEngine(WithMetrics(m))

	c := Circuit{NumQubits: 2, Gates: []Gate{H(0), RX(1, 0.5), RX(0, 0.5), CNOT(0, 1), {Type: "SWAP", Target: 0}}}
	_, err := e.Simulate(c)
	require.NoError(t, err)
	_, err = e.Simulate(Circuit{NumQubits: 0})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.simulations.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.simulations.WithLabelValues("invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cache.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cache.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.gates.WithLabelValues("RX")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.gates.WithLabelValues("other")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestConcurrentSimulationsShareCache(t *testing.T) {
	cache := NewMatrixCache()
	e := NewEngine(WithCache(cache))

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := Circuit{NumQubits: 3}
			for g := 0; g < 30; g++ {
				c.Append(RY(g%3, float64(g%5)*0.1), CNOT(g%3, (g+1)%3))
			}
			res, err := e.Simulate(c)
			if err != nil {
				errs <- err
				return
			}
			if math.Abs(res.Total()-1) > 1e-9 {
				errs <- errors.New("probabilities do not sum to 1")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
	assert.Equal(t, 5, cache.Len())
	assert.Same(t, cache, e.Cache())
	assert.Equal(t, 5, e.ClearCache())
	assert.Equal(t, 0, cache.Len())
}

func TestResultHelpers(t *testing.T) {
	res := simulate(t, Circuit{NumQubits: 2, Gates: []Gate{H(0), CNOT(0, 1), RZ(1, math.Pi/2)}})
	assert.Equal(t, 2, res.NumQubits())

	marg := res.Marginals()
	require.Len(t, marg, 2)
	for q, p := range marg {
		assert.InDelta(t, 0.5, p.Prob0, tolerance, "qubit %d", q)
		assert.InDelta(t, 0.5, p.Prob1, tolerance, "qubit %d", q)
	}

	entries := res.Entries(1e-10)
	require.Len(t, entries, 2)
	assert.Equal(t, "00", entries[0].Label)
	assert.Equal(t, "11", entries[1].Label)
	assert.InDelta(t, -math.Pi/4, entries[0].Phase, tolerance)
	assert.InDelta(t, math.Pi/4, entries[1].Phase, tolerance)
}

func TestBasisLabel(t *testing.T) {
	tests := []struct {
		i, n int
		want string
	}{
		{0, 1, "0"},
		{1, 1, "1"},
		{1, 3, "001"},
		{4, 3, "100"},
		{5, 4, "0101"},
	}
	for _, tt := range tests {
		if got := BasisLabel(tt.i, tt.n); got != tt.want {
			t.Errorf("BasisLabel(%d, %d) = %q, want %q", tt.i, tt.n, got, tt.want)
		}
	}
}

func TestPresets(t *testing.T) {
	ids := PresetIDs()
	assert.Len(t, ids, 9)
	assert.IsIncreasing(t, ids)

	e := NewEngine()
	for _, id := range ids {
		c, ok := Preset(id)
		require.True(t, ok, id)
		res, err := e.Simulate(c)
		require.NoError(t, err, id)
		assert.InDelta(t, 1, res.Total(), 1e-9, id)
	}

	_, ok := Preset("nope")
	assert.False(t, ok)

	// Each call returns an independent copy.
	a, _ := Preset("grover")
	a.Gates[0].Target = 2
	b, _ := Preset("grover")
	assert.Equal(t, 0, b.Gates[0].Target)
}

func TestSimulateContextCanceled(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := NewEngine(WithMetrics(m)).SimulateContext(ctx, Circuit{NumQubits: 1, Gates: []Gate{H(0)}})
	assert.Nil(t, res)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.simulations.WithLabelValues("canceled")))

	// A circuit with no gates has nothing to interrupt.
	res, err = NewEngine().SimulateContext(ctx, Circuit{NumQubits: 1})
	require.NoError(t, err)
	assert.InDelta(t, 1, res.Probabilities["0"], tolerance)
}

func ptr[T any](v T) *T { return &v }

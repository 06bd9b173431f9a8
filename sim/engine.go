package sim

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"
)

// MaxQubits is the hard ceiling on register width. 2^30 amplitudes is 16 GiB.
const MaxQubits = 30

// DefaultDegeneracyTolerance is how far the probability sum may drift from 1
// before a result carries a warning.
const DefaultDegeneracyTolerance = 1e-2

// Engine evolves state vectors. It is safe for concurrent use; the only state
// shared between calls is the matrix cache.
type Engine struct {
	cache     *MatrixCache
	logger    *slog.Logger
	metrics   *Metrics
	maxQubits int
	strict    bool
	tolerance float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache shares an existing matrix cache instead of creating one.
func WithCache(c *MatrixCache) Option {
	return func(e *Engine) {
		if c != nil {
			e.cache = c
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithMaxQubits lowers the register limit. Values outside (0, MaxQubits] keep MaxQubits.
func WithMaxQubits(n int) Option {
	return func(e *Engine) {
		if n > 0 && n <= MaxQubits {
			e.maxQubits = n
		}
	}
}

// WithStrictGates makes unknown gate types an error instead of identity.
func WithStrictGates(strict bool) Option {
	return func(e *Engine) { e.strict = strict }
}

func WithDegeneracyTolerance(tol float64) Option {
	return func(e *Engine) {
		if tol > 0 {
			e.tolerance = tol
		}
	}
}

// NewEngine returns an engine with its own cache unless WithCache is given.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxQubits: MaxQubits,
		tolerance: DefaultDegeneracyTolerance,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cache == nil {
		e.cache = NewMatrixCache()
	}
	return e
}

func (e *Engine) Cache() *MatrixCache { return e.cache }

// ClearCache empties the matrix cache and returns the number of dropped entries.
func (e *Engine) ClearCache() int { return e.cache.Clear() }

func (e *Engine) MaxQubits() int { return e.maxQubits }

// Validate checks c against this engine's qubit limit and gate policy.
func (e *Engine) Validate(c Circuit) error {
	return c.Validate(e.maxQubits, e.strict)
}

// Simulate runs c from its initial basis state through every gate and returns
// the final amplitudes and probabilities. An invalid circuit yields no result.
func (e *Engine) Simulate(c Circuit) (*ExecutionResult, error) {
	return e.SimulateContext(context.Background(), c)
}

// SimulateContext is Simulate with cancellation, checked before each gate.
func (e *Engine) SimulateContext(ctx context.Context, c Circuit) (*ExecutionResult, error) {
	start := time.Now()
	if err := e.Validate(c); err != nil {
		e.metrics.observeSimulation("invalid", 0)
		return nil, err
	}

	state := basis(1<<c.NumQubits, c.InitialIndex())
	for i, g := range c.Gates {
		if err := ctx.Err(); err != nil {
			e.metrics.observeSimulation("canceled", time.Since(start).Seconds())
			return nil, fmt.Errorf("simulation stopped before gate %d: %w", i, err)
		}
		state = e.apply(state, g)
	}

	res := newResult(state, c.NumQubits)
	elapsed := time.Since(start)

	// NaN sums fail the comparison and are reported too.
	if total := res.Total(); !(math.Abs(total-1) <= e.tolerance) {
		msg := fmt.Sprintf("probability sum %.6f deviates from 1 by more than %g", total, e.tolerance)
		res.Warnings = append(res.Warnings, msg)
		e.metrics.observeDegeneracy()
		e.logger.Warn("numeric degeneracy", "qubits", c.NumQubits, "gates", len(c.Gates), "total", total)
	}

	e.metrics.observeSimulation("ok", elapsed.Seconds())
	e.logger.Debug("simulated circuit",
		"qubits", c.NumQubits,
		"gates", len(c.Gates),
		"duration", elapsed,
	)
	return res, nil
}

// apply returns the state after g. The input slice is left untouched.
func (e *Engine) apply(state []Complex, g Gate) []Complex {
	e.metrics.observeGate(g.Type)
	if g.Type == GateCNOT {
		return applyCNOT(state, *g.Control, g.Target)
	}
	u, hit := e.cache.resolve(g.Type, g.Angle)
	if g.Angle != nil {
		e.metrics.observeCache(hit)
	}
	return applySingleQubit(state, g.Target, u)
}

func basis(size, idx int) []Complex {
	v := make([]Complex, size)
	v[idx] = C(1, 0)
	return v
}

// applySingleQubit pairs every index whose target bit is 0 with its partner
// whose target bit is 1 and multiplies each pair by u.
func applySingleQubit(state []Complex, target int, u Matrix) []Complex {
	size := len(state)
	stride := 1 << target
	period := stride << 1
	out := make([]Complex, size)

	u00, u01, u10, u11 := u[0][0], u[0][1], u[1][0], u[1][1]
	for i := 0; i < size; i += period {
		for j := 0; j < stride; j++ {
			i0 := i + j
			i1 := i0 + stride
			a0, a1 := state[i0], state[i1]
			out[i0] = Add(Mul(u00, a0), Mul(u01, a1))
			out[i1] = Add(Mul(u10, a0), Mul(u11, a1))
		}
	}
	return out
}

// applyCNOT permutes amplitudes: indices with the control bit set take the
// amplitude of their target-flipped partner.
func applyCNOT(state []Complex, control, target int) []Complex {
	out := make([]Complex, len(state))
	cBit := 1 << control
	tBit := 1 << target
	for i := range state {
		if i&cBit != 0 {
			out[i] = state[i^tBit]
		} else {
			out[i] = state[i]
		}
	}
	return out
}

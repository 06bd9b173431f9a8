package server

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"qtermsim/sim"
)

// runBatch simulates circuits with at most cfg.BatchConcurrency in flight.
// Every circuit is checked against the gate limit and validated before any
// runs, so an invalid batch always reports its lowest failing index. Results
// keep request order.
func (h *Handlers) runBatch(ctx context.Context, circuits []sim.Circuit) ([]*sim.ExecutionResult, error) {
	for i, c := range circuits {
		err := h.checkLimits(c)
		if err == nil {
			err = h.engine.Validate(c)
		}
		if err != nil {
			return nil, fmt.Errorf("circuit %d: %w", i, err)
		}
	}

	results := make([]*sim.ExecutionResult, len(circuits))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(max(h.cfg.BatchConcurrency, 1))

	for i, c := range circuits {
		g.Go(func() error {
			res, err := h.simulate(gCtx, c)
			if err != nil {
				return fmt.Errorf("circuit %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

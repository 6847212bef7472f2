package sim

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Ensemble runs independent simulators concurrently. Each simulator owns
// its own system, so no state is shared between goroutines.
type Ensemble struct {
	sims []*Simulator
}

func NewEnsemble(sims ...*Simulator) *Ensemble {
	return &Ensemble{sims: sims}
}

// Run executes every simulator with cfg. Results keep the input order.
// The first failing run cancels the rest.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(e.sims))

	g, ctx := errgroup.WithContext(ctx)
	for i, s := range e.sims {
		g.Go(func() error {
			r, err := s.Run(ctx, cfg)
			results[i] = r
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

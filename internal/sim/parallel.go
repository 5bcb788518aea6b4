package sim

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Builder prepares an independent simulator for one ensemble member.
type Builder func(seed int64) (*Simulator, error)

type Ensemble struct {
	build     Builder
	numRuns   int
	seedStart int64
	limit     int
}

func NewEnsemble(build Builder, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{build: build, numRuns: numRuns, seedStart: seedStart, limit: -1}
}

// SetLimit bounds the number of members running at once.
func (e *Ensemble) SetLimit(n int) { e.limit = n }

// Run executes every member with seeds seedStart, seedStart+1, ... and
// returns results in seed order. The first failure cancels the rest.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.limit)

	for i := 0; i < e.numRuns; i++ {
		g.Go(func() error {
			cfgCopy := cfg
			cfgCopy.Seed = e.seedStart + int64(i)

			s, err := e.build(cfgCopy.Seed)
			if err != nil {
				return err
			}
			results[i], err = s.Run(ctx, cfgCopy)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

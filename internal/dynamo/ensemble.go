package dynamo

import (
	"context"
	"fmt"
	"sync"
)

// Builder creates an independent simulator and initial state for one
// replicate. Each replicate gets its own integrator scratch space.
type Builder func(seed int64) (*Simulator, State, error)

type Ensemble struct {
	build     Builder
	numRuns   int
	seedStart int64
}

func NewEnsemble(build Builder, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{build: build, numRuns: numRuns, seedStart: seedStart}
}

// Run executes all replicates concurrently. Results are indexed by replicate,
// replicate i using seed seedStart+i. The first error by index is returned.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfgCopy := cfg
			cfgCopy.Seed = e.seedStart + int64(idx)

			s, x0, err := e.build(cfgCopy.Seed)
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = s.Run(ctx, x0, cfgCopy)
		}(i)
	}

	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("replicate %d (seed %d): %w", i, e.seedStart+int64(i), err)
		}
	}

	return results, nil
}

package sim

import (
	"context"
	"sync"
)

// RunAll runs independent simulations concurrently, one goroutine each. The
// simulations must not share state. Results keep the input order.
func RunAll(ctx context.Context, sims []*Simulation, cfg RunConfig) ([]*Result, error) {
	results := make([]*Result, len(sims))
	errs := make([]error, len(sims))

	var wg sync.WaitGroup
	for i, s := range sims {
		wg.Add(1)
		go func(idx int, s *Simulation) {
			defer wg.Done()
			results[idx], errs[idx] = s.Run(ctx, cfg)
		}(i, s)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/GoSim-25-26J-441/evolution-core/pkg/config"
)

// RestartResult is the outcome of one independent restart
type RestartResult struct {
	Seed   int64   `json:"seed"`
	Result *Result `json:"result,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// RunRestarts runs one lazy search per seed, at most parallel at a time, and
// returns every outcome in seed order along with the index of the best one
// (-1 when none produced a result). Each restart gets its own runner so no
// random source is shared between goroutines.
func RunRestarts(ctx context.Context, cfg *config.Config, seeds []int64, parallel int, log *slog.Logger) ([]RestartResult, int, error) {
	if cfg == nil {
		return nil, -1, fmt.Errorf("config is required")
	}
	if len(seeds) == 0 {
		return nil, -1, fmt.Errorf("no seeds provided")
	}
	if parallel < 1 {
		parallel = 1
	}

	semaphore := make(chan struct{}, parallel)
	var wg sync.WaitGroup
	results := make([]RestartResult, len(seeds))
	errs := make([]error, len(seeds))

	for i, seed := range seeds {
		wg.Add(1)
		go func(idx int, seed int64) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			results[idx].Seed = seed
			res, err := runSeed(ctx, cfg, seed, log)
			results[idx].Result = res
			if err != nil {
				errs[idx] = fmt.Errorf("seed %d: %w", seed, err)
				results[idx].Error = err.Error()
			}
		}(i, seed)
	}
	wg.Wait()

	best := -1
	for i := range results {
		if results[i].Result == nil {
			continue
		}
		if best < 0 || better(results[i].Result, results[best].Result) {
			best = i
		}
	}

	return results, best, errors.Join(errs...)
}

func runSeed(ctx context.Context, cfg *config.Config, seed int64, log *slog.Logger) (*Result, error) {
	c := *cfg
	c.Seed = seed
	if log != nil {
		log = log.With("seed", seed)
	}
	runner, err := NewRunner(&c, nil, log)
	if err != nil {
		return nil, err
	}
	return runner.Run(ctx)
}

// better reports whether a beats b: found first, then the smaller residual,
// then fewer generations.
func better(a, b *Result) bool {
	if a.Found != b.Found {
		return a.Found
	}
	if abs(a.Score) != abs(b.Score) {
		return abs(a.Score) < abs(b.Score)
	}
	return a.Generations < b.Generations
}

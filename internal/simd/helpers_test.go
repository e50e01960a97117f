package simd

import (
	"testing"
	"time"

	"github.com/GoSim-25-26J-441/evolution-core/pkg/logger"
)

// the only gene value is 0, which solves x = 0 before any generation runs
const solvedConfig = `
seed: 5
population: {size: 3, gene_range: {low: 0, high: 1}}
mutation: {chance: 0.5}
problem: {type: linear_equation, coefficients: [1], target: 0}
`

// 2x = 1 has no integer solution, so the run continues until stopped
const endlessConfig = `
seed: 11
population: {size: 4, gene_range: {low: -10, high: 10}}
mutation: {chance: 0.3, delta: {value: 1}}
limits: {max_generations: 100000000}
problem: {type: linear_equation, coefficients: [2], target: 1}
`

const boundedConfig = `
seed: 11
population: {size: 4, gene_range: {low: -10, high: 10}}
mutation: {chance: 0.3, delta: {value: 1}}
limits: {max_generations: 30}
problem: {type: linear_equation, coefficients: [2], target: 1}
`

// 2x + 4y = 1 has no integer solution; long enough that a blocking run
// outlives a short shutdown deadline
const longBlockingConfig = `
seed: 7
population: {size: 4, gene_range: {low: -10, high: 10}}
mutation: {chance: 0.3, delta: {value: 1}}
limits: {max_generations: 200000}
problem: {type: linear_equation, coefficients: [2, 4], target: 1}
`

func init() {
	logger.SetDefault(logger.Discard())
}

func waitForStatus(t *testing.T, store *RunStore, runID string, want RunStatus) *RunRecord {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		rec, ok := store.Get(runID)
		if ok && rec.Run.Status == want {
			return rec
		}
		time.Sleep(10 * time.Millisecond)
	}
	rec, _ := store.Get(runID)
	if rec != nil {
		t.Fatalf("run %s did not reach %s, last status %s (error %q)", runID, want, rec.Run.Status, rec.Run.Error)
	}
	t.Fatalf("run %s not found", runID)
	return nil
}

func waitForGenerations(t *testing.T, store *RunStore, runID string, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if c, ok := store.GetCollector(runID); ok && c.Summary().Generations >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("run %s did not record %d generations", runID, n)
}

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoSim-25-26J-441/evolution-core/internal/genetic"
	"github.com/GoSim-25-26J-441/evolution-core/internal/metrics"
	"github.com/GoSim-25-26J-441/evolution-core/internal/problem"
	"github.com/GoSim-25-26J-441/evolution-core/pkg/config"
	"github.com/GoSim-25-26J-441/evolution-core/pkg/logger"
	"github.com/GoSim-25-26J-441/evolution-core/pkg/utils"
)

// Mode selects the driver used for a run
type Mode string

const (
	ModeBlocking Mode = "blocking"
	ModeLazy     Mode = "lazy"
)

// ParseMode parses a driver mode name
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeBlocking, ModeLazy:
		return Mode(s), nil
	case "":
		return ModeLazy, nil
	default:
		return "", fmt.Errorf("invalid mode %q (must be blocking or lazy)", s)
	}
}

// Reasons a run stops
const (
	StopIdeal          = "ideal"
	StopMaxGenerations = "max_generations"
	StopConverged      = "converged"
	StopCancelled      = "cancelled"
)

// Result is the outcome of a run. Solution holds the ideal chromosome when
// Found is true, otherwise the closest chromosome of the last generation.
type Result struct {
	Found       bool    `json:"found"`
	Solution    []int64 `json:"solution,omitempty"`
	Rendered    string  `json:"rendered,omitempty"`
	Score       int64   `json:"score"`
	Generations int     `json:"generations"`
	StopReason  string  `json:"stop_reason"`
	StopDetail  string  `json:"stop_detail,omitempty"`
	Problem     string  `json:"problem"`
	Selector    string  `json:"selector"`
	Seed        int64   `json:"seed"`
	DurationMs  int64   `json:"duration_ms"`
}

// Runner builds the population, selector and mutation settings of one run
// from its config and drives them to a Result.
type Runner struct {
	cfg         *config.Config
	equation    *problem.LinearEquation[int64]
	selector    genetic.Selector[int64]
	deltas      []genetic.Delta[int64]
	convergence ConvergenceStrategy
	rng         *utils.RandSource
	collector   *metrics.Collector
	logger      *slog.Logger
}

// NewRunner creates a runner. A nil collector or logger is replaced by a
// fresh collector and the default logger.
func NewRunner(cfg *config.Config, collector *metrics.Collector, log *slog.Logger) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	equation, err := problem.NewLinearEquation(cfg.Problem.Coefficients, cfg.Problem.Target)
	if err != nil {
		return nil, fmt.Errorf("failed to build problem: %w", err)
	}
	selector, err := NewSelector(cfg.Selection, equation)
	if err != nil {
		return nil, err
	}
	deltas, err := BuildDeltas(cfg.Mutation)
	if err != nil {
		return nil, fmt.Errorf("failed to build mutation deltas: %w", err)
	}
	convergence, err := NewConvergenceStrategy(cfg.Convergence)
	if err != nil {
		return nil, err
	}

	if collector == nil {
		collector = metrics.NewCollector()
	}
	if log == nil {
		log = logger.Default
	}

	return &Runner{
		cfg:         cfg,
		equation:    equation,
		selector:    selector,
		deltas:      deltas,
		convergence: convergence,
		rng:         utils.NewRandSource(cfg.Seed),
		collector:   collector,
		logger:      log,
	}, nil
}

// Seed returns the seed of the runner's random source
func (r *Runner) Seed() int64 {
	return r.rng.Seed()
}

// Collector returns the collector receiving per-generation statistics
func (r *Runner) Collector() *metrics.Collector {
	return r.collector
}

// Execute runs the driver selected by mode. The blocking driver cannot be
// interrupted, so ctx only applies to the lazy one.
func (r *Runner) Execute(ctx context.Context, mode Mode) (*Result, error) {
	switch mode {
	case ModeBlocking:
		return r.Solve()
	case ModeLazy, "":
		return r.Run(ctx)
	default:
		return nil, fmt.Errorf("invalid mode %q", mode)
	}
}

// Solve runs the blocking simulator until it finds an ideal chromosome or
// reaches max_generations. Convergence settings do not apply to it.
func (r *Runner) Solve() (*Result, error) {
	start := time.Now()
	population := r.initialPopulation()
	r.begin(ModeBlocking, population)
	defer r.collector.Stop()

	if r.convergence != nil {
		r.logger.Warn("Convergence stopping is ignored by the blocking driver", "strategy", r.convergence.Name())
	}

	last := population
	generations := 0
	sim := genetic.NewDefaultSimulator(r.deltas, r.cfg.Mutation.Chance, r.cfg.Limits.MaxGenerations).
		WithProgressReporter(func(gen int, p []genetic.Chromosome[int64]) {
			generations = gen
			last = p
			r.record(gen, p)
		})

	ideal, found, err := sim.Simulate(population, r.selector, r.rng)
	if err != nil {
		r.logger.Error("Run failed", "generations", generations, "error", err)
		return nil, err
	}
	if found {
		return r.finish(ideal, true, generations, StopIdeal, "", start), nil
	}
	best, _, _ := closest(last, r.equation)
	return r.finish(best, false, generations, StopMaxGenerations, "", start), nil
}

// Run drives the lazy simulation one generation at a time. It stops on an
// ideal chromosome, at max_generations, on convergence or when ctx is done.
// On cancellation the partial result is returned along with ctx's error.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	population := r.initialPopulation()
	r.begin(ModeLazy, population)
	defer r.collector.Stop()

	it := genetic.NewSimulationIter(r.deltas, r.cfg.Mutation.Chance, population, r.selector, r.rng)
	last := population
	limit := r.cfg.Limits.MaxGenerations

	for it.Generation() < limit {
		select {
		case <-ctx.Done():
			best, _, _ := closest(last, r.equation)
			r.logger.Warn("Run cancelled", "generations", it.Generation())
			return r.finish(best, false, it.Generation(), StopCancelled, "", start), ctx.Err()
		default:
		}

		next, ok := it.Next()
		if !ok {
			break
		}
		if it.Solved() {
			return r.finish(next[0], true, it.Generation(), StopIdeal, "", start), nil
		}
		last = next
		r.record(it.Generation(), next)

		if r.convergence != nil {
			if ok, reason := r.convergence.CheckConvergence(r.collector.Tail(r.convergence.Window())); ok {
				best, _, _ := closest(last, r.equation)
				return r.finish(best, false, it.Generation(), StopConverged, reason, start), nil
			}
		}
	}

	if err := it.Err(); err != nil {
		r.logger.Error("Run failed", "generations", it.Generation(), "error", err)
		return nil, fmt.Errorf("generation %d: %w", it.Generation()+1, err)
	}
	best, _, _ := closest(last, r.equation)
	return r.finish(best, false, it.Generation(), StopMaxGenerations, "", start), nil
}

func (r *Runner) initialPopulation() []genetic.Chromosome[int64] {
	return NewPopulation(r.cfg.Population.Size, r.equation.Arity(), r.cfg.Population.GeneRange, r.rng)
}

func (r *Runner) begin(mode Mode, population []genetic.Chromosome[int64]) {
	r.collector.Start()
	r.logger.Info("Starting run",
		"mode", mode,
		"problem", r.equation.String(),
		"selector", r.selector.Name(),
		"population", len(population),
		"seed", r.rng.Seed(),
		"max_generations", r.cfg.Limits.MaxGenerations)
	r.record(0, population)
}

func (r *Runner) record(generation int, population []genetic.Chromosome[int64]) {
	stats := r.collector.Record(generation, metrics.Distances[int64](population, r.equation))
	every := r.cfg.Limits.ReportEvery
	if every > 0 && generation%every == 0 {
		r.logger.Debug("Generation progress",
			"generation", generation,
			"best", stats.Best,
			"mean", stats.Mean,
			"stddev", stats.StdDev)
	}
}

func (r *Runner) finish(c genetic.Chromosome[int64], found bool, generations int, reason, detail string, start time.Time) *Result {
	res := &Result{
		Found:       found,
		Generations: generations,
		StopReason:  reason,
		StopDetail:  detail,
		Problem:     r.equation.String(),
		Selector:    r.selector.Name(),
		Seed:        r.rng.Seed(),
		DurationMs:  time.Since(start).Milliseconds(),
	}
	if c.Len() > 0 {
		res.Solution = c.Genes()
		res.Rendered = c.String()
		res.Score = r.equation.Score(c)
	}

	r.logger.Info("Run finished",
		"found", found,
		"generations", generations,
		"stop_reason", reason,
		"solution", res.Rendered,
		"score", res.Score,
		"duration_ms", res.DurationMs)
	return res
}

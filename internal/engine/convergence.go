package engine

import (
	"fmt"

	"github.com/GoSim-25-26J-441/evolution-core/internal/metrics"
	"github.com/GoSim-25-26J-441/evolution-core/pkg/config"
)

// ConvergenceStrategy decides from recent generation statistics whether a
// run has stalled and should stop before max_generations.
type ConvergenceStrategy interface {
	// CheckConvergence inspects history, oldest first
	CheckConvergence(history []metrics.GenerationStats) (bool, string)
	Name() string
	// Window is how many trailing generations CheckConvergence needs
	Window() int
}

// NoImprovementStrategy converges when the best distance has not improved
// for Generations generations.
type NoImprovementStrategy struct {
	Generations int
}

func (s *NoImprovementStrategy) Name() string {
	return config.ConvergenceNoImprovement
}

func (s *NoImprovementStrategy) Window() int {
	return s.Generations + 1
}

func (s *NoImprovementStrategy) CheckConvergence(history []metrics.GenerationStats) (bool, string) {
	if len(history) < s.Window() {
		return false, ""
	}

	bestIdx := 0
	for i, g := range history {
		if g.Best < history[bestIdx].Best {
			bestIdx = i
		}
	}

	since := len(history) - 1 - bestIdx
	if since >= s.Generations {
		return true, fmt.Sprintf("no improvement for %d generations (best %.6g at generation %d)",
			since, history[bestIdx].Best, history[bestIdx].Generation)
	}
	return false, ""
}

// PlateauStrategy converges when the best distance of the last Generations
// generations stays within Tolerance.
type PlateauStrategy struct {
	Generations int
	Tolerance   float64
}

func (s *PlateauStrategy) Name() string {
	return config.ConvergencePlateau
}

func (s *PlateauStrategy) Window() int {
	return s.Generations
}

func (s *PlateauStrategy) CheckConvergence(history []metrics.GenerationStats) (bool, string) {
	if len(history) < s.Generations {
		return false, ""
	}

	recent := history[len(history)-s.Generations:]
	lo, hi := recent[0].Best, recent[0].Best
	for _, g := range recent {
		lo = min(lo, g.Best)
		hi = max(hi, g.Best)
	}

	if hi-lo <= s.Tolerance {
		return true, fmt.Sprintf("best distance plateaued for %d generations (range: %.6f)", s.Generations, hi-lo)
	}
	return false, ""
}

// CombinedStrategy converges as soon as any of its strategies does
type CombinedStrategy struct {
	strategies []ConvergenceStrategy
}

func NewCombinedStrategy(strategies ...ConvergenceStrategy) *CombinedStrategy {
	return &CombinedStrategy{strategies: strategies}
}

func (s *CombinedStrategy) Name() string {
	return config.ConvergenceCombined
}

func (s *CombinedStrategy) Window() int {
	w := 0
	for _, st := range s.strategies {
		w = max(w, st.Window())
	}
	return w
}

func (s *CombinedStrategy) CheckConvergence(history []metrics.GenerationStats) (bool, string) {
	for _, st := range s.strategies {
		if ok, reason := st.CheckConvergence(history); ok {
			return true, fmt.Sprintf("%s: %s", st.Name(), reason)
		}
	}
	return false, ""
}

// NewConvergenceStrategy builds the configured strategy; nil means early
// stopping is disabled.
func NewConvergenceStrategy(c config.Convergence) (ConvergenceStrategy, error) {
	if !c.Enabled() {
		return nil, nil
	}
	if c.Generations < 1 {
		return nil, fmt.Errorf("convergence window must be positive, got %d", c.Generations)
	}

	noImprovement := &NoImprovementStrategy{Generations: c.Generations}
	plateau := &PlateauStrategy{Generations: c.Generations, Tolerance: c.Tolerance}

	switch c.Strategy {
	case config.ConvergenceNoImprovement:
		return noImprovement, nil
	case config.ConvergencePlateau:
		return plateau, nil
	case config.ConvergenceCombined:
		return NewCombinedStrategy(noImprovement, plateau), nil
	default:
		return nil, fmt.Errorf("unknown convergence strategy: %s", c.Strategy)
	}
}

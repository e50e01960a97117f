package config

import (
	"fmt"
	"math"
	"os"
)

// LoadConfig loads and parses a configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := ParseConfigYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// validateConfig performs validation on the configuration
func validateConfig(cfg *Config) error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", cfg.LogLevel)
	}

	if err := validateProblem(&cfg.Problem); err != nil {
		return fmt.Errorf("problem validation failed: %w", err)
	}

	if err := validatePopulation(&cfg.Population); err != nil {
		return fmt.Errorf("population validation failed: %w", err)
	}

	if err := validateMutation(&cfg.Mutation, cfg.GeneCount()); err != nil {
		return fmt.Errorf("mutation validation failed: %w", err)
	}

	if err := validateSelection(&cfg.Selection); err != nil {
		return fmt.Errorf("selection validation failed: %w", err)
	}

	if cfg.Limits.MaxGenerations < 0 {
		return fmt.Errorf("limits max_generations cannot be negative, got %d", cfg.Limits.MaxGenerations)
	}
	if cfg.Limits.ReportEvery < 0 {
		return fmt.Errorf("limits report_every cannot be negative, got %d", cfg.Limits.ReportEvery)
	}

	if err := validateConvergence(&cfg.Convergence); err != nil {
		return fmt.Errorf("convergence validation failed: %w", err)
	}

	return nil
}

// validateConvergence validates early stopping settings
func validateConvergence(c *Convergence) error {
	switch c.Strategy {
	case "", ConvergenceNone:
		return nil
	case ConvergenceNoImprovement, ConvergencePlateau, ConvergenceCombined:
	default:
		return fmt.Errorf("invalid strategy: %s (must be %s, %s, %s or %s)",
			c.Strategy, ConvergenceNone, ConvergenceNoImprovement, ConvergencePlateau, ConvergenceCombined)
	}
	if c.Generations < 1 || c.Generations > MaxConvergenceGenerations {
		return fmt.Errorf("generations must be between 1 and %d, got %d", MaxConvergenceGenerations, c.Generations)
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("tolerance cannot be negative, got %f", c.Tolerance)
	}
	return nil
}

// validateProblem validates the problem definition
func validateProblem(p *Problem) error {
	switch p.Type {
	case ProblemLinearEquation:
	case "":
		return fmt.Errorf("problem type cannot be empty")
	default:
		return fmt.Errorf("invalid problem type: %s (must be %s)", p.Type, ProblemLinearEquation)
	}
	if len(p.Coefficients) == 0 {
		return fmt.Errorf("at least one coefficient must be defined")
	}
	return nil
}

// validatePopulation validates the initial population settings
func validatePopulation(p *Population) error {
	if p.Size <= 0 {
		return fmt.Errorf("size must be positive, got %d", p.Size)
	}
	if p.Size > MaxPopulationSize {
		return fmt.Errorf("size %d exceeds the maximum of %d", p.Size, MaxPopulationSize)
	}
	if p.GeneRange.High <= p.GeneRange.Low {
		return fmt.Errorf("gene_range high (%d) must be greater than low (%d)", p.GeneRange.High, p.GeneRange.Low)
	}
	if !spanFits(p.GeneRange.Low, p.GeneRange.High, false) {
		return fmt.Errorf("gene_range [%d, %d) is wider than %d", p.GeneRange.Low, p.GeneRange.High, int64(math.MaxInt64))
	}
	return nil
}

// spanFits reports whether high-low, or high-low+1 when closed, is
// representable as an int64. high must not be below low.
func spanFits(low, high int64, closed bool) bool {
	if low < 0 && high > math.MaxInt64+low {
		return false
	}
	return !closed || high-low < math.MaxInt64
}

// validateMutation validates the mutation settings
func validateMutation(m *Mutation, geneCount int) error {
	if m.Chance < 0 || m.Chance > 1 {
		return fmt.Errorf("chance must be between 0 and 1, got %f", m.Chance)
	}
	if len(m.Deltas) > geneCount {
		return fmt.Errorf("deltas has %d entries but chromosomes have %d genes", len(m.Deltas), geneCount)
	}
	if !m.Delta.IsZero() {
		if err := validateDelta(m.Delta); err != nil {
			return fmt.Errorf("delta: %w", err)
		}
	}
	for i, d := range m.Deltas {
		if err := validateDelta(d); err != nil {
			return fmt.Errorf("deltas[%d]: %w", i, err)
		}
	}
	return nil
}

func validateDelta(d DeltaSpec) error {
	if d.Value != nil && d.IsRange() {
		return fmt.Errorf("value and low/high are mutually exclusive")
	}
	if d.IsRange() {
		if d.Low == nil || d.High == nil {
			return fmt.Errorf("range needs both low and high")
		}
		if *d.High < *d.Low {
			return fmt.Errorf("range high (%d) cannot be below low (%d)", *d.High, *d.Low)
		}
		if !spanFits(*d.Low, *d.High, true) {
			return fmt.Errorf("range [%d, %d] holds more than %d values", *d.Low, *d.High, int64(math.MaxInt64))
		}
	}
	if d.Value == nil && !d.IsRange() {
		return fmt.Errorf("either value or low/high must be set")
	}
	return nil
}

// validateSelection validates the selection strategy
func validateSelection(s *Selection) error {
	switch s.Strategy {
	case StrategyRoulette:
	case StrategyTournament:
		if s.TournamentSize < 1 {
			return fmt.Errorf("tournament_size must be positive, got %d", s.TournamentSize)
		}
	default:
		return fmt.Errorf("invalid strategy: %s (must be %s or %s)", s.Strategy, StrategyRoulette, StrategyTournament)
	}
	return nil
}

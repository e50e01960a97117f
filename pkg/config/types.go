package config

// Config describes one evolutionary run
type Config struct {
	LogLevel    string      `yaml:"log_level"`
	Seed        int64       `yaml:"seed"` // 0 seeds from the clock
	Population  Population  `yaml:"population"`
	Mutation    Mutation    `yaml:"mutation"`
	Selection   Selection   `yaml:"selection"`
	Limits      Limits      `yaml:"limits"`
	Convergence Convergence `yaml:"convergence,omitempty"`
	Problem     Problem     `yaml:"problem"`
}

// Population describes the initial population
type Population struct {
	Size      int       `yaml:"size"`
	GeneRange GeneRange `yaml:"gene_range"`
}

// GeneRange is the half-open range [low, high) initial genes are drawn from
type GeneRange struct {
	Low  int64 `yaml:"low"`
	High int64 `yaml:"high"`
}

// Mutation holds mutation parameters. Deltas, when present, gives one delta
// per gene position; otherwise Delta applies to every gene.
type Mutation struct {
	Chance float64     `yaml:"chance"`
	Delta  DeltaSpec   `yaml:"delta"`
	Deltas []DeltaSpec `yaml:"deltas,omitempty"`
}

// DeltaSpec is either a fixed value or a closed range [low, high]
type DeltaSpec struct {
	Value *int64 `yaml:"value,omitempty"`
	Low   *int64 `yaml:"low,omitempty"`
	High  *int64 `yaml:"high,omitempty"`
}

// IsRange reports whether the delta is resolved from a range
func (d DeltaSpec) IsRange() bool {
	return d.Low != nil || d.High != nil
}

// IsZero reports whether nothing was configured
func (d DeltaSpec) IsZero() bool {
	return d.Value == nil && !d.IsRange()
}

// Selection selects the selection strategy
type Selection struct {
	Strategy       string `yaml:"strategy"` // roulette or tournament
	TournamentSize int    `yaml:"tournament_size,omitempty"`
}

// Limits bounds a run
type Limits struct {
	MaxGenerations int `yaml:"max_generations"`
	ReportEvery    int `yaml:"report_every,omitempty"` // progress log interval in generations
}

// Convergence stops a lazy run early once the best distance stalls.
// Generations is the window the strategy looks at.
type Convergence struct {
	Strategy    string  `yaml:"strategy,omitempty"` // none, no_improvement, plateau or combined
	Generations int     `yaml:"generations,omitempty"`
	Tolerance   float64 `yaml:"tolerance,omitempty"` // plateau only
}

// Enabled reports whether early stopping is configured
func (c Convergence) Enabled() bool {
	return c.Strategy != "" && c.Strategy != ConvergenceNone
}

// Problem describes the fitness function
type Problem struct {
	Type         string  `yaml:"type"` // linear_equation
	Coefficients []int64 `yaml:"coefficients"`
	Target       int64   `yaml:"target"`
}

const (
	StrategyRoulette   = "roulette"
	StrategyTournament = "tournament"

	ProblemLinearEquation = "linear_equation"

	ConvergenceNone          = "none"
	ConvergenceNoImprovement = "no_improvement"
	ConvergencePlateau       = "plateau"
	ConvergenceCombined      = "combined"

	DefaultLogLevel       = "info"
	DefaultMaxGenerations = 10000
	DefaultTournamentSize = 3
	DefaultReportEvery    = 100
	DefaultDelta          = int64(1)

	DefaultConvergenceGenerations = 50
	MaxConvergenceGenerations     = 1000

	MaxPopulationSize = 1_000_000
)

// applyDefaults fills optional fields left empty
func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Selection.Strategy == "" {
		c.Selection.Strategy = StrategyRoulette
	}
	if c.Selection.Strategy == StrategyTournament && c.Selection.TournamentSize == 0 {
		c.Selection.TournamentSize = DefaultTournamentSize
	}
	if c.Limits.MaxGenerations == 0 {
		c.Limits.MaxGenerations = DefaultMaxGenerations
	}
	if c.Limits.ReportEvery == 0 {
		c.Limits.ReportEvery = DefaultReportEvery
	}
	if c.Convergence.Enabled() && c.Convergence.Generations == 0 {
		c.Convergence.Generations = DefaultConvergenceGenerations
	}
	if c.Mutation.Delta.IsZero() && len(c.Mutation.Deltas) == 0 {
		d := DefaultDelta
		c.Mutation.Delta.Value = &d
	}
}

// GeneCount returns the chromosome length the problem needs
func (c *Config) GeneCount() int {
	return len(c.Problem.Coefficients)
}

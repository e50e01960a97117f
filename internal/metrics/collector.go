package metrics

import (
	"math"
	"slices"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/evolution-core/internal/genetic"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultMaxHistory bounds how many generations a Collector keeps
const DefaultMaxHistory = 1000

// GenerationStats summarizes the fitness distance (absolute score) of one
// generation. Smaller is closer to ideal.
type GenerationStats struct {
	Generation int       `json:"generation"`
	Size       int       `json:"size"`
	Best       float64   `json:"best"`
	Worst      float64   `json:"worst"`
	Mean       float64   `json:"mean"`
	StdDev     float64   `json:"std_dev"`
	Median     float64   `json:"median"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Summary aggregates a whole run
type Summary struct {
	Generations    int              `json:"generations"`
	BestEver       float64          `json:"best_ever"`
	BestGeneration int              `json:"best_generation"`
	DurationMs     int64            `json:"duration_ms"`
	Latest         *GenerationStats `json:"latest,omitempty"`
}

// Collector records per-generation statistics during a run. It is safe for
// concurrent use: the run goroutine records while API handlers read.
type Collector struct {
	mu sync.RWMutex

	startTime time.Time
	endTime   time.Time

	maxHistory     int
	history        []GenerationStats
	generations    int
	bestEver       float64
	bestGeneration int
}

// NewCollector creates a new collector keeping DefaultMaxHistory generations
func NewCollector() *Collector {
	return &Collector{
		startTime:  time.Now(),
		maxHistory: DefaultMaxHistory,
		bestEver:   math.Inf(1),
	}
}

// WithMaxHistory changes how many generations are retained. Older
// generations are dropped first; the run-wide best is kept regardless.
func (c *Collector) WithMaxHistory(n int) *Collector {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n > 0 {
		c.maxHistory = n
	}
	return c
}

// Start marks the start of collection
func (c *Collector) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startTime = time.Now()
}

// Stop marks the end of collection
func (c *Collector) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endTime = time.Now()
}

// Record computes and stores the statistics of one generation's distances.
func (c *Collector) Record(generation int, distances []float64) GenerationStats {
	stats := Compute(generation, distances)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.generations++
	if stats.Size > 0 && stats.Best < c.bestEver {
		c.bestEver = stats.Best
		c.bestGeneration = generation
	}
	c.history = append(c.history, stats)
	if over := len(c.history) - c.maxHistory; over > 0 {
		c.history = slices.Delete(c.history, 0, over)
	}
	return stats
}

// History returns a copy of the retained generations, oldest first
func (c *Collector) History() []GenerationStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.history)
}

// Tail returns a copy of at most the n newest retained generations
func (c *Collector) Tail(n int) []GenerationStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if n <= 0 {
		return nil
	}
	start := max(len(c.history)-n, 0)
	return slices.Clone(c.history[start:])
}

// Latest returns the most recently recorded generation
func (c *Collector) Latest() (GenerationStats, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.history) == 0 {
		return GenerationStats{}, false
	}
	return c.history[len(c.history)-1], true
}

// Summary returns run-wide aggregates
func (c *Collector) Summary() Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	end := c.endTime
	if end.IsZero() {
		end = time.Now()
	}
	s := Summary{
		Generations:    c.generations,
		BestEver:       c.bestEver,
		BestGeneration: c.bestGeneration,
		DurationMs:     end.Sub(c.startTime).Milliseconds(),
	}
	if c.generations == 0 {
		s.BestEver = 0
	}
	if len(c.history) > 0 {
		latest := c.history[len(c.history)-1]
		s.Latest = &latest
	}
	return s
}

// Clear drops all recorded generations
func (c *Collector) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = nil
	c.generations = 0
	c.bestEver = math.Inf(1)
	c.bestGeneration = 0
}

// Compute returns the statistics of one generation without recording them.
func Compute(generation int, distances []float64) GenerationStats {
	stats := GenerationStats{
		Generation: generation,
		Size:       len(distances),
		RecordedAt: time.Now(),
	}
	if len(distances) == 0 {
		return stats
	}

	sorted := slices.Clone(distances)
	slices.Sort(sorted)

	stats.Best = floats.Min(sorted)
	stats.Worst = floats.Max(sorted)
	stats.Mean, stats.StdDev = stat.MeanStdDev(sorted, nil)
	if len(sorted) == 1 {
		stats.StdDev = 0
	}
	stats.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	return stats
}

// Distances scores every chromosome and returns the absolute scores.
func Distances[T genetic.Gene](population []genetic.Chromosome[T], fitness genetic.Fitness[T]) []float64 {
	out := make([]float64, len(population))
	for i, c := range population {
		out[i] = math.Abs(float64(fitness.Score(c)))
	}
	return out
}

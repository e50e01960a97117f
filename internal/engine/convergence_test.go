package engine

import (
	"strings"
	"testing"

	"github.com/GoSim-25-26J-441/evolution-core/internal/metrics"
	"github.com/GoSim-25-26J-441/evolution-core/pkg/config"
)

func history(best ...float64) []metrics.GenerationStats {
	out := make([]metrics.GenerationStats, len(best))
	for i, b := range best {
		out[i] = metrics.GenerationStats{Generation: i, Best: b}
	}
	return out
}

func TestNoImprovementStrategy(t *testing.T) {
	s := &NoImprovementStrategy{Generations: 3}

	tests := []struct {
		name    string
		history []metrics.GenerationStats
		want    bool
	}{
		{"too short", history(5, 5, 5), false},
		{"still improving", history(5, 4, 3, 2), false},
		{"stalled", history(2, 3, 3, 4), true},
		{"improved late", history(5, 5, 5, 1), false},
		{"later equal best does not count", history(1, 2, 1, 3), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := s.CheckConvergence(tt.history)
			if got != tt.want {
				t.Fatalf("CheckConvergence = %v (%q), want %v", got, reason, tt.want)
			}
			if got && reason == "" {
				t.Error("expected a reason")
			}
		})
	}
	if s.Window() != 4 {
		t.Errorf("expected window 4, got %d", s.Window())
	}
}

func TestPlateauStrategy(t *testing.T) {
	s := &PlateauStrategy{Generations: 3, Tolerance: 0.5}

	if ok, _ := s.CheckConvergence(history(1, 1)); ok {
		t.Error("should not converge before the window fills")
	}
	if ok, _ := s.CheckConvergence(history(9, 2, 2.4, 2.1)); !ok {
		t.Error("expected plateau within tolerance")
	}
	if ok, _ := s.CheckConvergence(history(2, 2, 3)); ok {
		t.Error("range 1 exceeds tolerance 0.5")
	}
}

func TestCombinedStrategy(t *testing.T) {
	s := NewCombinedStrategy(
		&NoImprovementStrategy{Generations: 10},
		&PlateauStrategy{Generations: 2, Tolerance: 0},
	)
	if s.Window() != 11 {
		t.Errorf("expected widest window 11, got %d", s.Window())
	}

	ok, reason := s.CheckConvergence(history(4, 3, 3))
	if !ok {
		t.Fatal("expected plateau to trigger")
	}
	if !strings.HasPrefix(reason, config.ConvergencePlateau+": ") {
		t.Errorf("reason %q should name the triggering strategy", reason)
	}
	if ok, _ := s.CheckConvergence(history(4, 3, 2)); ok {
		t.Error("no strategy should trigger")
	}
}

func TestNewConvergenceStrategy(t *testing.T) {
	tests := []struct {
		cfg     config.Convergence
		want    string
		wantErr bool
	}{
		{config.Convergence{}, "", false},
		{config.Convergence{Strategy: config.ConvergenceNone, Generations: 5}, "", false},
		{config.Convergence{Strategy: config.ConvergenceNoImprovement, Generations: 5}, config.ConvergenceNoImprovement, false},
		{config.Convergence{Strategy: config.ConvergencePlateau, Generations: 5}, config.ConvergencePlateau, false},
		{config.Convergence{Strategy: config.ConvergenceCombined, Generations: 5}, config.ConvergenceCombined, false},
		{config.Convergence{Strategy: config.ConvergencePlateau}, "", true},
		{config.Convergence{Strategy: "stagnation", Generations: 5}, "", true},
	}
	for _, tt := range tests {
		s, err := NewConvergenceStrategy(tt.cfg)
		if (err != nil) != tt.wantErr {
			t.Errorf("NewConvergenceStrategy(%+v) error = %v, wantErr %v", tt.cfg, err, tt.wantErr)
			continue
		}
		if tt.want == "" {
			if s != nil {
				t.Errorf("NewConvergenceStrategy(%+v) = %s, want nil", tt.cfg, s.Name())
			}
			continue
		}
		if s == nil || s.Name() != tt.want {
			t.Errorf("NewConvergenceStrategy(%+v) returned wrong strategy", tt.cfg)
		}
	}
}

package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestRunExitCodes(t *testing.T) {
	solved := writeConfig(t, `
seed: 5
population: {size: 3, gene_range: {low: 0, high: 1}}
mutation: {chance: 0.5}
problem: {type: linear_equation, coefficients: [1], target: 0}
`)
	unsolvable := writeConfig(t, `
seed: 11
population: {size: 4, gene_range: {low: -10, high: 10}}
mutation: {chance: 0.3, delta: {value: 1}}
limits: {max_generations: 20}
problem: {type: linear_equation, coefficients: [2], target: 1}
`)
	invalid := writeConfig(t, "population: {size: 0}\n")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"missing config flag", nil, 2},
		{"unknown flag", []string{"-bogus"}, 2},
		{"missing file", []string{"-config", filepath.Join(t.TempDir(), "nope.yaml")}, 1},
		{"invalid config", []string{"-config", invalid}, 1},
		{"invalid mode", []string{"-config", solved, "-mode", "eager"}, 2},
		{"solved lazy", []string{"-config", solved, "-log-level", "error"}, 0},
		{"solved blocking json", []string{"-config", solved, "-mode", "blocking", "-json", "-log-level", "error"}, 0},
		{"not found", []string{"-config", unsolvable, "-log-level", "error"}, 3},
		{"restarts not found", []string{"-config", unsolvable, "-restarts", "3", "-parallel", "2", "-log-level", "error"}, 3},
		{"restarts solved", []string{"-config", solved, "-restarts", "2", "-log-level", "error"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(tt.args); got != tt.want {
				t.Errorf("run(%v) = %d, want %d", tt.args, got, tt.want)
			}
		})
	}
}

// Command evolve runs a single evolutionary search from a YAML config and
// prints the resulting chromosome.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/GoSim-25-26J-441/evolution-core/internal/engine"
	"github.com/GoSim-25-26J-441/evolution-core/pkg/config"
	"github.com/GoSim-25-26J-441/evolution-core/pkg/logger"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("evolve", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to the run config (YAML)")
	mode := fs.String("mode", string(engine.ModeLazy), "driver: blocking or lazy")
	logLevel := fs.String("log-level", "", "log level override (debug, info, warn, error)")
	asJSON := fs.Bool("json", false, "print the result as JSON")
	restarts := fs.Int("restarts", 1, "independent lazy runs on consecutive seeds; the best one is reported")
	parallel := fs.Int("parallel", runtime.NumCPU(), "restarts run at the same time")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "evolve: -config is required")
		fs.Usage()
		return 2
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "evolve: %v\n", err)
		return 1
	}
	level := cfg.LogLevel
	if *logLevel != "" {
		level = *logLevel
	}
	logger.SetDefault(logger.NewText(level, os.Stderr))

	m, err := engine.ParseMode(*mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "evolve: %v\n", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var result *engine.Result
	if *restarts > 1 {
		result, err = runRestarts(ctx, cfg, *restarts, *parallel)
	} else {
		var runner *engine.Runner
		runner, err = engine.NewRunner(cfg, nil, logger.Default)
		if err != nil {
			logger.Error("failed to create runner", "error", err)
			return 1
		}
		result, err = runner.Execute(ctx, m)
	}
	if err != nil && result == nil {
		logger.Error("run failed", "error", err)
		return 1
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(result); encErr != nil {
			logger.Error("failed to encode result", "error", encErr)
			return 1
		}
	} else if result.Found {
		fmt.Println(result.Rendered)
	} else {
		fmt.Printf("no solution after %d generations; closest %s (score %d)\n",
			result.Generations, result.Rendered, result.Score)
	}

	if err != nil {
		logger.Warn("run interrupted", "error", err)
		return 130
	}
	if !result.Found {
		return 3
	}
	return 0
}

// runRestarts runs n seeds starting at the configured one and returns the best
// result.
func runRestarts(ctx context.Context, cfg *config.Config, n, parallel int) (*engine.Result, error) {
	base := cfg.Seed
	if base == 0 {
		base = time.Now().UnixNano()
	}
	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = base + int64(i)
	}

	results, best, err := engine.RunRestarts(ctx, cfg, seeds, parallel, logger.Default)
	if best < 0 {
		if err == nil {
			err = fmt.Errorf("no restart produced a result")
		}
		return nil, err
	}
	found := 0
	for _, r := range results {
		if r.Result != nil && r.Result.Found {
			found++
		}
	}
	logger.Info("Restarts finished", "restarts", n, "found", found, "best_seed", results[best].Seed)
	return results[best].Result, err
}

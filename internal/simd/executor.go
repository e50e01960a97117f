package simd

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/GoSim-25-26J-441/evolution-core/internal/engine"
	"github.com/GoSim-25-26J-441/evolution-core/internal/metrics"
	"github.com/GoSim-25-26J-441/evolution-core/pkg/config"
	"github.com/GoSim-25-26J-441/evolution-core/pkg/logger"
)

// RunExecutor manages asynchronous run execution and per-run cancellation.
type RunExecutor struct {
	store    *RunStore
	notifier *Notifier

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

var (
	ErrRunNotFound  = errors.New("run not found")
	ErrRunTerminal  = errors.New("run is terminal")
	ErrRunIDMissing = errors.New("run_id is required")
)

func NewRunExecutor(store *RunStore) *RunExecutor {
	return &RunExecutor{
		store:   store,
		cancels: make(map[string]context.CancelFunc),
	}
}

// SetNotifier enables completion callbacks for runs that carry a callback URL
func (e *RunExecutor) SetNotifier(n *Notifier) {
	e.notifier = n
}

// Start begins executing a run asynchronously.
// Returns the updated run state (RUNNING) or an error.
func (e *RunExecutor) Start(runID string) (*RunRecord, error) {
	if runID == "" {
		return nil, ErrRunIDMissing
	}

	rec, ok := e.store.Get(runID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	switch {
	case rec.Run.Status == RunStatusRunning:
		return rec, nil
	case rec.Run.Status.IsTerminal():
		return nil, fmt.Errorf("%w: %s", ErrRunTerminal, runID)
	}

	updated, err := e.store.SetStatus(runID, RunStatusRunning, "")
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.mu.Lock()
	if old, exists := e.cancels[runID]; exists {
		old()
	}
	e.cancels[runID] = cancel
	e.mu.Unlock()

	e.wg.Add(1)
	go e.runEvolution(ctx, runID)
	return updated, nil
}

// Stop requests cancellation for a running run and marks it cancelled.
func (e *RunExecutor) Stop(runID string) (*RunRecord, error) {
	if runID == "" {
		return nil, ErrRunIDMissing
	}

	rec, ok := e.store.Get(runID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if rec.Run.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: %s", ErrRunTerminal, runID)
	}

	updated, err := e.store.SetStatus(runID, RunStatusCancelled, "")
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	cancel, ok := e.cancels[runID]
	e.mu.Unlock()
	if ok {
		cancel()
	}
	return updated, nil
}

// Wait blocks until every started run has returned
func (e *RunExecutor) Wait() {
	e.wg.Wait()
}

// WaitContext waits like Wait until ctx is done. On timeout it returns the
// IDs of runs still executing, which keep running in the background; blocking
// mode runs do not observe cancellation.
func (e *RunExecutor) WaitContext(ctx context.Context) ([]string, error) {
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil, nil
	case <-ctx.Done():
		return e.ActiveRuns(), ctx.Err()
	}
}

// ActiveRuns returns the IDs of runs whose goroutine has not returned yet
func (e *RunExecutor) ActiveRuns() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := make([]string, 0, len(e.cancels))
	for id := range e.cancels {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// StopAll cancels every running run
func (e *RunExecutor) StopAll() {
	e.mu.Lock()
	ids := make([]string, 0, len(e.cancels))
	for id := range e.cancels {
		ids = append(ids, id)
	}
	e.mu.Unlock()

	for _, id := range ids {
		if _, err := e.Stop(id); err != nil && !errors.Is(err, ErrRunTerminal) {
			logger.Warn("failed to stop run", "run_id", id, "error", err)
		}
	}
}

func (e *RunExecutor) cleanup(runID string) {
	e.mu.Lock()
	if cancel, ok := e.cancels[runID]; ok {
		cancel()
		delete(e.cancels, runID)
	}
	e.mu.Unlock()
}

func (e *RunExecutor) fail(runID, msg string) {
	if _, err := e.store.SetStatus(runID, RunStatusFailed, msg); err != nil {
		logger.Error("failed to set failed status", "run_id", runID, "error", err)
	}
}

func (e *RunExecutor) runEvolution(ctx context.Context, runID string) {
	defer e.wg.Done()
	defer e.cleanup(runID)
	defer e.notify(runID)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("run panicked", "run_id", runID, "panic", r)
			e.fail(runID, fmt.Sprintf("internal error: %v", r))
		}
	}()

	rec, ok := e.store.Get(runID)
	if !ok {
		logger.Error("run not found", "run_id", runID)
		return
	}

	cfg, err := config.ParseConfigYAMLString(rec.Input.ConfigYAML)
	if err != nil {
		logger.Error("failed to parse run config", "run_id", runID, "error", err)
		e.fail(runID, fmt.Sprintf("invalid config: %v", err))
		return
	}
	mode, err := engine.ParseMode(rec.Input.Mode)
	if err != nil {
		e.fail(runID, err.Error())
		return
	}

	collector := metrics.NewCollector()
	if err := e.store.SetCollector(runID, collector); err != nil {
		logger.Error("failed to store collector", "run_id", runID, "error", err)
	}

	runner, err := engine.NewRunner(cfg, collector, logger.ForRun(runID))
	if err != nil {
		logger.Error("failed to create runner", "run_id", runID, "error", err)
		e.fail(runID, err.Error())
		return
	}

	result, err := runner.Execute(ctx, mode)
	if result != nil {
		if setErr := e.store.SetResult(runID, result); setErr != nil {
			logger.Error("failed to set result", "run_id", runID, "error", setErr)
		}
	}
	if ctx.Err() != nil {
		logger.Info("run cancelled", "run_id", runID)
		return
	}
	if err != nil {
		logger.Error("run failed", "run_id", runID, "error", err)
		e.fail(runID, err.Error())
		return
	}

	if e.store.CompleteIfRunning(runID) {
		logger.Info("run completed", "run_id", runID,
			"found", result.Found,
			"generations", result.Generations,
			"stop_reason", result.StopReason)
	}
}

func (e *RunExecutor) notify(runID string) {
	if e.notifier == nil {
		return
	}
	rec, ok := e.store.Get(runID)
	if !ok || rec.Input.CallbackURL == "" {
		return
	}
	e.notifier.Notify(rec.Input.CallbackURL, rec.Input.CallbackSecret, rec)
}

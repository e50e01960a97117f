package simd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/GoSim-25-26J-441/evolution-core/internal/engine"
	"github.com/GoSim-25-26J-441/evolution-core/pkg/config"
)

// ErrInvalidInput marks a create request rejected before the run was stored
var ErrInvalidInput = errors.New("invalid input")

// createAndStart validates input, stores the run and starts it. It backs
// both the HTTP and gRPC create calls.
func createAndStart(store *RunStore, executor *RunExecutor, runID string, input *RunInput) (*RunRecord, error) {
	if input == nil || strings.TrimSpace(input.ConfigYAML) == "" {
		return nil, fmt.Errorf("%w: config_yaml is required", ErrInvalidInput)
	}
	if _, err := config.ParseConfigYAMLString(input.ConfigYAML); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if _, err := engine.ParseMode(input.Mode); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	rec, err := store.Create(runID, input)
	if err != nil {
		if errors.Is(err, ErrRunExists) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return executor.Start(rec.Run.ID)
}

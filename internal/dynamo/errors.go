package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidConfig indicates a simulation parameter outside its valid range.
	ErrInvalidConfig = errors.New("dynamo: invalid simulation config")

	// ErrInvalidParticle indicates a particle that cannot be added to a set.
	ErrInvalidParticle = errors.New("dynamo: invalid particle")

	// ErrNonFinite indicates NaN or Inf in particle or grid state.
	ErrNonFinite = errors.New("dynamo: non-finite state (NaN or Inf detected)")

	// ErrUnknownBackend indicates an execution backend name that is not registered.
	ErrUnknownBackend = errors.New("dynamo: unknown compute backend")

	// ErrUnknownPreset indicates a preset name that does not exist.
	ErrUnknownPreset = errors.New("dynamo: unknown preset")
)

// SimulationError wraps an error with the tick and stage it was detected in.
type SimulationError struct {
	Tick    int
	Stage   string
	Wrapped error
}

func (e *SimulationError) Error() string {
	if e.Stage == "" {
		return fmt.Sprintf("tick %d: %v", e.Tick, e.Wrapped)
	}
	return fmt.Sprintf("tick %d (%s): %v", e.Tick, e.Stage, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

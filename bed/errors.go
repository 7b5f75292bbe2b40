package bed

import (
	"errors"
	"fmt"

	"mbr/solver"
)

var (
	// ErrConfiguration marks an invalid or contradictory option set detected
	// at build time.
	ErrConfiguration = errors.New("bed: invalid configuration")
	// ErrInitialization marks a staged initialization that failed to bring
	// the model to a converged, fully coupled state.
	ErrInitialization = errors.New("bed: initialization failed")
	// ErrDegreesOfFreedom marks a mismatch between free variables and active
	// equations.
	ErrDegreesOfFreedom = errors.New("bed: nonzero degrees of freedom")
)

// ConfigurationError reports which option was rejected and why.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("bed: configuration %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// DegreesOfFreedomError reports the structural counts behind a nonzero
// degree-of-freedom check.
type DegreesOfFreedomError struct {
	Free        int
	Constraints int
}

func (e *DegreesOfFreedomError) Error() string {
	return fmt.Sprintf("bed: %d free variables against %d active equations (%+d degrees of freedom)",
		e.Free, e.Constraints, e.Free-e.Constraints)
}

func (e *DegreesOfFreedomError) Unwrap() error { return ErrDegreesOfFreedom }

// InitializationError records which stage of the initialization sequence
// failed. Termination holds the solver outcome when a stage solve ran;
// Err holds the structural diagnostic when the stage failed before solving.
type InitializationError struct {
	Stage       Stage
	Termination solver.Termination
	Err         error
}

func (e *InitializationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bed: initialization stage %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("bed: initialization stage %s: solver terminated with %s", e.Stage, e.Termination)
}

func (e *InitializationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInitialization, e.Err}
	}
	return []error{ErrInitialization}
}

package sparsity

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrOutOfRange    = errors.New("sparsity level out of range")
	ErrConfiguration = errors.New("invalid sparsity configuration")
	ErrUnknownLayer  = errors.New("layer is not sparsified")
	ErrNoAdaptation  = errors.New("no adaptation routine configured")
)

// OutOfRangeError is returned when a sparsity level outside [0, 1) is set.
// No mask is modified when it is returned.
type OutOfRangeError struct {
	Level float64
}

// Error implements the error interface.
func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("sparsity level should be within interval [0,1), actual value to set is: %v", e.Level)
}

// Unwrap returns ErrOutOfRange.
func (e *OutOfRangeError) Unwrap() error {
	return ErrOutOfRange
}

// ConfigurationError is returned when a controller is built with an unknown
// mode, importance function or schedule.
type ConfigurationError struct {
	Key   string // Configuration key (e.g., "weight_importance")
	Value string // Offending value
	Err   error  // Underlying cause, if any
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s %q: %v", e.Key, e.Value, e.Err)
	}
	return fmt.Sprintf("invalid %s %q", e.Key, e.Value)
}

// Unwrap returns the underlying cause together with ErrConfiguration.
func (e *ConfigurationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrConfiguration, e.Err}
	}
	return []error{ErrConfiguration}
}

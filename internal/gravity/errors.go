package gravity

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMass indicates a zero, negative or non-finite mass.
	ErrInvalidMass = errors.New("gravity: mass must be positive and finite")

	// ErrInvalidVector indicates a position or velocity with NaN or Inf components.
	ErrInvalidVector = errors.New("gravity: vector has non-finite component")

	// ErrEmptySystem indicates an operation that needs at least one body.
	ErrEmptySystem = errors.New("gravity: system has no bodies")

	// ErrNonFinite indicates a body state that diverged to NaN or Inf.
	ErrNonFinite = errors.New("gravity: body state is not finite")
)

// BodyError ties a construction failure to the body that caused it.
type BodyError struct {
	Index   int
	Mass    float32
	Wrapped error
}

func (e *BodyError) Error() string {
	return fmt.Sprintf("body %d (mass=%g): %v", e.Index, e.Mass, e.Wrapped)
}

func (e *BodyError) Unwrap() error {
	return e.Wrapped
}

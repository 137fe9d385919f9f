package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState indicates a position or velocity became NaN or Inf.
	ErrInvalidState = errors.New("sim: invalid state (NaN or Inf detected)")

	// ErrNoBodies indicates a simulation configured with an empty body set.
	ErrNoBodies = errors.New("sim: no bodies configured")

	// ErrInvalidRun indicates a headless run that can never finish.
	ErrInvalidRun = errors.New("sim: invalid run configuration")

	// ErrRunStalled indicates a run that stopped short of its duration,
	// typically because it was paused or slowed mid-run.
	ErrRunStalled = errors.New("sim: run stalled before reaching its duration")
)

// SimulationError wraps an error with the tick it happened on.
type SimulationError struct {
	Step    int
	Time    float64
	Body    string
	Wrapped error
}

func (e *SimulationError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%v: %s at step %d (t=%.4f days)", e.Wrapped, e.Body, e.Step, e.Time)
	}
	return fmt.Sprintf("%v at step %d (t=%.4f days)", e.Wrapped, e.Step, e.Time)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

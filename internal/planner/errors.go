package planner

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrValidation          = errors.New("invalid plan request")
	ErrInfeasible          = errors.New("no plan satisfies the constraints")
	ErrSolverTimeout       = errors.New("solver time limit reached without a plan")
	ErrInternalConsistency = errors.New("plan failed internal consistency check")
)

// ValidationError reports a request the planner refuses to model.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// InfeasibleModelError means the solver proved that no schedule fits the
// calorie band and budget.
type InfeasibleModelError struct {
	Days   int
	Dishes int
	Budget float64
}

func (e *InfeasibleModelError) Error() string {
	return fmt.Sprintf("no %d-day plan from %d dishes fits the calorie band within budget %.2f", e.Days, e.Dishes, e.Budget)
}

func (e *InfeasibleModelError) Is(target error) bool { return target == ErrInfeasible }

// SolverTimeoutError means the time limit passed before any schedule was found.
type SolverTimeoutError struct {
	Limit time.Duration
}

func (e *SolverTimeoutError) Error() string {
	return fmt.Sprintf("no plan found within %s", e.Limit)
}

func (e *SolverTimeoutError) Is(target error) bool { return target == ErrSolverTimeout }

// InternalConsistencyError marks a broken pipeline invariant. It is never
// caused by user input.
type InternalConsistencyError struct {
	Reason string
}

func (e *InternalConsistencyError) Error() string {
	return "internal consistency: " + e.Reason
}

func (e *InternalConsistencyError) Is(target error) bool { return target == ErrInternalConsistency }

func inconsistent(format string, args ...any) error {
	return &InternalConsistencyError{Reason: fmt.Sprintf(format, args...)}
}

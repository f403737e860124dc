package solver

import "time"

// DefaultMaxTime is the wall-clock budget used when Parameters.MaxTime is zero.
const DefaultMaxTime = 10 * time.Second

// Status is the outcome of a solve.
type Status int

const (
	StatusUnknown Status = iota
	StatusModelInvalid
	StatusOptimal
	StatusFeasible
	StatusInfeasible
	StatusNoSolutionFound
)

func (s Status) String() string {
	switch s {
	case StatusModelInvalid:
		return "MODEL_INVALID"
	case StatusOptimal:
		return "OPTIMAL"
	case StatusFeasible:
		return "FEASIBLE"
	case StatusInfeasible:
		return "INFEASIBLE"
	case StatusNoSolutionFound:
		return "NO_SOLUTION_FOUND"
	default:
		return "UNKNOWN"
	}
}

// HasSolution reports whether the response carries an assignment.
func (s Status) HasSolution() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// Parameters bound a single solve.
type Parameters struct {
	// MaxTime is the wall-clock budget. The search stops itself once it is spent.
	MaxTime time.Duration
	// MaxBranches caps explored search nodes; zero means no cap.
	MaxBranches int64
}

// Response is the result of a solve. Values is indexed by VarID and set only
// when Status.HasSolution().
type Response struct {
	Status         Status
	Values         []int64
	ObjectiveValue int64
	WallTime       time.Duration
	Branches       int64
}

// Value returns the assigned value of v.
func (r *Response) Value(v VarID) int64 {
	return r.Values[v]
}

// BoolValue returns the assigned value of a boolean variable.
func (r *Response) BoolValue(v VarID) bool {
	return r.Values[v] == 1
}

// Solver finds an assignment for a model within the given parameters.
type Solver interface {
	Solve(m *Model, p Parameters) (*Response, error)
}

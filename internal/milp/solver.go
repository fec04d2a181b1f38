package milp

import "time"

// Status is the outcome of a solve call. Infeasible and Error are distinct on
// purpose: the first means the constraints admit no assignment, the second
// that the solving environment failed — the remediation differs.
type Status int

const (
	StatusOptimal Status = iota
	StatusFeasible // incumbent found, optimality not proven within the time budget
	StatusInfeasible
	StatusUnbounded
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	default:
		return "error"
	}
}

// Solution is a solver's answer. Values is indexed by VarID and is populated
// only for StatusOptimal and StatusFeasible. Solver output is floating point
// even for binary variables, so readers must threshold rather than compare.
type Solution struct {
	Status    Status
	Objective float64
	Values    []float64
}

// Solver abstracts an external MILP backend. A nil error with
// StatusInfeasible is a valid outcome; errors are reserved for failures of
// the solving environment itself.
type Solver interface {
	Solve(model *Model, timeLimit time.Duration) (Solution, error)
}

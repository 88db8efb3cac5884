package solver

import (
	"context"
	"fmt"
)

// Var is a handle to a boolean decision variable. Handles start at 1.
type Var int

// Op is the comparison of a linear constraint against its bound
type Op int

const (
	OpLessEqual Op = iota
	OpEqual
	OpLess
	OpGreaterEqual
)

func (o Op) String() string {
	switch o {
	case OpLessEqual:
		return "<="
	case OpEqual:
		return "=="
	case OpLess:
		return "<"
	case OpGreaterEqual:
		return ">="
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Term is one coefficient * variable summand
type Term struct {
	Coef int
	Var  Var
}

// Sum returns unit-coefficient terms for the given variables
func Sum(vars ...Var) []Term {
	terms := make([]Term, len(vars))
	for i, v := range vars {
		terms[i] = Term{Coef: 1, Var: v}
	}
	return terms
}

// Status is the outcome of a solve
type Status int

const (
	StatusUnknown Status = iota
	StatusOptimal
	StatusFeasible
	StatusInfeasible
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "OPTIMAL"
	case StatusFeasible:
		return "FEASIBLE"
	case StatusInfeasible:
		return "INFEASIBLE"
	default:
		return "UNKNOWN"
	}
}

// HasSolution reports whether variable values can be read after a solve with this status
func (s Status) HasSolution() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// Solver is a boolean-variable linear-constraint optimizer.
// A Solver holds one model and is used for exactly one trial.
type Solver interface {
	// NewBoolVar creates a 0/1 decision variable
	NewBoolVar(label string) Var

	// AddConstraint posts sum(terms) <op> bound
	AddConstraint(terms []Term, op Op, bound int)

	// SetObjective sets a sum to minimise. Without an objective any solution is optimal.
	SetObjective(terms []Term)

	// Solve runs the search. A cancelled or expired context yields StatusUnknown,
	// or StatusFeasible if a solution was found before the deadline.
	Solve(ctx context.Context) (Status, error)

	// Value returns the solved value of v. Only valid after a solve with a solution.
	Value(v Var) bool
}

// Factory creates an isolated Solver for one trial
type Factory func() Solver

// Fault is a failure inside a solver backend unrelated to infeasibility
type Fault struct {
	Backend string
	Err     error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("solver fault in %s: %v", f.Backend, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

package solver

import (
	"context"
	"fmt"

	sat "github.com/crillab/gophersat/solver"
	"golang.org/x/sync/semaphore"
)

const pbBackend = "gophersat"

// PB is a Solver backed by the gophersat pseudo-boolean solver.
//
// The objective is minimised by gophersat's own optimiser. When the context expires
// the last improving model is kept and reported as StatusFeasible. Solves are
// serialised process-wide, so concurrent callers queue within their own deadlines.
type PB struct {
	labels  []string
	constrs []sat.PBConstr

	objLits    []int
	objWeights []int
	objOffset  int

	// trivially unsatisfiable constraint seen while posting
	contradiction bool

	model  []bool
	status Status
	cost   int
}

var _ Solver = (*PB)(nil)

// NewPB creates an empty gophersat-backed model
func NewPB() *PB {
	return &PB{}
}

// NewPBFactory returns a Factory producing fresh PB models
func NewPBFactory() Factory {
	return func() Solver { return NewPB() }
}

func (s *PB) NewBoolVar(label string) Var {
	s.labels = append(s.labels, label)
	return Var(len(s.labels))
}

// Label returns the label a variable was created with
func (s *PB) Label(v Var) string {
	if v < 1 || int(v) > len(s.labels) {
		return ""
	}
	return s.labels[v-1]
}

// NumVars returns the number of variables created so far
func (s *PB) NumVars() int {
	return len(s.labels)
}

// NumConstraints returns the number of posted non-trivial constraints
func (s *PB) NumConstraints() int {
	return len(s.constrs)
}

func (s *PB) AddConstraint(terms []Term, op Op, bound int) {
	lits, weights, offset := normalizeTerms(terms)
	bound -= offset

	if op == OpLess {
		op = OpLessEqual
		bound--
	}

	total := 0
	for _, w := range weights {
		total += w
	}

	switch op {
	case OpLessEqual:
		if bound < 0 {
			s.contradiction = true
			return
		}
		if total <= bound {
			return
		}
		s.constrs = append(s.constrs, sat.LtEq(lits, weights, bound))
	case OpGreaterEqual:
		if bound <= 0 {
			return
		}
		if total < bound {
			s.contradiction = true
			return
		}
		s.constrs = append(s.constrs, sat.GtEq(lits, weights, bound))
	case OpEqual:
		if bound < 0 || bound > total {
			s.contradiction = true
			return
		}
		if len(lits) == 0 {
			return
		}
		s.constrs = append(s.constrs, sat.Eq(lits, weights, bound)...)
	default:
		panic(fmt.Sprintf("unsupported constraint operator %v", op))
	}
}

func (s *PB) SetObjective(terms []Term) {
	s.objLits, s.objWeights, s.objOffset = normalizeTerms(terms)
}

func (s *PB) Solve(ctx context.Context) (Status, error) {
	s.model = nil
	s.status = StatusUnknown
	s.cost = 0

	if s.contradiction {
		s.status = StatusInfeasible
		return s.status, nil
	}

	if len(s.constrs) == 0 {
		// unconstrained: every objective literal can be made false
		s.model = s.complete(nil)
		s.status = StatusOptimal
		return s.status, nil
	}

	if err := gophersatSlot.Acquire(ctx, 1); err != nil {
		return StatusUnknown, nil
	}

	results := make(chan sat.Result)
	final := make(chan pbOutcome, 1)
	go optimise(s.constrs, s.objLits, s.objWeights, results, final)

	for {
		select {
		case res, ok := <-results:
			if !ok {
				return s.finish(<-final)
			}
			if res.Status == sat.Sat {
				s.model = s.complete(res.Model)
				s.cost = res.Weight
				s.status = StatusFeasible
			}
		case <-ctx.Done():
			go func() {
				for range results {
				}
			}()
			return s.status, nil
		}
	}
}

// finish settles the status once the optimiser has closed its results
func (s *PB) finish(out pbOutcome) (Status, error) {
	if out.err != nil {
		return s.status, out.err
	}
	if s.model == nil {
		s.status = StatusInfeasible
		return s.status, nil
	}
	s.status = StatusOptimal
	return s.status, nil
}

// complete widens a gophersat model to every created variable. gophersat only knows
// the variables that appear in a constraint, the rest take their cost-free value.
func (s *PB) complete(model []bool) []bool {
	full := make([]bool, len(s.labels))
	copy(full, model)
	for _, lit := range s.objLits {
		if lit < 0 && -lit > len(model) && -lit <= len(full) {
			full[-lit-1] = true
		}
	}
	return full
}

// Objective returns the objective value of the current solution
func (s *PB) Objective() int {
	return s.cost + s.objOffset
}

func (s *PB) Value(v Var) bool {
	if !s.status.HasSolution() {
		return false
	}
	idx := int(v) - 1
	if idx < 0 || idx >= len(s.model) {
		return false
	}
	return s.model[idx]
}

// gophersatSlot serialises gophersat solves across the process. The solver keeps
// package-level scratch buffers, and a solve that outlives its context keeps running
// until it completes, still holding the slot.
var gophersatSlot = semaphore.NewWeighted(1)

// runOptimal is the minimisation entry point, replaced in tests
var runOptimal = func(solver *sat.Solver, results chan sat.Result) sat.Result {
	return solver.Optimal(results, nil)
}

type pbOutcome struct {
	status sat.Status
	err    error
}

// optimise runs one minimisation and releases the slot when it ends. Every improving
// model is sent on results, which is closed when the search stops.
func optimise(constrs []sat.PBConstr, objLits, objWeights []int, results chan sat.Result, final chan<- pbOutcome) {
	defer gophersatSlot.Release(1)

	started := false
	defer func() {
		if r := recover(); r != nil {
			if !started {
				close(results)
			}
			final <- pbOutcome{status: sat.Indet, err: &Fault{Backend: pbBackend, Err: fmt.Errorf("panic: %v", r)}}
		}
	}()

	problem := sat.ParsePBConstrs(constrs)

	var lits []sat.Lit
	var weights []int
	for i, lit := range objLits {
		v := lit
		if v < 0 {
			v = -v
		}
		if v > problem.NbVars {
			continue
		}
		lits = append(lits, sat.IntToLit(int32(lit)))
		weights = append(weights, objWeights[i])
	}
	if len(lits) > 0 {
		problem.SetCostFunc(lits, weights)
	}

	solver := sat.New(problem)
	started = true
	res := runOptimal(solver, results)
	final <- pbOutcome{status: res.Status}
}

// normalizeTerms converts terms into gophersat literals with positive weights.
// A negative coefficient c on x is rewritten as c + |c|*not(x); the constants are
// returned as offset. Terms on the same variable are merged first.
func normalizeTerms(terms []Term) (lits []int, weights []int, offset int) {
	merged := make(map[Var]int, len(terms))
	order := make([]Var, 0, len(terms))
	for _, t := range terms {
		if _, ok := merged[t.Var]; !ok {
			order = append(order, t.Var)
		}
		merged[t.Var] += t.Coef
	}

	for _, v := range order {
		c := merged[v]
		switch {
		case c > 0:
			lits = append(lits, int(v))
			weights = append(weights, c)
		case c < 0:
			lits = append(lits, -int(v))
			weights = append(weights, -c)
			offset += c
		}
	}
	return lits, weights, offset
}

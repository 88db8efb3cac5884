package scheduler

import (
	"context"

	"github.com/rville-tennis/mixer/pkg/core/model"
	"github.com/rville-tennis/mixer/pkg/core/solver"
)

type recordedConstraint struct {
	terms []solver.Term
	op    solver.Op
	bound int
}

// recordingSolver implements solver.Solver and keeps everything posted to it
type recordingSolver struct {
	labels      []string
	constraints []recordedConstraint
	objective   []solver.Term
	values      map[solver.Var]bool
}

func newRecordingSolver() *recordingSolver {
	return &recordingSolver{values: make(map[solver.Var]bool)}
}

func (r *recordingSolver) NewBoolVar(label string) solver.Var {
	r.labels = append(r.labels, label)
	return solver.Var(len(r.labels))
}

func (r *recordingSolver) AddConstraint(terms []solver.Term, op solver.Op, bound int) {
	r.constraints = append(r.constraints, recordedConstraint{terms: terms, op: op, bound: bound})
}

func (r *recordingSolver) SetObjective(terms []solver.Term) {
	r.objective = terms
}

func (r *recordingSolver) Solve(ctx context.Context) (solver.Status, error) {
	return solver.StatusOptimal, nil
}

func (r *recordingSolver) Value(v solver.Var) bool {
	return r.values[v]
}

// count returns how many constraints match op and bound
func (r *recordingSolver) count(op solver.Op, bound int) int {
	n := 0
	for _, c := range r.constraints {
		if c.op == op && c.bound == bound {
			n++
		}
	}
	return n
}

// seqRand is a deterministic Rand: IntN cycles through its values, Shuffle reverses
type seqRand struct {
	values []int
	next   int
}

func (s *seqRand) IntN(n int) int {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)] % n
	s.next++
	return v
}

func (s *seqRand) Shuffle(n int, swap func(i, j int)) {
	for i := 0; i < n/2; i++ {
		swap(i, n-1-i)
	}
}

func slotsOf(labels ...string) []model.TimeSlot {
	return model.NewTimeSlots(labels)
}

func baseInput(men, women, courts int, slots []model.TimeSlot) BuildInput {
	return BuildInput{
		MenCount:   men,
		WomenCount: women,
		Courts:     courts,
		Slots:      EvenSlots(slots, courts),
		Band:       DefaultBand,
		Rules:      DefaultRules(),
	}
}

// affinePlaneSchedule is 6 men and 6 women over 9 one-court slots where everyone plays
// exactly 3 matches, no two players meet twice and nobody plays 3 slots in a row.
// Matches are the points (i, j) of the 3x3 affine plane, ordered so that no three
// consecutive points lie on a line.
func affinePlaneSchedule() (model.Schedule, BuildInput) {
	order := [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {2, 0}, {1, 2}, {2, 1}, {0, 2}, {2, 2}}
	slots := model.NewTimeSlots(model.DefaultSlotLabels[:9])

	s := model.Schedule{Men: 6, Women: 6, Courts: 1}
	for k, pt := range order {
		i, j := pt[0], pt[1]
		s.Rows = append(s.Rows, model.Row{
			Slot:   slots[k],
			Court:  1,
			ManA:   i + 1,
			ManB:   j + 4,
			WomanA: (i+j)%3 + 1,
			WomanB: (i+2*j)%3 + 4,
		})
	}

	return s, baseInput(6, 6, 1, slots)
}

package scheduler

import "github.com/rville-tennis/mixer/pkg/core/solver"

// LatenessWeights returns one weight per slot position such that any use of slot i
// costs more than using every court of all earlier slots:
// w[0] = 1, w[i] = courts * (w[0] + ... + w[i-1]) + 1.
func LatenessWeights(slots, courts int) []int {
	weights := make([]int, slots)
	sum := 0
	for i := range weights {
		weights[i] = courts*sum + 1
		sum += weights[i]
	}
	return weights
}

// postLatenessObjective minimises the weighted slot position of every chosen assignment
func postLatenessObjective(m *Model) {
	weights := LatenessWeights(len(m.Input.Slots), m.Input.Courts)

	position := make(map[int]int, len(m.Input.Slots))
	for i, sc := range m.Input.Slots {
		position[sc.Slot.Index] = i
	}

	terms := make([]solver.Term, len(m.vars))
	for i, v := range m.vars {
		terms[i] = solver.Term{Coef: weights[position[m.assignments[i].Slot.Index]], Var: v}
	}
	m.solver.SetObjective(terms)
}

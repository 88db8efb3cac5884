package scheduler

import (
	"sort"

	"github.com/rville-tennis/mixer/pkg/core/model"
	"github.com/rville-tennis/mixer/pkg/core/solver"
)

type playerSlotKey struct {
	player model.Player
	slot   int
}

type slotCourtKey struct {
	slot  int
	court int
}

// Model is the set of decision variables of one trial together with the
// lookups the rules need to post their constraints
type Model struct {
	Input  BuildInput
	Rules  []Rule
	solver solver.Solver

	assignments []model.Assignment
	vars        []solver.Var

	bySlot       map[int][]solver.Var
	bySlotCourt  map[slotCourtKey][]solver.Var
	byTownSlot   map[int][]solver.Var
	byOpenSlot   map[int][]solver.Var
	byPlayer     map[model.Player][]solver.Var
	byTownPlayer map[model.Player][]solver.Var
	byPlayerSlot map[playerSlotKey][]solver.Var
	byPair       map[model.PlayerPair][]solver.Var
}

// Build creates one variable per candidate assignment on s and posts every rule's
// constraints, plus the objective when one is configured
func Build(s solver.Solver, in BuildInput) (*Model, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	m := &Model{
		Input:        in,
		Rules:        RulesFor(in),
		solver:       s,
		bySlot:       make(map[int][]solver.Var),
		bySlotCourt:  make(map[slotCourtKey][]solver.Var),
		byTownSlot:   make(map[int][]solver.Var),
		byOpenSlot:   make(map[int][]solver.Var),
		byPlayer:     make(map[model.Player][]solver.Var),
		byTownPlayer: make(map[model.Player][]solver.Var),
		byPlayerSlot: make(map[playerSlotKey][]solver.Var),
		byPair:       make(map[model.PlayerPair][]solver.Var),
	}

	indexPairs := in.Rules.noRepeatScope() != NoRepeatOff
	sameGenderOnly := in.Rules.noRepeatScope() == NoRepeatSameGender

	for a := range Candidates(in) {
		v := s.NewBoolVar(a.String())
		m.assignments = append(m.assignments, a)
		m.vars = append(m.vars, v)

		slot := a.Slot.Index
		m.bySlot[slot] = append(m.bySlot[slot], v)
		if a.Court > 0 {
			k := slotCourtKey{slot: slot, court: a.Court}
			m.bySlotCourt[k] = append(m.bySlotCourt[k], v)
		}
		if a.TownCourt {
			m.byTownSlot[slot] = append(m.byTownSlot[slot], v)
		} else {
			m.byOpenSlot[slot] = append(m.byOpenSlot[slot], v)
		}

		for _, p := range a.PlayersInMatch() {
			m.byPlayer[p] = append(m.byPlayer[p], v)
			k := playerSlotKey{player: p, slot: slot}
			m.byPlayerSlot[k] = append(m.byPlayerSlot[k], v)
			if a.TownCourt {
				m.byTownPlayer[p] = append(m.byTownPlayer[p], v)
			}
		}

		if indexPairs {
			for _, pp := range a.PlayerPairs() {
				if sameGenderOnly && pp.A.Gender != pp.B.Gender {
					continue
				}
				m.byPair[pp] = append(m.byPair[pp], v)
			}
		}
	}

	for _, rule := range m.Rules {
		rule.Post(m)
	}

	if in.Objective == ObjectiveLateness {
		postLatenessObjective(m)
	}

	return m, nil
}

// NumVars returns the number of decision variables in the model
func (m *Model) NumVars() int {
	return len(m.vars)
}

// Assignments returns every candidate assignment in variable order
func (m *Model) Assignments() []model.Assignment {
	return m.assignments
}

// Chosen returns the assignments whose variables are true, in slot order.
// Only meaningful after a solve that produced a solution.
func (m *Model) Chosen() []model.Assignment {
	var chosen []model.Assignment
	for i, v := range m.vars {
		if m.solver.Value(v) {
			chosen = append(chosen, m.assignments[i])
		}
	}
	sortAssignments(chosen)
	return chosen
}

func (m *Model) post(vars []solver.Var, op solver.Op, bound int) {
	m.solver.AddConstraint(solver.Sum(vars...), op, bound)
}

// sortedPairs returns the indexed player pairs in a stable order
func (m *Model) sortedPairs() []model.PlayerPair {
	pairs := make([]model.PlayerPair, 0, len(m.byPair))
	for pp := range m.byPair {
		pairs = append(pairs, pp)
	}
	sort.Slice(pairs, func(i, j int) bool {
		a, b := pairs[i], pairs[j]
		if a.A != b.A {
			return playerBefore(a.A, b.A)
		}
		return playerBefore(a.B, b.B)
	})
	return pairs
}

func playerBefore(a, b model.Player) bool {
	if a.Gender != b.Gender {
		return a.Gender == model.GenderMan
	}
	return a.ID < b.ID
}

func sortAssignments(as []model.Assignment) {
	sort.Slice(as, func(i, j int) bool {
		a, b := as[i], as[j]
		if a.Slot.Index != b.Slot.Index {
			return a.Slot.Index < b.Slot.Index
		}
		if a.TownCourt != b.TownCourt {
			return a.TownCourt
		}
		if a.Court != b.Court {
			return a.Court < b.Court
		}
		if a.Men != b.Men {
			return a.Men.Low < b.Men.Low || (a.Men.Low == b.Men.Low && a.Men.High < b.Men.High)
		}
		return a.Women.Low < b.Women.Low || (a.Women.Low == b.Women.Low && a.Women.High < b.Women.High)
	})
}

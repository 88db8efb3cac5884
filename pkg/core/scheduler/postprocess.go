package scheduler

import (
	"github.com/rville-tennis/mixer/pkg/core/model"
)

// Rand is the random source of the post-processor. *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// Finalize turns the chosen assignments into a schedule.
//
// Within each slot the town-court match, if any, is listed first on court 1 and the
// other matches are shuffled onto the following courts. Each match then gets a random
// A/B labelling of its men and, independently, of its women. Neither step changes
// who plays whom or when.
func Finalize(chosen []model.Assignment, in BuildInput, rng Rand) model.Schedule {
	ordered := make([]model.Assignment, len(chosen))
	copy(ordered, chosen)
	sortAssignments(ordered)

	schedule := model.Schedule{
		Men:    in.MenCount,
		Women:  in.WomenCount,
		Courts: in.Courts,
		Rows:   make([]model.Row, 0, len(ordered)),
	}

	for start := 0; start < len(ordered); {
		end := start
		for end < len(ordered) && ordered[end].Slot.Index == ordered[start].Slot.Index {
			end++
		}
		schedule.Rows = append(schedule.Rows, finalizeSlot(ordered[start:end], rng)...)
		start = end
	}

	return schedule
}

func finalizeSlot(slot []model.Assignment, rng Rand) []model.Row {
	var town []model.Assignment
	var others []model.Assignment
	for _, a := range slot {
		if a.TownCourt {
			town = append(town, a)
		} else {
			others = append(others, a)
		}
	}

	rng.Shuffle(len(others), func(i, j int) {
		others[i], others[j] = others[j], others[i]
	})

	rows := make([]model.Row, 0, len(slot))
	for i, a := range append(town, others...) {
		rows = append(rows, finalizeMatch(a, i+1, rng))
	}
	return rows
}

func finalizeMatch(a model.Assignment, court int, rng Rand) model.Row {
	manA, manB := a.Men.Low, a.Men.High
	if rng.IntN(2) == 1 {
		manA, manB = manB, manA
	}
	womanA, womanB := a.Women.Low, a.Women.High
	if rng.IntN(2) == 1 {
		womanA, womanB = womanB, womanA
	}

	return model.Row{
		Slot:      a.Slot,
		Court:     court,
		ManA:      manA,
		ManB:      manB,
		WomanA:    womanA,
		WomanB:    womanB,
		TownCourt: a.TownCourt,
	}
}

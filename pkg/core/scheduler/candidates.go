package scheduler

import (
	"iter"

	"github.com/rville-tennis/mixer/pkg/core/model"
)

// courtVariant is the court dimension of a candidate within one slot
type courtVariant struct {
	court int
	town  bool
}

// variants lists the court dimension values a slot contributes to the variable space
func (in BuildInput) variants(sc SlotCapacity) []courtVariant {
	if sc.Courts <= 0 {
		return nil
	}

	if in.CourtModel == CourtsExplicit {
		out := make([]courtVariant, 0, sc.Courts)
		for court := 1; court <= sc.Courts; court++ {
			out = append(out, courtVariant{court: court, town: in.Mode == ModeTownCourt && court == 1})
		}
		return out
	}

	if in.Mode == ModeTownCourt {
		out := []courtVariant{{town: true}}
		if sc.Courts > 1 {
			out = append(out, courtVariant{})
		}
		return out
	}

	return []courtVariant{{}}
}

// Candidates streams every admissible assignment in slot, court, men pair, women pair order.
// Assignments that place an accommodated player outside their slots are never produced.
func Candidates(in BuildInput) iter.Seq[model.Assignment] {
	menPairs := model.Pairs(in.MenCount)
	womenPairs := model.Pairs(in.WomenCount)
	allowed := in.allowedSlots()

	return func(yield func(model.Assignment) bool) {
		for _, sc := range in.Slots {
			for _, v := range in.variants(sc) {
				for _, mp := range menPairs {
					if !allowed.permitsPair(model.GenderMan, mp, sc.Slot) {
						continue
					}
					for _, wp := range womenPairs {
						if !allowed.permitsPair(model.GenderWoman, wp, sc.Slot) {
							continue
						}
						a := model.Assignment{
							Slot:      sc.Slot,
							Men:       mp,
							Women:     wp,
							Court:     v.court,
							TownCourt: v.town,
						}
						if !yield(a) {
							return
						}
					}
				}
			}
		}
	}
}

// CandidateCount returns the size of the variable space without building it
func CandidateCount(in BuildInput) int {
	count := 0
	for range Candidates(in) {
		count++
	}
	return count
}

package scheduler

import (
	"fmt"

	"github.com/rville-tennis/mixer/pkg/core/model"
	"github.com/rville-tennis/mixer/pkg/core/solver"
)

// TownCourtRule handles the distinguished town court.
//
// At most one town-court match per slot, and each player plays at most TownCourtMax
// matches there. With courts as capacity the other matches share the remaining courts.
type TownCourtRule struct{}

func (r *TownCourtRule) Name() string {
	return "TownCourt"
}

func (r *TownCourtRule) Post(m *Model) {
	in := m.Input
	for _, sc := range in.Slots {
		slot := sc.Slot.Index
		m.post(m.byTownSlot[slot], solver.OpLessEqual, 1)
		if in.CourtModel == CourtsAsCapacity {
			m.post(m.byOpenSlot[slot], solver.OpLessEqual, max(sc.Courts-1, 0))
		}
	}

	for _, p := range allPlayers(in) {
		m.post(m.byTownPlayer[p], solver.OpLessEqual, townCourtMax(in))
	}
}

func (r *TownCourtRule) Validate(s model.Schedule, in BuildInput) []ScheduleViolation {
	var violations []ScheduleViolation

	townPerSlot := make(map[int]int)
	townPerPlayer := make(map[model.Player]int)
	for _, row := range s.Rows {
		if !row.TownCourt {
			continue
		}
		townPerSlot[row.Slot.Index]++
		if townPerSlot[row.Slot.Index] == 2 {
			violations = append(violations, ScheduleViolation{
				RuleName:    r.Name(),
				Slot:        row.Slot.Label,
				Description: "more than one town-court match",
			})
		}
		if row.Court != 1 {
			violations = append(violations, ScheduleViolation{
				RuleName:    r.Name(),
				Slot:        row.Slot.Label,
				Description: fmt.Sprintf("town-court match listed on court %d", row.Court),
			})
		}
		for _, p := range row.Players() {
			townPerPlayer[p]++
		}
	}

	limit := townCourtMax(in)
	for _, p := range allPlayers(in) {
		if townPerPlayer[p] > limit {
			violations = append(violations, ScheduleViolation{
				RuleName:    r.Name(),
				Description: fmt.Sprintf("%s plays %d town-court matches, max %d", p, townPerPlayer[p], limit),
			})
		}
	}

	return violations
}

func townCourtMax(in BuildInput) int {
	if in.TownCourtMax > 0 {
		return in.TownCourtMax
	}
	return DefaultTownCourtMax
}

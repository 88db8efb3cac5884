package scheduler

import (
	"fmt"

	"github.com/rville-tennis/mixer/pkg/core/model"
	"github.com/rville-tennis/mixer/pkg/core/solver"
)

// SingleBookingRule allows each player at most one match per slot
type SingleBookingRule struct{}

func (r *SingleBookingRule) Name() string {
	return "SingleBooking"
}

func (r *SingleBookingRule) Post(m *Model) {
	for _, p := range allPlayers(m.Input) {
		for _, sc := range m.Input.Slots {
			m.post(m.byPlayerSlot[playerSlotKey{player: p, slot: sc.Slot.Index}], solver.OpLessEqual, 1)
		}
	}
}

func (r *SingleBookingRule) Validate(s model.Schedule, in BuildInput) []ScheduleViolation {
	var violations []ScheduleViolation

	booked := make(map[playerSlotKey]int)
	for _, row := range s.Rows {
		for _, p := range row.Players() {
			k := playerSlotKey{player: p, slot: row.Slot.Index}
			booked[k]++
			if booked[k] == 2 {
				violations = append(violations, ScheduleViolation{
					RuleName:    r.Name(),
					Slot:        row.Slot.Label,
					Description: fmt.Sprintf("%s is booked more than once", p),
				})
			}
		}
	}

	return violations
}

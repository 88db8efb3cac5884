package scheduler

import (
	"fmt"

	"github.com/rville-tennis/mixer/pkg/core/model"
	"github.com/rville-tennis/mixer/pkg/core/solver"
)

// NoStreakRule stops a player from filling every slot of a window of
// StreakLength consecutive slots. Windows slide by one over the slot sequence.
type NoStreakRule struct{}

func (r *NoStreakRule) Name() string {
	return "NoStreak"
}

func (r *NoStreakRule) Post(m *Model) {
	length := m.Input.Rules.StreakLength
	for _, window := range streakWindows(m.Input.Slots, length) {
		for _, p := range allPlayers(m.Input) {
			var vars []solver.Var
			for _, sc := range window {
				vars = append(vars, m.byPlayerSlot[playerSlotKey{player: p, slot: sc.Slot.Index}]...)
			}
			m.post(vars, solver.OpLess, length)
		}
	}
}

func (r *NoStreakRule) Validate(s model.Schedule, in BuildInput) []ScheduleViolation {
	var violations []ScheduleViolation

	length := in.Rules.StreakLength
	played := make(map[playerSlotKey]bool)
	for _, row := range s.Rows {
		for _, p := range row.Players() {
			played[playerSlotKey{player: p, slot: row.Slot.Index}] = true
		}
	}

	for _, window := range streakWindows(in.Slots, length) {
		for _, p := range allPlayers(in) {
			count := 0
			for _, sc := range window {
				if played[playerSlotKey{player: p, slot: sc.Slot.Index}] {
					count++
				}
			}
			if count >= length {
				violations = append(violations, ScheduleViolation{
					RuleName: r.Name(),
					Slot:     window[0].Slot.Label,
					Description: fmt.Sprintf("%s plays %d slots in a row from %s to %s",
						p, count, window[0].Slot.Label, window[len(window)-1].Slot.Label),
				})
			}
		}
	}

	return violations
}

// streakWindows returns every run of length consecutive slots
func streakWindows(slots []SlotCapacity, length int) [][]SlotCapacity {
	if length <= 0 || len(slots) < length {
		return nil
	}
	windows := make([][]SlotCapacity, 0, len(slots)-length+1)
	for i := 0; i+length <= len(slots); i++ {
		windows = append(windows, slots[i:i+length])
	}
	return windows
}

package db

import (
	"fmt"

	"github.com/rville-tennis/mixer/pkg/core/model"
)

// RowsFromSchedule converts a schedule into stored rows, keeping row order as Position
func RowsFromSchedule(comboID string, s model.Schedule) []ScheduleRow {
	rows := make([]ScheduleRow, len(s.Rows))
	for i, r := range s.Rows {
		rows[i] = ScheduleRow{
			ComboID:   comboID,
			Position:  i,
			Slot:      r.Slot.Label,
			Court:     r.Court,
			ManA:      r.ManA,
			ManB:      r.ManB,
			WomanA:    r.WomanA,
			WomanB:    r.WomanB,
			TownCourt: r.TownCourt,
		}
	}
	return rows
}

// ScheduleFromRows rebuilds a stored schedule against the slot sequence it was solved with.
// Rows must be ordered by Position.
func ScheduleFromRows(c ComboResult, courts int, slots []model.TimeSlot) (model.Schedule, error) {
	byLabel := make(map[string]model.TimeSlot, len(slots))
	for _, slot := range slots {
		byLabel[slot.Label] = slot
	}

	s := model.Schedule{Men: c.Men, Women: c.Women, Courts: courts, Rows: make([]model.Row, 0, len(c.Rows))}
	for _, r := range c.Rows {
		slot, ok := byLabel[r.Slot]
		if !ok {
			return model.Schedule{}, fmt.Errorf("row %d: unknown time slot %q", r.Position, r.Slot)
		}
		s.Rows = append(s.Rows, model.Row{
			Slot:      slot,
			Court:     r.Court,
			ManA:      r.ManA,
			ManB:      r.ManB,
			WomanA:    r.WomanA,
			WomanB:    r.WomanB,
			TownCourt: r.TownCourt,
		})
	}
	return s, nil
}

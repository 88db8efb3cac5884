package scheduler

import (
	"fmt"

	"github.com/rville-tennis/mixer/pkg/core/model"
	"github.com/rville-tennis/mixer/pkg/core/solver"
)

// CapacityRule limits each slot to its open courts.
//
// With courts as capacity, at most Courts(slot) assignments are chosen per slot.
// With explicit courts, every (slot, court) cell holds exactly one assignment,
// or at most one when empty courts are allowed.
type CapacityRule struct{}

func (r *CapacityRule) Name() string {
	return "Capacity"
}

func (r *CapacityRule) Post(m *Model) {
	in := m.Input
	for _, sc := range in.Slots {
		if in.CourtModel == CourtsExplicit {
			op := solver.OpEqual
			if in.AllowEmptyCourts {
				op = solver.OpLessEqual
			}
			for court := 1; court <= sc.Courts; court++ {
				m.post(m.bySlotCourt[slotCourtKey{slot: sc.Slot.Index, court: court}], op, 1)
			}
			continue
		}
		m.post(m.bySlot[sc.Slot.Index], solver.OpLessEqual, sc.Courts)
	}
}

func (r *CapacityRule) Validate(s model.Schedule, in BuildInput) []ScheduleViolation {
	var violations []ScheduleViolation

	open := make(map[int]int, len(in.Slots))
	for _, sc := range in.Slots {
		open[sc.Slot.Index] = sc.Courts
	}

	rowsPerSlot := make(map[int]int)
	courtsUsed := make(map[slotCourtKey]bool)
	for _, row := range s.Rows {
		slot := row.Slot.Index
		rowsPerSlot[slot]++

		courts, ok := open[slot]
		if !ok {
			violations = append(violations, ScheduleViolation{
				RuleName:    r.Name(),
				Slot:        row.Slot.Label,
				Description: "match scheduled in a slot that is not open",
			})
			continue
		}
		if row.Court < 1 || row.Court > courts {
			violations = append(violations, ScheduleViolation{
				RuleName:    r.Name(),
				Slot:        row.Slot.Label,
				Description: fmt.Sprintf("court %d outside 1..%d", row.Court, courts),
			})
		}
		k := slotCourtKey{slot: slot, court: row.Court}
		if courtsUsed[k] {
			violations = append(violations, ScheduleViolation{
				RuleName:    r.Name(),
				Slot:        row.Slot.Label,
				Description: fmt.Sprintf("court %d used twice", row.Court),
			})
		}
		courtsUsed[k] = true
	}

	for _, sc := range in.Slots {
		count := rowsPerSlot[sc.Slot.Index]
		if count > sc.Courts {
			violations = append(violations, ScheduleViolation{
				RuleName:    r.Name(),
				Slot:        sc.Slot.Label,
				Description: fmt.Sprintf("%d matches on %d courts", count, sc.Courts),
			})
		}
		if in.CourtModel == CourtsExplicit && !in.AllowEmptyCourts && count < sc.Courts {
			violations = append(violations, ScheduleViolation{
				RuleName:    r.Name(),
				Slot:        sc.Slot.Label,
				Description: fmt.Sprintf("%d of %d courts left empty", sc.Courts-count, sc.Courts),
			})
		}
	}

	return violations
}

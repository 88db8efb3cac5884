package scheduler

import (
	"fmt"

	"github.com/rville-tennis/mixer/pkg/core/model"
)

// ValidateSchedule checks a finalised schedule against every rule active for the input.
// An empty slice means the schedule is valid.
func ValidateSchedule(s model.Schedule, in BuildInput) []ScheduleViolation {
	violations := validateRows(s, in)

	for _, rule := range RulesFor(in) {
		violations = append(violations, rule.Validate(s, in)...)
	}

	return violations
}

// validateRows checks that every row holds four distinct, known players
func validateRows(s model.Schedule, in BuildInput) []ScheduleViolation {
	var violations []ScheduleViolation

	for _, row := range s.Rows {
		ps := row.Players()
		if ps[0] == ps[1] || ps[2] == ps[3] {
			violations = append(violations, ScheduleViolation{
				RuleName:    "Row",
				Slot:        row.Slot.Label,
				Description: fmt.Sprintf("court %d repeats a player", row.Court),
			})
		}
		for _, p := range ps {
			limit := in.MenCount
			if p.Gender == model.GenderWoman {
				limit = in.WomenCount
			}
			if p.ID < 1 || p.ID > limit {
				violations = append(violations, ScheduleViolation{
					RuleName:    "Row",
					Slot:        row.Slot.Label,
					Description: fmt.Sprintf("unknown player %s", p),
				})
			}
		}
	}

	return violations
}

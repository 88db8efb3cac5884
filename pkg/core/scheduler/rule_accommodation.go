package scheduler

import (
	"fmt"

	"github.com/rville-tennis/mixer/pkg/core/model"
)

// AccommodationRule keeps players inside their whitelisted slots.
// Candidates outside the whitelist are never enumerated, so nothing is posted.
type AccommodationRule struct{}

func (r *AccommodationRule) Name() string {
	return "Accommodation"
}

func (r *AccommodationRule) Post(m *Model) {}

func (r *AccommodationRule) Validate(s model.Schedule, in BuildInput) []ScheduleViolation {
	var violations []ScheduleViolation

	allowed := in.allowedSlots()
	for _, row := range s.Rows {
		for _, p := range row.Players() {
			if !allowed.permits(p, row.Slot) {
				violations = append(violations, ScheduleViolation{
					RuleName:    r.Name(),
					Slot:        row.Slot.Label,
					Description: fmt.Sprintf("%s is not available at %s", p, row.Slot.Label),
				})
			}
		}
	}

	return violations
}

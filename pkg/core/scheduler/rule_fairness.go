package scheduler

import (
	"fmt"

	"github.com/rville-tennis/mixer/pkg/core/model"
	"github.com/rville-tennis/mixer/pkg/core/solver"
)

// FairnessRule keeps every player's match count inside the band
type FairnessRule struct{}

func (r *FairnessRule) Name() string {
	return "Fairness"
}

func (r *FairnessRule) Post(m *Model) {
	band := m.Input.Band
	for _, p := range allPlayers(m.Input) {
		vars := m.byPlayer[p]
		m.post(vars, solver.OpGreaterEqual, band.Min)
		m.post(vars, solver.OpLessEqual, band.Max)
	}
}

func (r *FairnessRule) Validate(s model.Schedule, in BuildInput) []ScheduleViolation {
	var violations []ScheduleViolation

	counts := s.MatchCounts()
	for _, p := range allPlayers(in) {
		count := counts[p]
		if count < in.Band.Min || count > in.Band.Max {
			violations = append(violations, ScheduleViolation{
				RuleName:    r.Name(),
				Description: fmt.Sprintf("%s plays %d matches, want %d to %d", p, count, in.Band.Min, in.Band.Max),
			})
		}
	}

	return violations
}

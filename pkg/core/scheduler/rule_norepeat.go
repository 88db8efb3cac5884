package scheduler

import (
	"fmt"

	"github.com/rville-tennis/mixer/pkg/core/model"
	"github.com/rville-tennis/mixer/pkg/core/solver"
)

// NoRepeatRule lets any two players share a match at most once, as partners or opponents.
// With NoRepeatSameGender only the men's and women's pairs are limited.
type NoRepeatRule struct{}

func (r *NoRepeatRule) Name() string {
	return "NoRepeat"
}

// Post only visits pairs that co-occur in some candidate, the index is built during enumeration
func (r *NoRepeatRule) Post(m *Model) {
	for _, pp := range m.sortedPairs() {
		m.post(m.byPair[pp], solver.OpLessEqual, 1)
	}
}

func (r *NoRepeatRule) Validate(s model.Schedule, in BuildInput) []ScheduleViolation {
	var violations []ScheduleViolation

	sameGenderOnly := in.Rules.noRepeatScope() == NoRepeatSameGender
	met := make(map[model.PlayerPair]int)
	for _, row := range s.Rows {
		ps := row.Players()
		for i := 0; i < len(ps); i++ {
			for j := i + 1; j < len(ps); j++ {
				if sameGenderOnly && ps[i].Gender != ps[j].Gender {
					continue
				}
				pp := model.NewPlayerPair(ps[i], ps[j])
				met[pp]++
				if met[pp] == 2 {
					violations = append(violations, ScheduleViolation{
						RuleName:    r.Name(),
						Slot:        row.Slot.Label,
						Description: fmt.Sprintf("%s and %s meet again", pp.A, pp.B),
					})
				}
			}
		}
	}

	return violations
}

package scheduler

import "github.com/rville-tennis/mixer/pkg/core/model"

// ScheduleViolation describes one broken rule in a finalised schedule
type ScheduleViolation struct {
	RuleName    string
	Slot        string
	Description string
}

// Rule is one constraint family.
// Post encodes it on a model before solving, Validate re-checks it on a finished schedule.
type Rule interface {
	// Name returns a human-readable identifier for this rule
	Name() string

	// Post adds the rule's linear constraints to the model's solver
	Post(m *Model)

	// Validate returns every violation of the rule in the schedule (empty if none)
	Validate(s model.Schedule, in BuildInput) []ScheduleViolation
}

// RulesFor returns the rules active for the input, in posting order
func RulesFor(in BuildInput) []Rule {
	rules := []Rule{
		&CapacityRule{},
		&FairnessRule{},
		&SingleBookingRule{},
	}

	if in.Rules.noRepeatScope() != NoRepeatOff {
		rules = append(rules, &NoRepeatRule{})
	}
	if in.Rules.StreakLength > 0 {
		rules = append(rules, &NoStreakRule{})
	}
	if in.Mode == ModeTownCourt {
		rules = append(rules, &TownCourtRule{})
	}
	if len(in.Accommodations) > 0 {
		rules = append(rules, &AccommodationRule{})
	}

	return rules
}

// allPlayers returns every player of the input, men first
func allPlayers(in BuildInput) []model.Player {
	return append(model.Players(model.GenderMan, in.MenCount), model.Players(model.GenderWoman, in.WomenCount)...)
}

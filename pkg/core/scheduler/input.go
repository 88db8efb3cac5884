package scheduler

import (
	"fmt"
	"slices"

	"github.com/rville-tennis/mixer/pkg/core/model"
)

// SchedulingMode selects how courts are treated
type SchedulingMode int

const (
	// ModePlain treats all courts alike
	ModePlain SchedulingMode = iota
	// ModeTownCourt distinguishes one court per slot with a stricter per-player cap
	ModeTownCourt
)

func (m SchedulingMode) String() string {
	if m == ModeTownCourt {
		return "townCourt"
	}
	return "plain"
}

// CourtModel selects whether courts are decision dimensions or a per-slot capacity
type CourtModel int

const (
	CourtsAsCapacity CourtModel = iota
	CourtsExplicit
)

// ObjectiveKind selects the optimisation goal of a trial
type ObjectiveKind int

const (
	// ObjectiveLateness prefers filling earlier slots before later ones
	ObjectiveLateness ObjectiveKind = iota
	// ObjectiveNone asks only for feasibility
	ObjectiveNone
)

// NoRepeatScope selects which player pairs may meet at most once
type NoRepeatScope string

const (
	NoRepeatAll        NoRepeatScope = "all"
	NoRepeatSameGender NoRepeatScope = "same-gender"
	NoRepeatOff        NoRepeatScope = "off"
)

// Band is the inclusive range of matches every player must play
type Band struct {
	Min int
	Max int
}

// DefaultBand is three to four matches per player
var DefaultBand = Band{Min: 3, Max: 4}

// Rules toggles the optional constraint families
type Rules struct {
	// NoRepeat defaults to NoRepeatAll when empty
	NoRepeat NoRepeatScope
	// StreakLength is the number of consecutive slots nobody may fill entirely; 0 disables
	StreakLength int
}

// DefaultRules forbids any repeated meeting and three slots in a row
func DefaultRules() Rules {
	return Rules{NoRepeat: NoRepeatAll, StreakLength: 3}
}

func (r Rules) noRepeatScope() NoRepeatScope {
	if r.NoRepeat == "" {
		return NoRepeatAll
	}
	return r.NoRepeat
}

// DefaultTownCourtMax is the default number of town-court matches per player
const DefaultTownCourtMax = 2

// Accommodation limits a player to the listed slot labels
type Accommodation struct {
	Player model.Player
	Slots  []string
}

// SlotCapacity is a usable slot and how many courts are open in it
type SlotCapacity struct {
	Slot   model.TimeSlot
	Courts int
}

// BuildInput describes one trial's model
type BuildInput struct {
	MenCount   int
	WomenCount int
	Courts     int
	Slots      []SlotCapacity

	Band             Band
	Mode             SchedulingMode
	CourtModel       CourtModel
	AllowEmptyCourts bool
	Rules            Rules
	TownCourtMax     int
	Objective        ObjectiveKind
	Accommodations   []Accommodation
}

// EvenSlots opens every court in every slot
func EvenSlots(slots []model.TimeSlot, courts int) []SlotCapacity {
	out := make([]SlotCapacity, len(slots))
	for i, slot := range slots {
		out[i] = SlotCapacity{Slot: slot, Courts: courts}
	}
	return out
}

// DistributeMatches takes the first matchesCount cells of the slot-major slot x court grid.
// Later slots stay closed, the last open slot may be partially open.
func DistributeMatches(slots []model.TimeSlot, courts, matchesCount int) []SlotCapacity {
	var out []SlotCapacity
	remaining := matchesCount
	for _, slot := range slots {
		if remaining <= 0 {
			break
		}
		open := min(courts, remaining)
		out = append(out, SlotCapacity{Slot: slot, Courts: open})
		remaining -= open
	}
	return out
}

// MatchesCapacity returns the total number of open courts across slots
func MatchesCapacity(slots []SlotCapacity) int {
	total := 0
	for _, s := range slots {
		total += s.Courts
	}
	return total
}

// Validate checks that the input admits at least one candidate pairing
func (in BuildInput) Validate() error {
	if in.MenCount < 2 {
		return &ModelBuildError{Reason: fmt.Sprintf("need at least 2 men, got %d", in.MenCount)}
	}
	if in.WomenCount < 2 {
		return &ModelBuildError{Reason: fmt.Sprintf("need at least 2 women, got %d", in.WomenCount)}
	}
	if in.Courts < 1 {
		return &ModelBuildError{Reason: fmt.Sprintf("need at least 1 court, got %d", in.Courts)}
	}
	if len(in.Slots) == 0 {
		return &ModelBuildError{Reason: "no time slots"}
	}
	if in.Band.Min < 0 || in.Band.Max < in.Band.Min {
		return &ModelBuildError{Reason: fmt.Sprintf("invalid match band [%d,%d]", in.Band.Min, in.Band.Max)}
	}

	seen := make(map[int]bool)
	for i, s := range in.Slots {
		if seen[s.Slot.Index] {
			return &ModelBuildError{Reason: fmt.Sprintf("slot %q listed twice", s.Slot.Label)}
		}
		seen[s.Slot.Index] = true
		if i > 0 && s.Slot.Index < in.Slots[i-1].Slot.Index {
			return &ModelBuildError{Reason: "slots must be in sequence order"}
		}
		if s.Courts < 0 || s.Courts > in.Courts {
			return &ModelBuildError{Reason: fmt.Sprintf("slot %q has %d courts, %d available", s.Slot.Label, s.Courts, in.Courts)}
		}
	}

	for _, acc := range in.Accommodations {
		limit := in.MenCount
		if acc.Player.Gender == model.GenderWoman {
			limit = in.WomenCount
		}
		if !acc.Player.Gender.IsValid() || acc.Player.ID < 1 || acc.Player.ID > limit {
			return &ModelBuildError{Reason: fmt.Sprintf("accommodation for unknown player %s", acc.Player)}
		}
	}

	return nil
}

// allowedSlots maps accommodated players to their whitelisted slot labels
type allowedSlots map[model.Player][]string

func (in BuildInput) allowedSlots() allowedSlots {
	allowed := make(allowedSlots, len(in.Accommodations))
	for _, acc := range in.Accommodations {
		allowed[acc.Player] = append(allowed[acc.Player], acc.Slots...)
	}
	return allowed
}

// permits reports whether the player may be scheduled in the slot
func (a allowedSlots) permits(p model.Player, slot model.TimeSlot) bool {
	labels, restricted := a[p]
	if !restricted {
		return true
	}
	return slices.Contains(labels, slot.Label)
}

func (a allowedSlots) permitsPair(g model.Gender, pair model.Pair, slot model.TimeSlot) bool {
	return a.permits(model.Player{Gender: g, ID: pair.Low}, slot) &&
		a.permits(model.Player{Gender: g, ID: pair.High}, slot)
}

// Swapped returns the input with the genders exchanged
func (in BuildInput) Swapped() BuildInput {
	out := in
	out.MenCount, out.WomenCount = in.WomenCount, in.MenCount
	out.Accommodations = make([]Accommodation, len(in.Accommodations))
	for i, acc := range in.Accommodations {
		out.Accommodations[i] = Accommodation{
			Player: model.Player{Gender: acc.Player.Gender.Other(), ID: acc.Player.ID},
			Slots:  acc.Slots,
		}
	}
	return out
}

package services

import (
	"fmt"

	"github.com/rville-tennis/mixer/internal/config"
	"github.com/rville-tennis/mixer/pkg/core/model"
	"github.com/rville-tennis/mixer/pkg/core/scheduler"
	"github.com/rville-tennis/mixer/pkg/core/search"
)

// Overrides are command-line settings that take precedence over the config file
type Overrides struct {
	Seed        uint64
	Parallelism int
	TownCourt   bool
	// Accommodations applies the accommodations listed in the config
	Accommodations bool
}

// SearchOptions converts the configuration into search options
func SearchOptions(cfg *config.Config, ov Overrides) (search.Options, error) {
	labels, err := cfg.SlotLabels()
	if err != nil {
		return search.Options{}, fmt.Errorf("failed to read time slots: %w", err)
	}

	opts := search.Options{
		Band:               scheduler.DefaultBand,
		Mode:               scheduler.ModePlain,
		CourtModel:         scheduler.CourtsAsCapacity,
		AllowEmptyCourts:   cfg.AllowEmptyCourts,
		Rules:              scheduler.DefaultRules(),
		TownCourtMax:       cfg.TownCourtMax,
		Objective:          scheduler.ObjectiveLateness,
		ImbalanceThreshold: cfg.ImbalanceThreshold,
		AcceptFeasible:     cfg.AcceptFeasible,
		TrialTimeout:       cfg.TrialTimeout,
		Parallelism:        cfg.Parallelism,
		Seed:               ov.Seed,
	}
	if len(labels) > 0 {
		opts.Slots = model.NewTimeSlots(labels)
	}
	if cfg.Fairness != nil {
		opts.Band = scheduler.Band{Min: cfg.Fairness.Min, Max: cfg.Fairness.Max}
	}
	if cfg.Mode == "townCourt" || ov.TownCourt {
		opts.Mode = scheduler.ModeTownCourt
	}
	if cfg.CourtModel == "explicit" {
		opts.CourtModel = scheduler.CourtsExplicit
	}
	if cfg.Rules.NoRepeat != "" {
		opts.Rules.NoRepeat = scheduler.NoRepeatScope(cfg.Rules.NoRepeat)
	}
	if cfg.Rules.StreakLength != nil {
		opts.Rules.StreakLength = *cfg.Rules.StreakLength
	}
	if cfg.Objective == "none" {
		opts.Objective = scheduler.ObjectiveNone
	}
	if ov.Parallelism > 0 {
		opts.Parallelism = ov.Parallelism
	}

	if ov.Accommodations {
		accs, err := accommodations(cfg.Accommodations, labels)
		if err != nil {
			return search.Options{}, err
		}
		opts.Accommodations = accs
	}

	return opts, nil
}

func accommodations(entries []config.Accommodation, labels []string) ([]scheduler.Accommodation, error) {
	if len(labels) == 0 {
		labels = model.DefaultSlotLabels
	}
	known := make(map[string]bool, len(labels))
	for _, l := range labels {
		known[l] = true
	}

	accs := make([]scheduler.Accommodation, 0, len(entries))
	for _, e := range entries {
		p, err := model.ParsePlayer(e.Player)
		if err != nil {
			return nil, fmt.Errorf("failed to parse accommodation: %w", err)
		}
		for _, slot := range e.Slots {
			if !known[slot] {
				return nil, fmt.Errorf("accommodation for %s names unknown time slot %q", p, slot)
			}
		}
		accs = append(accs, scheduler.Accommodation{Player: p, Slots: e.Slots})
	}
	return accs, nil
}

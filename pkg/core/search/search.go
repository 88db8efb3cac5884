package search

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/rville-tennis/mixer/pkg/core/model"
	"github.com/rville-tennis/mixer/pkg/core/scheduler"
	"github.com/rville-tennis/mixer/pkg/core/solver"
)

const (
	// DefaultImbalanceThreshold is the largest men/women difference a sweep attempts
	DefaultImbalanceThreshold = 3

	// DefaultTrialTimeout bounds a single solve
	DefaultTrialTimeout = 60 * time.Second
)

// Recorder receives trial and combination outcomes, typically for metrics
type Recorder interface {
	ObserveTrial(status string, elapsed time.Duration)
	ObserveCombo(outcome string)
}

// Reporter is called once per combination of a sweep, in sweep order
type Reporter func(ComboResult)

// Options configures every trial a Search runs
type Options struct {
	// Slots is the full ordered slot sequence; trials open a prefix of it
	Slots []model.TimeSlot

	Band             scheduler.Band
	Mode             scheduler.SchedulingMode
	CourtModel       scheduler.CourtModel
	AllowEmptyCourts bool
	Rules            scheduler.Rules
	TownCourtMax     int
	Objective        scheduler.ObjectiveKind
	Accommodations   []scheduler.Accommodation

	// ImbalanceThreshold is the largest men/women difference a sweep attempts.
	// Nil uses DefaultImbalanceThreshold, zero attempts balanced combinations only.
	ImbalanceThreshold *int
	// AcceptFeasible stops a combination at a FEASIBLE trial instead of only OPTIMAL
	AcceptFeasible bool
	TrialTimeout   time.Duration
	// Parallelism is the number of combinations worked on at once. Model building and
	// post-processing overlap, but the gophersat backend runs one solve at a time.
	Parallelism int
	// Seed drives the post-processor; each trial derives its own stream from it
	Seed uint64

	Recorder Recorder
	Reporter Reporter
}

// Search runs trials against fresh solvers from a factory
type Search struct {
	factory   solver.Factory
	opts      Options
	threshold int
	logger    *zap.Logger
}

// New creates a Search, filling unset options with defaults
func New(factory solver.Factory, opts Options, logger *zap.Logger) *Search {
	if len(opts.Slots) == 0 {
		opts.Slots = model.NewTimeSlots(model.DefaultSlotLabels)
	}
	if opts.Band == (scheduler.Band{}) {
		opts.Band = scheduler.DefaultBand
	}
	threshold := DefaultImbalanceThreshold
	if opts.ImbalanceThreshold != nil && *opts.ImbalanceThreshold >= 0 {
		threshold = *opts.ImbalanceThreshold
	}
	if opts.TrialTimeout <= 0 {
		opts.TrialTimeout = DefaultTrialTimeout
	}
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	return &Search{factory: factory, opts: opts, threshold: threshold, logger: logger}
}

// Trial identifies one solve. Matches of 0 opens every court of every slot.
type Trial struct {
	Men     int
	Women   int
	Courts  int
	Matches int
}

// TrialResult is the outcome of one solve
type TrialResult struct {
	Trial    Trial
	Status   solver.Status
	Elapsed  time.Duration
	Schedule *model.Schedule
	// Violations lists rules the finalised schedule fails, expected to be empty
	Violations []scheduler.ScheduleViolation
	// Err holds a solver fault; the status is then UNKNOWN unless a solution survived
	Err error
}

// Input returns the model input this search uses for the trial
func (s *Search) Input(t Trial) scheduler.BuildInput {
	slots := scheduler.EvenSlots(s.opts.Slots, t.Courts)
	if t.Matches > 0 {
		slots = scheduler.DistributeMatches(s.opts.Slots, t.Courts, t.Matches)
	}

	return scheduler.BuildInput{
		MenCount:         t.Men,
		WomenCount:       t.Women,
		Courts:           t.Courts,
		Slots:            slots,
		Band:             s.opts.Band,
		Mode:             s.opts.Mode,
		CourtModel:       s.opts.CourtModel,
		AllowEmptyCourts: s.opts.AllowEmptyCourts,
		Rules:            s.opts.Rules,
		TownCourtMax:     s.opts.TownCourtMax,
		Objective:        s.opts.Objective,
		Accommodations:   accommodationsFor(s.opts.Accommodations, t.Men, t.Women),
	}
}

// Solve runs a single trial in its own solver.
// The error is non-nil only when the model cannot be built; solver faults are
// reported on the result with an UNKNOWN status.
func (s *Search) Solve(ctx context.Context, t Trial) (TrialResult, error) {
	result := TrialResult{Trial: t}
	in := s.Input(t)

	started := time.Now()
	slv := s.factory()

	var m *scheduler.Model
	err := guard(func() error {
		var buildErr error
		m, buildErr = scheduler.Build(slv, in)
		return buildErr
	})
	if err != nil {
		var buildErr *scheduler.ModelBuildError
		if errors.As(err, &buildErr) {
			return s.finish(result, started), fmt.Errorf("failed to build model for %d men, %d women: %w", t.Men, t.Women, err)
		}
		result.Status = solver.StatusUnknown
		result.Err = err
		return s.finish(result, started), nil
	}

	trialCtx, cancel := context.WithTimeout(ctx, s.opts.TrialTimeout)
	defer cancel()

	var status solver.Status
	err = guard(func() error {
		var solveErr error
		status, solveErr = slv.Solve(trialCtx)
		return solveErr
	})
	if err != nil {
		s.logger.Warn("Solver fault",
			zap.Int("men", t.Men),
			zap.Int("women", t.Women),
			zap.Int("matches", t.Matches),
			zap.Error(err))
		result.Err = err
		if !status.HasSolution() {
			status = solver.StatusUnknown
		}
	}
	result.Status = status

	if status.HasSolution() {
		schedule := scheduler.Finalize(m.Chosen(), in, rand.New(rand.NewPCG(s.opts.Seed, trialStream(t))))
		result.Schedule = &schedule
		result.Violations = scheduler.ValidateSchedule(schedule, in)
		for _, v := range result.Violations {
			s.logger.Warn("Schedule violates rule",
				zap.String("rule", v.RuleName),
				zap.String("slot", v.Slot),
				zap.String("description", v.Description))
		}
	}

	return s.finish(result, started), nil
}

func (s *Search) finish(result TrialResult, started time.Time) TrialResult {
	result.Elapsed = time.Since(started)
	if s.opts.Recorder != nil {
		s.opts.Recorder.ObserveTrial(result.Status.String(), result.Elapsed)
	}
	return result
}

// guard turns a panic inside fn into a solver fault
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &solver.Fault{Backend: "trial", Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return fn()
}

// trialStream packs the trial into a PCG stream id so that every trial gets
// an independent, reproducible random sequence from the same seed
func trialStream(t Trial) uint64 {
	return uint64(t.Men)<<48 | uint64(t.Women)<<32 | uint64(t.Courts)<<16 | uint64(t.Matches)
}

// accommodationsFor drops accommodations for players the trial does not have
func accommodationsFor(accs []scheduler.Accommodation, men, women int) []scheduler.Accommodation {
	var out []scheduler.Accommodation
	for _, acc := range accs {
		limit := men
		if acc.Player.Gender == model.GenderWoman {
			limit = women
		}
		if acc.Player.ID >= 1 && acc.Player.ID <= limit {
			out = append(out, acc)
		}
	}
	return out
}

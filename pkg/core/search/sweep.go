package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rville-tennis/mixer/pkg/core/model"
	"github.com/rville-tennis/mixer/pkg/core/scheduler"
	"github.com/rville-tennis/mixer/pkg/core/solver"
)

// ComboStatus is the outcome of one (men, women) combination
type ComboStatus string

const (
	ComboSolved     ComboStatus = "solved"
	ComboNoSolution ComboStatus = "no-solution"
	ComboSkipped    ComboStatus = "skipped"
	ComboError      ComboStatus = "error"
)

// SweepInput is the grid of player counts to schedule on a fixed number of courts
type SweepInput struct {
	MenRange   Range
	WomenRange Range
	Courts     int
}

// ComboResult is what a sweep found for one combination
type ComboResult struct {
	Men    int
	Women  int
	Courts int
	Status ComboStatus
	// Matches is the matches count of the accepted trial
	Matches  int
	Trials   []TrialResult
	Schedule *model.Schedule
	// Reused is set when the schedule was mirrored from the (women, men) solve
	Reused bool
	Err    error
}

// SweepResult holds one result per combination, men-major in range order
type SweepResult struct {
	Combos  []ComboResult
	Elapsed time.Duration
}

// Solved returns the combinations that produced a schedule
func (r *SweepResult) Solved() []ComboResult {
	var solved []ComboResult
	for _, c := range r.Combos {
		if c.Status == ComboSolved {
			solved = append(solved, c)
		}
	}
	return solved
}

type comboKey struct {
	men   int
	women int
}

// Sweep solves every (men, women) combination of the input.
//
// Combinations more unbalanced than the imbalance threshold are skipped. Each
// remaining combination is solved once in its (fewer, more) orientation and the
// other orientation reuses the gender-swapped schedule. A combination that cannot
// be built or solved never stops the sweep. The error is non-nil only for invalid
// input or a cancelled context.
func (s *Search) Sweep(ctx context.Context, in SweepInput) (*SweepResult, error) {
	if in.Courts < 1 {
		return nil, fmt.Errorf("failed to start sweep: need at least 1 court, got %d", in.Courts)
	}

	started := time.Now()
	men := in.MenRange.Values()
	women := in.WomenRange.Values()

	s.logger.Info("Starting sweep",
		zap.String("men", in.MenRange.String()),
		zap.String("women", in.WomenRange.String()),
		zap.Int("courts", in.Courts),
		zap.Int("parallelism", s.opts.Parallelism))

	keys := s.plan(men, women)
	solved := s.solveKeys(ctx, keys, in.Courts)

	result := &SweepResult{}
	for _, m := range men {
		for _, w := range women {
			combo := s.assemble(m, w, in.Courts, solved)
			result.Combos = append(result.Combos, combo)

			if s.opts.Recorder != nil {
				s.opts.Recorder.ObserveCombo(string(combo.Status))
			}
			if s.opts.Reporter != nil {
				s.opts.Reporter(combo)
			}
		}
	}
	result.Elapsed = time.Since(started)

	s.logger.Info("Sweep finished",
		zap.Int("combinations", len(result.Combos)),
		zap.Int("solved", len(result.Solved())),
		zap.Duration("elapsed", result.Elapsed))

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("sweep interrupted: %w", err)
	}
	return result, nil
}

// plan returns the distinct keys to solve, in first-seen order
func (s *Search) plan(men, women []int) []comboKey {
	var keys []comboKey
	seen := make(map[comboKey]bool)
	for _, m := range men {
		for _, w := range women {
			if s.imbalanced(m, w) {
				continue
			}
			k := s.key(m, w)
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}

// key normalises a combination to (fewer, more). Accommodations name players of
// a specific gender, so with any configured both orientations are solved.
func (s *Search) key(men, women int) comboKey {
	if men > women && len(s.opts.Accommodations) == 0 {
		return comboKey{men: women, women: men}
	}
	return comboKey{men: men, women: women}
}

func (s *Search) imbalanced(men, women int) bool {
	diff := men - women
	if diff < 0 {
		diff = -diff
	}
	return diff > s.threshold
}

func (s *Search) solveKeys(ctx context.Context, keys []comboKey, courts int) map[comboKey]ComboResult {
	results := make(map[comboKey]ComboResult, len(keys))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Parallelism)
	for _, k := range keys {
		g.Go(func() error {
			combo := s.solveCombo(gctx, k.men, k.women, courts)
			mu.Lock()
			results[k] = combo
			mu.Unlock()
			return nil
		})
	}
	// solveCombo reports failures on the result and never returns them
	_ = g.Wait()

	return results
}

// assemble picks the result for (men, women) from the solved keys
func (s *Search) assemble(men, women, courts int, solved map[comboKey]ComboResult) ComboResult {
	if s.imbalanced(men, women) {
		return ComboResult{Men: men, Women: women, Courts: courts, Status: ComboSkipped}
	}

	k := s.key(men, women)
	combo, ok := solved[k]
	if !ok {
		return ComboResult{Men: men, Women: women, Courts: courts, Status: ComboError,
			Err: fmt.Errorf("combination %d men, %d women was not solved", men, women)}
	}
	if k.men == men && k.women == women {
		return combo
	}

	mirrored := combo
	mirrored.Men, mirrored.Women = men, women
	mirrored.Reused = true
	if combo.Schedule != nil {
		swapped := combo.Schedule.Swapped()
		mirrored.Schedule = &swapped
	}
	return mirrored
}

// StartMatches is the first matches count tried for a combination
func (s *Search) StartMatches(men, women int) int {
	larger := max(men, women)
	return max(s.opts.Band.Min*((larger+1)/2), 1)
}

// MaxMatches is the last matches count tried: every court of every slot
func (s *Search) MaxMatches(courts int) int {
	return len(s.opts.Slots) * courts
}

// solveCombo tries increasing matches counts until a trial is accepted
func (s *Search) solveCombo(ctx context.Context, men, women, courts int) ComboResult {
	combo := ComboResult{Men: men, Women: women, Courts: courts, Status: ComboNoSolution}

	first, last := s.StartMatches(men, women), s.MaxMatches(courts)
	s.logger.Info("Solving combination",
		zap.Int("men", men),
		zap.Int("women", women),
		zap.Int("courts", courts),
		zap.Int("start_matches", first),
		zap.Int("max_matches", last))

	for matches := first; matches <= last; matches++ {
		if err := ctx.Err(); err != nil {
			combo.Status = ComboError
			combo.Err = err
			return combo
		}

		s.logger.Debug("Trying matches count", zap.Int("men", men), zap.Int("women", women), zap.Int("matches", matches))
		trial, err := s.Solve(ctx, Trial{Men: men, Women: women, Courts: courts, Matches: matches})
		if err != nil {
			s.logger.Warn("Skipping combination", zap.Int("men", men), zap.Int("women", women), zap.Error(err))
			combo.Status = ComboError
			combo.Err = err
			return combo
		}
		combo.Trials = append(combo.Trials, trial)

		if s.accepts(trial.Status) {
			combo.Status = ComboSolved
			combo.Matches = matches
			combo.Schedule = trial.Schedule
			s.logger.Info("Solution found",
				zap.Int("men", men),
				zap.Int("women", women),
				zap.Int("matches", matches),
				zap.String("status", trial.Status.String()),
				zap.Duration("elapsed", trial.Elapsed))
			return combo
		}
	}

	s.logger.Info("No solution found", zap.Int("men", men), zap.Int("women", women), zap.Int("trials", len(combo.Trials)))
	return combo
}

func (s *Search) accepts(status solver.Status) bool {
	return status == solver.StatusOptimal || (status == solver.StatusFeasible && s.opts.AcceptFeasible)
}

// ComboInput returns the model input of a combination's accepted trial, in the
// combination's own orientation
func (s *Search) ComboInput(c ComboResult) scheduler.BuildInput {
	return s.Input(Trial{Men: c.Men, Women: c.Women, Courts: c.Courts, Matches: c.Matches})
}

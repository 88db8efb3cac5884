package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rville-tennis/mixer/internal/config"
	"github.com/rville-tennis/mixer/pkg/core/scheduler"
	"github.com/rville-tennis/mixer/pkg/core/search"
	"github.com/rville-tennis/mixer/pkg/core/solver"
	"github.com/rville-tennis/mixer/pkg/export/csvexport"
)

// SolveRequest identifies a single trial. Matches of 0 opens every court of every slot.
type SolveRequest struct {
	Men     int
	Women   int
	Courts  int
	Matches int
	// OutputDir overrides the configured output directory
	OutputDir string
	Overrides
}

// SolveReport is the outcome of SolveOne
type SolveReport struct {
	Trial search.TrialResult
	// File is the CSV written for a solved trial, empty otherwise
	File string
}

// SolveOne runs one trial and writes its schedule when the solver finds one
func SolveOne(
	ctx context.Context,
	factory solver.Factory,
	recorder search.Recorder,
	cfg *config.Config,
	logger *zap.Logger,
	req SolveRequest,
) (*SolveReport, error) {
	courts := req.Courts
	if courts == 0 {
		courts = cfg.Courts
	}

	opts, err := SearchOptions(cfg, req.Overrides)
	if err != nil {
		return nil, err
	}
	if recorder != nil {
		opts.Recorder = recorder
	}

	s := search.New(factory, opts, logger)
	trial, err := s.Solve(ctx, search.Trial{Men: req.Men, Women: req.Women, Courts: courts, Matches: req.Matches})
	if err != nil {
		return nil, err
	}

	report := &SolveReport{Trial: trial}
	logger.Info("Trial finished",
		zap.Int("men", req.Men),
		zap.Int("women", req.Women),
		zap.Int("matches", req.Matches),
		zap.String("status", trial.Status.String()),
		zap.Duration("elapsed", trial.Elapsed))

	if trial.Schedule == nil {
		return report, nil
	}

	outDir := req.OutputDir
	if outDir == "" {
		outDir = cfg.OutputDir
	}
	path, err := csvexport.WriteFile(outDir, *trial.Schedule, opts.Mode == scheduler.ModeTownCourt)
	if err != nil {
		return report, fmt.Errorf("failed to write schedule: %w", err)
	}
	report.File = path

	return report, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rville-tennis/mixer/internal/config"
	"github.com/rville-tennis/mixer/pkg/core/scheduler"
	"github.com/rville-tennis/mixer/pkg/core/search"
	"github.com/rville-tennis/mixer/pkg/core/solver"
	"github.com/rville-tennis/mixer/pkg/db"
	"github.com/rville-tennis/mixer/pkg/export/csvexport"
)

// SweepRequest selects the grid of player counts for RunSweep
type SweepRequest struct {
	Men    search.Range
	Women  search.Range
	Courts int
	// OutputDir overrides the configured output directory
	OutputDir string
	Overrides
}

// SweepReport is the outcome of RunSweep
type SweepReport struct {
	SweepID string
	Result  *search.SweepResult
	// Files lists the CSV files written, in sweep order
	Files []string
}

// RunSweep solves every combination of the request, writes a CSV file per solved
// combination and persists the results when store is non-nil.
// recorder may be nil.
func RunSweep(
	ctx context.Context,
	factory solver.Factory,
	store db.SweepStore,
	recorder search.Recorder,
	cfg *config.Config,
	logger *zap.Logger,
	req SweepRequest,
) (*SweepReport, error) {
	courts := req.Courts
	if courts == 0 {
		courts = cfg.Courts
	}
	if courts < 1 {
		return nil, fmt.Errorf("number of courts must be set with --courts or in the config")
	}

	opts, err := SearchOptions(cfg, req.Overrides)
	if err != nil {
		return nil, err
	}
	if recorder != nil {
		opts.Recorder = recorder
	}

	outDir := req.OutputDir
	if outDir == "" {
		outDir = cfg.OutputDir
	}
	townCourt := opts.Mode == scheduler.ModeTownCourt

	report := &SweepReport{SweepID: uuid.NewString()}
	logger.Debug("Starting RunSweep", zap.String("sweep_id", report.SweepID))

	if store != nil {
		sweep := &db.Sweep{
			ID:        report.SweepID,
			StartedAt: time.Now().UTC(),
			Courts:    courts,
			MenMin:    req.Men.Min,
			MenMax:    req.Men.Max,
			WomenMin:  req.Women.Min,
			WomenMax:  req.Women.Max,
			Seed:      req.Seed,
			Mode:      opts.Mode.String(),
		}
		if err := store.InsertSweep(ctx, sweep); err != nil {
			return nil, fmt.Errorf("failed to save sweep: %w", err)
		}
	}

	var outputErr error
	opts.Reporter = func(c search.ComboResult) {
		if c.Status == search.ComboSolved && c.Schedule != nil {
			path, err := csvexport.WriteFile(outDir, *c.Schedule, townCourt)
			if err != nil {
				outputErr = errors.Join(outputErr, err)
			} else {
				report.Files = append(report.Files, path)
				logger.Info("Wrote schedule", zap.String("file", path))
			}
		}

		if store != nil && c.Status != search.ComboSkipped {
			if err := store.InsertComboResult(ctx, comboRecord(report.SweepID, c)); err != nil {
				outputErr = errors.Join(outputErr, fmt.Errorf("failed to save %d men, %d women: %w", c.Men, c.Women, err))
			}
		}
	}

	s := search.New(factory, opts, logger)
	result, err := s.Sweep(ctx, search.SweepInput{MenRange: req.Men, WomenRange: req.Women, Courts: courts})
	report.Result = result
	if err != nil {
		return report, err
	}
	if outputErr != nil {
		return report, fmt.Errorf("failed to write sweep output: %w", outputErr)
	}

	logger.Debug("RunSweep completed", zap.Int("files", len(report.Files)))
	return report, nil
}

func comboRecord(sweepID string, c search.ComboResult) *db.ComboResult {
	record := &db.ComboResult{
		ID:           uuid.NewString(),
		SweepID:      sweepID,
		Men:          c.Men,
		Women:        c.Women,
		Status:       string(c.Status),
		MatchesCount: c.Matches,
		Trials:       len(c.Trials),
		Reused:       c.Reused,
	}
	if c.Schedule != nil {
		record.Rows = db.RowsFromSchedule(record.ID, *c.Schedule)
	}
	return record
}

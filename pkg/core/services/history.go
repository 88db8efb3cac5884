package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rville-tennis/mixer/internal/config"
	"github.com/rville-tennis/mixer/pkg/core/model"
	"github.com/rville-tennis/mixer/pkg/core/scheduler"
	"github.com/rville-tennis/mixer/pkg/core/search"
	"github.com/rville-tennis/mixer/pkg/db"
	"github.com/rville-tennis/mixer/pkg/export/csvexport"
)

// HistoryEntry summarises one stored sweep
type HistoryEntry struct {
	Sweep  db.Sweep
	Counts map[string]int // combo status -> count
	Total  int
}

// ListHistory returns the most recent sweeps with per-status combination counts
func ListHistory(ctx context.Context, store db.HistoryStore, logger *zap.Logger, limit int) ([]HistoryEntry, error) {
	logger.Debug("Starting ListHistory", zap.Int("limit", limit))

	if limit < 1 {
		return nil, fmt.Errorf("limit must be at least 1, got %d", limit)
	}

	sweeps, err := store.ListSweeps(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sweeps: %w", err)
	}

	entries := make([]HistoryEntry, 0, len(sweeps))
	for _, s := range sweeps {
		combos, err := store.GetComboResults(ctx, s.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch results of sweep %s: %w", s.ID, err)
		}

		entry := HistoryEntry{Sweep: s, Counts: make(map[string]int), Total: len(combos)}
		for _, c := range combos {
			entry.Counts[c.Status]++
		}
		entries = append(entries, entry)
	}

	logger.Debug("ListHistory completed", zap.Int("sweeps", len(entries)))
	return entries, nil
}

// ExportSweep rewrites the CSV files of a stored sweep's solved combinations.
// Stored slot labels are resolved against the configured slot sequence, the
// town-court column follows the mode the sweep ran with.
func ExportSweep(ctx context.Context, store db.HistoryStore, cfg *config.Config, logger *zap.Logger, sweepID, outDir string) ([]string, error) {
	sweep, err := store.GetSweep(ctx, sweepID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sweep %s: %w", sweepID, err)
	}

	combos, err := store.GetComboResults(ctx, sweepID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch results of sweep %s: %w", sweepID, err)
	}

	labels, err := cfg.SlotLabels()
	if err != nil {
		return nil, fmt.Errorf("failed to read time slots: %w", err)
	}
	if len(labels) == 0 {
		labels = model.DefaultSlotLabels
	}
	slots := model.NewTimeSlots(labels)
	townCourt := storedTownCourt(sweep, combos)

	if outDir == "" {
		outDir = cfg.OutputDir
	}

	var files []string
	for _, c := range combos {
		if c.Status != string(search.ComboSolved) {
			continue
		}
		schedule, err := db.ScheduleFromRows(c, sweep.Courts, slots)
		if err != nil {
			return files, fmt.Errorf("failed to rebuild %d men, %d women: %w", c.Men, c.Women, err)
		}
		path, err := csvexport.WriteFile(outDir, schedule, townCourt)
		if err != nil {
			return files, err
		}
		files = append(files, path)
	}

	logger.Info("Exported sweep", zap.String("sweep_id", sweepID), zap.Int("files", len(files)))
	return files, nil
}

// storedTownCourt reports whether a sweep ran in town-court mode. Sweeps stored
// without a mode are judged by their rows.
func storedTownCourt(sweep *db.Sweep, combos []db.ComboResult) bool {
	if sweep.Mode != "" {
		return sweep.Mode == scheduler.ModeTownCourt.String()
	}
	for _, c := range combos {
		for _, r := range c.Rows {
			if r.TownCourt {
				return true
			}
		}
	}
	return false
}

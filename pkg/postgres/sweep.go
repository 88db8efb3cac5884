package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rville-tennis/mixer/pkg/db"
)

var _ db.ResultStore = (*DB)(nil)

// InsertSweep inserts a new sweep record
func (d *DB) InsertSweep(ctx context.Context, sweep *db.Sweep) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO sweep (id, started_at, courts, men_min, men_max, women_min, women_max, seed, mode)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, sweep.ID, sweep.StartedAt.UTC(), sweep.Courts, sweep.MenMin, sweep.MenMax, sweep.WomenMin, sweep.WomenMax, int64(sweep.Seed), sweep.Mode)
	if err != nil {
		return fmt.Errorf("failed to insert sweep: %w", err)
	}
	return nil
}

// InsertComboResult inserts a combination result and its schedule rows in one transaction
func (d *DB) InsertComboResult(ctx context.Context, result *db.ComboResult) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO combo_result (id, sweep_id, men, women, status, matches_count, trials, reused)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, result.ID, result.SweepID, result.Men, result.Women, result.Status, result.MatchesCount, result.Trials, result.Reused)
	if err != nil {
		return fmt.Errorf("failed to insert combo result: %w", err)
	}

	if len(result.Rows) > 0 {
		batch := &pgx.Batch{}
		for _, r := range result.Rows {
			batch.Queue(`
				INSERT INTO schedule_row (combo_id, position, slot, court, man_a, man_b, woman_a, woman_b, town_court)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			`, result.ID, r.Position, r.Slot, r.Court, r.ManA, r.ManB, r.WomanA, r.WomanB, r.TownCourt)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert schedule rows: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListSweeps retrieves the most recent sweeps, newest first
func (d *DB) ListSweeps(ctx context.Context, limit int) ([]db.Sweep, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, started_at, courts, men_min, men_max, women_min, women_max, seed, mode
		FROM sweep
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sweeps: %w", err)
	}
	defer rows.Close()

	var sweeps []db.Sweep
	for rows.Next() {
		var s db.Sweep
		var seed int64
		if err := rows.Scan(&s.ID, &s.StartedAt, &s.Courts, &s.MenMin, &s.MenMax, &s.WomenMin, &s.WomenMax, &seed, &s.Mode); err != nil {
			return nil, fmt.Errorf("failed to scan sweep: %w", err)
		}
		s.Seed = uint64(seed)
		sweeps = append(sweeps, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sweeps: %w", err)
	}

	return sweeps, nil
}

// GetSweep retrieves one sweep by id. It returns db.ErrNotFound when there is none.
func (d *DB) GetSweep(ctx context.Context, id string) (*db.Sweep, error) {
	var s db.Sweep
	var seed int64
	err := d.pool.QueryRow(ctx, `
		SELECT id, started_at, courts, men_min, men_max, women_min, women_max, seed, mode
		FROM sweep
		WHERE id = $1
	`, id).Scan(&s.ID, &s.StartedAt, &s.Courts, &s.MenMin, &s.MenMax, &s.WomenMin, &s.WomenMax, &seed, &s.Mode)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sweep: %w", err)
	}
	s.Seed = uint64(seed)
	return &s, nil
}

// GetComboResults retrieves the combination results of a sweep with their schedule rows
func (d *DB) GetComboResults(ctx context.Context, sweepID string) ([]db.ComboResult, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, sweep_id, men, women, status, matches_count, trials, reused
		FROM combo_result
		WHERE sweep_id = $1
		ORDER BY men, women
	`, sweepID)
	if err != nil {
		return nil, fmt.Errorf("failed to query combo results: %w", err)
	}

	var results []db.ComboResult
	index := make(map[string]int)
	for rows.Next() {
		var c db.ComboResult
		if err := rows.Scan(&c.ID, &c.SweepID, &c.Men, &c.Women, &c.Status, &c.MatchesCount, &c.Trials, &c.Reused); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan combo result: %w", err)
		}
		index[c.ID] = len(results)
		results = append(results, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating combo results: %w", err)
	}

	if len(results) == 0 {
		return results, nil
	}

	scheduleRows, err := d.pool.Query(ctx, `
		SELECT r.combo_id, r.position, r.slot, r.court, r.man_a, r.man_b, r.woman_a, r.woman_b, r.town_court
		FROM schedule_row r
		JOIN combo_result c ON c.id = r.combo_id
		WHERE c.sweep_id = $1
		ORDER BY r.combo_id, r.position
	`, sweepID)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule rows: %w", err)
	}
	defer scheduleRows.Close()

	for scheduleRows.Next() {
		var r db.ScheduleRow
		if err := scheduleRows.Scan(&r.ComboID, &r.Position, &r.Slot, &r.Court, &r.ManA, &r.ManB, &r.WomanA, &r.WomanB, &r.TownCourt); err != nil {
			return nil, fmt.Errorf("failed to scan schedule row: %w", err)
		}
		i, ok := index[r.ComboID]
		if !ok {
			continue
		}
		results[i].Rows = append(results[i].Rows, r)
	}

	if err := scheduleRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedule rows: %w", err)
	}

	return results, nil
}

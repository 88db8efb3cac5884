package db

import "context"

// SweepStore defines the operations the sweep service persists results with
type SweepStore interface {
	InsertSweep(ctx context.Context, sweep *Sweep) error
	InsertComboResult(ctx context.Context, result *ComboResult) error
}

// HistoryStore defines the read operations behind the history command
type HistoryStore interface {
	ListSweeps(ctx context.Context, limit int) ([]Sweep, error)
	GetSweep(ctx context.Context, id string) (*Sweep, error)
	GetComboResults(ctx context.Context, sweepID string) ([]ComboResult, error)
}

// ResultStore defines every result store operation.
// postgres.DB implements this interface.
type ResultStore interface {
	SweepStore
	HistoryStore
	Close()
}

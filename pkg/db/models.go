package db

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("not found")

// Sweep represents a stored sweep run
type Sweep struct {
	ID        string
	StartedAt time.Time
	Courts    int
	MenMin    int
	MenMax    int
	WomenMin  int
	WomenMax  int
	Seed      uint64
	// Mode is the scheduling mode name, empty for sweeps stored before it was recorded
	Mode string
}

// ComboResult represents the stored outcome of one (men, women) combination
type ComboResult struct {
	ID           string
	SweepID      string
	Men          int
	Women        int
	Status       string
	MatchesCount int
	Trials       int
	Reused       bool
	Rows         []ScheduleRow
}

// ScheduleRow represents one match of a stored schedule
type ScheduleRow struct {
	ComboID   string
	Position  int
	Slot      string
	Court     int
	ManA      int
	ManB      int
	WomanA    int
	WomanB    int
	TownCourt bool
}

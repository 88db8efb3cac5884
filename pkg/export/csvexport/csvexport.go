// Package csvexport writes finalised schedules as CSV brackets.
package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rville-tennis/mixer/pkg/core/model"
)

// Header is the column layout of an exported schedule
var Header = []string{"Time slot", "Court", "Man A", "Man B", "Woman A", "Woman B"}

// TownCourtColumn is appended to Header when schedules mark the town court
const TownCourtColumn = "Town court"

// FileName returns the file name used for a combination's schedule
func FileName(men, women, courts int) string {
	return fmt.Sprintf("%dmen_%dwomen_%dcourts.csv", men, women, courts)
}

// Write writes the header and one record per schedule row.
// townCourt adds a column holding "yes" for town court matches.
func Write(w io.Writer, s model.Schedule, townCourt bool) error {
	cw := csv.NewWriter(w)

	header := Header
	if townCourt {
		header = append(append([]string{}, Header...), TownCourtColumn)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range s.Rows {
		record := []string{
			r.Slot.Label,
			strconv.Itoa(r.Court),
			strconv.Itoa(r.ManA),
			strconv.Itoa(r.ManB),
			strconv.Itoa(r.WomanA),
			strconv.Itoa(r.WomanB),
		}
		if townCourt {
			record = append(record, townCourtValue(r.TownCourt))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile writes the schedule to dir under FileName and returns the path
func WriteFile(dir string, s model.Schedule, townCourt bool) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, FileName(s.Men, s.Women, s.Courts))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := Write(f, s, townCourt); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}

	return path, nil
}

func townCourtValue(town bool) string {
	if town {
		return "yes"
	}
	return ""
}

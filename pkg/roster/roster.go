// Package roster turns a club roster into a shuffled name list keyed by player label.
package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
)

const (
	lastNameCol  = 0
	firstNameCol = 1
	genderCol    = 4
)

// Entry is one line of the name list, such as M1 = Jane Doe
type Entry struct {
	Label string
	Name  string
}

func (e Entry) String() string {
	return fmt.Sprintf("%s = %s", e.Label, e.Name)
}

// Group holds the names sharing one gender column value
type Group struct {
	Gender string
	Names  []string
}

// Read parses roster rows laid out as Last, First, _, _, Gender.
// Groups keep the order in which each gender first appears.
func Read(r io.Reader) ([]Group, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var groups []Group
	index := make(map[string]int)
	for line := 1; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read roster: %w", err)
		}
		if len(record) <= genderCol {
			return nil, fmt.Errorf("roster line %d: expected at least %d columns, got %d", line, genderCol+1, len(record))
		}

		gender := strings.TrimSpace(record[genderCol])
		if gender == "" {
			return nil, fmt.Errorf("roster line %d: missing gender", line)
		}
		name := strings.TrimSpace(record[firstNameCol] + " " + record[lastNameCol])

		i, ok := index[gender]
		if !ok {
			i = len(groups)
			index[gender] = i
			groups = append(groups, Group{Gender: gender})
		}
		groups[i].Names = append(groups[i].Names, name)
	}

	return groups, nil
}

// Shuffle returns the name list with each group shuffled by rng and numbered from 1
func Shuffle(groups []Group, rng *rand.Rand) []Entry {
	var entries []Entry
	for _, g := range groups {
		names := append([]string{}, g.Names...)
		rng.Shuffle(len(names), func(i, j int) { names[i], names[j] = names[j], names[i] })
		for i, name := range names {
			entries = append(entries, Entry{Label: fmt.Sprintf("%s%d", g.Gender, i+1), Name: name})
		}
	}
	return entries
}

// Write writes one entry per line
func Write(w io.Writer, entries []Entry) error {
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.String()
	}
	if _, err := io.WriteString(w, strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("failed to write name list: %w", err)
	}
	return nil
}

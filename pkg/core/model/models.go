package model

import (
	"fmt"
	"sort"
	"strconv"
)

type Gender string

const (
	GenderMan   Gender = "M"
	GenderWoman Gender = "W"
)

func (g Gender) IsValid() bool {
	return g == GenderMan || g == GenderWoman
}

// Other returns the opposite gender
func (g Gender) Other() Gender {
	if g == GenderMan {
		return GenderWoman
	}
	return GenderMan
}

// Player is identified by gender and a 1-based id within that gender
type Player struct {
	Gender Gender
	ID     int
}

func (p Player) String() string {
	return fmt.Sprintf("%s%d", p.Gender, p.ID)
}

// ParsePlayer reads the String form of a player, e.g. "M3" or "W12"
func ParsePlayer(s string) (Player, error) {
	if len(s) < 2 {
		return Player{}, fmt.Errorf("invalid player %q", s)
	}
	g := Gender(s[:1])
	if !g.IsValid() {
		return Player{}, fmt.Errorf("invalid player %q: gender must be M or W", s)
	}
	id, err := strconv.Atoi(s[1:])
	if err != nil || id < 1 {
		return Player{}, fmt.Errorf("invalid player %q: id must be a positive integer", s)
	}
	return Player{Gender: g, ID: id}, nil
}

// Players returns players 1..count of the given gender
func Players(gender Gender, count int) []Player {
	players := make([]Player, 0, max(count, 0))
	for id := 1; id <= count; id++ {
		players = append(players, Player{Gender: gender, ID: id})
	}
	return players
}

// TimeSlot is one element of the ordered slot sequence.
// Index is the position in the full sequence and drives streak and lateness rules.
type TimeSlot struct {
	Index int
	Label string
}

func (s TimeSlot) String() string {
	return s.Label
}

// DefaultSlotLabels are the theoretical time slots of a tournament day
var DefaultSlotLabels = []string{"9am", "10am", "11am", "12pm", "1pm", "2pm", "3pm", "4pm", "5pm", "6pm"}

// NewTimeSlots builds an ordered slot sequence from labels
func NewTimeSlots(labels []string) []TimeSlot {
	slots := make([]TimeSlot, len(labels))
	for i, label := range labels {
		slots[i] = TimeSlot{Index: i, Label: label}
	}
	return slots
}

// Pair is two distinct same-gender player ids stored as (Low, High) so that
// equality and hashing do not depend on construction order
type Pair struct {
	Low  int
	High int
}

// NewPair canonicalises two ids into a Pair. The ids must differ.
func NewPair(a, b int) (Pair, error) {
	if a == b {
		return Pair{}, fmt.Errorf("pair members must differ, got %d twice", a)
	}
	if a > b {
		a, b = b, a
	}
	return Pair{Low: a, High: b}, nil
}

// Contains reports whether id is one of the pair's members
func (p Pair) Contains(id int) bool {
	return p.Low == id || p.High == id
}

// Pairs returns every pair of ids in 1..count in lexicographic order
func Pairs(count int) []Pair {
	if count < 2 {
		return nil
	}
	pairs := make([]Pair, 0, count*(count-1)/2)
	for a := 1; a <= count; a++ {
		for b := a + 1; b <= count; b++ {
			pairs = append(pairs, Pair{Low: a, High: b})
		}
	}
	return pairs
}

// PlayerPair is an unordered pair of two distinct players of any gender
type PlayerPair struct {
	A Player
	B Player
}

// NewPlayerPair canonicalises two players, men before women and lower ids first
func NewPlayerPair(a, b Player) PlayerPair {
	if playerLess(b, a) {
		a, b = b, a
	}
	return PlayerPair{A: a, B: b}
}

func playerLess(a, b Player) bool {
	if a.Gender != b.Gender {
		return a.Gender == GenderMan
	}
	return a.ID < b.ID
}

// Assignment is one candidate match: a men's pair and a women's pair in a time slot.
// Court is set only when courts are modelled explicitly; TownCourt only in town-court mode.
type Assignment struct {
	Slot      TimeSlot
	Men       Pair
	Women     Pair
	Court     int
	TownCourt bool
}

// HasPlayer reports whether the player takes part in the assignment
func (a Assignment) HasPlayer(p Player) bool {
	if p.Gender == GenderMan {
		return a.Men.Contains(p.ID)
	}
	return a.Women.Contains(p.ID)
}

// PlayersInMatch returns the four players of the assignment, men first
func (a Assignment) PlayersInMatch() [4]Player {
	return [4]Player{
		{Gender: GenderMan, ID: a.Men.Low},
		{Gender: GenderMan, ID: a.Men.High},
		{Gender: GenderWoman, ID: a.Women.Low},
		{Gender: GenderWoman, ID: a.Women.High},
	}
}

// PlayerPairs returns the six unordered player pairs that meet in the assignment
func (a Assignment) PlayerPairs() [6]PlayerPair {
	ps := a.PlayersInMatch()
	var out [6]PlayerPair
	n := 0
	for i := 0; i < len(ps); i++ {
		for j := i + 1; j < len(ps); j++ {
			out[n] = NewPlayerPair(ps[i], ps[j])
			n++
		}
	}
	return out
}

func (a Assignment) String() string {
	s := fmt.Sprintf("%s M(%d,%d) W(%d,%d)", a.Slot.Label, a.Men.Low, a.Men.High, a.Women.Low, a.Women.High)
	if a.Court > 0 {
		s += fmt.Sprintf(" court=%d", a.Court)
	}
	if a.TownCourt {
		s += " town"
	}
	return s
}

// Row is one finalised match of a schedule
type Row struct {
	Slot      TimeSlot
	Court     int
	ManA      int
	ManB      int
	WomanA    int
	WomanB    int
	TownCourt bool
}

// Players returns the four players of the row, men first
func (r Row) Players() [4]Player {
	return [4]Player{
		{Gender: GenderMan, ID: r.ManA},
		{Gender: GenderMan, ID: r.ManB},
		{Gender: GenderWoman, ID: r.WomanA},
		{Gender: GenderWoman, ID: r.WomanB},
	}
}

// Schedule is the ordered output of a solved trial
type Schedule struct {
	Men    int
	Women  int
	Courts int
	Rows   []Row
}

// Swapped returns the schedule with genders exchanged, so a schedule for
// (m men, w women) serves (w men, m women)
func (s Schedule) Swapped() Schedule {
	rows := make([]Row, len(s.Rows))
	for i, r := range s.Rows {
		rows[i] = Row{
			Slot:      r.Slot,
			Court:     r.Court,
			ManA:      r.WomanA,
			ManB:      r.WomanB,
			WomanA:    r.ManA,
			WomanB:    r.ManB,
			TownCourt: r.TownCourt,
		}
	}
	return Schedule{Men: s.Women, Women: s.Men, Courts: s.Courts, Rows: rows}
}

// MatchCounts returns how many rows each player appears in
func (s Schedule) MatchCounts() map[Player]int {
	counts := make(map[Player]int)
	for _, r := range s.Rows {
		for _, p := range r.Players() {
			counts[p]++
		}
	}
	return counts
}

// SlotsUsed returns the distinct slots of the schedule in slot order
func (s Schedule) SlotsUsed() []TimeSlot {
	seen := make(map[int]TimeSlot)
	for _, r := range s.Rows {
		seen[r.Slot.Index] = r.Slot
	}
	slots := make([]TimeSlot, 0, len(seen))
	for _, slot := range seen {
		slots = append(slots, slot)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Index < slots[j].Index })
	return slots
}

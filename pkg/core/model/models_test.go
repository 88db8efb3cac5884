package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPair_Canonical(t *testing.T) {
	p1, err := NewPair(3, 1)
	require.NoError(t, err)
	p2, err := NewPair(1, 3)
	require.NoError(t, err)

	assert.Equal(t, p1, p2)
	assert.Equal(t, Pair{Low: 1, High: 3}, p1)
}

func TestNewPair_RejectsSameID(t *testing.T) {
	_, err := NewPair(2, 2)
	assert.Error(t, err)
}

func TestPairs(t *testing.T) {
	assert.Empty(t, Pairs(1))
	assert.Equal(t, []Pair{{1, 2}, {1, 3}, {2, 3}}, Pairs(3))
	assert.Len(t, Pairs(6), 15)
}

func TestNewPlayerPair_OrderIndependent(t *testing.T) {
	m1 := Player{Gender: GenderMan, ID: 1}
	w2 := Player{Gender: GenderWoman, ID: 2}

	assert.Equal(t, NewPlayerPair(m1, w2), NewPlayerPair(w2, m1))
	assert.Equal(t, m1, NewPlayerPair(w2, m1).A)
}

func TestAssignment_PlayerPairs(t *testing.T) {
	a := Assignment{Men: Pair{1, 2}, Women: Pair{3, 4}}
	pairs := a.PlayerPairs()

	seen := make(map[PlayerPair]bool)
	for _, p := range pairs {
		seen[p] = true
	}
	assert.Len(t, seen, 6)
	assert.True(t, seen[NewPlayerPair(Player{GenderMan, 1}, Player{GenderMan, 2})])
	assert.True(t, seen[NewPlayerPair(Player{GenderWoman, 3}, Player{GenderWoman, 4})])
	assert.True(t, seen[NewPlayerPair(Player{GenderMan, 2}, Player{GenderWoman, 3})])
}

func TestAssignment_UsableAsMapKey(t *testing.T) {
	slots := NewTimeSlots([]string{"9am"})
	a := Assignment{Slot: slots[0], Men: Pair{1, 2}, Women: Pair{1, 2}}
	b := Assignment{Slot: slots[0], Men: Pair{1, 2}, Women: Pair{1, 2}}

	m := map[Assignment]int{a: 1}
	m[b]++
	assert.Len(t, m, 1)
	assert.Equal(t, 2, m[a])
}

func TestAssignment_HasPlayer(t *testing.T) {
	a := Assignment{Men: Pair{1, 2}, Women: Pair{3, 4}}

	assert.True(t, a.HasPlayer(Player{GenderMan, 2}))
	assert.False(t, a.HasPlayer(Player{GenderMan, 3}))
	assert.True(t, a.HasPlayer(Player{GenderWoman, 3}))
	assert.False(t, a.HasPlayer(Player{GenderWoman, 1}))
}

func TestSchedule_Swapped(t *testing.T) {
	slots := NewTimeSlots([]string{"9am"})
	s := Schedule{
		Men:    7,
		Women:  4,
		Courts: 2,
		Rows:   []Row{{Slot: slots[0], Court: 1, ManA: 5, ManB: 7, WomanA: 1, WomanB: 4}},
	}

	swapped := s.Swapped()
	assert.Equal(t, 4, swapped.Men)
	assert.Equal(t, 7, swapped.Women)
	assert.Equal(t, Row{Slot: slots[0], Court: 1, ManA: 1, ManB: 4, WomanA: 5, WomanB: 7}, swapped.Rows[0])
	assert.Equal(t, s, swapped.Swapped())
}

func TestSchedule_MatchCountsAndSlots(t *testing.T) {
	slots := NewTimeSlots([]string{"9am", "10am", "11am"})
	s := Schedule{Rows: []Row{
		{Slot: slots[2], ManA: 1, ManB: 2, WomanA: 1, WomanB: 2},
		{Slot: slots[0], ManA: 1, ManB: 3, WomanA: 2, WomanB: 3},
	}}

	counts := s.MatchCounts()
	assert.Equal(t, 2, counts[Player{GenderMan, 1}])
	assert.Equal(t, 1, counts[Player{GenderWoman, 3}])
	assert.Equal(t, []TimeSlot{slots[0], slots[2]}, s.SlotsUsed())
}

func TestParsePlayer(t *testing.T) {
	p, err := ParsePlayer("M3")
	require.NoError(t, err)
	assert.Equal(t, Player{Gender: GenderMan, ID: 3}, p)

	p, err = ParsePlayer("W12")
	require.NoError(t, err)
	assert.Equal(t, "W12", p.String())

	for _, bad := range []string{"", "M", "X1", "M0", "W-2", "Mx", "m1"} {
		_, err := ParsePlayer(bad)
		assert.Error(t, err, bad)
	}
}

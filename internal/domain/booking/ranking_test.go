package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slot(court string, startHour int, available bool) Slot {
	return Slot{
		Resource:  court,
		Start:     Clock(startHour, 0),
		End:       Clock(startHour+1, 0),
		Available: available,
	}
}

func morningPrefs(courts ...string) Preferences {
	return Preferences{
		Window:           Window{Start: Clock(8, 0), End: Clock(11, 0)},
		ResourcePriority: courts,
		SlotDuration:     time.Hour,
	}
}

func courts(slots []Slot) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.Resource
	}
	return out
}

func TestRank_PriorityOrderInsideWindow(t *testing.T) {
	slots := []Slot{slot("CourtA", 9, true), slot("CourtB", 8, true)}

	got, fallback := RankDetailed(slots, morningPrefs("CourtB", "CourtA"))

	assert.False(t, fallback)
	assert.Equal(t, []string{"CourtB", "CourtA"}, courts(got))
}

func TestRank_FallsBackToAllAvailable(t *testing.T) {
	slots := []Slot{slot("CourtA", 7, true)}

	got, fallback := RankDetailed(slots, morningPrefs())

	assert.True(t, fallback)
	require.Len(t, got, 1)
	assert.Equal(t, "CourtA", got[0].Resource)
}

func TestRank_WindowMatchesBeatFallback(t *testing.T) {
	slots := []Slot{
		slot("CourtA", 6, true),
		slot("CourtB", 9, true),
		slot("CourtC", 20, true),
	}

	got, fallback := RankDetailed(slots, morningPrefs("CourtA", "CourtC"))

	assert.False(t, fallback)
	assert.Equal(t, []string{"CourtB"}, courts(got))
}

func TestRank_NeverReturnsUnavailable(t *testing.T) {
	cases := map[string][]Slot{
		"mixed in window": {slot("A", 8, false), slot("B", 9, true), slot("C", 10, false)},
		"only outside":    {slot("A", 6, false), slot("B", 18, true)},
		"none available":  {slot("A", 8, false), slot("B", 9, false)},
	}
	for name, slots := range cases {
		t.Run(name, func(t *testing.T) {
			for _, s := range Rank(slots, morningPrefs("A", "B", "C")) {
				assert.True(t, s.Available, "returned unavailable slot %s", s)
			}
		})
	}
}

func TestRank_NoneAvailableIsEmpty(t *testing.T) {
	got, fallback := RankDetailed([]Slot{slot("A", 8, false)}, morningPrefs())
	assert.Empty(t, got)
	assert.False(t, fallback)

	assert.Empty(t, Rank(nil, morningPrefs()))
}

func TestRank_StableForEqualPriority(t *testing.T) {
	a1 := slot("CourtA", 10, true)
	x := slot("Unlisted", 8, true)
	a2 := slot("CourtA", 9, true)
	y := slot("Other", 9, true)
	b := slot("CourtB", 11, true)

	got := Rank([]Slot{a1, x, a2, y, b}, morningPrefs("CourtB", "CourtA"))

	assert.Equal(t, []Slot{b, a1, a2, x, y}, got)
}

func TestRank_EmptyPriorityKeepsScanOrder(t *testing.T) {
	in := []Slot{slot("C", 10, true), slot("A", 8, true), slot("B", 9, true)}
	assert.Equal(t, in, Rank(in, morningPrefs()))
}

func TestRank_WindowBoundsInclusive(t *testing.T) {
	in := []Slot{slot("A", 8, true), slot("B", 11, true), slot("C", 12, true)}
	assert.Equal(t, []string{"A", "B"}, courts(Rank(in, morningPrefs())))
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	in := []Slot{slot("A", 9, true), slot("B", 8, true)}
	snapshot := append([]Slot(nil), in...)

	_ = Rank(in, morningPrefs("B", "A"))

	assert.Equal(t, snapshot, in)
}

func TestRank_Deterministic(t *testing.T) {
	in := []Slot{slot("B", 9, true), slot("A", 9, true), slot("C", 8, true), slot("A", 10, true)}
	prefs := morningPrefs("A", "B")
	first := Rank(in, prefs)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Rank(in, prefs))
	}
}

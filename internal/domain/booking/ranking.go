package booking

import "sort"

// Rank orders the slots worth trying, best first.
//
// Unavailable slots are dropped. Slots starting inside the preferred window
// are kept; if none do, every available slot is kept instead. The result is
// stably sorted by court priority, with unlisted courts after listed ones in
// scan order. The input slice is not modified.
func Rank(slots []Slot, prefs Preferences) []Slot {
	out, _ := RankDetailed(slots, prefs)
	return out
}

// RankDetailed is Rank that also reports whether the window filter came up
// empty and the all-available fallback was used.
func RankDetailed(slots []Slot, prefs Preferences) (ranked []Slot, fallback bool) {
	available := make([]Slot, 0, len(slots))
	for _, s := range slots {
		if s.Available {
			available = append(available, s)
		}
	}

	ranked = make([]Slot, 0, len(available))
	for _, s := range available {
		if prefs.Window.Contains(s.Start) {
			ranked = append(ranked, s)
		}
	}
	if len(ranked) == 0 && len(available) > 0 {
		ranked = available
		fallback = true
	}

	priority := make(map[string]int, len(prefs.ResourcePriority))
	for i, r := range prefs.ResourcePriority {
		if _, dup := priority[r]; !dup {
			priority[r] = i
		}
	}
	unlisted := len(prefs.ResourcePriority)
	rankOf := func(s Slot) int {
		if i, ok := priority[s.Resource]; ok {
			return i
		}
		return unlisted
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return rankOf(ranked[i]) < rankOf(ranked[j])
	})
	return ranked, fallback
}

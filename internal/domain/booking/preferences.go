package booking

import (
	"fmt"
	"strings"
	"time"
)

// Preferences is the read-only snapshot a booking run works from.
type Preferences struct {
	// Window bounds acceptable slot start times, both ends inclusive.
	Window Window

	// ResourcePriority lists court names, most preferred first.
	// Empty means every court ranks the same.
	ResourcePriority []string

	Weekdays     []time.Weekday
	AdvanceDays  int
	SlotDuration time.Duration
}

func (p Preferences) Validate() error {
	if p.Window.Start > p.Window.End {
		return fmt.Errorf("preferred window start %s is after end %s", p.Window.Start, p.Window.End)
	}
	if p.AdvanceDays < 0 {
		return fmt.Errorf("advance booking days must be >= 0 (got %d)", p.AdvanceDays)
	}
	if p.SlotDuration < time.Hour || p.SlotDuration > 2*time.Hour {
		return fmt.Errorf("slot duration must be between 1h and 2h (got %s)", p.SlotDuration)
	}
	return nil
}

// PrefersWeekday reports whether d is one of the preferred weekdays.
func (p Preferences) PrefersWeekday(d time.Weekday) bool {
	for _, w := range p.Weekdays {
		if w == d {
			return true
		}
	}
	return false
}

// ParseWeekday accepts full English day names and three letter
// abbreviations in any case.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

func ParseWeekdays(in []string) ([]time.Weekday, error) {
	out := make([]time.Weekday, 0, len(in))
	seen := map[time.Weekday]bool{}
	for _, s := range in {
		d, err := ParseWeekday(s)
		if err != nil {
			return nil, err
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out, nil
}

package booking

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ClockTime is a wall-clock time of day in minutes after midnight.
type ClockTime int

// Clock builds a ClockTime from hour and minute.
func Clock(hour, minute int) ClockTime { return ClockTime(hour*60 + minute) }

// ParseClock accepts "HH:MM" or "HH:MM:SS". Seconds are dropped.
func ParseClock(s string) (ClockTime, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q (want HH:MM)", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	if len(parts) == 3 {
		if sec, err := strconv.Atoi(parts[2]); err != nil || sec < 0 || sec > 59 {
			return 0, fmt.Errorf("invalid second in %q", s)
		}
	}
	return Clock(h, m), nil
}

func (c ClockTime) Hour() int   { return int(c) / 60 }
func (c ClockTime) Minute() int { return int(c) % 60 }

// Add returns c shifted by d, truncated to whole minutes.
func (c ClockTime) Add(d time.Duration) ClockTime { return c + ClockTime(d/time.Minute) }

func (c ClockTime) String() string { return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute()) }

// Window is an inclusive range of start times.
type Window struct {
	Start ClockTime
	End   ClockTime
}

func (w Window) Contains(t ClockTime) bool { return t >= w.Start && t <= w.End }

func (w Window) String() string { return w.Start.String() + "-" + w.End.String() }

// Slot is one bookable interval scraped from the calendar page.
// Slots are rebuilt on every scan; the only change allowed after
// creation is stamping the resolved calendar date.
type Slot struct {
	Resource  string
	Date      time.Time
	Start     ClockTime
	End       ClockTime
	Available bool

	// Locator is an opaque handle the booking page uses to click this slot.
	Locator string
}

// WithDate returns a copy of s carrying the given calendar date.
func (s Slot) WithDate(d time.Time) Slot {
	s.Date = DateOf(d)
	return s
}

func (s Slot) Validate() error {
	if s.Start >= s.End {
		return fmt.Errorf("slot %s: start %s not before end %s", s.Resource, s.Start, s.End)
	}
	return nil
}

func (s Slot) String() string {
	date := "unknown date"
	if !s.Date.IsZero() {
		date = s.Date.Format(DateLayout)
	}
	return fmt.Sprintf("%s %s %s-%s", s.Resource, date, s.Start, s.End)
}

// DateLayout is the calendar date format used in flags, configs and logs.
const DateLayout = "2006-01-02"

// DateOf truncates t to midnight in t's own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween counts calendar days from a to b (negative if b is earlier).
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// ParseDate reads a YYYY-MM-DD date as midnight in loc (UTC when nil).
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want %s)", s, DateLayout)
	}
	return t, nil
}

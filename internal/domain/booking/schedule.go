package booking

import "time"

// TargetDate is the calendar date whose slots open for reservation today.
func TargetDate(today time.Time, prefs Preferences) time.Time {
	return DateOf(today).AddDate(0, 0, prefs.AdvanceDays)
}

// ShouldBookToday reports whether today's run should try to book: the
// target date has to fall on a preferred weekday.
func ShouldBookToday(today time.Time, prefs Preferences) bool {
	return prefs.PrefersWeekday(TargetDate(today, prefs).Weekday())
}

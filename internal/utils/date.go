package utils

import "time"

// DayLayout is the wire and storage format for calendar days.
const DayLayout = "2006-01-02"

// DayOf truncates t to its calendar day at UTC midnight. All day-granularity
// comparisons and iteration in the planner go through UTC midnights so that
// stepping a day is always exactly one calendar day, regardless of DST.
func DayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDay(s string) (time.Time, error) {
	return time.Parse(DayLayout, s)
}

// FormatDay renders t's UTC calendar day as YYYY-MM-DD.
func FormatDay(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

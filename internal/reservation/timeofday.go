package reservation

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// ParseTimeOfDay parses an "HH:MM" value into minutes since midnight.
func ParseTimeOfDay(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatTimeOfDay renders minutes since midnight as "HH:MM".
func FormatTimeOfDay(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseDate parses a "YYYY-MM-DD" calendar date in UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return d, nil
}

// dateOnly truncates a timestamp to its calendar date in UTC.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WindowsOverlap reports whether two same-day "HH:MM" windows share at
// least one instant. Boundaries are inclusive: a window ending exactly
// when another begins counts as a conflict. The exclusive test would be
// start < otherEnd && otherStart < end; the inclusive form matches the
// four BETWEEN comparisons the availability query runs in SQL and is kept
// for compatible booking behavior.
func WindowsOverlap(start, end, otherStart, otherEnd string) bool {
	// "HH:MM" strings order lexicographically the same as chronologically.
	return start <= otherEnd && otherStart <= end
}

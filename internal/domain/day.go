package domain

import "time"

// DayLayout is the civil-day format used everywhere dates cross a boundary.
const DayLayout = "2006-01-02"

// ParseDay parses a civil day string. ok is false for malformed input;
// callers treat a failed parse as an absent date, never as an error.
func ParseDay(s string) (time.Time, bool) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatDay renders t as a civil day string.
func FormatDay(t time.Time) string {
	return t.Format(DayLayout)
}

// AddDays returns day shifted by n calendar days, or "" if day is malformed.
func AddDays(day string, n int) string {
	t, ok := ParseDay(day)
	if !ok {
		return ""
	}
	return FormatDay(t.AddDate(0, 0, n))
}

// DaysBetween returns b - a in whole days. ok is false when either side is
// malformed.
func DaysBetween(a, b string) (int, bool) {
	ta, okA := ParseDay(a)
	tb, okB := ParseDay(b)
	if !okA || !okB {
		return 0, false
	}
	return int(tb.Sub(ta).Hours() / 24), true
}

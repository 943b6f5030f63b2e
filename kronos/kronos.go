// Package kronos are time utilities.
package kronos

import "time"

// Unit is the granularity that times are truncated to before comparing.
type Unit string

const (
	Instant Unit = ""
	Second  Unit = "second"
	Minute  Unit = "minute"
	Hour    Unit = "hour"
	Day     Unit = "day"
)

// Truncate truncates t to the start of the unit it is in,
// in t's location. Instant returns t unchanged.
func Truncate(t time.Time, u Unit) time.Time {
	switch u {
	case Second:
		return t.Truncate(time.Second)
	case Minute:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
	case Hour:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	case Day:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
	return t
}

// Compare returns -1 if t is before u, 1 if t is after u, or 0 if they are the same,
// after truncating both to unit. u is moved into t's location first
// so that day boundaries line up.
func Compare(t, u time.Time, unit Unit) int {
	tt := Truncate(t, unit)
	ut := Truncate(u.In(t.Location()), unit)
	if tt.Before(ut) {
		return -1
	}
	if tt.After(ut) {
		return 1
	}
	return 0
}

// YearsBetween returns the number of whole years from born until on,
// counting a year only once its anniversary has been reached.
// Negative if on is before born.
func YearsBetween(born, on time.Time) int {
	years := on.Year() - born.Year()
	if on.Month() < born.Month() || (on.Month() == born.Month() && on.Day() < born.Day()) {
		years--
	}
	return years
}

// ParseDate parses s as a calendar date (2006-01-02),
// falling back to RFC3339 for full timestamps.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(time.DateOnly, s, loc); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

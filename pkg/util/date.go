package util

import (
	"fmt"
	"time"
)

// DayKey returns the calendar-date marker for daily digests, UTC.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// WeekKey returns the ISO year-week marker for weekly digests, UTC.
func WeekKey(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// ParseClock parses "HH:MM" into minutes since midnight. Returns (m, true)
// on success.
func ParseClock(s string) (int, bool) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// InQuietWindow reports whether the UTC time-of-day of now falls inside the
// [start, end) window. start > end means the window wraps past midnight.
// Malformed bounds disable the window (fail-open: the alert is delivered).
func InQuietWindow(now time.Time, start, end string) bool {
	s, ok := ParseClock(start)
	if !ok {
		return false
	}
	e, ok := ParseClock(end)
	if !ok {
		return false
	}
	cur := now.UTC().Hour()*60 + now.UTC().Minute()
	if s > e { // crosses midnight
		return cur >= s || cur < e
	}
	return cur >= s && cur < e
}

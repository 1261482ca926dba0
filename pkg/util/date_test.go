package util

import (
	"testing"
	"time"
)

func TestDayKey(t *testing.T) {
	at := time.Date(2024, 10, 10, 23, 59, 0, 0, time.UTC)
	if got := DayKey(at); got != "2024-10-10" {
		t.Fatalf("unexpected day key %q", got)
	}
}

func TestWeekKey(t *testing.T) {
	// 2024-01-01 is a Monday, ISO week 1.
	at := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	if got := WeekKey(at); got != "2024-W01" {
		t.Fatalf("unexpected week key %q", got)
	}
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"00:00", 0, true},
		{"23:59", 23*60 + 59, true},
		{"7:30", 7*60 + 30, true},
		{"24:00", 0, false},
		{"garbage", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseClock(c.in)
		if ok != c.ok || got != c.want {
			t.Fatalf("ParseClock(%q) = (%d, %v), want (%d, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestInQuietWindow(t *testing.T) {
	at := func(h, m int) time.Time {
		return time.Date(2024, 5, 1, h, m, 0, 0, time.UTC)
	}
	cases := []struct {
		name       string
		now        time.Time
		start, end string
		want       bool
	}{
		{"inside plain window", at(12, 0), "11:00", "13:00", true},
		{"outside plain window", at(14, 0), "11:00", "13:00", false},
		{"end is exclusive", at(13, 0), "11:00", "13:00", false},
		{"wrapping before midnight", at(23, 30), "22:00", "06:00", true},
		{"wrapping after midnight", at(5, 59), "22:00", "06:00", true},
		{"wrapping outside", at(12, 0), "22:00", "06:00", false},
		{"malformed start disables", at(23, 30), "bad", "06:00", false},
	}
	for _, c := range cases {
		if got := InQuietWindow(c.now, c.start, c.end); got != c.want {
			t.Fatalf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
}

package utils

import (
	"fmt"
	"strings"
	"time"
)

// Date and clock formats accepted on the wire.  Parsing is strict:
// "2024-5-1" or "9:00" are rejected.
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// ParseDate validates a YYYY-MM-DD date string and returns it
// normalized.  The date is returned as a string because reservations
// store DATE columns and never need time arithmetic on the day.
func ParseDate(s string) (string, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t.Format(DateLayout), nil
}

// ParseClock validates an HH:MM clock string and returns it in
// normalized HH:MM form.  time.Parse alone accepts single-digit hours,
// so the round-trip must reproduce the input exactly.
func ParseClock(s string) (string, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(ClockLayout, s)
	if err != nil || t.Format(ClockLayout) != s {
		return "", fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	return s, nil
}

// NormalizeClock turns a stored TIME value ("09:00" or "09:00:00")
// into HH:MM for comparison and display.
func NormalizeClock(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 5 {
		return s[:5]
	}
	return s
}

// Overlaps reports whether the half-open intervals [aStart,aEnd) and
// [bStart,bEnd) intersect.  Clock strings compare lexicographically in
// HH:MM form, so no time parsing is needed here.  Adjacent intervals
// (aEnd == bStart) do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd string) bool {
	return NormalizeClock(aStart) < NormalizeClock(bEnd) &&
		NormalizeClock(aEnd) > NormalizeClock(bStart)
}

// SlotHours returns the duration of [start,end) in fractional hours,
// or 0 when the strings do not parse.
func SlotHours(start, end string) float64 {
	s, err1 := time.Parse(ClockLayout, NormalizeClock(start))
	e, err2 := time.Parse(ClockLayout, NormalizeClock(end))
	if err1 != nil || err2 != nil || !e.After(s) {
		return 0
	}
	return e.Sub(s).Hours()
}

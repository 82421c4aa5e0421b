package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// AlarmClock is a daily wall-clock time in the local zone.
type AlarmClock struct {
	Hour   int
	Minute int
}

// ParseAlarmClock parses "HH:MM" (24h). A single-digit hour is accepted and
// normalized by String.
func ParseAlarmClock(raw string) (AlarmClock, error) {
	value := strings.TrimSpace(raw)
	hh, mm, ok := strings.Cut(value, ":")
	if !ok || len(hh) < 1 || len(hh) > 2 || len(mm) != 2 || !digits(hh) || !digits(mm) {
		return AlarmClock{}, invalidClock(raw, "expected HH:MM")
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return AlarmClock{}, invalidClock(raw, "hour must be 00-23")
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return AlarmClock{}, invalidClock(raw, "minute must be 00-59")
	}
	return AlarmClock{Hour: hour, Minute: minute}, nil
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func invalidClock(raw, reason string) error {
	return &ValidationError{Field: "alarmTime", Reason: fmt.Sprintf("%q: %s", raw, reason), Err: ErrInvalidAlarmTime}
}

func (c AlarmClock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Matches compares against t's hour and minute in t's own location.
func (c AlarmClock) Matches(t time.Time) bool {
	return t.Hour() == c.Hour && t.Minute() == c.Minute
}

// NextAfter returns the first occurrence of c strictly after from.
func (c AlarmClock) NextAfter(from time.Time) time.Time {
	y, m, d := from.Date()
	next := time.Date(y, m, d, c.Hour, c.Minute, 0, 0, from.Location())
	if !next.After(from) {
		next = time.Date(y, m, d+1, c.Hour, c.Minute, 0, 0, from.Location())
	}
	return next
}

// ClockString formats t as "HH:MM" in its own location.
func ClockString(t time.Time) string {
	return t.Format("15:04")
}

// DayKey identifies the local calendar date of t.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// NextMidnight returns the start of the day after t in t's location.
func NextMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}

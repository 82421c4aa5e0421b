package model

import (
	"errors"
	"testing"
	"time"
)

func TestParseAlarmClock(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"09:00", "09:00"},
		{"9:00", "09:00"},
		{" 23:59 ", "23:59"},
		{"00:00", "00:00"},
	}
	for _, tc := range cases {
		got, err := ParseAlarmClock(tc.in)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.in, err)
		}
		if got.String() != tc.want {
			t.Fatalf("parse %q = %s, want %s", tc.in, got, tc.want)
		}
	}

	for _, bad := range []string{"", "24:00", "12:60", "12:5", "ab:cd", "+9:00", "1200", "12:00:00"} {
		if _, err := ParseAlarmClock(bad); !errors.Is(err, ErrInvalidAlarmTime) {
			t.Fatalf("expected ErrInvalidAlarmTime for %q, got %v", bad, err)
		}
	}
}

func TestAlarmClockMatchesLocalWallClock(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	clock := AlarmClock{Hour: 9, Minute: 0}
	if !clock.Matches(time.Date(2026, 2, 9, 9, 0, 59, 0, loc)) {
		t.Fatal("expected match within the minute")
	}
	if clock.Matches(time.Date(2026, 2, 9, 9, 1, 0, 0, loc)) {
		t.Fatal("unexpected match at 09:01")
	}
	if ClockString(time.Date(2026, 2, 9, 7, 5, 0, 0, loc)) != "07:05" {
		t.Fatal("ClockString must zero-pad")
	}
}

func TestAlarmClockNextAfter(t *testing.T) {
	clock := AlarmClock{Hour: 9, Minute: 0}
	before := time.Date(2026, 2, 9, 8, 0, 0, 0, time.UTC)
	if got := clock.NextAfter(before); !got.Equal(time.Date(2026, 2, 9, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected next: %v", got)
	}
	at := time.Date(2026, 2, 9, 9, 0, 0, 0, time.UTC)
	if got := clock.NextAfter(at); !got.Equal(time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected next day, got %v", got)
	}
}

func TestNextMidnightAndDayKey(t *testing.T) {
	now := time.Date(2026, 12, 31, 23, 15, 0, 0, time.UTC)
	if got := NextMidnight(now); !got.Equal(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected midnight: %v", got)
	}
	if DayKey(now) != "2026-12-31" {
		t.Fatalf("unexpected day key: %s", DayKey(now))
	}
}

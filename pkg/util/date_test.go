package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestDateUTC(t *testing.T) {
	loc := time.FixedZone("AEST", 10*3600)
	in := time.Date(2024, 10, 11, 5, 30, 0, 0, loc) // 2024-10-10 19:30 UTC
	got := DateUTC(in)
	want := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("DateUTC = %v, want %v", got, want)
	}
}

func TestSameUTCDate(t *testing.T) {
	a := time.Date(2024, 10, 10, 23, 59, 0, 0, time.UTC)
	b := time.Date(2024, 10, 10, 0, 1, 0, 0, time.UTC)
	c := time.Date(2024, 10, 11, 0, 1, 0, 0, time.UTC)
	if !SameUTCDate(a, b) {
		t.Fatalf("expected same day")
	}
	if SameUTCDate(a, c) {
		t.Fatalf("expected different day")
	}
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("09:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h != 9 || m != 30 {
		t.Fatalf("got %d:%d, want 9:30", h, m)
	}
	if _, _, err := ParseClock("930"); err == nil {
		t.Fatalf("expected error for malformed clock")
	}
	if _, _, err := ParseClock("25:00"); err == nil {
		t.Fatalf("expected error for out-of-range hour")
	}
}

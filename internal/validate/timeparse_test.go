package validate

import (
	"testing"
	"time"
)

func TestParseAPITime(t *testing.T) {
	want := time.Date(2026, 8, 20, 14, 30, 5, 0, time.UTC)
	tests := []string{
		"2026-08-20T14:30:05Z",
		"2026-08-20T14:30:05.0Z",
		"2026-08-20T14:30:05.000Z",
		"2026-08-20T14:30:05.000000Z",
		"2026-08-20T14:30:05+00:00",
		"2026-08-20T14:30:05",
		"2026-08-20T17:30:05+03:00",
	}
	for _, in := range tests {
		got, err := ParseAPITime(in)
		if err != nil {
			t.Errorf("ParseAPITime(%q): %v", in, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseAPITime(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseAPITimeFraction(t *testing.T) {
	got, err := ParseAPITime("2026-08-20T14:30:05.123456Z")
	if err != nil {
		t.Fatalf("ParseAPITime: %v", err)
	}
	if got.Nanosecond() != 123456000 {
		t.Errorf("nanoseconds = %d, want 123456000", got.Nanosecond())
	}
}

func TestParseAPITimeInvalid(t *testing.T) {
	if _, err := ParseAPITime("not a time"); err == nil {
		t.Fatal("expected error for junk input")
	}
	if _, err := ParseAPITime(""); err == nil {
		t.Fatal("expected error for empty input")
	}
}

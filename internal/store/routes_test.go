package store

import "testing"

func TestMatchesFlightNumber(t *testing.T) {
	tests := []struct {
		flt  string
		csv  string
		want bool
	}{
		{"QR4", "QR4,QR5,QR6", true},
		{"QR5", "QR4,QR5,QR6", true},
		{"QR6", "QR4,QR5,QR6", true},
		{"qr4", "QR4,QR5,QR6", true},
		{"QR4", "QR4, QR5 , QR6", true},
		{"QR", "QR4,QR5,QR6", false},
		{"QR40", "QR4,QR5,QR6", false},
		{"QR45", "QR4,QR5,QR6", false},
		{"R4", "QR4,QR5,QR6", false},
		{"", "QR4,QR5,QR6", false},
		{"QR4", "", false},
		{"QR4", "QR4", true},
	}
	for _, tt := range tests {
		if got := MatchesFlightNumber(tt.flt, tt.csv); got != tt.want {
			t.Errorf("MatchesFlightNumber(%q, %q) = %v, want %v", tt.flt, tt.csv, got, tt.want)
		}
	}
}

func TestComposeAircraftName(t *testing.T) {
	tests := []struct {
		livery   string
		aircraft string
		want     string
	}{
		{"Qatar Airways", "777-300ER", "Qatar Airways 777-300ER"},
		{"", "A350-900", "A350-900"},
		{"Generic", "A320", "A320"},
		{"generic", "A320", "A320"},
	}
	for _, tt := range tests {
		if got := composeAircraftName(tt.livery, tt.aircraft); got != tt.want {
			t.Errorf("composeAircraftName(%q, %q) = %q, want %q", tt.livery, tt.aircraft, got, tt.want)
		}
	}
}

func TestDedupeAircraft(t *testing.T) {
	in := []RouteAircraft{
		{ICAO: "B77W", DisplayName: "777-300ER"},
		{ICAO: "B77W", DisplayName: "777-300ER"},
		{ICAO: "B77W", DisplayName: "777-300ER (new colors)"},
		{ICAO: "A359", DisplayName: "A350-900"},
	}
	out := dedupeAircraft(in)
	if len(out) != 3 {
		t.Fatalf("got %d aircraft, want 3", len(out))
	}
}

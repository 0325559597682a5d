package tracker

import (
	"math"
	"testing"
)

func TestGreatCircleNM(t *testing.T) {
	// Doha (OTHH) to London (EGLL), roughly 2800 nm.
	d := GreatCircleNM(25.273, 51.608, 51.477, -0.461)
	if d < 2700 || d > 2900 {
		t.Errorf("OTHH-EGLL = %.1f nm, want roughly 2800", d)
	}
}

func TestGreatCircleNMSymmetry(t *testing.T) {
	ab := GreatCircleNM(25.273, 51.608, 51.477, -0.461)
	ba := GreatCircleNM(51.477, -0.461, 25.273, 51.608)
	if math.Abs(ab-ba) > 1e-9 {
		t.Errorf("distance not symmetric: %v vs %v", ab, ba)
	}
}

func TestGreatCircleNMZero(t *testing.T) {
	if d := GreatCircleNM(25.273, 51.608, 25.273, 51.608); d != 0 {
		t.Errorf("distance to self = %v, want 0", d)
	}
}

func TestPathDistanceNM(t *testing.T) {
	if d := pathDistanceNM(nil); d != 0 {
		t.Errorf("empty path = %v, want 0", d)
	}
	if d := pathDistanceNM([]position{{lat: 1, lon: 1}}); d != 0 {
		t.Errorf("single point = %v, want 0", d)
	}

	// A two-leg path is at least as long as the direct line.
	direct := GreatCircleNM(25.273, 51.608, 51.477, -0.461)
	path := pathDistanceNM([]position{
		{lat: 25.273, lon: 51.608},
		{lat: 41.0, lon: 28.9},
		{lat: 51.477, lon: -0.461},
	})
	if path < direct {
		t.Errorf("path %v shorter than direct %v", path, direct)
	}
}

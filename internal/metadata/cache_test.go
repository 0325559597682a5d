package metadata

import (
	"context"
	"errors"
	"testing"

	"qrv_ops/internal/simapi"
)

// fakeAircraftAPI counts calls so tests can assert laziness.
type fakeAircraftAPI struct {
	aircraft      []simapi.AircraftInfo
	liveries      map[string][]simapi.LiveryInfo
	aircraftCalls int
	liveryCalls   int
	fail          bool
}

func (f *fakeAircraftAPI) GetAircraft(_ context.Context) ([]simapi.AircraftInfo, error) {
	f.aircraftCalls++
	if f.fail {
		return nil, errors.New("api down")
	}
	return f.aircraft, nil
}

func (f *fakeAircraftAPI) GetAircraftLiveries(_ context.Context, aircraftID string) ([]simapi.LiveryInfo, error) {
	f.liveryCalls++
	if f.fail {
		return nil, errors.New("api down")
	}
	return f.liveries[aircraftID], nil
}

func TestAircraftNameLoadsCatalogOnFirstMiss(t *testing.T) {
	api := &fakeAircraftAPI{aircraft: []simapi.AircraftInfo{{ID: "a1", Name: "777-300ER"}}}
	c := New(api, "")

	if got := c.AircraftName(context.Background(), "a1"); got != "777-300ER" {
		t.Errorf("AircraftName = %q, want 777-300ER", got)
	}
	if api.aircraftCalls != 1 {
		t.Errorf("aircraft calls = %d, want 1", api.aircraftCalls)
	}

	// A miss after the catalog is loaded must not refetch.
	if got := c.AircraftName(context.Background(), "missing"); got != UnknownAircraft {
		t.Errorf("AircraftName = %q, want %q", got, UnknownAircraft)
	}
	if api.aircraftCalls != 1 {
		t.Errorf("aircraft calls after miss = %d, want 1", api.aircraftCalls)
	}
}

func TestAircraftNameAPIFailure(t *testing.T) {
	api := &fakeAircraftAPI{fail: true}
	c := New(api, "")

	if got := c.AircraftName(context.Background(), "a1"); got != UnknownAircraft {
		t.Errorf("AircraftName = %q, want %q", got, UnknownAircraft)
	}
}

func TestLiveryNameLazyPerAircraft(t *testing.T) {
	api := &fakeAircraftAPI{
		liveries: map[string][]simapi.LiveryInfo{
			"a1": {
				{ID: "l1", AircraftID: "a1", LiveryName: "Qatar Airways"},
				{ID: "l2", AircraftID: "a1", LiveryName: "Oneworld"},
			},
		},
	}
	c := New(api, "")

	if got := c.LiveryName(context.Background(), "a1", "l1"); got != "Qatar Airways" {
		t.Errorf("LiveryName = %q, want Qatar Airways", got)
	}
	// Sibling livery was cached by the same fetch.
	if got := c.LiveryName(context.Background(), "a1", "l2"); got != "Oneworld" {
		t.Errorf("LiveryName = %q, want Oneworld", got)
	}
	if api.liveryCalls != 1 {
		t.Errorf("livery calls = %d, want 1", api.liveryCalls)
	}

	// An unknown livery on an already-fetched aircraft must not refetch.
	if got := c.LiveryName(context.Background(), "a1", "l9"); got != UnknownLivery {
		t.Errorf("LiveryName = %q, want %q", got, UnknownLivery)
	}
	if api.liveryCalls != 1 {
		t.Errorf("livery calls after miss = %d, want 1", api.liveryCalls)
	}
}

func TestWarmStartSurvivesRestart(t *testing.T) {
	path := t.TempDir() + "/warm.db"

	api := &fakeAircraftAPI{aircraft: []simapi.AircraftInfo{{ID: "a1", Name: "A350-900"}}}
	c := New(api, path)
	if err := c.LoadAircraft(context.Background()); err != nil {
		t.Fatalf("LoadAircraft: %v", err)
	}
	c.Close()

	// Second process: the API is down, but the warm store answers.
	c2 := New(&fakeAircraftAPI{fail: true}, path)
	defer c2.Close()
	if got := c2.AircraftName(context.Background(), "a1"); got != "A350-900" {
		t.Errorf("AircraftName after restart = %q, want A350-900", got)
	}
}

package tracker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"qrv_ops/internal/simapi"
	"qrv_ops/internal/store"
	"qrv_ops/internal/uisink"
)

// fakeSim serves a mutable world snapshot.
type fakeSim struct {
	sessionsErr error
	flights     []simapi.FlightEntry
	flightsErr  error
	routes      map[string][]simapi.RoutePoint
	plans       map[string]*simapi.FlightPlan
}

func (f *fakeSim) GetSessions(_ context.Context) ([]simapi.SessionInfo, error) {
	if f.sessionsErr != nil {
		return nil, f.sessionsErr
	}
	return []simapi.SessionInfo{
		{ID: "casual", Name: "Casual"},
		{ID: "expert", Name: "Expert"},
	}, nil
}

func (f *fakeSim) GetFlights(_ context.Context, sessionID string) ([]simapi.FlightEntry, error) {
	if f.flightsErr != nil {
		return nil, f.flightsErr
	}
	if sessionID != "expert" {
		return nil, fmt.Errorf("unexpected session %s", sessionID)
	}
	return f.flights, nil
}

func (f *fakeSim) GetFlightRoute(_ context.Context, flightID string) ([]simapi.RoutePoint, error) {
	return f.routes[flightID], nil
}

func (f *fakeSim) GetFlightPlan(_ context.Context, flightID string) (*simapi.FlightPlan, error) {
	return f.plans[flightID], nil
}

type fakePilots struct {
	bySimID map[string]*store.Pilot
}

func (f *fakePilots) PilotBySimUserID(_ context.Context, id string) (*store.Pilot, error) {
	return f.bySimID[id], nil
}

type fakeRouteLookup struct {
	route *store.Route
}

func (f *fakeRouteLookup) RouteByICAOPair(_ context.Context, _, _ string) (*store.Route, error) {
	return f.route, nil
}

type staticNames struct{}

func (staticNames) AircraftName(_ context.Context, _ string) string { return "777-300ER" }

// recordingSink captures every post and edit.
type recordingSink struct {
	posts   []uisink.FlightCard
	edits   []uisink.FlightCard
	editIDs []string
	editErr error
	nextID  int
}

func (s *recordingSink) PostFlight(_ context.Context, card uisink.FlightCard) (string, error) {
	s.posts = append(s.posts, card)
	s.nextID++
	return fmt.Sprintf("msg-%d", s.nextID), nil
}

func (s *recordingSink) EditFlight(_ context.Context, messageID string, card uisink.FlightCard) error {
	if s.editErr != nil {
		return s.editErr
	}
	s.edits = append(s.edits, card)
	s.editIDs = append(s.editIDs, messageID)
	return nil
}

func (s *recordingSink) PostVerdict(_ context.Context, _ uisink.VerdictReport) error { return nil }

type recordingFinalizer struct {
	finalized []TrackedFlight
}

func (f *recordingFinalizer) FlightFinalized(_ context.Context, tf TrackedFlight) {
	f.finalized = append(f.finalized, tf)
}

func planFixture() *simapi.FlightPlan {
	return &simapi.FlightPlan{
		FlightID: "f-1",
		Items: []simapi.FlightPlanItem{
			{Name: "othh", Location: simapi.Location{Latitude: 25.273, Longitude: 51.608}},
			{Name: "BALUS", Location: simapi.Location{Latitude: 40, Longitude: 30}},
			{Name: "egll", Location: simapi.Location{Latitude: 51.477, Longitude: -0.461}},
		},
	}
}

func newTestTracker(sim *fakeSim, sink *recordingSink) *Tracker {
	tr := New(sim, &fakePilots{bySimID: map[string]*store.Pilot{
		"u-1": {ID: 1, Callsign: "QRV001", ChatUserID: "111111111111111111"},
	}}, &fakeRouteLookup{route: &store.Route{
		FlightNumbers: "QR1,QR3",
		Duration:      25200,
	}}, staticNames{}, sink, "chan-1")
	tr.spacing = time.Millisecond
	return tr
}

func TestTrackerLifecycle(t *testing.T) {
	sim := &fakeSim{
		flights: []simapi.FlightEntry{{
			FlightID: "f-1", UserID: "u-1", Username: "test_pilot",
			Callsign: "Qatari 001VA", AircraftID: "a-77w",
		}},
		routes: map[string][]simapi.RoutePoint{},
		plans:  map[string]*simapi.FlightPlan{"f-1": planFixture()},
	}
	sink := &recordingSink{}
	fin := &recordingFinalizer{}
	tr := newTestTracker(sim, sink)
	tr.SetFinalizer(fin)
	ctx := context.Background()

	// Tick 1: the flight is picked up and announced.
	tr.RunTick(ctx)
	if len(sink.posts) != 1 {
		t.Fatalf("posts after tick 1 = %d, want 1", len(sink.posts))
	}
	post := sink.posts[0]
	if post.Title != "QR1" {
		t.Errorf("card title = %q, want catalog flight number QR1", post.Title)
	}
	if post.Ping == "" {
		t.Error("creation card has no ping")
	}
	if board := tr.Board(); len(board) != 1 || board[0].Departure != "OTHH" || board[0].Arrival != "EGLL" {
		t.Errorf("board = %+v, want one OTHH-EGLL flight", board)
	}

	// Tick 2: still flying, the message is edited in place.
	sim.routes["f-1"] = []simapi.RoutePoint{
		{Latitude: 25.3, Longitude: 51.7, Altitude: 10000, Date: "2026-08-20T14:00:00Z"},
		{Latitude: 26.0, Longitude: 52.5, Altitude: 14000, Date: "2026-08-20T14:02:00Z"},
	}
	tr.RunTick(ctx)
	if len(sink.edits) != 1 {
		t.Fatalf("edits after tick 2 = %d, want 1", len(sink.edits))
	}
	if sink.editIDs[0] != "msg-1" {
		t.Errorf("edited message = %q, want msg-1", sink.editIDs[0])
	}
	if sink.edits[0].Final {
		t.Error("in-flight edit marked final")
	}

	// Tick 3: the flight vanished, so it lands.
	sim.flights = nil
	tr.RunTick(ctx)
	if len(sink.edits) != 2 {
		t.Fatalf("edits after tick 3 = %d, want 2", len(sink.edits))
	}
	final := sink.edits[1]
	if !final.Final || final.Color != uisink.ColorLanded {
		t.Errorf("final card = %+v, want landed", final)
	}
	if len(fin.finalized) != 1 || fin.finalized[0].FlightID != "f-1" {
		t.Errorf("finalized = %+v, want f-1", fin.finalized)
	}
	if board := tr.Board(); len(board) != 0 {
		t.Errorf("board after landing = %+v, want empty", board)
	}
}

func TestTrackerIgnoresForeignCallsigns(t *testing.T) {
	sim := &fakeSim{
		flights: []simapi.FlightEntry{
			{FlightID: "f-2", Callsign: "AAL123"},
			{FlightID: "f-3", Callsign: "Speedbird 1"},
		},
		plans: map[string]*simapi.FlightPlan{},
	}
	sink := &recordingSink{}
	tr := newTestTracker(sim, sink)

	tr.RunTick(context.Background())
	if len(sink.posts) != 0 {
		t.Errorf("posts = %d, want 0 for foreign callsigns", len(sink.posts))
	}
}

func TestTrackerSkipsFlightWithoutPlan(t *testing.T) {
	sim := &fakeSim{
		flights: []simapi.FlightEntry{{FlightID: "f-1", Callsign: "Qatari 001VA"}},
		plans:   map[string]*simapi.FlightPlan{},
	}
	sink := &recordingSink{}
	tr := newTestTracker(sim, sink)

	tr.RunTick(context.Background())
	if len(sink.posts) != 0 {
		t.Errorf("posts = %d, want 0 without a flight plan", len(sink.posts))
	}
	if len(tr.flights) != 0 {
		t.Errorf("tracked = %d, want 0", len(tr.flights))
	}
}

func TestTrackerDropsGoneMessage(t *testing.T) {
	sim := &fakeSim{
		flights: []simapi.FlightEntry{{
			FlightID: "f-1", UserID: "u-1", Callsign: "Qatari 001VA",
		}},
		routes: map[string][]simapi.RoutePoint{},
		plans:  map[string]*simapi.FlightPlan{"f-1": planFixture()},
	}
	sink := &recordingSink{}
	fin := &recordingFinalizer{}
	tr := newTestTracker(sim, sink)
	tr.SetFinalizer(fin)
	ctx := context.Background()

	tr.RunTick(ctx)
	if len(tr.flights) != 1 {
		t.Fatalf("tracked = %d, want 1", len(tr.flights))
	}

	// Someone deleted the chat message; tracking stops quietly.
	sink.editErr = uisink.ErrMessageGone
	tr.RunTick(ctx)
	if len(tr.flights) != 1 {
		// The flight is re-created in the same tick's create phase since it
		// still matches; what matters is that the old record was dropped and
		// a fresh post was made.
		t.Fatalf("tracked = %d, want 1 after re-pickup", len(tr.flights))
	}
	if len(sink.posts) != 2 {
		t.Errorf("posts = %d, want 2 (original plus re-pickup)", len(sink.posts))
	}
	if len(fin.finalized) != 0 {
		t.Errorf("finalized = %+v, want none for a deleted message", fin.finalized)
	}
}

func TestTrackerAbortedTickDoesNotFinalize(t *testing.T) {
	sim := &fakeSim{
		flights: []simapi.FlightEntry{{
			FlightID: "f-1", UserID: "u-1", Callsign: "Qatari 001VA",
		}},
		routes: map[string][]simapi.RoutePoint{},
		plans:  map[string]*simapi.FlightPlan{"f-1": planFixture()},
	}
	sink := &recordingSink{}
	fin := &recordingFinalizer{}
	tr := newTestTracker(sim, sink)
	tr.SetFinalizer(fin)
	ctx := context.Background()

	tr.RunTick(ctx)

	// The flight list is unavailable. That is not evidence of landing.
	sim.flightsErr = errors.New("api down")
	tr.RunTick(ctx)
	if len(fin.finalized) != 0 {
		t.Errorf("finalized = %+v, want none on an aborted tick", fin.finalized)
	}
	if len(tr.flights) != 1 {
		t.Errorf("tracked = %d, want 1 after aborted tick", len(tr.flights))
	}

	// Once the list is back and the flight is genuinely gone, it lands.
	sim.flightsErr = nil
	sim.flights = nil
	tr.RunTick(ctx)
	if len(fin.finalized) != 1 {
		t.Errorf("finalized = %+v, want exactly one landing", fin.finalized)
	}
}

func TestTrackerFallsBackToCallsignNumber(t *testing.T) {
	sim := &fakeSim{
		flights: []simapi.FlightEntry{{
			FlightID: "f-1", Callsign: "Qatari 001VA",
		}},
		routes: map[string][]simapi.RoutePoint{},
		plans:  map[string]*simapi.FlightPlan{"f-1": planFixture()},
	}
	sink := &recordingSink{}
	tr := New(sim, &fakePilots{}, &fakeRouteLookup{}, staticNames{}, sink, "chan-1")
	tr.spacing = time.Millisecond

	tr.RunTick(context.Background())
	if len(sink.posts) != 1 {
		t.Fatalf("posts = %d, want 1", len(sink.posts))
	}
	if sink.posts[0].Title != "Qatari 001VA" {
		t.Errorf("card title = %q, want raw callsign without catalog route", sink.posts[0].Title)
	}
	if sink.posts[0].Ping != "Tracking new flight: Qatari 001VA" {
		t.Errorf("ping = %q, want unlinked announcement", sink.posts[0].Ping)
	}
}

// Package tracker watches the Expert server for the airline's flights and
// keeps one chat message per flight current until landing.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dhawton/log4g"

	"qrv_ops/internal/simapi"
	"qrv_ops/internal/store"
	"qrv_ops/internal/uisink"
)

var log = log4g.Category("tracker")

// CallsignPattern identifies the airline's flights on the live server.
var CallsignPattern = regexp.MustCompile(`(?i)^(Qatari\s.*VA|.*QR)(?:\s(Heavy|Super))?$`)

// ExpertServerName is the only session the tracker watches.
const ExpertServerName = "Expert"

// createSpacing is the pause between new-flight posts within one tick.
const createSpacing = time.Second

// TrackedFlight is the tracker's in-memory record of one live flight.
// Owned exclusively by the tracker; mutated only inside RunTick.
type TrackedFlight struct {
	FlightID     string  // simulator flight id, unique per record
	MessageID    string  // chat message edited in place
	Callsign     string
	SimUsername  string
	SimUserID    string
	AircraftID   string
	AircraftName string
	Departure    string // ICAO
	Arrival      string // ICAO
	FlightNumber string // published number, or the raw callsign
	DistanceNM   float64
	Duration     string // formatted, or "duration unknown"
	Note         string
	PilotChatID  string // empty when the pilot is not linked
	LastSeenTick int64
}

// SimAPI is the slice of the simulator client the tracker needs.
type SimAPI interface {
	GetSessions(ctx context.Context) ([]simapi.SessionInfo, error)
	GetFlights(ctx context.Context, sessionID string) ([]simapi.FlightEntry, error)
	GetFlightRoute(ctx context.Context, flightID string) ([]simapi.RoutePoint, error)
	GetFlightPlan(ctx context.Context, flightID string) (*simapi.FlightPlan, error)
}

// PilotLookup resolves a simulator user to a roster pilot.
type PilotLookup interface {
	PilotBySimUserID(ctx context.Context, simUserID string) (*store.Pilot, error)
}

// RouteLookup finds a catalog route for an airport pair.
type RouteLookup interface {
	RouteByICAOPair(ctx context.Context, dep, arr string) (*store.Route, error)
}

// Names resolves aircraft ids to display names.
type Names interface {
	AircraftName(ctx context.Context, aircraftID string) string
}

// Finalizer receives flights the tracker has closed out. Optional; used
// for the audit archive.
type Finalizer interface {
	FlightFinalized(ctx context.Context, tf TrackedFlight)
}

// Tracker holds the tracked-flight map and runs the periodic scan.
// RunTick is not reentrant; the scheduler guarantees ticks never overlap.
type Tracker struct {
	api       SimAPI
	pilots    PilotLookup
	routes    RouteLookup
	names     Names
	sink      uisink.Sink
	finalizer Finalizer // may be nil
	channelID string

	flights map[string]*TrackedFlight
	tick    int64

	// board is the last published copy of the tracked map, for read-only
	// consumers outside the tracker goroutine.
	board atomic.Pointer[[]TrackedFlight]

	// spacing between creations, shrunk in tests.
	spacing time.Duration
}

// New wires a tracker.
func New(api SimAPI, pilots PilotLookup, routes RouteLookup, names Names, sink uisink.Sink, channelID string) *Tracker {
	return &Tracker{
		api:       api,
		pilots:    pilots,
		routes:    routes,
		names:     names,
		sink:      sink,
		channelID: channelID,
		flights:   make(map[string]*TrackedFlight),
		spacing:   createSpacing,
	}
}

// SetFinalizer registers an optional finalized-flight consumer.
func (t *Tracker) SetFinalizer(f Finalizer) { t.finalizer = f }

// Snapshot copies the tracked map. Only safe from the tracker goroutine;
// outside consumers use Board.
func (t *Tracker) Snapshot() []TrackedFlight {
	out := make([]TrackedFlight, 0, len(t.flights))
	for _, tf := range t.flights {
		out = append(out, *tf)
	}
	return out
}

// Board returns the flight list published at the end of the last tick.
func (t *Tracker) Board() []TrackedFlight {
	if p := t.board.Load(); p != nil {
		return *p
	}
	return nil
}

// RunTick performs one scan: update known flights, finalize vanished ones,
// then pick up new matching callsigns.
func (t *Tracker) RunTick(ctx context.Context) {
	t.tick++

	sessions, err := t.api.GetSessions(ctx)
	if err != nil || sessions == nil {
		log.Warning("tick aborted: sessions unavailable")
		return
	}
	var expertID string
	for _, s := range sessions {
		if s.Name == ExpertServerName {
			expertID = s.ID
			break
		}
	}
	if expertID == "" {
		log.Warning("tick aborted: no Expert session")
		return
	}

	flights, err := t.api.GetFlights(ctx, expertID)
	if err != nil || flights == nil {
		log.Warning("tick aborted: flight list unavailable")
		return
	}

	current := make(map[string]*simapi.FlightEntry, len(flights))
	for i := range flights {
		current[flights[i].FlightID] = &flights[i]
	}

	t.updatePhase(ctx, current)
	t.createPhase(ctx, current)

	snap := t.Snapshot()
	t.board.Store(&snap)
}

// updatePhase refreshes or finalizes every tracked flight against the
// current snapshot. Finalization requires positive absence: an aborted
// tick never lands anybody.
func (t *Tracker) updatePhase(ctx context.Context, current map[string]*simapi.FlightEntry) {
	for id, tf := range t.flights {
		if _, live := current[id]; !live {
			t.finalize(ctx, tf)
			delete(t.flights, id)
			continue
		}
		tf.LastSeenTick = t.tick

		points, err := t.api.GetFlightRoute(ctx, id)
		if err != nil {
			log.Warning(fmt.Sprintf("%s: route points unavailable", tf.Callsign))
			continue
		}
		progress := t.progress(tf, points)
		phase := phaseFromRoute(points)

		err = t.sink.EditFlight(ctx, tf.MessageID, t.card(tf, progress, phase, false))
		if errors.Is(err, uisink.ErrMessageGone) {
			delete(t.flights, id)
			continue
		}
		if err != nil {
			log.Error(fmt.Sprintf("%s: edit failed: %s", tf.Callsign, err.Error()))
		}
	}
}

// progress converts trailing route points to a [0,1] completion fraction.
func (t *Tracker) progress(tf *TrackedFlight, points []simapi.RoutePoint) float64 {
	if tf.DistanceNM <= 0 || len(points) < 2 {
		return 0
	}
	path := make([]position, len(points))
	for i, p := range points {
		path[i] = position{lat: p.Latitude, lon: p.Longitude}
	}
	frac := pathDistanceNM(path) / tf.DistanceNM
	if frac < 0 {
		return 0
	}
	if frac > 1 {
		return 1
	}
	return frac
}

func (t *Tracker) finalize(ctx context.Context, tf *TrackedFlight) {
	err := t.sink.EditFlight(ctx, tf.MessageID, t.card(tf, 1, PhaseLanded, true))
	if err != nil && !errors.Is(err, uisink.ErrMessageGone) {
		log.Error(fmt.Sprintf("%s: final edit failed: %s", tf.Callsign, err.Error()))
	}
	if t.finalizer != nil {
		t.finalizer.FlightFinalized(ctx, *tf)
	}
	log.Info(fmt.Sprintf("%s landed (%s → %s)", tf.Callsign, tf.Departure, tf.Arrival))
}

// createPhase starts tracking new matching flights from the snapshot.
func (t *Tracker) createPhase(ctx context.Context, current map[string]*simapi.FlightEntry) {
	first := true
	for id, fe := range current {
		if _, tracked := t.flights[id]; tracked {
			continue
		}
		if !CallsignPattern.MatchString(strings.TrimSpace(fe.Callsign)) {
			continue
		}
		if !first {
			// Courteous spacing between message posts.
			select {
			case <-time.After(t.spacing):
			case <-ctx.Done():
				return
			}
		}
		first = false
		t.createOne(ctx, fe)
	}
}

func (t *Tracker) createOne(ctx context.Context, fe *simapi.FlightEntry) {
	plan, err := t.api.GetFlightPlan(ctx, fe.FlightID)
	if err != nil || plan == nil {
		log.Warning(fmt.Sprintf("%s: no flight plan yet", fe.Callsign))
		return
	}
	leaves := plan.Leaves()
	if len(leaves) < 2 {
		return
	}
	firstWP, lastWP := leaves[0], leaves[len(leaves)-1]

	tf := &TrackedFlight{
		FlightID:     fe.FlightID,
		Callsign:     fe.Callsign,
		SimUsername:  fe.Username,
		SimUserID:    fe.UserID,
		AircraftID:   fe.AircraftID,
		AircraftName: t.names.AircraftName(ctx, fe.AircraftID),
		Departure:    strings.ToUpper(firstWP.Name),
		Arrival:      strings.ToUpper(lastWP.Name),
		FlightNumber: fe.Callsign,
		Duration:     formatDuration(0),
		DistanceNM: GreatCircleNM(
			firstWP.Location.Latitude, firstWP.Location.Longitude,
			lastWP.Location.Latitude, lastWP.Location.Longitude),
		LastSeenTick: t.tick,
	}

	if route, err := t.routes.RouteByICAOPair(ctx, tf.Departure, tf.Arrival); err == nil && route != nil {
		tf.Duration = formatDuration(route.Duration)
		if toks := strings.Split(route.FlightNumbers, ","); len(toks) > 0 && strings.TrimSpace(toks[0]) != "" {
			tf.FlightNumber = strings.TrimSpace(toks[0])
		}
	}

	if pilot, err := t.pilots.PilotBySimUserID(ctx, fe.UserID); err == nil && pilot != nil {
		tf.PilotChatID = pilot.ChatUserID
	}

	card := t.card(tf, 0, PhaseOnGround, false)
	card.Ping = creationPing(tf)
	msgID, err := t.sink.PostFlight(ctx, card)
	if err != nil {
		log.Error(fmt.Sprintf("%s: post failed: %s", tf.Callsign, err.Error()))
		return
	}
	tf.MessageID = msgID
	t.flights[tf.FlightID] = tf
	log.Info(fmt.Sprintf("tracking %s (%s → %s)", tf.Callsign, tf.Departure, tf.Arrival))
}

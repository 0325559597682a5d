package validate

import (
	"context"
	"fmt"
	"strings"

	"github.com/dhawton/log4g"

	"qrv_ops/internal/simapi"
	"qrv_ops/internal/store"
)

var log = log4g.Category("validate")

// Validation parameters.
const (
	// HoursWindow is how far back the simulator is asked for candidate
	// flights.
	HoursWindow = 72
	// DateWindowSeconds is the accepted distance between a PIREP's filed
	// date and a candidate flight's creation time. Inclusive.
	DateWindowSeconds = 3 * 86400
	// TimeToleranceSeconds is the accepted gap between claimed and
	// expected flight time. Inclusive; 301 seconds is flagged.
	TimeToleranceSeconds = 300
	// MaxMultiplier is the highest declarable time multiplier.
	MaxMultiplier = 3.0
)

// FlightAPI is the slice of the simulator client the engine needs.
type FlightAPI interface {
	GetUserByIFCUsername(ctx context.Context, name string) (*simapi.UserStats, error)
	GetUserFlights(ctx context.Context, simUserID string, hoursWindow int) ([]simapi.UserFlight, error)
}

// PilotStore is the roster capability the engine needs.
type PilotStore interface {
	PilotByID(ctx context.Context, id int64) (*store.Pilot, error)
	UpdateSimUserIDByIFCUsername(ctx context.Context, username, simUserID string) error
}

// RouteCatalog looks up the primary route catalog.
type RouteCatalog interface {
	RouteByICAOPair(ctx context.Context, dep, arr string) (*store.Route, error)
}

// PartnerCatalog looks up the OneWorld Discover catalog.
type PartnerCatalog interface {
	ByICAOPair(dep, arr string) ([]store.PartnerRoute, error)
}

// Names resolves simulator aircraft ids to display names.
type Names interface {
	AircraftName(ctx context.Context, aircraftID string) string
}

// Engine validates PIREPs. Pure over its inputs; it only writes through
// the learned sim-user-id writeback, which never changes an outcome.
type Engine struct {
	api     FlightAPI
	pilots  PilotStore
	routes  RouteCatalog
	partner PartnerCatalog // may be nil when no partner file is configured
	names   Names
}

// NewEngine wires the engine's capabilities.
func NewEngine(api FlightAPI, pilots PilotStore, routes RouteCatalog, partner PartnerCatalog, names Names) *Engine {
	return &Engine{api: api, pilots: pilots, routes: routes, partner: partner, names: names}
}

// Validate produces a verdict for one PIREP.
func (e *Engine) Validate(ctx context.Context, p store.PIREP) Verdict {
	v := Verdict{
		PIREPID:         p.ID,
		Departure:       strings.ToUpper(p.Departure),
		Arrival:         strings.ToUpper(p.Arrival),
		ClaimedAircraft: p.AircraftName,
		ClaimedSeconds:  p.FlightTime,
		DeclaredMult:    p.Multiplier,
	}

	// Step A: resolve the simulator user id.
	pilot, err := e.pilots.PilotByID(ctx, p.PilotID)
	if err != nil || pilot == nil {
		if err != nil {
			log.Error(fmt.Sprintf("pirep %d: pilot lookup: %s", p.ID, err.Error()))
		}
		v.addIssue(IssueIdentityUnresolved)
		v.finish()
		return v
	}
	v.PilotDisplay = fmt.Sprintf("%s (%s)", pilot.Name, pilot.Callsign)

	simUserID := pilot.SimUserID
	if simUserID == "" {
		simUserID = e.resolveSimUserID(ctx, pilot)
	}
	if simUserID == "" {
		v.addIssue(IssueIdentityUnresolved)
		v.finish()
		return v
	}

	// Step B: fetch candidate flights.
	flights, err := e.api.GetUserFlights(ctx, simUserID, HoursWindow)
	if err != nil || flights == nil {
		v.addIssue(IssueTelemetryUnavailable)
		v.finish()
		return v
	}

	// Step C: select the matching flight.
	match := selectMatch(flights, v.Departure, v.Arrival, p)
	if match == nil {
		v.addIssue(IssueNoMatchingFlight)
		v.finish()
		return v
	}
	v.MatchedFlightID = match.ID
	v.MatchedCreated = match.Created
	v.RouteMatch = true

	// Step D: enumerate discrepancies.
	v.ObservedAircraft = e.names.AircraftName(ctx, match.AircraftID)
	v.AircraftMatch = strings.EqualFold(strings.TrimSpace(p.AircraftName), strings.TrimSpace(v.ObservedAircraft))
	if !v.AircraftMatch {
		v.addIssue(IssueAircraftMismatch)
	}

	expected := int64(match.TotalTimeMinutes * 60 * p.Multiplier)
	v.ExpectedSeconds = expected
	delta := p.FlightTime - expected
	v.Multiplier = assessMultiplier(p.Multiplier, delta)

	if p.Multiplier > MaxMultiplier {
		v.addIssue(IssueMultiplierTooHigh)
	}
	if delta > TimeToleranceSeconds || delta < -TimeToleranceSeconds {
		v.addIssue(IssueTimeDiscrepancy)
	}
	if p.FlightTime == 0 {
		v.addIssue(IssueZeroFlightTime)
	}

	v.FlightNumber = e.classifyFlightNumber(ctx, p.FlightNumber, v.Departure, v.Arrival, pilot.RankClass)
	switch v.FlightNumber {
	case FlightNumberWrong:
		v.addIssue(IssueWrongFlightNumber)
	case FlightNumberUnknown:
		v.addIssue(IssueRouteUnknown)
	}

	// Step E.
	v.finish()
	return v
}

// resolveSimUserID parses an IFC username from the pilot's forum URL,
// resolves it against the simulator and persists the learned id.
func (e *Engine) resolveSimUserID(ctx context.Context, pilot *store.Pilot) string {
	username := ifcUsernameFrom(pilot.IFCURL)
	if username == "" {
		return ""
	}

	stats, err := e.api.GetUserByIFCUsername(ctx, username)
	if err != nil || stats == nil || stats.UserID == "" {
		if err != nil {
			log.Error(fmt.Sprintf("resolve IFC %q: %s", username, err.Error()))
		}
		return ""
	}

	if err := e.pilots.UpdateSimUserIDByIFCUsername(ctx, username, stats.UserID); err != nil {
		// Losing the writeback only costs a roundtrip next time.
		log.Warning(err.Error())
	}
	pilot.SimUserID = stats.UserID
	return stats.UserID
}

// ifcUsernameFrom extracts a forum username from a profile URL. A stored
// value that is neither a URL nor contains a path is accepted as a bare
// username.
func ifcUsernameFrom(stored string) string {
	stored = strings.TrimSpace(stored)
	if stored == "" {
		return ""
	}
	if m := store.IFCUsernamePattern.FindStringSubmatch(stored); m != nil {
		return m[1]
	}
	if !strings.Contains(stored, "http") && !strings.Contains(stored, "/") {
		return stored
	}
	return ""
}

// selectMatch picks the first candidate with the PIREP's airport pair whose
// creation time lies within the date window. Candidates arrive newest
// first; the first hit wins.
func selectMatch(flights []simapi.UserFlight, dep, arr string, p store.PIREP) *simapi.UserFlight {
	for i := range flights {
		f := &flights[i]
		if !strings.EqualFold(f.OriginAirport, dep) || !strings.EqualFold(f.DestinationAirport, arr) {
			continue
		}
		created, err := ParseAPITime(f.Created)
		if err != nil {
			log.Warning(fmt.Sprintf("flight %s: %s", f.ID, err.Error()))
			continue
		}
		gap := created.Sub(p.FiledDate)
		if gap < 0 {
			gap = -gap
		}
		if gap.Seconds() <= DateWindowSeconds {
			return f
		}
	}
	return nil
}

func assessMultiplier(mult float64, delta int64) MultiplierAssessment {
	a := MultiplierAssessment{DeltaSeconds: delta}
	switch {
	case mult > MaxMultiplier:
		a.Code = MultTooHigh
	case delta > TimeToleranceSeconds:
		a.Code = MultOver
	case delta < -TimeToleranceSeconds:
		a.Code = MultUnder
	default:
		a.Code = MultAccurate
	}
	return a
}

// classifyFlightNumber checks the claimed flight number against the primary
// catalog, then, for OneWorld-class pilots, the partner catalog.
func (e *Engine) classifyFlightNumber(ctx context.Context, flt, dep, arr string, rankClass int) string {
	route, err := e.routes.RouteByICAOPair(ctx, dep, arr)
	if err != nil {
		log.Error(fmt.Sprintf("route lookup %s-%s: %s", dep, arr, err.Error()))
	}
	if route != nil {
		if route.HasFlightNumber(flt) {
			return FlightNumberPrimary
		}
		return FlightNumberWrong
	}

	if rankClass >= store.RankOneWorld && e.partner != nil {
		partners, err := e.partner.ByICAOPair(dep, arr)
		if err != nil {
			log.Error(fmt.Sprintf("partner lookup %s-%s: %s", dep, arr, err.Error()))
		}
		for _, pr := range partners {
			if strings.EqualFold(pr.FlightNumber, flt) {
				return FlightNumberPartner
			}
		}
	}
	return FlightNumberUnknown
}

// Package validate cross-references submitted PIREPs against the route
// catalogs and the simulator's flight history, and produces an advisory
// verdict enumerating every discrepancy it finds.
package validate

// Issue codes, in the order they are detected.
const (
	IssueIdentityUnresolved   = "identity_unresolved"
	IssueTelemetryUnavailable = "telemetry_unavailable"
	IssueNoMatchingFlight     = "no_matching_flight"
	IssueAircraftMismatch     = "aircraft_mismatch"
	IssueMultiplierTooHigh    = "multiplier_too_high"
	IssueTimeDiscrepancy      = "time_discrepancy"
	IssueZeroFlightTime       = "zero_flight_time"
	IssueWrongFlightNumber    = "exists_but_wrong_number"
	IssueRouteUnknown         = "route_unknown"
)

// Overall outcomes.
const (
	OverallApproved       = "approved"
	OverallApprovedMult   = "approved_with_multiplier"
	OverallReviewRequired = "review_required"
)

// Flight-number validity classes.
const (
	FlightNumberPrimary = "valid_primary_route"
	FlightNumberPartner = "valid_partner_route"
	FlightNumberWrong   = "exists_but_wrong_number"
	FlightNumberUnknown = "route_unknown"
)

// Multiplier assessment codes.
const (
	MultAccurate = "accurate"
	MultOver     = "over"
	MultUnder    = "under"
	MultTooHigh  = "too_high"
)

// MultiplierAssessment compares claimed time against multiplied telemetry.
type MultiplierAssessment struct {
	Code         string `json:"code"`
	DeltaSeconds int64  `json:"delta_seconds"`
}

// Verdict is the engine's output for one PIREP. Re-running validation on
// the same report yields the same verdict, assuming the external stores
// have not moved underneath it.
type Verdict struct {
	PIREPID      int64    `json:"pirep_id"`
	Overall      string   `json:"overall"`
	Issues       []string `json:"issues"`
	PilotDisplay string   `json:"pilot_display"`

	RouteMatch    bool                 `json:"route_match"`
	AircraftMatch bool                 `json:"aircraft_match"`
	Multiplier    MultiplierAssessment `json:"multiplier_assessment"`
	FlightNumber  string               `json:"flight_number_validity"`

	// Narrative fields for the UI sink.
	Departure        string  `json:"departure"`
	Arrival          string  `json:"arrival"`
	ClaimedAircraft  string  `json:"claimed_aircraft"`
	ObservedAircraft string  `json:"observed_aircraft,omitempty"`
	ClaimedSeconds   int64   `json:"claimed_seconds"`
	ExpectedSeconds  int64   `json:"expected_seconds,omitempty"`
	DeclaredMult     float64 `json:"declared_multiplier"`
	MatchedFlightID  string  `json:"matched_flight_id,omitempty"`
	MatchedCreated   string  `json:"matched_created,omitempty"`
}

// addIssue appends code unless already present, keeping detection order.
func (v *Verdict) addIssue(code string) {
	for _, c := range v.Issues {
		if c == code {
			return
		}
	}
	v.Issues = append(v.Issues, code)
}

// HasIssue reports whether code was detected.
func (v *Verdict) HasIssue(code string) bool {
	for _, c := range v.Issues {
		if c == code {
			return true
		}
	}
	return false
}

// finish derives the overall outcome from the issue set.
func (v *Verdict) finish() {
	switch {
	case len(v.Issues) > 0:
		v.Overall = OverallReviewRequired
	case v.DeclaredMult > 1:
		v.Overall = OverallApprovedMult
	default:
		v.Overall = OverallApproved
	}
}

package validate

import (
	"fmt"
	"strings"

	"qrv_ops/internal/uisink"
)

// Report renders a verdict as the three-panel validation message.
func Report(v Verdict) uisink.VerdictReport {
	r := uisink.VerdictReport{
		Title: fmt.Sprintf("# %s - %s #", v.Departure, v.Arrival),
	}

	r.Claim = []string{
		"Pilot: " + orDash(v.PilotDisplay),
		fmt.Sprintf("Route: %s → %s", v.Departure, v.Arrival),
		"Aircraft: " + orDash(v.ClaimedAircraft),
		fmt.Sprintf("Time: %s @ %.1fx", formatSeconds(v.ClaimedSeconds), v.DeclaredMult),
	}

	if v.MatchedFlightID == "" {
		r.Telemetry = []string{"No matching flight found in the last 72 hours."}
	} else {
		r.Telemetry = []string{
			"Flight: " + v.MatchedFlightID,
			"Aircraft: " + orDash(v.ObservedAircraft),
			"Created: " + v.MatchedCreated,
		}
	}

	if v.ExpectedSeconds > 0 {
		r.Performance = []string{
			"Expected: " + formatSeconds(v.ExpectedSeconds),
			"Claimed: " + formatSeconds(v.ClaimedSeconds),
			fmt.Sprintf("Delta: %+ds (%s)", v.Multiplier.DeltaSeconds, v.Multiplier.Code),
		}
	}

	result := []string{"Verdict: " + v.Overall}
	if len(v.Issues) > 0 {
		result = append(result, "Issues: "+strings.Join(v.Issues, ", "))
	}
	if v.FlightNumber != "" {
		result = append(result, "Flight number: "+v.FlightNumber)
	}
	r.Result = result
	return r
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatSeconds(s int64) string {
	return fmt.Sprintf("%dh %02dm", s/3600, (s%3600)/60)
}

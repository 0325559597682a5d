package tracker

import (
	"fmt"

	"qrv_ops/internal/simapi"
	"qrv_ops/internal/validate"
)

// Flight phases shown on the live card.
const (
	PhaseTakeoff    = "Takeoff"
	PhaseClimbing   = "Climbing"
	PhaseCruising   = "Cruising"
	PhaseDescending = "Descending"
	PhaseApproach   = "Approach"
	PhaseOnGround   = "on Ground"
	PhaseLanded     = "Landed"
)

// ClassifyPhase maps altitude (ft) and vertical speed (ft/min) to a phase.
// Rules are evaluated in order; first match wins.
func ClassifyPhase(altitudeFt, verticalSpeedFPM float64) string {
	switch {
	case altitudeFt < 3000 && verticalSpeedFPM > 300:
		return PhaseTakeoff
	case altitudeFt < 15000 && verticalSpeedFPM > 300:
		return PhaseClimbing
	case altitudeFt > 15000:
		return PhaseCruising
	case altitudeFt < 15000 && verticalSpeedFPM < -300:
		return PhaseDescending
	case altitudeFt < 3000 && verticalSpeedFPM < -200:
		return PhaseApproach
	default:
		return PhaseOnGround
	}
}

// phaseFromRoute derives the current phase from the two newest trailing
// points. Vertical speed falls back to zero when the report spacing or
// timestamps are unusable.
func phaseFromRoute(points []simapi.RoutePoint) string {
	if len(points) == 0 {
		return PhaseOnGround
	}
	last := points[len(points)-1]
	var vs float64
	if len(points) >= 2 {
		prev := points[len(points)-2]
		t1, err1 := validate.ParseAPITime(prev.Date)
		t2, err2 := validate.ParseAPITime(last.Date)
		if err1 == nil && err2 == nil {
			if minutes := t2.Sub(t1).Minutes(); minutes > 0 {
				vs = (last.Altitude - prev.Altitude) / minutes
			}
		}
	}
	phase := ClassifyPhase(last.Altitude, vs)
	if phase == PhaseCruising {
		// The cruising line shows the altitude.
		return fmt.Sprintf("%s at %d ft", PhaseCruising, int(last.Altitude))
	}
	return phase
}

// Package uisink defines the structured messages the core emits toward the
// chat platform. The actual chat wiring (embeds, buttons, threads) lives in
// the adapter on the far side of the sink.
package uisink

import (
	"context"
	"errors"
)

// ErrMessageGone is returned by EditFlight when the chat message behind a
// tracked flight no longer exists. The tracker drops the record silently.
var ErrMessageGone = errors.New("chat message gone")

// Card colors.
const (
	ColorInFlight = "green"
	ColorLanded   = "grey"
)

// FlightCard is one live-flight message, posted once and edited in place.
type FlightCard struct {
	ChannelID    string `json:"channel_id"`
	Title        string `json:"title"`         // published flight number or raw callsign
	RouteLine    string `json:"route_line"`    // "OTHH 🇶🇦 → EGLL 🇬🇧"
	AircraftLine string `json:"aircraft_line"` // resolved aircraft name
	StatusLine   string `json:"status_line"`   // "7h00m • 42.3% • Cruising"
	Note         string `json:"note,omitempty"`
	Footer       string `json:"footer"` // "username (QRV001)"
	Color        string `json:"color"`
	Ping         string `json:"ping,omitempty"` // only on creation
	Final        bool   `json:"final"`          // landed: no interactive controls
}

// VerdictReport is the validation result message for one PIREP.
type VerdictReport struct {
	ChannelID   string   `json:"channel_id,omitempty"`
	Title       string   `json:"title"` // "# OTHH - EGLL #"
	Claim       []string `json:"claim"`
	Telemetry   []string `json:"telemetry"`
	Performance []string `json:"performance"`
	Result      []string `json:"result"`
}

// Sink consumes structured messages from the core.
type Sink interface {
	// PostFlight posts a new flight card and returns the chat message id.
	PostFlight(ctx context.Context, card FlightCard) (string, error)
	// EditFlight replaces an existing card. Returns ErrMessageGone when
	// the message has been deleted.
	EditFlight(ctx context.Context, messageID string, card FlightCard) error
	// PostVerdict posts a validation report.
	PostVerdict(ctx context.Context, report VerdictReport) error
}

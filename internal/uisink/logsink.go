package uisink

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
)

// LogSink writes cards to the service log instead of a chat platform.
// Used for local development when no NATS adapter is running.
type LogSink struct {
	nextID atomic.Int64
}

// NewLogSink creates a log-backed sink.
func NewLogSink() *LogSink {
	return &LogSink{}
}

func (s *LogSink) PostFlight(_ context.Context, card FlightCard) (string, error) {
	id := strconv.FormatInt(s.nextID.Add(1), 10)
	log.Info(fmt.Sprintf("[flight %s] %s | %s | %s | %s", id, card.Title, card.RouteLine, card.StatusLine, card.Footer))
	return id, nil
}

func (s *LogSink) EditFlight(_ context.Context, messageID string, card FlightCard) error {
	log.Info(fmt.Sprintf("[flight %s] %s | %s | %s", messageID, card.Title, card.RouteLine, card.StatusLine))
	return nil
}

func (s *LogSink) PostVerdict(_ context.Context, report VerdictReport) error {
	log.Info(fmt.Sprintf("[verdict] %s: %v", report.Title, report.Result))
	return nil
}

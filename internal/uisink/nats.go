package uisink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dhawton/log4g"
	"github.com/nats-io/nats.go"
)

var log = log4g.Category("uisink")

// Subjects the chat adapter subscribes on.
const (
	SubjectFlightPost = "qrv.ui.flight.post"
	SubjectFlightEdit = "qrv.ui.flight.edit"
	SubjectVerdict    = "qrv.ui.verdict"
)

const replyTimeout = 10 * time.Second

// NATSSink bridges core messages to the chat adapter over NATS
// request/reply. The adapter owns the chat-platform session and answers
// with the message ids it created.
type NATSSink struct {
	nc *nats.Conn
}

// ConnectNATS dials the NATS server and returns a sink.
func ConnectNATS(natsURL string) (*NATSSink, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("qrv-ops-core"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &NATSSink{nc: nc}, nil
}

// Close drains the connection.
func (s *NATSSink) Close() {
	_ = s.nc.Drain()
}

// editRequest wraps a card with the message id being edited.
type editRequest struct {
	MessageID string     `json:"message_id"`
	Card      FlightCard `json:"card"`
}

// adapterReply is the chat adapter's answer to post/edit requests.
type adapterReply struct {
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"` // "not_found" when the message is gone
}

func (s *NATSSink) request(ctx context.Context, subject string, payload any) (*adapterReply, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", subject, err)
	}
	msg, err := s.nc.RequestWithContext(ctx, subject, raw)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", subject, err)
	}
	var reply adapterReply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return nil, fmt.Errorf("decode reply on %s: %w", subject, err)
	}
	return &reply, nil
}

// PostFlight publishes a new flight card and returns the adapter's
// chat message id.
func (s *NATSSink) PostFlight(ctx context.Context, card FlightCard) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, replyTimeout)
	defer cancel()

	reply, err := s.request(ctx, SubjectFlightPost, card)
	if err != nil {
		return "", err
	}
	if reply.Error != "" {
		return "", fmt.Errorf("post flight: adapter error: %s", reply.Error)
	}
	return reply.MessageID, nil
}

// EditFlight publishes a card edit for an existing chat message.
func (s *NATSSink) EditFlight(ctx context.Context, messageID string, card FlightCard) error {
	ctx, cancel := context.WithTimeout(ctx, replyTimeout)
	defer cancel()

	reply, err := s.request(ctx, SubjectFlightEdit, editRequest{MessageID: messageID, Card: card})
	if err != nil {
		return err
	}
	if reply.Error == "not_found" {
		return ErrMessageGone
	}
	if reply.Error != "" {
		return fmt.Errorf("edit flight: adapter error: %s", reply.Error)
	}
	return nil
}

// PostVerdict publishes a validation report. Fire and forget; the adapter
// does not need to answer with an id we would ever edit.
func (s *NATSSink) PostVerdict(ctx context.Context, report VerdictReport) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode verdict: %w", err)
	}
	if err := s.nc.Publish(SubjectVerdict, raw); err != nil {
		return fmt.Errorf("publish verdict: %w", err)
	}
	return nil
}

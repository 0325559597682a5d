package store

import (
	"context"
	"regexp"
)

// Resolution failure reasons.
const (
	ReasonNoChatMatch       = "no_chat_match"
	ReasonAmbiguousCallsign = "ambiguous_callsign_in_name"
	ReasonUnlinkedAccount   = "unlinked_account"
)

// Patterns used for identity resolution. Exported so the test suite can
// exercise them directly.
var (
	// CallsignPattern finds QRV callsigns embedded in display names.
	CallsignPattern = regexp.MustCompile(`QRV\d{3}`)
	// IFCUsernamePattern extracts a forum username from a profile URL or
	// a "/u/<name>" fragment in a display name.
	IFCUsernamePattern = regexp.MustCompile(`/(?:u|users)/([^/?#\s]+)`)
	// ChatIDPattern matches chat-platform numeric user ids.
	ChatIDPattern = regexp.MustCompile(`^\d{18,20}$`)
)

// ChatUser is the identity the chat platform hands us.
type ChatUser struct {
	ID          string
	DisplayName string
}

// PilotDirectory is the roster capability the resolver needs.
type PilotDirectory interface {
	PilotByChatID(ctx context.Context, chatUserID string) (*Pilot, error)
	PilotByCallsign(ctx context.Context, callsign string) (*Pilot, error)
	PilotByIFCUsername(ctx context.Context, username string) (*Pilot, error)
}

// Resolution is the outcome of an identity lookup.
type Resolution struct {
	Success bool
	Pilot   *Pilot
	Reason  string // set when Success is false
}

// IdentifyPilot maps a chat user to a roster pilot. Fallback chain: linked
// chat id, then a QRV callsign embedded in the display name, then an IFC
// username fragment. The first hit wins.
func IdentifyPilot(ctx context.Context, dir PilotDirectory, user ChatUser) (Resolution, error) {
	if user.ID != "" && ChatIDPattern.MatchString(user.ID) {
		p, err := dir.PilotByChatID(ctx, user.ID)
		if err != nil {
			return Resolution{}, err
		}
		if p != nil {
			return Resolution{Success: true, Pilot: p}, nil
		}
	}

	if callsigns := CallsignPattern.FindAllString(user.DisplayName, -1); len(callsigns) > 0 {
		if distinctCount(callsigns) > 1 {
			return Resolution{Reason: ReasonAmbiguousCallsign}, nil
		}
		p, err := dir.PilotByCallsign(ctx, callsigns[0])
		if err != nil {
			return Resolution{}, err
		}
		if p != nil {
			return Resolution{Success: true, Pilot: p}, nil
		}
	}

	if m := IFCUsernamePattern.FindStringSubmatch(user.DisplayName); m != nil {
		p, err := dir.PilotByIFCUsername(ctx, m[1])
		if err != nil {
			return Resolution{}, err
		}
		if p != nil {
			return Resolution{Success: true, Pilot: p}, nil
		}
		return Resolution{Reason: ReasonUnlinkedAccount}, nil
	}

	return Resolution{Reason: ReasonNoChatMatch}, nil
}

func distinctCount(tokens []string) int {
	seen := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		seen[t] = true
	}
	return len(seen)
}

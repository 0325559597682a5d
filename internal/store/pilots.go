package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Rank classes in ascending order. Partner ("OneWorld Discover") routes are
// open to pilots at RankOneWorld and above. The hour thresholds behind
// these classes live in the roster, not here.
const (
	RankCadet = iota
	RankFirstOfficer
	RankCaptain
	RankSenior
	RankOneWorld
	RankExecutive
)

// StatusActive marks an active roster pilot; any other value is inactive.
const StatusActive = 1

// Pilot is one roster record. Callsign is unique among active pilots.
type Pilot struct {
	ID          int64
	Callsign    string // QRV###
	Name        string
	ChatUserID  string // 18-20 digit chat-platform id, may be empty
	SimUserID   string // simulator user id, learned lazily, may be empty
	IFCURL      string // forum profile URL or bare username, may be empty
	Status      int
	RankClass   int
	FlightHours float64
}

// Active reports whether the pilot is on the active roster.
func (p *Pilot) Active() bool { return p.Status == StatusActive }

const pilotColumns = `id, callsign, name, chat_user_id, sim_user_id, ifc_url, status, rank_class, flight_hours`

func scanPilot(row pgx.Row) (*Pilot, error) {
	var p Pilot
	var chatID, simID, ifc *string
	err := row.Scan(&p.ID, &p.Callsign, &p.Name, &chatID, &simID, &ifc, &p.Status, &p.RankClass, &p.FlightHours)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if chatID != nil {
		p.ChatUserID = *chatID
	}
	if simID != nil {
		p.SimUserID = *simID
	}
	if ifc != nil {
		p.IFCURL = *ifc
	}
	return &p, nil
}

// PilotByID retrieves a pilot by internal id.
func (d *DB) PilotByID(ctx context.Context, id int64) (*Pilot, error) {
	return scanPilot(d.pool.QueryRow(ctx,
		`SELECT `+pilotColumns+` FROM pilots WHERE id = $1`, id))
}

// PilotByCallsign retrieves an active pilot by QRV callsign.
func (d *DB) PilotByCallsign(ctx context.Context, callsign string) (*Pilot, error) {
	return scanPilot(d.pool.QueryRow(ctx,
		`SELECT `+pilotColumns+` FROM pilots WHERE callsign = $1 AND status = $2`,
		callsign, StatusActive))
}

// PilotByChatID retrieves a pilot by chat-platform user id.
func (d *DB) PilotByChatID(ctx context.Context, chatUserID string) (*Pilot, error) {
	return scanPilot(d.pool.QueryRow(ctx,
		`SELECT `+pilotColumns+` FROM pilots WHERE chat_user_id = $1`, chatUserID))
}

// PilotBySimUserID retrieves a pilot by simulator user id.
func (d *DB) PilotBySimUserID(ctx context.Context, simUserID string) (*Pilot, error) {
	return scanPilot(d.pool.QueryRow(ctx,
		`SELECT `+pilotColumns+` FROM pilots WHERE sim_user_id = $1`, simUserID))
}

// PilotByIFCUsername retrieves a pilot whose forum URL embeds the given
// username. Matches both full profile URLs and bare stored usernames.
func (d *DB) PilotByIFCUsername(ctx context.Context, username string) (*Pilot, error) {
	return scanPilot(d.pool.QueryRow(ctx,
		`SELECT `+pilotColumns+` FROM pilots
		 WHERE ifc_url = $1 OR ifc_url ILIKE '%/u/' || $1 || '%' OR ifc_url ILIKE '%/users/' || $1 || '%'`,
		username))
}

// UpdateSimUserIDByIFCUsername persists a learned simulator user id against
// the pilot whose forum URL embeds the username. Racing writers store the
// same value, so the update is idempotent.
func (d *DB) UpdateSimUserIDByIFCUsername(ctx context.Context, username, simUserID string) error {
	tag, err := d.pool.Exec(ctx,
		`UPDATE pilots SET sim_user_id = $2
		 WHERE ifc_url = $1 OR ifc_url ILIKE '%/u/' || $1 || '%' OR ifc_url ILIKE '%/users/' || $1 || '%'`,
		username, simUserID)
	if err != nil {
		return fmt.Errorf("writeback sim user id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		log.Warning("writeback matched no pilot for IFC username " + username)
	}
	return nil
}

// ActivePilots returns the full active roster.
func (d *DB) ActivePilots(ctx context.Context) ([]Pilot, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT `+pilotColumns+` FROM pilots WHERE status = $1 ORDER BY callsign`, StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pilots []Pilot
	for rows.Next() {
		var p Pilot
		var chatID, simID, ifc *string
		if err := rows.Scan(&p.ID, &p.Callsign, &p.Name, &chatID, &simID, &ifc, &p.Status, &p.RankClass, &p.FlightHours); err != nil {
			return nil, err
		}
		if chatID != nil {
			p.ChatUserID = *chatID
		}
		if simID != nil {
			p.SimUserID = *simID
		}
		if ifc != nil {
			p.IFCURL = *ifc
		}
		pilots = append(pilots, p)
	}
	return pilots, rows.Err()
}

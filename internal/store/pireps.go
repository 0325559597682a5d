package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// PIREP statuses.
const (
	PIREPPending  = "pending"
	PIREPApproved = "approved"
	PIREPRejected = "rejected"
)

// PIREP is one submitted flight report. The core never mutates these;
// verdicts are advisory and final status is set by staff workflows.
type PIREP struct {
	ID           int64
	PilotID      int64
	FlightNumber string
	Departure    string // ICAO, uppercased
	Arrival      string // ICAO, uppercased
	AircraftName string
	FlightTime   int64 // seconds
	FuelUsedKG   int64
	Multiplier   float64
	FiledDate    time.Time // naive UTC
	Status       string
}

const pirepColumns = `id, pilot_id, flightnum, departure, arrival, aircraft, flighttime, fuel_used, multiplier, date, status`

func scanPIREP(row pgx.Row) (*PIREP, error) {
	var p PIREP
	err := row.Scan(&p.ID, &p.PilotID, &p.FlightNumber, &p.Departure, &p.Arrival,
		&p.AircraftName, &p.FlightTime, &p.FuelUsedKG, &p.Multiplier, &p.FiledDate, &p.Status)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// PIREPByID retrieves one report.
func (d *DB) PIREPByID(ctx context.Context, id int64) (*PIREP, error) {
	return scanPIREP(d.pool.QueryRow(ctx,
		`SELECT `+pirepColumns+` FROM pireps WHERE id = $1`, id))
}

// PendingPIREPs returns the pending-report queue, oldest first.
func (d *DB) PendingPIREPs(ctx context.Context) ([]PIREP, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT `+pirepColumns+` FROM pireps WHERE status = $1 ORDER BY date`, PIREPPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PIREP
	for rows.Next() {
		var p PIREP
		if err := rows.Scan(&p.ID, &p.PilotID, &p.FlightNumber, &p.Departure, &p.Arrival,
			&p.AircraftName, &p.FlightTime, &p.FuelUsedKG, &p.Multiplier, &p.FiledDate, &p.Status); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// TotalFlightTime sums a pilot's approved flight time in seconds.
func (d *DB) TotalFlightTime(ctx context.Context, pilotID int64) (int64, error) {
	var total *int64
	err := d.pool.QueryRow(ctx,
		`SELECT SUM(flighttime) FROM pireps WHERE pilot_id = $1 AND status = $2`,
		pilotID, PIREPApproved).Scan(&total)
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

package store

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
)

// RouteAircraft is one aircraft option on a route. DisplayName carries the
// livery-qualified name shown to pilots ("Qatari Boeing 777-300ER").
type RouteAircraft struct {
	ICAO        string
	DisplayName string
	Livery      string
}

// Route is one catalog entry. A route may be flown under several flight
// numbers; FlightNumbers keeps the raw comma-separated list.
type Route struct {
	FlightNumbers string // CSV, e.g. "QR4,QR5"
	Departure     string // ICAO
	Arrival       string // ICAO
	Duration      int64  // seconds
	Aircraft      []RouteAircraft
}

// MatchesFlightNumber reports whether flt is one of the comma-separated
// tokens in csv. Matching is token-exact: "QR4" matches "QR4,QR5" but not
// "QR40" and never by substring.
func MatchesFlightNumber(flt, csv string) bool {
	if flt == "" {
		return false
	}
	for _, tok := range strings.Split(csv, ",") {
		if strings.EqualFold(strings.TrimSpace(tok), flt) {
			return true
		}
	}
	return false
}

// HasFlightNumber reports whether the route is flown under flt.
func (r *Route) HasFlightNumber(flt string) bool {
	return MatchesFlightNumber(flt, r.FlightNumbers)
}

// composeAircraftName joins a non-generic livery with the airframe name.
func composeAircraftName(livery, aircraft string) string {
	livery = strings.TrimSpace(livery)
	if livery == "" || strings.EqualFold(livery, "generic") {
		return aircraft
	}
	return livery + " " + aircraft
}

// dedupeAircraft drops duplicate (icao, name) pairs, keeping first order.
func dedupeAircraft(in []RouteAircraft) []RouteAircraft {
	seen := make(map[string]bool, len(in))
	out := make([]RouteAircraft, 0, len(in))
	for _, a := range in {
		key := a.ICAO + "\x00" + a.DisplayName
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}
	return out
}

func (d *DB) routeAircraft(ctx context.Context, routeID int64) ([]RouteAircraft, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT icao, name, COALESCE(livery, '') FROM route_aircraft WHERE route_id = $1 ORDER BY id`, routeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RouteAircraft
	for rows.Next() {
		var icao, name, livery string
		if err := rows.Scan(&icao, &name, &livery); err != nil {
			return nil, err
		}
		out = append(out, RouteAircraft{
			ICAO:        icao,
			DisplayName: composeAircraftName(livery, name),
			Livery:      livery,
		})
	}
	return dedupeAircraft(out), rows.Err()
}

// RouteByICAOPair looks up the primary catalog by departure and arrival.
func (d *DB) RouteByICAOPair(ctx context.Context, dep, arr string) (*Route, error) {
	dep = strings.ToUpper(strings.TrimSpace(dep))
	arr = strings.ToUpper(strings.TrimSpace(arr))

	var r Route
	var id int64
	err := d.pool.QueryRow(ctx,
		`SELECT id, fltnum, dep, arr, duration FROM routes WHERE dep = $1 AND arr = $2`,
		dep, arr).Scan(&id, &r.FlightNumbers, &r.Departure, &r.Arrival, &r.Duration)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	r.Aircraft, err = d.routeAircraft(ctx, id)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// RouteByFlightNumber looks up the primary catalog by a single flight
// number. The CSV column is pre-filtered in SQL and confirmed with the
// tokenizer so "QR4" never matches "QR40".
func (d *DB) RouteByFlightNumber(ctx context.Context, flt string) (*Route, error) {
	flt = strings.ToUpper(strings.TrimSpace(flt))
	if flt == "" {
		return nil, nil
	}

	rows, err := d.pool.Query(ctx,
		`SELECT id, fltnum, dep, arr, duration FROM routes WHERE fltnum ILIKE '%' || $1 || '%'`, flt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var r Route
		var id int64
		if err := rows.Scan(&id, &r.FlightNumbers, &r.Departure, &r.Arrival, &r.Duration); err != nil {
			return nil, err
		}
		if !r.HasFlightNumber(flt) {
			continue
		}
		rows.Close()
		r.Aircraft, err = d.routeAircraft(ctx, id)
		if err != nil {
			return nil, err
		}
		return &r, nil
	}
	return nil, rows.Err()
}

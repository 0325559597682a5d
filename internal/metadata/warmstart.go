package metadata

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"qrv_ops/internal/simapi"
)

// warmStore snapshots resolved names into a local sqlite file so a restart
// does not refetch the whole catalog. Writes are best-effort; the cache
// works fine without it.
type warmStore struct {
	db *sql.DB
}

const warmSchema = `
CREATE TABLE IF NOT EXISTS aircraft_names (
	aircraft_id TEXT PRIMARY KEY,
	name        TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS livery_names (
	livery_id   TEXT PRIMARY KEY,
	aircraft_id TEXT NOT NULL,
	name        TEXT NOT NULL
);
`

func openWarmStore(path string) (*warmStore, error) {
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open warm store: %w", err)
	}
	if _, err := db.Exec(warmSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("warm store schema: %w", err)
	}
	return &warmStore{db: db}, nil
}

func (w *warmStore) close() {
	_ = w.db.Close()
}

// loadInto pre-populates the in-memory maps. The aircraftLoaded flag stays
// false so the first real consumer still refreshes the full catalog.
func (w *warmStore) loadInto(c *Cache) {
	rows, err := w.db.Query(`SELECT aircraft_id, name FROM aircraft_names`)
	if err == nil {
		for rows.Next() {
			var id, name string
			if rows.Scan(&id, &name) == nil {
				c.aircraft[id] = name
			}
		}
		_ = rows.Close()
	}

	rows, err = w.db.Query(`SELECT livery_id, name FROM livery_names`)
	if err == nil {
		n := 0
		for rows.Next() {
			var id, name string
			if rows.Scan(&id, &name) == nil {
				c.liveries[id] = name
				n++
			}
		}
		_ = rows.Close()
		if n > 0 {
			log.Info(fmt.Sprintf("warm-start: %d aircraft, %d liveries", len(c.aircraft), n))
		}
	}
}

func (w *warmStore) putAircraft(list []simapi.AircraftInfo) {
	for _, a := range list {
		_, err := w.db.Exec(`
			INSERT INTO aircraft_names (aircraft_id, name) VALUES (?, ?)
			ON CONFLICT(aircraft_id) DO UPDATE SET name = excluded.name
		`, a.ID, a.Name)
		_ = err
	}
}

func (w *warmStore) putLiveries(list []simapi.LiveryInfo) {
	for _, l := range list {
		_, err := w.db.Exec(`
			INSERT INTO livery_names (livery_id, aircraft_id, name) VALUES (?, ?, ?)
			ON CONFLICT(livery_id) DO UPDATE SET name = excluded.name
		`, l.ID, l.AircraftID, l.LiveryName)
		_ = err
	}
}

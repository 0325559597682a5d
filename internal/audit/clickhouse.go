// Package audit archives validation verdicts and finalized flight
// summaries to ClickHouse for the organization's activity reviews. The
// archive is optional and best-effort; the core works without it. No raw
// simulator telemetry is stored here.
package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/dhawton/log4g"

	"qrv_ops/internal/tracker"
	"qrv_ops/internal/validate"
)

var log = log4g.Category("audit")

// Config holds ClickHouse connection settings.
type Config struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// Archive wraps a ClickHouse connection.
type Archive struct {
	conn driver.Conn
}

// Open connects to ClickHouse and verifies with a ping.
func Open(ctx context.Context, cfg Config) (*Archive, error) {
	if cfg.Port == 0 {
		cfg.Port = 9000
	}
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:     10 * time.Second,
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("open clickhouse: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}
	return &Archive{conn: conn}, nil
}

// Close closes the connection.
func (a *Archive) Close() error {
	return a.conn.Close()
}

// CreateSchema creates the archive tables.
func (a *Archive) CreateSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS pirep_verdicts (
			pirep_id        UInt64,
			overall         LowCardinality(String),
			issues          String,
			pilot_display   String,
			departure       LowCardinality(String),
			arrival         LowCardinality(String),
			claimed_seconds Int64,
			expected_seconds Int64,
			multiplier      Float64,
			flight_number_validity LowCardinality(String),
			created_at      DateTime64(3) DEFAULT now64(3)
		)
		ENGINE = MergeTree()
		PARTITION BY toYYYYMM(created_at)
		ORDER BY (overall, created_at, pirep_id)`,

		`CREATE TABLE IF NOT EXISTS flight_log (
			flight_id       String,
			callsign        String,
			sim_username    String,
			departure       LowCardinality(String),
			arrival         LowCardinality(String),
			flight_number   LowCardinality(String),
			distance_nm     Float64,
			created_at      DateTime64(3) DEFAULT now64(3)
		)
		ENGINE = MergeTree()
		PARTITION BY toYYYYMM(created_at)
		ORDER BY (callsign, created_at)`,
	}
	for _, q := range queries {
		if err := a.conn.Exec(ctx, q); err != nil {
			return fmt.Errorf("create audit schema: %w", err)
		}
	}
	return nil
}

// WriteVerdict archives one validation verdict. Best-effort.
func (a *Archive) WriteVerdict(ctx context.Context, v validate.Verdict) {
	err := a.conn.Exec(ctx, `
		INSERT INTO pirep_verdicts
			(pirep_id, overall, issues, pilot_display, departure, arrival,
			 claimed_seconds, expected_seconds, multiplier, flight_number_validity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, uint64(v.PIREPID), v.Overall, strings.Join(v.Issues, ","), v.PilotDisplay,
		v.Departure, v.Arrival, v.ClaimedSeconds, v.ExpectedSeconds,
		v.DeclaredMult, v.FlightNumber)
	if err != nil {
		log.Warning("archive verdict: " + err.Error())
	}
}

// FlightFinalized archives a landed tracked flight. Implements
// tracker.Finalizer.
func (a *Archive) FlightFinalized(ctx context.Context, tf tracker.TrackedFlight) {
	err := a.conn.Exec(ctx, `
		INSERT INTO flight_log
			(flight_id, callsign, sim_username, departure, arrival, flight_number, distance_nm)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, tf.FlightID, tf.Callsign, tf.SimUsername, tf.Departure, tf.Arrival,
		tf.FlightNumber, tf.DistanceNM)
	if err != nil {
		log.Warning("archive flight: " + err.Error())
	}
}

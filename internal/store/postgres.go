// Package store provides read access to the airline's relational data:
// the pilot roster, the PIREP queue and the route catalogs. Lookups follow
// the convention that a missing row is (nil, nil), not an error.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/dhawton/log4g"
	"github.com/jackc/pgx/v5/pgxpool"
)

var log = log4g.Category("store")

// Config holds PostgreSQL connection settings.
type Config struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// DB wraps a PostgreSQL connection pool over the roster schema.
type DB struct {
	pool *pgxpool.Pool
}

// Open opens a connection pool and verifies it with a ping.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	if cfg.Port == 0 {
		cfg.Port = 5432
	}
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	// Bad credentials are not fatal here. Queries will fail at use and
	// their callers treat the rows as absent.
	if err := pool.Ping(ctx); err != nil {
		log.Warning("postgres unreachable at startup: " + err.Error())
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool.
func (d *DB) Close() {
	d.pool.Close()
}

// Pool returns the underlying connection pool for advanced operations.
func (d *DB) Pool() *pgxpool.Pool {
	return d.pool
}

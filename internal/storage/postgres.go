// Package storage provides Postgres and Redis access for the outreach
// engine: the connection pool, schema migrations, the response cache, and
// one repository per persisted entity.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/outreach-engine/internal/config"
)

// Pool tuning shared by the API server and the worker binaries. Enrichment
// fans out over the pool, so a couple of connections stay warm between
// ingest bursts.
const (
	poolMinConns          = 2
	poolConnMaxLifetime   = time.Hour
	poolConnMaxIdleTime   = 30 * time.Minute
	poolHealthCheckPeriod = time.Minute
	poolConnectTimeout    = 10 * time.Second
)

// PostgresDB owns the pgx connection pool the repositories query through.
type PostgresDB struct {
	pool *pgxpool.Pool
}

// NewPostgresDB opens a connection pool against the configured database and
// verifies it with a ping before returning.
func NewPostgresDB(cfg *config.PostgresConfig) (*PostgresDB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres url: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections) // #nosec G115 - MaxConnections is validated in config
	poolConfig.MinConns = poolMinConns
	poolConfig.MaxConnLifetime = poolConnMaxLifetime
	poolConfig.MaxConnIdleTime = poolConnMaxIdleTime
	poolConfig.HealthCheckPeriod = poolHealthCheckPeriod

	ctx, cancel := context.WithTimeout(context.Background(), poolConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &PostgresDB{pool: pool}, nil
}

// Close releases the connection pool
func (db *PostgresDB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Pool exposes the underlying pool to the repositories
func (db *PostgresDB) Pool() *pgxpool.Pool {
	return db.pool
}

// Ping reports whether the database is reachable
func (db *PostgresDB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

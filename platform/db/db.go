// Package db opens the Postgres pool and runs schema migrations.
package db

import (
	"context"
	"fmt"
	"time"

	"openhouse_backend/platform/config"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is what repositories need from a pool. pgxmock pools satisfy it
// too.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ Querier = (*pgxpool.Pool)(nil)

// PoolSettings sizes the pool. The API and the scheduler worker share one
// database, so neither takes more than a fraction of max_connections.
type PoolSettings struct {
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

var DefaultPoolSettings = PoolSettings{
	MaxConns:          20,
	MinConns:          2,
	MaxConnLifetime:   time.Hour,
	MaxConnIdleTime:   30 * time.Minute,
	HealthCheckPeriod: time.Minute,
}

const (
	pingAttempts = 5
	pingBackoff  = 500 * time.Millisecond
)

type pinger interface {
	Ping(ctx context.Context) error
}

func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	return NewPoolWithSettings(ctx, cfg, DefaultPoolSettings)
}

// NewPoolWithSettings connects and pings, retrying while Postgres is still
// starting up.
func NewPoolWithSettings(ctx context.Context, cfg config.DatabaseConfig, settings PoolSettings) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	applySettings(poolConfig, settings)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}

	if err := pingWithRetry(ctx, pool, pingAttempts, pingBackoff); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func applySettings(pc *pgxpool.Config, s PoolSettings) {
	if s.MaxConns > 0 {
		pc.MaxConns = s.MaxConns
	}
	if s.MinConns > 0 && s.MinConns <= pc.MaxConns {
		pc.MinConns = s.MinConns
	}
	if s.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = s.MaxConnLifetime
	}
	if s.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = s.MaxConnIdleTime
	}
	if s.HealthCheckPeriod > 0 {
		pc.HealthCheckPeriod = s.HealthCheckPeriod
	}
}

// pingWithRetry doubles the wait after each failed attempt.
func pingWithRetry(ctx context.Context, p pinger, attempts int, backoff time.Duration) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = p.Ping(ctx); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("ping database: %w", ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return fmt.Errorf("ping database after %d attempts: %w", attempts, err)
}

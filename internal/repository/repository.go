package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store drivers accepted by Open.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// NewPool opens a PostgreSQL pool and pings it.
func NewPool(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// Open returns the ContactRepository for driver along with a close function.
func Open(ctx context.Context, driver, databaseURL string) (ContactRepository, func(), error) {
	switch driver {
	case "", DriverMemory:
		return NewMemoryContactRepository(), func() {}, nil
	case DriverPostgres:
		if databaseURL == "" {
			return nil, nil, fmt.Errorf("repository: DATABASE_URL is required for the %s driver", DriverPostgres)
		}
		pool, err := NewPool(ctx, databaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("repository: connect: %w", err)
		}
		return NewPgContactRepository(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("repository: unknown store driver %q", driver)
	}
}

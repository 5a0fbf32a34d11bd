package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/cartapi/internal/migrations"
)

func OpenPostgres(ctx context.Context, connStr string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pool.Ping: %w", err)
	}

	return pool, nil
}

// MigratePostgres applies the embedded schema. Every statement is idempotent.
func MigratePostgres(ctx context.Context, pool *pgxpool.Pool) error {
	scripts, err := migrations.Postgres()
	if err != nil {
		return fmt.Errorf("migrations.Postgres: %w", err)
	}

	for _, script := range scripts {
		// no arguments: pgx sends it over the simple protocol, so multiple statements are fine
		if _, err := pool.Exec(ctx, script); err != nil {
			return fmt.Errorf("pool.Exec: %w", err)
		}
	}

	return nil
}

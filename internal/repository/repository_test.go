package repository_test

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/cartapi/internal/repository"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// startPostgres runs a throwaway server and applies the embedded schema the same way the service does on boot.
func startPostgres(ctx context.Context) (testcontainers.Container, *pgxpool.Pool, error) {
	container, err := postgres.Run(ctx, "postgres:17.6-alpine3.22",
		postgres.WithDatabase("carts"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return container, nil, fmt.Errorf("container.ConnectionString: %w", err)
	}

	pool, err := repository.OpenPostgres(ctx, connStr)
	if err != nil {
		return container, nil, fmt.Errorf("repository.OpenPostgres: %w", err)
	}

	if err := repository.MigratePostgres(ctx, pool); err != nil {
		pool.Close()
		return container, nil, fmt.Errorf("repository.MigratePostgres: %w", err)
	}

	return container, pool, nil
}

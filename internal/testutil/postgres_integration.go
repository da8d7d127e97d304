//go:build integration

package testutil

import (
	"context"
	"fmt"
	"time"

	pgrepo "github.com/Gunvolt24/order_notifier/internal/repo/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PGContainer — поднятый Postgres и пул к нему.
type PGContainer struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	DSN       string
}

// StartPostgresTC — запускает postgres:16-alpine и открывает пул тем же
// конструктором, что и приложение.
func StartPostgresTC(ctx context.Context) (*PGContainer, func(context.Context) error, error) {
	pg, err := postgres.Run(
		ctx,
		"postgres:16-alpine",
		tc.WithLifecycleHooks(lifecycleHooks(tcLogger, "postgres")),
		postgres.WithDatabase("notifier"),
		postgres.WithUsername("app"),
		postgres.WithPassword("app"),
		tc.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("run postgres: %w", err)
	}

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = tc.TerminateContainer(pg)
		return nil, nil, fmt.Errorf("conn string: %w", err)
	}

	pool, err := pgrepo.NewPool(ctx, dsn, 5)
	if err != nil {
		_ = tc.TerminateContainer(pg)
		return nil, nil, err
	}

	stop := func(context.Context) error {
		pool.Close()
		return tc.TerminateContainer(pg)
	}
	return &PGContainer{Container: pg, Pool: pool, DSN: dsn}, stop, nil
}

// ApplyMigrationsGoose — применяет встроенные миграции к поднятому контейнеру.
func ApplyMigrationsGoose(ctx context.Context, pg *PGContainer) error {
	if err := pgrepo.Migrate(ctx, pg.Pool); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// TruncateStores — очищает таблицу хранилищ между подтестами.
func TruncateStores(ctx context.Context, pg *PGContainer) error {
	_, err := pg.Pool.Exec(ctx, `TRUNCATE timestamp_entries`)
	return err
}

package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/udisondev/magic2d/internal/db/migrations"
)

// Postgres — запущенный PostgreSQL testcontainer с применёнными миграциями.
type Postgres struct {
	DSN  string
	Pool *pgxpool.Pool

	container *postgres.PostgresContainer
}

// StartPostgres запускает PostgreSQL 16 и применяет миграции.
// Вызывающий обязан вызвать Terminate.
func StartPostgres(ctx context.Context) (*Postgres, error) {
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, fmt.Errorf("starting postgres container: %w", err)
	}

	pg := &Postgres{container: container}

	pg.DSN, err = container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		pg.Terminate()
		return nil, fmt.Errorf("getting connection string: %w", err)
	}

	pg.Pool, err = pgxpool.New(ctx, pg.DSN)
	if err != nil {
		pg.Terminate()
		return nil, fmt.Errorf("connecting to test db: %w", err)
	}

	if err := MigratePool(ctx, pg.Pool); err != nil {
		pg.Terminate()
		return nil, err
	}
	return pg, nil
}

// Terminate closes the pool and stops the container.
func (p *Postgres) Terminate() {
	if p.Pool != nil {
		p.Pool.Close()
	}
	_ = testcontainers.TerminateContainer(p.container)
}

// SetupTestDB создаёт отдельный PostgreSQL testcontainer для одного теста.
// Пропускает тест в -short режиме. Cleanup автоматический.
func SetupTestDB(tb testing.TB) *Postgres {
	tb.Helper()
	if testing.Short() {
		tb.Skip("postgres tests are skipped in -short mode")
	}

	pg, err := StartPostgres(context.Background())
	if err != nil {
		tb.Fatalf("setting up test db: %v", err)
	}
	tb.Cleanup(pg.Terminate)
	return pg
}

// MigratePool применяет embedded миграции через goose.
func MigratePool(ctx context.Context, pool *pgxpool.Pool) error {
	// goose требует *sql.DB, получаем его из pgxpool
	connStr := stdlib.RegisterConnConfig(pool.Config().ConnConfig)
	sqlDB, err := sql.Open("pgx", connStr)
	if err != nil {
		return fmt.Errorf("opening sql.DB: %w", err)
	}
	defer sqlDB.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}
	return nil
}

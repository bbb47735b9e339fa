package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the postgres connection behind the report repository.
type DB struct {
	pool *pgxpool.Pool
}

// New opens a pool on dsn and checks it with a ping. Migrations are run
// separately by RunMigrations.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to report database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging report database: %w", err)
	}
	cfg := pool.Config().ConnConfig
	slog.Debug("report database connected", "host", cfg.Host, "database", cfg.Database)
	return &DB{pool: pool}, nil
}

// Reports returns a repository over the pool; it stays valid until Close.
func (d *DB) Reports() *ReportRepository {
	return NewReportRepository(d.pool)
}

func (d *DB) Close() {
	d.pool.Close()
}

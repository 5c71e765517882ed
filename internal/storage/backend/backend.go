// Package backend opens the configured store implementation.
package backend

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"bar-feature-lab/internal/config"
	"bar-feature-lab/internal/storage"
	"bar-feature-lab/internal/storage/clickhouse"
	"bar-feature-lab/internal/storage/memory"
	"bar-feature-lab/internal/storage/migrations"
	"bar-feature-lab/internal/storage/postgres"
	"bar-feature-lab/internal/storage/sqlite"
)

// Stores groups the stores of one backend.
// A nil store means the backend does not provide it.
type Stores struct {
	Backend  string
	Features storage.FeatureStore
	Fills    storage.FillStore
	Runs     storage.RunStore

	closeFn func() error
}

// Close releases the backend connection.
func (s *Stores) Close() error {
	if s == nil || s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}

// Open connects to the backend selected in cfg and applies its migrations.
// The none backend returns empty Stores.
func Open(ctx context.Context, cfg config.Store, logger zerolog.Logger) (*Stores, error) {
	switch cfg.Backend {
	case "", config.BackendNone:
		return &Stores{Backend: config.BackendNone}, nil

	case config.BackendMemory:
		logger.Debug().Msg("using in-memory stores")
		return &Stores{
			Backend:  config.BackendMemory,
			Features: memory.NewFeatureStore(),
			Fills:    memory.NewFillStore(),
			Runs:     memory.NewRunStore(),
		}, nil

	case config.BackendPostgres:
		return openPostgres(ctx, cfg.PostgresDSN, logger)

	case config.BackendClickHouse:
		return openClickHouse(ctx, cfg.ClickHouseDSN, logger)

	case config.BackendSQLite:
		return openSQLite(ctx, cfg.SQLitePath, logger)

	default:
		return nil, fmt.Errorf("%w: unknown store backend %q", config.ErrInvalidConfig, cfg.Backend)
	}
}

func openPostgres(ctx context.Context, dsn string, logger zerolog.Logger) (*Stores, error) {
	pool, err := postgres.NewPool(ctx, dsn)
	if err != nil {
		return nil, err
	}

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres migrations: %w", err)
	}
	logger.Info().Msg("postgres store ready")

	return &Stores{
		Backend:  config.BackendPostgres,
		Features: postgres.NewFeatureStore(pool),
		Fills:    postgres.NewFillStore(pool),
		Runs:     postgres.NewRunStore(pool),
		closeFn: func() error {
			pool.Close()
			return nil
		},
	}, nil
}

// openClickHouse provides the feature store only.
func openClickHouse(ctx context.Context, dsn string, logger zerolog.Logger) (*Stores, error) {
	if err := clickhouse.EnsureDatabase(ctx, dsn); err != nil {
		return nil, err
	}

	conn, err := clickhouse.NewConn(ctx, dsn)
	if err != nil {
		return nil, err
	}

	if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("clickhouse migrations: %w", err)
	}
	logger.Info().Msg("clickhouse store ready")

	return &Stores{
		Backend:  config.BackendClickHouse,
		Features: clickhouse.NewFeatureStore(conn),
		closeFn:  conn.Close,
	}, nil
}

func openSQLite(ctx context.Context, path string, logger zerolog.Logger) (*Stores, error) {
	db, err := sqlite.Open(ctx, path)
	if err != nil {
		return nil, err
	}

	if err := migrations.RunSQLiteMigrations(ctx, db.DB); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite migrations: %w", err)
	}
	logger.Info().Str("path", path).Msg("sqlite store ready")

	return &Stores{
		Backend:  config.BackendSQLite,
		Features: sqlite.NewFeatureStore(db),
		Fills:    sqlite.NewFillStore(db),
		Runs:     sqlite.NewRunStore(db),
		closeFn:  db.Close,
	}, nil
}

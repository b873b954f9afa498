package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ms-servicing/internal/config"
	"ms-servicing/internal/logger"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverJSON     = "json"
)

var maxRetries = 5
var retryDelay = 2 * time.Second

// Open connects to the configured SQL database, retrying the initial ping.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*bun.DB, error) {
	switch cfg.Driver {
	case DriverPostgres:
		sqldb, err := connect(ctx, "postgres", cfg.PostgresDSN, log)
		if err != nil {
			return nil, err
		}
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
		sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
		sqldb.SetConnMaxLifetime(cfg.MaxLifetime)
		log.Info("DATABASE", "✅ PostgreSQL connection successful")
		return bun.NewDB(sqldb, pgdialect.New()), nil
	case DriverSQLite:
		sqldb, err := connect(ctx, sqliteshim.ShimName, cfg.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		sqldb.SetMaxOpenConns(1)
		log.Info("DATABASE", fmt.Sprintf("✅ SQLite database opened at %s", cfg.SQLitePath))
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	default:
		return nil, fmt.Errorf("unsupported SQL driver %q", cfg.Driver)
	}
}

func connect(ctx context.Context, driver, dsn string, log *logger.Logger) (*sql.DB, error) {
	var sqldb *sql.DB
	var err error

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to %s (attempt %d/%d)", driver, i+1, maxRetries))
		sqldb, err = sql.Open(driver, dsn)
		if err != nil {
			log.Error("DATABASE", fmt.Sprintf("Failed to open %s: %v", driver, err))
		} else if err = sqldb.PingContext(ctx); err == nil {
			return sqldb, nil
		} else {
			log.Error("DATABASE", fmt.Sprintf("Failed to connect to %s: %v", driver, err))
			sqldb.Close()
		}

		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}
	}
	return nil, fmt.Errorf("failed to connect to %s after %d attempts: %w", driver, maxRetries, err)
}

// OpenSQLiteMemory returns a single-connection in-memory database with the
// schema created. Used by tests.
func OpenSQLiteMemory(ctx context.Context) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:")
	if err != nil {
		return nil, err
	}
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	if err := CreateSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

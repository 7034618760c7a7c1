// Package repository persists pipeline output: work items, routing
// summaries and match results, over sqlite or Postgres.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/agentic-rfp/rfp-engine/internal/common"
)

// Open connects per the configured driver: "sqlite" through the pure
// Go driver, "pgx" through a pgx pool wrapped as database/sql.
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("repository.connect", "driver", cfg.Driver)

	var db *sql.DB
	switch cfg.Driver {
	case "sqlite":
		d, err := sql.Open("sqlite", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// The sqlite driver serializes writes per connection; one
		// connection avoids SQLITE_BUSY under concurrent runs.
		d.SetMaxOpenConns(1)
		db = d
	case "pgx":
		pc, err := pgxpool.ParseConfig(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("parse postgres dsn: %w", err)
		}
		pc.ConnConfig.RuntimeParams["application_name"] = "rfp-engine"
		pool, err := pgxpool.NewWithConfig(ctx, pc)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		db = stdlib.OpenDBFromPool(pool)
	default:
		return nil, fmt.Errorf("%w: unknown database driver %q", common.ErrInvalidInput, cfg.Driver)
	}

	pingCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout.Std())
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("repository.connected", "driver", cfg.Driver)
	return db, nil
}

// builderFor returns a statement builder with the placeholder style
// the driver expects.
func builderFor(driver string) sq.StatementBuilderType {
	if driver == "pgx" {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

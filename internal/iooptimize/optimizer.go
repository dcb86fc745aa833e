// Package iooptimize removes orphaned rows and refreshes planner
// statistics of the SQLite or PostgreSQL storage.
package iooptimize

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gizisehat/gizi/internal/iodb"
	"github.com/gizisehat/gizi/internal/iostore"
	"github.com/gizisehat/gizi/pkg/config"
	"github.com/gizisehat/gizi/pkg/db"
	"github.com/gizisehat/gizi/pkg/schema"
	"github.com/gnames/gnfmt"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type optimizer struct {
	db       *sql.DB
	postgres bool
	close    func() error
}

// Open connects to the storage selected by database.driver. The memory
// driver has nothing to optimize and gets an unknown driver error.
func Open(ctx context.Context, cfg *config.Config) (db.Optimizer, error) {
	switch cfg.Database.Driver {
	case "sqlite":
		path := cfg.Database.Path
		if path == "" {
			path = config.SQLitePath(cfg.HomeDir)
		}
		d, err := sql.Open("sqlite", path)
		if err != nil {
			return nil, iostore.OpenError("sqlite", path, err)
		}
		d.SetMaxOpenConns(1)
		return &optimizer{db: d, close: d.Close}, nil
	case "postgres":
		op := iodb.NewPgxOperator()
		if err := op.Connect(ctx, &cfg.Database); err != nil {
			return nil, err
		}
		d := stdlib.OpenDBFromPool(op.Pool())
		return &optimizer{
			db:       d,
			postgres: true,
			close: func() error {
				d.Close()
				return op.Close()
			},
		}, nil
	default:
		return nil, iostore.UnknownDriverError(cfg.Database.Driver)
	}
}

// Optimize executes three steps:
//  1. Remove rows whose child or session does not exist
//  2. Vacuum and analyze
//  3. Count rows of every table
func (o *optimizer) Optimize(ctx context.Context) (db.Report, error) {
	start := time.Now()
	res := db.Report{Rows: make(map[string]int64)}

	slog.Info("Step 1/3: Removing orphaned records")
	removed, err := removeOrphans(ctx, o.db)
	if err != nil {
		return res, err
	}
	res.Removed = removed

	slog.Info("Step 2/3: Vacuum and analyze")
	if err = vacuumAnalyze(ctx, o.db, o.postgres); err != nil {
		return res, err
	}

	slog.Info("Step 3/3: Counting rows")
	for _, g := range schema.Generators() {
		var n int64
		err = o.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+g.TableName()).Scan(&n)
		if err != nil {
			return res, iostore.QueryError(g.TableName(), err)
		}
		res.Rows[g.TableName()] = n
		slog.Info("Table size", "table", g.TableName(), "rows", humanize.Comma(n))
	}

	res.Duration = time.Since(start)
	slog.Info("Optimization complete",
		"duration", gnfmt.TimeString(res.Duration.Seconds()))
	return res, nil
}

func (o *optimizer) Close() error {
	return o.close()
}

package iooptimize

import (
	"context"
	"database/sql"
	"log/slog"
	"time"
)

// vacuumAnalyze reclaims space of deleted rows and refreshes planner
// statistics. Neither statement may run inside a transaction.
func vacuumAnalyze(ctx context.Context, d *sql.DB, postgres bool) error {
	stmts := []string{"VACUUM", "ANALYZE"}
	if postgres {
		stmts = []string{"VACUUM ANALYZE"}
	}

	timeStart := time.Now()
	for _, s := range stmts {
		if _, err := d.ExecContext(ctx, s); err != nil {
			slog.Error("Vacuum failed", "statement", s, "error", err)
			return VacuumError(s, err)
		}
	}
	slog.Info("Vacuum completed", "duration", time.Since(timeStart).String())
	return nil
}

package db

import (
	"context"
	"time"
)

// Optimizer keeps the storage compact and its query statistics fresh.
type Optimizer interface {
	// Optimize removes records that lost their parent, then runs the
	// engine's vacuum and analyze commands.
	Optimize(ctx context.Context) (Report, error)

	// Close releases the connection.
	Close() error
}

// Report summarizes an optimization run.
type Report struct {
	// Removed counts orphaned rows per table.
	Removed map[string]int64 `json:"removed"`
	// Rows counts rows per table after the run.
	Rows     map[string]int64 `json:"rows"`
	Duration time.Duration    `json:"duration"`
}

// Package iostore implements gizi.Repository: in memory, on SQLite
// (modernc.org/sqlite) and on PostgreSQL (pgxpool, GORM schema).
package iostore

import (
	"context"

	"github.com/gizisehat/gizi/pkg/config"
	"github.com/gizisehat/gizi/pkg/gizi"
)

// New opens the repository selected by database.driver. SQLite and
// memory stores are ready to use, PostgreSQL needs Init (or
// `gizi create`) once.
func New(ctx context.Context, cfg *config.Config) (gizi.Repository, error) {
	switch cfg.Database.Driver {
	case "memory":
		return NewMemory(), nil
	case "sqlite":
		path := cfg.Database.Path
		if path == "" {
			path = config.SQLitePath(cfg.HomeDir)
		}
		return OpenSQLite(ctx, path)
	case "postgres":
		return OpenPostgres(ctx, &cfg.Database)
	default:
		return nil, UnknownDriverError(cfg.Database.Driver)
	}
}

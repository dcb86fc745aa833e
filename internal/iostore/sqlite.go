package iostore

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/gizisehat/gizi/pkg/gizi"
	"github.com/gizisehat/gizi/pkg/schema"
	_ "modernc.org/sqlite"
)

// OpenSQLite opens (or creates) a SQLite database file and creates the
// schema. ":memory:" gives a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (gizi.Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, OpenError("sqlite", path, err)
	}
	// one writer at a time, and ":memory:" must stay on one connection
	db.SetMaxOpenConns(1)

	res := &sqlRepo{
		db: db,
		d:  dialect{name: "sqlite", init: initSQLite},
	}
	if err := res.Init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	slog.Debug("SQLite storage opened", "path", path)
	return res, nil
}

func initSQLite(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		return OpenError("sqlite", "pragma", err)
	}
	for _, g := range schema.Generators() {
		stmts := append([]string{g.TableDDL()}, g.IndexDDL()...)
		for _, s := range stmts {
			if _, err := db.ExecContext(ctx, s); err != nil {
				return WriteError(g.TableName(), err)
			}
		}
	}
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO schema_versions (version, description, applied_at)
VALUES (?, ?, ?)`,
		schema.CurrentVersion, "initial schema",
		time.Now().UTC().Format(sqliteTime),
	)
	if err != nil {
		return WriteError("schema_versions", err)
	}
	return nil
}

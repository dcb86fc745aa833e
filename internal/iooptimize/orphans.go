package iooptimize

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/dustin/go-humanize"
)

// orphan describes rows of a table that point to a missing parent.
type orphan struct {
	table, column, parent string
}

// Sessions go before messages, so messages of a removed session are
// removed in the same run.
var orphans = []orphan{
	{"measurements", "child_id", "children"},
	{"intake_entries", "child_id", "children"},
	{"sessions", "child_id", "children"},
	{"messages", "session_id", "sessions"},
}

func removeOrphans(ctx context.Context, d *sql.DB) (map[string]int64, error) {
	res := make(map[string]int64)
	for _, o := range orphans {
		q := "DELETE FROM " + o.table + " WHERE " + o.column +
			" NOT IN (SELECT id FROM " + o.parent + ")"
		r, err := d.ExecContext(ctx, q)
		if err != nil {
			return nil, NewOrphanError(o.table, err)
		}
		n, err := r.RowsAffected()
		if err != nil {
			return nil, NewOrphanError(o.table, err)
		}
		if n > 0 {
			res[o.table] = n
			slog.Warn("Removed orphaned records",
				"table", o.table, "count", humanize.Comma(n))
		}
	}
	return res, nil
}

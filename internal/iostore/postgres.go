package iostore

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/gizisehat/gizi/internal/iodb"
	"github.com/gizisehat/gizi/internal/ioschema"
	"github.com/gizisehat/gizi/pkg/config"
	"github.com/gizisehat/gizi/pkg/gizi"
	"github.com/jackc/pgx/v5/stdlib"
)

// OpenPostgres connects to PostgreSQL through a pgxpool operator. Init
// creates the schema with GORM AutoMigrate.
func OpenPostgres(ctx context.Context, cfg *config.DatabaseConfig) (gizi.Repository, error) {
	op := iodb.NewPgxOperator()
	if err := op.Connect(ctx, cfg); err != nil {
		return nil, err
	}
	mgr := ioschema.NewManager(op)

	res := &sqlRepo{
		db: stdlib.OpenDBFromPool(op.Pool()),
		d: dialect{
			name:     "postgres",
			numbered: true,
			init: func(ctx context.Context, _ *sql.DB) error {
				return mgr.Migrate(ctx)
			},
			close: op.Close,
		},
	}
	slog.Debug("PostgreSQL storage opened",
		"host", cfg.Host, "database", cfg.Database)
	return res, nil
}

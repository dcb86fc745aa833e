// Package ioschema implements SchemaManager interface for
// database schema management. This is an impure I/O package
// that wraps GORM AutoMigrate functionality.
package ioschema

import (
	"context"
	"log/slog"
	"time"

	"github.com/gizisehat/gizi/pkg/db"
	"github.com/gizisehat/gizi/pkg/schema"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// manager implements the db.SchemaManager interface
// using GORM AutoMigrate.
type manager struct {
	operator db.Operator
}

// NewManager creates a new SchemaManager.
func NewManager(op db.Operator) db.SchemaManager {
	return &manager{operator: op}
}

// Create creates the database schema using GORM AutoMigrate and
// records the schema version.
func (m *manager) Create(ctx context.Context, drop bool) error {
	if drop {
		if err := m.operator.DropAllTables(ctx); err != nil {
			return err
		}
	}

	gormDB, err := m.open(ctx)
	if err != nil {
		return err
	}

	if err := schema.Migrate(gormDB); err != nil {
		return CreateSchemaError(err)
	}

	sv := schema.SchemaVersion{
		Version:     schema.CurrentVersion,
		Description: "children, measurements, intake, sessions, messages",
		AppliedAt:   time.Now().UTC(),
	}
	err = gormDB.Clauses(clause.OnConflict{DoNothing: true}).Create(&sv).Error
	if err != nil {
		return CreateSchemaError(err)
	}

	slog.Info("Schema created", "version", schema.CurrentVersion, "dropped", drop)
	return nil
}

// Migrate updates the database schema to the latest version
// using GORM AutoMigrate.
func (m *manager) Migrate(ctx context.Context) error {
	gormDB, err := m.open(ctx)
	if err != nil {
		return err
	}

	if err := schema.Migrate(gormDB); err != nil {
		return MigrateSchemaError(err)
	}
	return nil
}

func (m *manager) open(ctx context.Context) (*gorm.DB, error) {
	pool := m.operator.Pool()
	if pool == nil {
		return nil, NotConnectedError()
	}

	sqlDB := stdlib.OpenDBFromPool(pool)

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{Conn: sqlDB}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	if err != nil {
		return nil, GORMConnectionError(err)
	}
	return gormDB.WithContext(ctx), nil
}

package db

import "context"

// SchemaManager creates and migrates the PostgreSQL schema.
// Schema management is idempotent, safe to run multiple times.
type SchemaManager interface {
	// Create creates the storage schema. With drop set, existing tables
	// are dropped first.
	Create(ctx context.Context, drop bool) error

	// Migrate updates the schema to the latest version.
	Migrate(ctx context.Context) error
}

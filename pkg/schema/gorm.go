package schema

import (
	"gorm.io/gorm"
)

// AllModels returns all schema models for GORM AutoMigrate.
func AllModels() []any {
	return []any{
		&Child{},
		&Measurement{},
		&IntakeEntry{},
		&Session{},
		&Message{},
		&SchemaVersion{},
	}
}

// Generators returns all models as DDL generators, in creation order.
func Generators() []DDLGenerator {
	return []DDLGenerator{
		Child{},
		Measurement{},
		IntakeEntry{},
		Session{},
		Message{},
		SchemaVersion{},
	}
}

// Migrate runs GORM AutoMigrate to create or update schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}

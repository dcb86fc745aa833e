// Package schema provides storage schema models for gizi.
// The same models create SQLite tables through DDL tags and PostgreSQL
// tables through GORM AutoMigrate.
package schema

import (
	"database/sql"
	"time"
)

// DDLGenerator defines how Go models generate SQL DDL.
type DDLGenerator interface {
	// TableDDL returns the CREATE TABLE statement for this model.
	TableDDL() string

	// IndexDDL returns CREATE INDEX statements for this model.
	// Returns empty slice if no indexes needed.
	IndexDDL() []string

	// TableName returns the table name for this model.
	TableName() string
}

// Child is one version of a child profile. A guardian correction adds a
// row with the same ID and a higher Version, older rows are kept.
type Child struct {
	// ID is the stable identifier of the child across versions.
	ID string `db:"id" ddl:"TEXT NOT NULL" gorm:"column:id;primaryKey"`

	// Version starts at 1 and grows with every correction.
	Version int `db:"version" ddl:"INTEGER NOT NULL" gorm:"column:version;primaryKey;autoIncrement:false"`

	Name string `db:"name" ddl:"TEXT NOT NULL DEFAULT ''" gorm:"column:name"`

	// Sex is "female" or "male".
	Sex string `db:"sex" ddl:"TEXT NOT NULL" gorm:"column:sex"`

	BirthDate time.Time `db:"birth_date" ddl:"TIMESTAMP NOT NULL" gorm:"column:birth_date"`

	CreatedAt time.Time `db:"created_at" ddl:"TIMESTAMP NOT NULL" gorm:"column:created_at"`
}

// Measurement is an accepted anthropometric measurement together with
// the age and verdict computed when it was appended.
type Measurement struct {
	ID string `db:"id" ddl:"TEXT PRIMARY KEY" gorm:"column:id;primaryKey"`

	ChildID string `db:"child_id" ddl:"TEXT NOT NULL" gorm:"column:child_id;index:idx_measurements_child"`

	// Seq is the position of the measurement in the child's history.
	Seq int `db:"seq" ddl:"INTEGER NOT NULL" gorm:"column:seq"`

	Timestamp time.Time `db:"taken_at" ddl:"TIMESTAMP NOT NULL" gorm:"column:taken_at"`

	WeightKg float64 `db:"weight_kg" ddl:"REAL NOT NULL" gorm:"column:weight_kg;type:double precision"`

	HeightCm float64 `db:"height_cm" ddl:"REAL NOT NULL" gorm:"column:height_cm;type:double precision"`

	// MUACCm is NULL when the arm circumference was not measured.
	MUACCm sql.NullFloat64 `db:"muac_cm" ddl:"REAL" gorm:"column:muac_cm;type:double precision"`

	Note string `db:"note" ddl:"TEXT NOT NULL DEFAULT ''" gorm:"column:note"`

	// Supersedes is the ID of the measurement this one corrects.
	Supersedes string `db:"supersedes" ddl:"TEXT NOT NULL DEFAULT ''" gorm:"column:supersedes"`

	AgeMonths float64 `db:"age_months" ddl:"REAL NOT NULL" gorm:"column:age_months;type:double precision"`

	Verdict string `db:"verdict" ddl:"TEXT NOT NULL" gorm:"column:verdict"`
}

// IntakeEntry is a logged food intake. Either FoodID is set, or the
// four nutrient columns carry ad-hoc amounts.
type IntakeEntry struct {
	ID string `db:"id" ddl:"TEXT PRIMARY KEY" gorm:"column:id;primaryKey"`

	ChildID string `db:"child_id" ddl:"TEXT NOT NULL" gorm:"column:child_id;index:idx_intake_child_date"`

	// Date is the calendar day in YYYY-MM-DD form.
	Date string `db:"day" ddl:"TEXT NOT NULL" gorm:"column:day;index:idx_intake_child_date"`

	FoodID string `db:"food_id" ddl:"TEXT NOT NULL DEFAULT ''" gorm:"column:food_id"`

	Energy  sql.NullFloat64 `db:"energy" ddl:"REAL" gorm:"column:energy;type:double precision"`
	Protein sql.NullFloat64 `db:"protein" ddl:"REAL" gorm:"column:protein;type:double precision"`
	Iron    sql.NullFloat64 `db:"iron" ddl:"REAL" gorm:"column:iron;type:double precision"`
	Zinc    sql.NullFloat64 `db:"zinc" ddl:"REAL" gorm:"column:zinc;type:double precision"`

	Description string `db:"description" ddl:"TEXT NOT NULL DEFAULT ''" gorm:"column:description"`

	Portion float64 `db:"portion" ddl:"REAL NOT NULL" gorm:"column:portion;type:double precision"`

	LoggedAt time.Time `db:"logged_at" ddl:"TIMESTAMP NOT NULL" gorm:"column:logged_at"`

	// Source is "manual", "photo" or "import".
	Source string `db:"source" ddl:"TEXT NOT NULL" gorm:"column:source"`
}

// Session is an assistant conversation about one child.
type Session struct {
	ID string `db:"id" ddl:"TEXT PRIMARY KEY" gorm:"column:id;primaryKey"`

	ChildID string `db:"child_id" ddl:"TEXT NOT NULL" gorm:"column:child_id"`

	CreatedAt time.Time `db:"created_at" ddl:"TIMESTAMP NOT NULL" gorm:"column:created_at"`
}

// Message is one turn of an assistant session.
type Message struct {
	ID string `db:"id" ddl:"TEXT PRIMARY KEY" gorm:"column:id;primaryKey"`

	SessionID string `db:"session_id" ddl:"TEXT NOT NULL" gorm:"column:session_id;index:idx_messages_session"`

	Seq int `db:"seq" ddl:"INTEGER NOT NULL" gorm:"column:seq"`

	// Role is "caregiver" or "assistant".
	Role string `db:"role" ddl:"TEXT NOT NULL" gorm:"column:role"`

	Text string `db:"body" ddl:"TEXT NOT NULL" gorm:"column:body"`

	IntentID string `db:"intent_id" ddl:"TEXT NOT NULL DEFAULT ''" gorm:"column:intent_id"`

	Timestamp time.Time `db:"sent_at" ddl:"TIMESTAMP NOT NULL" gorm:"column:sent_at"`
}

// SchemaVersion tracks the schema version for migrations.
type SchemaVersion struct {
	Version     string    `db:"version" ddl:"TEXT PRIMARY KEY" gorm:"column:version;primaryKey"`
	Description string    `db:"description" ddl:"TEXT" gorm:"column:description"`
	AppliedAt   time.Time `db:"applied_at" ddl:"TIMESTAMP NOT NULL" gorm:"column:applied_at"`
}

package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// CurrentVersion is recorded in schema_versions when storage is created.
const CurrentVersion = "1"

// generateDDL creates a CREATE TABLE statement from struct tags.
// Table constraints such as composite keys are appended after columns.
func generateDDL(model any, tableName string, constraints ...string) string {
	v := reflect.ValueOf(model)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	t := v.Type()

	var columns []string

	for i := range t.NumField() {
		field := t.Field(i)
		dbTag := field.Tag.Get("db")
		ddlTag := field.Tag.Get("ddl")

		if dbTag != "" && ddlTag != "" {
			columns = append(columns, fmt.Sprintf("    %s %s", dbTag, ddlTag))
		}
	}
	for _, c := range constraints {
		columns = append(columns, "    "+c)
	}

	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n);",
		tableName,
		strings.Join(columns, ",\n"))

	return ddl
}

// Columns returns the db column names of a model in field order.
func Columns(model any) []string {
	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	var res []string
	for i := range t.NumField() {
		if db := t.Field(i).Tag.Get("db"); db != "" {
			res = append(res, db)
		}
	}
	return res
}

// Child DDL methods
func (c Child) TableDDL() string {
	return generateDDL(c, "children", "PRIMARY KEY (id, version)")
}

func (c Child) IndexDDL() []string {
	return []string{}
}

func (c Child) TableName() string {
	return "children"
}

// Measurement DDL methods
func (m Measurement) TableDDL() string {
	return generateDDL(m, "measurements")
}

func (m Measurement) IndexDDL() []string {
	return []string{
		"CREATE INDEX IF NOT EXISTS idx_measurements_child ON measurements(child_id, taken_at, seq);",
	}
}

func (m Measurement) TableName() string {
	return "measurements"
}

// IntakeEntry DDL methods
func (ie IntakeEntry) TableDDL() string {
	return generateDDL(ie, "intake_entries")
}

func (ie IntakeEntry) IndexDDL() []string {
	return []string{
		"CREATE INDEX IF NOT EXISTS idx_intake_child_date ON intake_entries(child_id, day);",
	}
}

func (ie IntakeEntry) TableName() string {
	return "intake_entries"
}

// Session DDL methods
func (s Session) TableDDL() string {
	return generateDDL(s, "sessions")
}

func (s Session) IndexDDL() []string {
	return []string{}
}

func (s Session) TableName() string {
	return "sessions"
}

// Message DDL methods
func (m Message) TableDDL() string {
	return generateDDL(m, "messages")
}

func (m Message) IndexDDL() []string {
	return []string{
		"CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, sent_at, seq);",
	}
}

func (m Message) TableName() string {
	return "messages"
}

// SchemaVersion DDL methods
func (sv SchemaVersion) TableDDL() string {
	return generateDDL(sv, "schema_versions")
}

func (sv SchemaVersion) IndexDDL() []string {
	return []string{}
}

func (sv SchemaVersion) TableName() string {
	return "schema_versions"
}

package iostore

import (
	"fmt"

	"github.com/gizisehat/gizi/pkg/errcode"
	"github.com/gnames/gn"
)

// OpenError is returned when a storage backend cannot be opened.
func OpenError(driver, target string, err error) error {
	msg := `Cannot open <em>%s</em> storage at <em>%s</em>

<em>How to fix:</em>
  1. Check database settings in ~/.config/gizi/config.yaml
  2. Run <em>gizi create</em> to initialise storage`
	return &gn.Error{
		Code: errcode.DBConnectionError,
		Msg:  msg,
		Vars: []any{driver, target},
		Err:  fmt.Errorf("cannot open %s storage %s: %w", driver, target, err),
	}
}

// UnknownDriverError is returned for an unsupported database.driver.
func UnknownDriverError(driver string) error {
	msg := "Unknown storage driver <em>%s</em>, use memory, sqlite or postgres"
	return &gn.Error{
		Code: errcode.DBConnectionError,
		Msg:  msg,
		Vars: []any{driver},
		Err:  fmt.Errorf("unknown storage driver %q", driver),
	}
}

// QueryError is returned when reading from storage fails.
func QueryError(table string, err error) error {
	msg := "Cannot read <em>%s</em> from storage"
	return &gn.Error{
		Code: errcode.DBQueryError,
		Msg:  msg,
		Vars: []any{table},
		Err:  fmt.Errorf("query %s: %w", table, err),
	}
}

// WriteError is returned when writing to storage fails.
func WriteError(table string, err error) error {
	msg := "Cannot write <em>%s</em> to storage"
	return &gn.Error{
		Code: errcode.DBWriteError,
		Msg:  msg,
		Vars: []any{table},
		Err:  fmt.Errorf("write %s: %w", table, err),
	}
}

// DuplicateError is returned when a record with the same key exists.
func DuplicateError(table, key string) error {
	msg := "Record <em>%s</em> already exists in <em>%s</em>"
	return &gn.Error{
		Code: errcode.DBWriteError,
		Msg:  msg,
		Vars: []any{key, table},
		Err:  fmt.Errorf("duplicate %s in %s", key, table),
	}
}

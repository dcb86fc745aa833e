package iodb

import (
	"fmt"

	"github.com/gizisehat/gizi/pkg/errcode"
	"github.com/gnames/gn"
	"github.com/gnames/gnlib"
)

// ConnectionError is returned when database connection fails. It
// carries a user-facing explanation for gnlib.PrintUserMessage and
// unwraps to a *gn.Error with errcode.DBConnectionError.
type ConnectionError struct {
	error
	gnlib.MessageBase
}

// Unwrap exposes the coded error.
func (e ConnectionError) Unwrap() error {
	return e.error
}

// NewConnectionError creates a connection error with user-friendly message.
func NewConnectionError(host string, port int, database, user string, cause error) error {
	userBase := gnlib.MessageBase{
		Msg: `<title>Database Connection Failed</title>

<warning>Could not connect to PostgreSQL database.</warning>

<em>Possible causes:</em>
  • PostgreSQL is not running
  • Database configuration is incorrect
  • Network connectivity issues

<em>How to fix:</em>
  1. Check if PostgreSQL is running:
     <em>pg_isready -h %s -p %d</em>

  2. Verify database exists:
     <em>psql -h %s -U %s -l</em>

  3. Check your configuration file:
     <em>~/.config/gizi/config.yaml</em>
     or switch to the embedded store with
     <em>GIZI_DATABASE_DRIVER=sqlite</em>

  4. Review connection settings:
     Host: %s
     Port: %d
     Database: %s
     User: %s
`,
		Vars: []any{
			host, port,
			host, user,
			host, port, database, user,
		},
	}

	return ConnectionError{
		error: &gn.Error{
			Code: errcode.DBConnectionError,
			Msg:  "Cannot connect to <em>%s:%d/%s</em>",
			Vars: []any{host, port, database},
			Err: fmt.Errorf("failed to connect to %s:%d/%s: %w",
				host, port, database, cause),
		},
		MessageBase: userBase,
	}
}

// NotConnectedError is returned when an operation runs before Connect.
func NotConnectedError() error {
	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  "Database operation attempted without connection",
		Err:  fmt.Errorf("not connected to database"),
	}
}

// TableCheckError is returned when reading the catalog of tables fails.
func TableCheckError(err error) error {
	return &gn.Error{
		Code: errcode.DBQueryError,
		Msg:  "Could not verify database state",
		Err:  fmt.Errorf("failed to check database tables: %w", err),
	}
}

// DropTableError is returned when a table cannot be dropped.
func DropTableError(table string, err error) error {
	return &gn.Error{
		Code: errcode.DBWriteError,
		Msg:  "Cannot drop table <em>%s</em>",
		Vars: []any{table},
		Err:  fmt.Errorf("failed to drop table %s: %w", table, err),
	}
}

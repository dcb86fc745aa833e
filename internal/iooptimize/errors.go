package iooptimize

import (
	"fmt"

	"github.com/gizisehat/gizi/pkg/errcode"
	"github.com/gnames/gn"
	"github.com/gnames/gnlib"
)

// OrphanError is returned when orphaned rows cannot be removed.
type OrphanError struct {
	error
	gnlib.MessageBase
}

// Unwrap exposes the coded error.
func (e OrphanError) Unwrap() error {
	return e.error
}

// NewOrphanError creates an orphan removal error with a user message.
func NewOrphanError(table string, err error) error {
	msgBase := gnlib.MessageBase{
		Msg: `<title>Cannot Remove Orphaned Records</title>
<warning>Cleaning table %s failed.</warning>

<em>How to fix:</em>
  1. Bring the schema up to date: <em>gizi migrate</em>
  2. Check that no other process holds a lock on the database
`,
		Vars: []any{table},
	}
	return OrphanError{
		error: &gn.Error{
			Code: errcode.OptimizeOrphanError,
			Msg:  "Cannot remove orphaned records from <em>%s</em>",
			Vars: []any{table},
			Err:  fmt.Errorf("failed to clean %s: %w", table, err),
		},
		MessageBase: msgBase,
	}
}

// VacuumError is returned when vacuum or analyze fails.
func VacuumError(stmt string, err error) error {
	return &gn.Error{
		Code: errcode.OptimizeVacuumError,
		Msg:  "Cannot run <em>%s</em>",
		Vars: []any{stmt},
		Err:  fmt.Errorf("failed to run %s: %w", stmt, err),
	}
}

package errcode

import (
	"errors"

	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// Assessment engine error kinds
	ValidationError
	ReferenceDataGap
	ImplausibleMeasurement
	ExternalServiceFailure
	UnknownIntent
	NotFoundError

	// File System errors
	CreateDirError
	CopyFileError
	ReadFileError

	// Logging errors
	CreateLogFileError

	// Reference data errors
	ReferenceParseError
	ReferenceBuildError

	// Database errors
	DBConnectionError
	DBNotConnectedError
	DBQueryError
	DBWriteError

	// Schema errors
	SchemaGORMConnectionError
	SchemaCreateError
	SchemaMigrateError

	// Import errors
	ImportReadError
	ImportRecordError

	// Optimize errors
	OptimizeOrphanError
	OptimizeVacuumError
)

// CodeOf returns the error code of the first *gn.Error found in the
// chain of err. It returns UnknownError if there is none.
func CodeOf(err error) gn.ErrorCode {
	var gnErr *gn.Error
	if errors.As(err, &gnErr) {
		return gnErr.Code
	}
	return UnknownError
}

// Is reports whether err carries the given code.
func Is(err error, code gn.ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

package store

import (
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

var (
	// ErrDatabaseOpenFailed indicates the SQLite database could not be opened.
	ErrDatabaseOpenFailed = errors.StorageError("could not open metadata store").Build()

	// ErrInitializeSchemaFailed indicates the database schema could not be initialized.
	ErrInitializeSchemaFailed = errors.StorageError("failed to initialize metadata store schema").Build()

	// ErrRecordFailed indicates writing a run failed.
	ErrRecordFailed = errors.StorageError("failed to record run").Build()

	// ErrQueryFailed indicates reading runs failed.
	ErrQueryFailed = errors.StorageError("failed to query runs").Build()

	// ErrNoRuns indicates nothing has been recorded for the site yet.
	ErrNoRuns = errors.NewError(errors.CategoryNotFound, "no recorded runs").Build()
)

// wrap returns a classified error that matches sentinel under errors.Is and
// carries cause.
func wrap(sentinel *errors.ClassifiedError, cause error) error {
	return errors.WrapError(cause, sentinel.Category(), sentinel.Message()).Build()
}

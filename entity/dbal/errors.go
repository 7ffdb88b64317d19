package dbal

import "errors"

var (
	// ErrNilDatabaseConnection is returned when a nil database connection is supplied.
	ErrNilDatabaseConnection = errors.New("nil database connection supplied")

	// ErrNilRegistry is returned when a nil entity registry is supplied.
	ErrNilRegistry = errors.New("nil entity registry supplied")

	// ErrUnsupportedDialect is returned for unknown dialect names.
	ErrUnsupportedDialect = errors.New("unsupported sql dialect")

	// ErrBuildingQueryFailed is returned when goqu fails to render a statement.
	ErrBuildingQueryFailed = errors.New("building query failed")

	// ErrQueryingFailed is returned when a select statement fails.
	ErrQueryingFailed = errors.New("querying database failed")

	// ErrScanningRowFailed is returned when a result row cannot be scanned.
	ErrScanningRowFailed = errors.New("scanning db row failed")

	// ErrWritingFailed is returned when an insert, update or delete statement fails.
	ErrWritingFailed = errors.New("writing to database failed")

	// ErrTransactionFailed is returned when a write transaction cannot be started or committed.
	ErrTransactionFailed = errors.New("database transaction failed")

	// ErrNoUUIDPrimaryKey is returned when an id based read targets an entity without a single uuid primary key.
	ErrNoUUIDPrimaryKey = errors.New("entity has no single uuid primary key")
)

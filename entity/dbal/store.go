package dbal

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
	"github.com/AntonStoeckl/dynamic-entities-go/entity/dbal/internal/adapters"
)

const (
	logMsgBuildQueryFailed = "failed to build sql statement"
	logMsgDBQueryFailed    = "database query execution failed"
	logMsgDBExecFailed     = "database execution failed"
	logMsgBeginTxFailed    = "failed to begin transaction"
	logMsgCommitTxFailed   = "failed to commit transaction"
	logMsgRollbackFailed   = "failed to roll back transaction"
	logMsgCloseRowsFailed  = "failed to close database rows"
	logMsgScanRowFailed    = "failed to scan database row"
	logMsgIDsSearched      = "ids searched"
	logMsgRowsRead         = "rows read"
	logMsgRowsWritten      = "rows written"
	logMsgRowsDeleted      = "rows deleted"
	logMsgSQLExecuted      = "executed sql for: "
	logMsgOperation        = "entity store operation: "

	logAttrError       = "error"
	logAttrQuery       = "query"
	logAttrEntity      = "entity"
	logAttrRowCount    = "row_count"
	logAttrTotal       = "total"
	logAttrDurationMS  = "duration_ms"
	logAttrStatements  = "statements"
	logAttrRowAffected = "rows_affected"

	aliasScore   = "_score"
	aliasSortFmt = "_sort_%d"
	aliasTotal   = "_total"
)

// Store reads and writes entity rows through one of the database adapters.
// It renders every statement with goqu for the configured dialect and binds values as parameters.
type Store struct {
	db               adapters.DBAdapter
	registry         *entity.Registry
	dialect          Dialect
	logger           entity.Logger
	contextualLogger entity.ContextualLogger
	metricsCollector entity.MetricsCollector
	tracingCollector entity.TracingCollector
}

// NewStoreFromPGXPool creates a new Store using a pgx Pool with optional configuration.
func NewStoreFromPGXPool(db *pgxpool.Pool, registry *entity.Registry, options ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(db), registry, options...)
}

// NewStoreFromPGXPoolAndReplica creates a new Store using a primary and a replica pgx Pool.
// Reads run on the replica if the context was created with entity.WithEventualConsistency.
func NewStoreFromPGXPoolAndReplica(
	db *pgxpool.Pool,
	replica *pgxpool.Pool,
	registry *entity.Registry,
	options ...Option,
) (*Store, error) {

	if db == nil || replica == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapterWithReplica(db, replica), registry, options...)
}

// NewStoreFromSQLDB creates a new Store using a sql.DB with optional configuration.
func NewStoreFromSQLDB(db *sql.DB, registry *entity.Registry, options ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), registry, options...)
}

// NewStoreFromSQLDBAndReplica creates a new Store using a primary and a replica sql.DB.
func NewStoreFromSQLDBAndReplica(
	db *sql.DB,
	replica *sql.DB,
	registry *entity.Registry,
	options ...Option,
) (*Store, error) {

	if db == nil || replica == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapterWithReplica(db, replica), registry, options...)
}

// NewStoreFromSQLX creates a new Store using a sqlx.DB with optional configuration.
func NewStoreFromSQLX(db *sqlx.DB, registry *entity.Registry, options ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), registry, options...)
}

// NewStoreFromSQLXAndReplica creates a new Store using a primary and a replica sqlx.DB.
func NewStoreFromSQLXAndReplica(
	db *sqlx.DB,
	replica *sqlx.DB,
	registry *entity.Registry,
	options ...Option,
) (*Store, error) {

	if db == nil || replica == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapterWithReplica(db, replica), registry, options...)
}

func newStore(db adapters.DBAdapter, registry *entity.Registry, options ...Option) (*Store, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}

	s := &Store{
		db:       db,
		registry: registry,
		dialect:  DialectPostgres,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Dialect returns the dialect statements are rendered for.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Registry returns the entity registry.
func (s *Store) Registry() *entity.Registry {
	return s.registry
}

// Parser returns a SQLQueryParser for the store's registry and dialect.
func (s *Store) Parser() SQLQueryParser {
	return NewSQLQueryParser(s.registry, s.dialect)
}

// executeQuery executes a select statement and returns rows with timing information.
func (s *Store) executeQuery(
	ctx context.Context,
	action string,
	sqlQuery string,
	args []any,
) (adapters.DBRows, time.Duration, error) {

	start := time.Now()
	rows, queryErr := s.db.Query(ctx, sqlQuery, args...)
	duration := time.Since(start)
	s.logQueryWithDuration(ctx, sqlQuery, action, duration)

	if queryErr != nil {
		s.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)

		return nil, duration, errors.Join(ErrQueryingFailed, queryErr)
	}

	return rows, duration, nil
}

// executor is satisfied by the adapter itself and by its transactions.
type executor interface {
	Exec(ctx context.Context, query string, args ...any) (adapters.DBResult, error)
}

// executeStatement executes an insert, update or delete statement and returns the affected rows.
func (s *Store) executeStatement(
	ctx context.Context,
	db executor,
	action string,
	sqlQuery string,
	args []any,
) (int64, error) {

	start := time.Now()
	result, execErr := db.Exec(ctx, sqlQuery, args...)
	s.logQueryWithDuration(ctx, sqlQuery, action, time.Since(start))

	if execErr != nil {
		s.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)

		return 0, errors.Join(ErrWritingFailed, execErr)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Join(ErrWritingFailed, err)
	}

	return rowsAffected, nil
}

// closeRows closes database rows and logs any errors.
func (s *Store) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		s.logWarn(ctx, logMsgCloseRowsFailed, closeErr)
	}
}

// scanAll scans every row into a slice of raw column values.
func (s *Store) scanAll(ctx context.Context, rows adapters.DBRows, columnCount int) ([][]any, error) {
	defer s.closeRows(ctx, rows)

	scanned := make([][]any, 0)

	for rows.Next() {
		values := make([]any, columnCount)
		targets := make([]any, columnCount)

		for i := range values {
			targets[i] = &values[i]
		}

		if err := rows.Scan(targets...); err != nil {
			s.logError(ctx, logMsgScanRowFailed, err)

			return nil, errors.Join(ErrScanningRowFailed, err)
		}

		scanned = append(scanned, values)
	}

	if err := rows.Err(); err != nil {
		s.logError(ctx, logMsgScanRowFailed, err)

		return nil, errors.Join(ErrScanningRowFailed, err)
	}

	return scanned, nil
}

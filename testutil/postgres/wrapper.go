// Package postgres runs entity stores against a real PostgreSQL database in tests.
//
// The database is taken from ENTITYSTORE_TEST_DSN, tests using a Wrapper are skipped when it
// is not set. ADAPTER_TYPE selects the database handle: pgx.pool (default), sql.db or sqlx.db.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/dynamic-entities-go/config"
	"github.com/AntonStoeckl/dynamic-entities-go/entity"
	"github.com/AntonStoeckl/dynamic-entities-go/entity/dbal"
)

// Environment variables read by CreateWrapper.
const (
	EnvTestDSN     = "ENTITYSTORE_TEST_DSN"
	EnvAdapterType = "ADAPTER_TYPE"
)

// Adapter type constants
const (
	typePGXPool = "pgx.pool"
	typeSQLDB   = "sql.db"
	typeSQLXDB  = "sqlx.db"
)

// Wrapper abstracts over the database handle a store runs on.
type Wrapper interface {
	Store() *dbal.Store
	Exec(ctx context.Context, statement string) error
	Close()
}

// PGXPoolWrapper wraps a pgxpool based store.
type PGXPoolWrapper struct {
	pool  *pgxpool.Pool
	store *dbal.Store
}

func (w *PGXPoolWrapper) Store() *dbal.Store { return w.store }

func (w *PGXPoolWrapper) Exec(ctx context.Context, statement string) error {
	_, err := w.pool.Exec(ctx, statement)
	return err
}

func (w *PGXPoolWrapper) Close() { w.pool.Close() }

// SQLDBWrapper wraps a database/sql based store.
type SQLDBWrapper struct {
	db    *sql.DB
	store *dbal.Store
}

func (w *SQLDBWrapper) Store() *dbal.Store { return w.store }

func (w *SQLDBWrapper) Exec(ctx context.Context, statement string) error {
	_, err := w.db.ExecContext(ctx, statement)
	return err
}

func (w *SQLDBWrapper) Close() { _ = w.db.Close() }

// SQLXWrapper wraps a sqlx based store.
type SQLXWrapper struct {
	db    *sqlx.DB
	store *dbal.Store
}

func (w *SQLXWrapper) Store() *dbal.Store { return w.store }

func (w *SQLXWrapper) Exec(ctx context.Context, statement string) error {
	_, err := w.db.ExecContext(ctx, statement)
	return err
}

func (w *SQLXWrapper) Close() { _ = w.db.Close() }

// CreateWrapper opens the test database with the handle selected by ADAPTER_TYPE, creates the
// schema and registers cleanup. It skips the test when ENTITYSTORE_TEST_DSN is not set.
func CreateWrapper(t testing.TB, registry *entity.Registry, options ...dbal.Option) Wrapper {
	t.Helper()

	dsn := os.Getenv(EnvTestDSN)
	if dsn == "" {
		t.Skipf("%s not set", EnvTestDSN)
	}

	ctx := context.Background()
	cfg := config.Default().Database
	cfg.MinIdleConns = 1
	cfg.MaxOpenConns = 5

	var wrapper Wrapper

	switch adapterType := strings.ToLower(os.Getenv(EnvAdapterType)); adapterType {
	case typePGXPool, "":
		pool, err := cfg.OpenPGXPool(ctx, dsn)
		require.NoError(t, err, "error connecting to DB pool in test setup")

		store, err := dbal.NewStoreFromPGXPool(pool, registry, options...)
		require.NoError(t, err, "error creating store")

		wrapper = &PGXPoolWrapper{pool: pool, store: store}

	case typeSQLDB:
		db, err := cfg.OpenSQLDB(ctx, dsn)
		require.NoError(t, err, "error connecting to DB in test setup")

		store, err := dbal.NewStoreFromSQLDB(db, registry, options...)
		require.NoError(t, err, "error creating store")

		wrapper = &SQLDBWrapper{db: db, store: store}

	case typeSQLXDB:
		db, err := cfg.OpenSQLX(ctx, dsn)
		require.NoError(t, err, "error connecting to DB in test setup")

		store, err := dbal.NewStoreFromSQLX(db, registry, options...)
		require.NoError(t, err, "error creating store")

		wrapper = &SQLXWrapper{db: db, store: store}

	default:
		panic(fmt.Sprintf("unsupported adapter type from env: %s", adapterType))
	}

	for _, statement := range schema {
		require.NoError(t, wrapper.Exec(ctx, statement), "error creating schema")
	}

	CleanUp(t, wrapper)
	t.Cleanup(func() {
		CleanUp(t, wrapper)
		wrapper.Close()
	})

	return wrapper
}

// CleanUp empties all tables of the test schema.
func CleanUp(t testing.TB, wrapper Wrapper) {
	t.Helper()

	statement := "TRUNCATE TABLE " + strings.Join(tables, ", ")
	require.NoError(t, wrapper.Exec(context.Background(), statement), "error cleaning up the tables")
}

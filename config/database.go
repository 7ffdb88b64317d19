package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver for database/sql

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
	"github.com/AntonStoeckl/dynamic-entities-go/entity/dbal"
)

// ErrUnsupportedDriver is returned when the driver cannot serve the configured dialect.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// PGXPoolConfig creates a pgxpool.Config for the given DSN with the configured pool settings.
func (c DatabaseConfig) PGXPoolConfig(dsn string) (*pgxpool.Config, error) {
	dbConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Join(ErrLoadingConfig, err)
	}

	dbConfig.MaxConns = int32(c.MaxOpenConns) //nolint:gosec
	dbConfig.MinConns = int32(c.MinIdleConns) //nolint:gosec
	dbConfig.MaxConnLifetime = c.ConnMaxLifetime
	dbConfig.MaxConnIdleTime = c.ConnMaxIdleTime
	dbConfig.HealthCheckPeriod = c.HealthCheckPeriod
	dbConfig.ConnConfig.ConnectTimeout = c.ConnectTimeout

	return dbConfig, nil
}

// OpenPGXPool creates a pgxpool.Pool for the given DSN and pings it.
func (c DatabaseConfig) OpenPGXPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	dbConfig, err := c.PGXPoolConfig(dsn)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		return nil, err
	}

	if pingErr := pool.Ping(ctx); pingErr != nil {
		pool.Close()
		return nil, pingErr
	}

	return pool, nil
}

// OpenSQLDB creates a configured *sql.DB for the given DSN and pings it.
func (c DatabaseConfig) OpenSQLDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open(c.SQLDriverName, dsn)
	if err != nil {
		return nil, err
	}

	c.configurePool(db)

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, pingErr
	}

	return db, nil
}

// OpenSQLX creates a configured *sqlx.DB for the given DSN and pings it.
func (c DatabaseConfig) OpenSQLX(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(c.SQLDriverName, dsn)
	if err != nil {
		return nil, err
	}

	c.configurePool(db.DB)

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, pingErr
	}

	return db, nil
}

func (c DatabaseConfig) configurePool(db *sql.DB) {
	db.SetMaxOpenConns(c.MaxOpenConns)
	db.SetMaxIdleConns(c.MinIdleConns)
	db.SetConnMaxLifetime(c.ConnMaxLifetime)
	db.SetConnMaxIdleTime(c.ConnMaxIdleTime)
}

// OpenStore opens the configured database handles and returns a dbal.Store using them,
// together with a function closing the handles. The configured dialect is prepended to options.
func (c DatabaseConfig) OpenStore(
	ctx context.Context,
	registry *entity.Registry,
	options ...dbal.Option,
) (*dbal.Store, func(), error) {
	dialect, err := dbal.ParseDialect(c.Dialect)
	if err != nil {
		return nil, nil, errors.Join(ErrInvalidConfig, err)
	}

	options = append([]dbal.Option{dbal.WithDialect(dialect)}, options...)

	switch c.Driver {
	case driverPGX:
		if dialect != dbal.DialectPostgres {
			return nil, nil, errors.Join(ErrUnsupportedDriver, fmt.Errorf("driver %q with dialect %q", c.Driver, dialect))
		}

		return openStore(ctx, c, c.OpenPGXPool, (*pgxpool.Pool).Close, registry, options,
			dbal.NewStoreFromPGXPool, dbal.NewStoreFromPGXPoolAndReplica)

	case driverSQL:
		return openStore(ctx, c, c.OpenSQLDB, closeQuietly[*sql.DB], registry, options,
			dbal.NewStoreFromSQLDB, dbal.NewStoreFromSQLDBAndReplica)

	case driverSQLX:
		return openStore(ctx, c, c.OpenSQLX, closeQuietly[*sqlx.DB], registry, options,
			dbal.NewStoreFromSQLX, dbal.NewStoreFromSQLXAndReplica)

	default:
		return nil, nil, errors.Join(ErrUnsupportedDriver, fmt.Errorf("driver %q", c.Driver))
	}
}

func openStore[DB any](
	ctx context.Context,
	c DatabaseConfig,
	open func(context.Context, string) (DB, error),
	closeDB func(DB),
	registry *entity.Registry,
	options []dbal.Option,
	single func(DB, *entity.Registry, ...dbal.Option) (*dbal.Store, error),
	withReplica func(DB, DB, *entity.Registry, ...dbal.Option) (*dbal.Store, error),
) (*dbal.Store, func(), error) {
	primary, err := open(ctx, c.DSN)
	if err != nil {
		return nil, nil, err
	}

	if c.ReplicaDSN == "" {
		store, storeErr := single(primary, registry, options...)
		if storeErr != nil {
			closeDB(primary)
			return nil, nil, storeErr
		}

		return store, func() { closeDB(primary) }, nil
	}

	replica, err := open(ctx, c.ReplicaDSN)
	if err != nil {
		closeDB(primary)
		return nil, nil, err
	}

	closeAll := func() {
		closeDB(replica)
		closeDB(primary)
	}

	store, err := withReplica(primary, replica, registry, options...)
	if err != nil {
		closeAll()
		return nil, nil, err
	}

	return store, closeAll, nil
}

func closeQuietly[DB interface{ Close() error }](db DB) {
	_ = db.Close()
}

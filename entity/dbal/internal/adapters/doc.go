// Package adapters provide database adapter implementations for the entity store.
//
// The adapters support three database libraries: pgxpool.Pool, sql.DB, and sqlx.DB.
// All of them implement the common DBAdapter interface, so the store works with any
// supported connection type. Each adapter may carry a replica connection which serves
// reads of contexts marked for eventual consistency. Transactions always run on the
// primary connection.
package adapters

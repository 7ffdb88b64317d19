// Package cache provides a read-through row cache in front of a repository.Store, backed by redis.
//
// Rows read by id are cached per entity and id, one JSON document holding the row of every
// language read so far. Writes and deletes through the cached store invalidate the written ids,
// Listener invalidates on written events of other processes, e.g. consumed from a broker.
// Rows which embed eagerly loaded associations are refreshed by expiry only.
package cache

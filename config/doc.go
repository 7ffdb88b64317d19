// Package config loads the application configuration of the entity store from environment
// variables and builds the infrastructure the entity layer runs on:
//   - database handles (pgxpool, database/sql with lib/pq, sqlx) and the dbal.Store on top of them
//   - the redis client of the row cache
//   - the sarama producer and consumer group of the written-event bus
//   - the OpenTelemetry providers and the slog logger
//
// Variables use the ENTITYSTORE_ prefix, nested keys are separated by a double underscore,
// e.g. ENTITYSTORE_DATABASE__MAX_OPEN_CONNS. A .env file in the working directory is loaded
// automatically.
package config

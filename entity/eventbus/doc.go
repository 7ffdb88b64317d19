// Package eventbus publishes written and deleted events to Kafka and feeds consumed ones back
// into an entity.EventDispatcher, so that other processes can react to writes, e.g. by
// invalidating their row caches.
package eventbus

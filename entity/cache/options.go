package cache

import (
	"errors"
	"time"

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
)

const (
	defaultTTL       = 10 * time.Minute
	defaultKeyPrefix = "entity"
)

// Option defines a functional option for configuring a Store.
type Option func(*Store) error

// WithTTL sets how long cached rows live.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) error {
		if ttl <= 0 {
			return errors.New("cache ttl must be positive")
		}

		s.ttl = ttl

		return nil
	}
}

// WithKeyPrefix sets the prefix of all cache keys.
func WithKeyPrefix(prefix string) Option {
	return func(s *Store) error {
		if prefix == "" {
			return errors.New("empty cache key prefix supplied")
		}

		s.prefix = prefix

		return nil
	}
}

// WithLogger sets the logger which receives cache failures and invalidations.
func WithLogger(logger entity.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// WithMetrics sets the collector which receives hit and miss counters.
func WithMetrics(collector entity.MetricsCollector) Option {
	return func(s *Store) error {
		s.metricsCollector = collector
		return nil
	}
}

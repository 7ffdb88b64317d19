package config

import (
	"github.com/redis/go-redis/v9"

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
	"github.com/AntonStoeckl/dynamic-entities-go/entity/cache"
	"github.com/AntonStoeckl/dynamic-entities-go/entity/repository"
)

// Options returns the go-redis options of the configured server.
func (c RedisConfig) Options() *redis.Options {
	return &redis.Options{
		Addr:     c.Address,
		Password: c.Password,
		DB:       c.DB,
	}
}

// NewCachedStore wraps inner with a redis backed row cache. It returns inner unchanged and a
// nil client when no redis address is configured.
func (c RedisConfig) NewCachedStore(
	inner repository.Store,
	registry *entity.Registry,
	options ...cache.Option,
) (repository.Store, *redis.Client, error) {
	if !c.Enabled() {
		return inner, nil, nil
	}

	client := redis.NewClient(c.Options())
	options = append([]cache.Option{cache.WithKeyPrefix(c.KeyPrefix), cache.WithTTL(c.TTL)}, options...)

	store, err := cache.NewStore(inner, client, registry, options...)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	return store, client, nil
}

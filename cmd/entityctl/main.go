package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/AntonStoeckl/dynamic-entities-go/commerce"
	"github.com/AntonStoeckl/dynamic-entities-go/config"
	"github.com/AntonStoeckl/dynamic-entities-go/entity"
	"github.com/AntonStoeckl/dynamic-entities-go/entity/cache"
	"github.com/AntonStoeckl/dynamic-entities-go/entity/dbal"
	"github.com/AntonStoeckl/dynamic-entities-go/entity/eventbus"
	"github.com/AntonStoeckl/dynamic-entities-go/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err = cli.NewRootCommand(newEnvFactory(cfg)).ExecuteContext(ctx); err != nil {
		log.Printf("entityctl: %v", err)
		stop()
		os.Exit(1) //nolint:gocritic
	}
}

// newEnvFactory wires store, cache, event bus and statistics client from cfg.
//
//nolint:funlen
func newEnvFactory(cfg *config.Config) cli.EnvFactory {
	return func(ctx context.Context) (*cli.Env, func(), error) {
		logger := cfg.Logging.NewLogger(os.Stderr)
		releases := make([]func(), 0, 4)

		release := func() {
			for i := len(releases) - 1; i >= 0; i-- {
				releases[i]()
			}
		}

		registry, err := commerce.NewRegistry()
		if err != nil {
			return nil, nil, err
		}

		storeOptions := []dbal.Option{dbal.WithLogger(logger)}

		if cfg.Telemetry.Enabled {
			telemetry, telemetryErr := cfg.Telemetry.NewTelemetry(ctx)
			if telemetryErr != nil {
				return nil, nil, telemetryErr
			}

			releases = append(releases, func() {
				if shutdownErr := telemetry.Shutdown(context.Background()); shutdownErr != nil {
					logger.Warn("telemetry shutdown failed", "error", shutdownErr.Error())
				}
			})
			storeOptions = append(storeOptions, telemetry.StoreOptions()...)
		}

		dbalStore, closeDB, err := cfg.Database.OpenStore(ctx, registry, storeOptions...)
		if err != nil {
			release()
			return nil, nil, err
		}

		releases = append(releases, closeDB)

		env := &cli.Env{
			Registry:   registry,
			Store:      dbalStore,
			Dispatcher: entity.NewDispatcher(entity.WithDispatcherLogger(logger)),
			Logger:     logger,
			Topic:      cfg.Kafka.Topic,
		}

		store, redisClient, err := cfg.Redis.NewCachedStore(dbalStore, registry, cache.WithLogger(logger))
		if err != nil {
			release()
			return nil, nil, err
		}

		if cachedStore, ok := store.(*cache.Store); ok {
			releases = append(releases, func() { _ = redisClient.Close() })
			env.Store = cachedStore
			env.Invalidation = cachedStore.Listener()
			env.Dispatcher.SubscribeAll(cachedStore.Listener())
		}

		if cfg.Kafka.Enabled() {
			if err = wireEventBus(cfg.Kafka, env, logger, &releases); err != nil {
				release()
				return nil, nil, err
			}
		}

		if cfg.Benchmark.Endpoint != "" {
			client, clientErr := cfg.Benchmark.NewClient(logger)
			if clientErr != nil {
				release()
				return nil, nil, clientErr
			}

			env.Statistics = client
		}

		return env, release, nil
	}
}

// wireEventBus publishes the dispatched written events and connects the consumer group.
func wireEventBus(cfg config.KafkaConfig, env *cli.Env, logger *slog.Logger, releases *[]func()) error {
	producer, err := cfg.NewSyncProducer()
	if err != nil {
		return err
	}

	publisher, err := cfg.NewPublisher(producer, eventbus.WithPublisherLogger(logger))
	if err != nil {
		_ = producer.Close()
		return err
	}

	*releases = append(*releases, func() { _ = publisher.Close() })
	env.Dispatcher.SubscribeAll(publisher.Listener())

	group, err := cfg.NewConsumerGroup()
	if err != nil {
		return err
	}

	*releases = append(*releases, func() { _ = group.Close() })
	env.ConsumerGroup = group

	return nil
}

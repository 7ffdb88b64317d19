package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
	"github.com/AntonStoeckl/dynamic-entities-go/entity/eventbus"
)

func newConsumeCommand(newEnv EnvFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "consume",
		Short: "Consume written events from the event bus and invalidate cached rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithEnv(cmd, newEnv, func(ctx context.Context, env *Env) error {
				if env.ConsumerGroup == nil {
					return ErrEventBusDisabled
				}

				dispatcher := entity.NewDispatcher(entity.WithDispatcherLogger(env.logger()))
				if env.Invalidation != nil {
					dispatcher.SubscribeAll(env.Invalidation)
				}

				consumer, err := eventbus.NewConsumer(dispatcher, env.logger())
				if err != nil {
					return err
				}

				return eventbus.Run(ctx, env.ConsumerGroup, []string{env.Topic}, consumer)
			})
		},
	}
}

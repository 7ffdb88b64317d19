package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/dynamic-entities-go/commerce"
	"github.com/AntonStoeckl/dynamic-entities-go/entity"
	"github.com/AntonStoeckl/dynamic-entities-go/entity/repository"
)

type customerOutput struct {
	Customers []commerce.CustomerDetail `json:"customers"`
	Events    []string                  `json:"events"`
}

func newCustomerCommand(newEnv EnvFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "customer <id>...",
		Short: "Read customer details with their associations and list the fired events",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithEnv(cmd, newEnv, func(ctx context.Context, env *Env) error {
				ids, err := parseIDs(args)
				if err != nil {
					return err
				}

				output := customerOutput{Events: []string{}}

				env.Dispatcher.SubscribeAll(func(_ context.Context, event entity.NestedEvent) error {
					output.Events = append(output.Events, event.Name())
					return nil
				})

				repositories, err := commerce.NewRepositories(
					env.Store,
					env.Registry,
					repository.WithDispatcher(env.Dispatcher),
					repository.WithLogger(env.logger()),
				)
				if err != nil {
					return err
				}

				customers, err := repositories.Customers.ReadDetail(ctx, ids...)
				if err != nil {
					return err
				}

				output.Customers = customers.Elements()

				return printJSON(cmd.OutOrStdout(), output)
			})
		},
	}
}

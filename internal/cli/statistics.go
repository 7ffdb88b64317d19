package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
)

const flagPayload = "payload"

type statisticsOutput struct {
	Token       string    `json:"token"`
	DateUpdated time.Time `json:"dateUpdated"`
}

func newStatisticsCommand(newEnv EnvFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "statistics",
		Short: "Send statistics given as JSON to the benchmark service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithEnv(cmd, newEnv, func(ctx context.Context, env *Env) error {
				if env.Statistics == nil {
					return ErrStatisticsDisabled
				}

				raw, err := cmd.Flags().GetString(flagPayload)
				if err != nil {
					return err
				}

				var payload map[string]any
				if err = jsonAPI.UnmarshalFromString(raw, &payload); err != nil {
					return errors.Join(errors.New("payload is not a JSON object"), err)
				}

				response, err := env.Statistics.SendStatistics(ctx, payload)
				if err != nil {
					return err
				}

				return printJSON(cmd.OutOrStdout(), statisticsOutput{Token: response.Token, DateUpdated: response.DateUpdated})
			})
		},
	}

	cmd.Flags().String(flagPayload, "{}", "statistics as JSON object")

	return cmd
}

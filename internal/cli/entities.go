package cli

import (
	"context"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
)

const (
	flagCriteria = "criteria"
	flagIDsOnly  = "ids"
)

type searchOutput struct {
	Total int         `json:"total"`
	IDs   []uuid.UUID `json:"ids"`
	Rows  entity.Rows `json:"rows,omitempty"`
}

type deleteOutput struct {
	Entity  string `json:"entity"`
	Deleted int64  `json:"deleted"`
}

func newEntitiesCommand(newEnv EnvFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "entities",
		Short: "List the registered entities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithEnv(cmd, newEnv, func(_ context.Context, env *Env) error {
				return printJSON(cmd.OutOrStdout(), env.Registry.Names())
			})
		},
	}
}

func newSearchCommand(newEnv EnvFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <entity>",
		Short: "Search an entity with criteria given as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithEnv(cmd, newEnv, func(ctx context.Context, env *Env) error {
				definition, err := env.Registry.Get(args[0])
				if err != nil {
					return err
				}

				criteria, err := criteriaFromFlag(cmd)
				if err != nil {
					return err
				}

				result, err := env.Store.SearchIDs(ctx, definition, criteria)
				if err != nil {
					return err
				}

				output := searchOutput{Total: result.Total(), IDs: result.IDs()}

				if idsOnly, _ := cmd.Flags().GetBool(flagIDsOnly); !idsOnly && len(output.IDs) > 0 {
					if output.Rows, err = env.Store.ReadRows(ctx, definition, output.IDs); err != nil {
						return err
					}
				}

				return printJSON(cmd.OutOrStdout(), output)
			})
		},
	}

	cmd.Example = `  entityctl search product --criteria '{"filters":[{"type":"term","field":"product.active","value":true}],"limit":10}'`
	cmd.Flags().String(flagCriteria, "", "criteria as JSON")
	cmd.Flags().Bool(flagIDsOnly, false, "print the matching ids only")

	return cmd
}

func criteriaFromFlag(cmd *cobra.Command) (*entity.Criteria, error) {
	raw, err := cmd.Flags().GetString(flagCriteria)
	if err != nil {
		return nil, err
	}

	if raw == "" {
		return entity.NewCriteria(), nil
	}

	return entity.CriteriaFromJSON([]byte(raw))
}

func newReadCommand(newEnv EnvFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "read <entity> <id>...",
		Short: "Read the rows of an entity",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithEnv(cmd, newEnv, func(ctx context.Context, env *Env) error {
				definition, err := env.Registry.Get(args[0])
				if err != nil {
					return err
				}

				ids, err := parseIDs(args[1:])
				if err != nil {
					return err
				}

				rows, err := env.Store.ReadRows(ctx, definition, ids)
				if err != nil {
					return err
				}

				return printJSON(cmd.OutOrStdout(), rows)
			})
		},
	}
}

func newDeleteCommand(newEnv EnvFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <entity> <id>...",
		Short: "Delete rows of an entity by id and dispatch the deleted event",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithEnv(cmd, newEnv, func(ctx context.Context, env *Env) error {
				definition, err := env.Registry.Get(args[0])
				if err != nil {
					return err
				}

				ids, err := parseIDs(args[1:])
				if err != nil {
					return err
				}

				primaryKeys := make([]entity.PrimaryKeyValues, 0, len(ids))
				for _, id := range ids {
					primaryKeys = append(primaryKeys, entity.PrimaryKeyValues{"id": id})
				}

				deleted, deleteErr := env.Store.Delete(ctx, definition, primaryKeys)
				event := entity.NewDeletedEvent(definition.Name(), primaryKeys, entity.ShopContextFrom(ctx), deleteErr)

				if dispatchErr := env.Dispatcher.Dispatch(ctx, event); dispatchErr != nil {
					env.logWarn("dispatching deleted event failed", dispatchErr)
				}

				if deleteErr != nil {
					return deleteErr
				}

				return printJSON(cmd.OutOrStdout(), deleteOutput{Entity: definition.Name(), Deleted: deleted})
			})
		},
	}
}

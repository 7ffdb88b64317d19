// Package cli implements the entityctl commands on top of the entity store.
package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/dynamic-entities-go/benchmark"
	"github.com/AntonStoeckl/dynamic-entities-go/entity"
	"github.com/AntonStoeckl/dynamic-entities-go/entity/repository"
)

const (
	flagLanguage = "language"
	flagEventual = "eventual"
)

var (
	// ErrStatisticsDisabled is returned by the statistics command when no endpoint is configured.
	ErrStatisticsDisabled = errors.New("statistics endpoint not configured")

	// ErrEventBusDisabled is returned by the consume command when no brokers are configured.
	ErrEventBusDisabled = errors.New("event bus not configured")

	jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary
)

// StatisticsSender sends statistics to the benchmark service.
type StatisticsSender interface {
	SendStatistics(ctx context.Context, payload any) (benchmark.StatisticsResponse, error)
}

// Env is what the commands run against. Statistics, ConsumerGroup and Invalidation are optional.
type Env struct {
	Registry   *entity.Registry
	Store      repository.Store
	Dispatcher *entity.Dispatcher
	Logger     *slog.Logger

	Statistics    StatisticsSender
	ConsumerGroup sarama.ConsumerGroup
	Topic         string

	// Invalidation receives the events consumed from the event bus.
	Invalidation entity.Listener
}

// EnvFactory creates the Env of one command run and a function releasing it.
type EnvFactory func(ctx context.Context) (*Env, func(), error)

// NewRootCommand creates the entityctl command tree.
func NewRootCommand(newEnv EnvFactory) *cobra.Command {
	root := &cobra.Command{
		Use:           "entityctl",
		Short:         "Search, read and write commerce entities",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String(flagLanguage, "", "language id the rows are read in (default language if empty)")
	root.PersistentFlags().Bool(flagEventual, false, "read from the replica if one is configured")

	root.AddCommand(
		newEntitiesCommand(newEnv),
		newSearchCommand(newEnv),
		newReadCommand(newEnv),
		newDeleteCommand(newEnv),
		newCustomerCommand(newEnv),
		newStatisticsCommand(newEnv),
		newConsumeCommand(newEnv),
	)

	return root
}

// runWithEnv creates the env, prepares the context from the persistent flags and runs fn.
func runWithEnv(cmd *cobra.Command, newEnv EnvFactory, fn func(ctx context.Context, env *Env) error) error {
	ctx, err := commandContext(cmd)
	if err != nil {
		return err
	}

	env, release, err := newEnv(ctx)
	if err != nil {
		return err
	}

	if release != nil {
		defer release()
	}

	return fn(ctx, env)
}

func commandContext(cmd *cobra.Command) (context.Context, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	shopContext := entity.DefaultShopContext()

	language, err := cmd.Flags().GetString(flagLanguage)
	if err != nil {
		return nil, err
	}

	if language != "" {
		languageID, parseErr := uuid.Parse(language)
		if parseErr != nil {
			return nil, errors.Join(entity.ErrInvalidUUID, parseErr)
		}

		shopContext.LanguageID = languageID
	}

	ctx = entity.WithShopContext(ctx, shopContext)

	eventual, err := cmd.Flags().GetBool(flagEventual)
	if err != nil {
		return nil, err
	}

	if eventual {
		ctx = entity.WithEventualConsistency(ctx)
	}

	return ctx, nil
}

// logger returns the logger as entity.Logger, nil if none is set.
func (e *Env) logger() entity.Logger {
	if e.Logger == nil {
		return nil
	}

	return e.Logger
}

func (e *Env) logWarn(message string, err error) {
	if e.Logger != nil {
		e.Logger.Warn(message, "error", err.Error())
	}
}

func printJSON(w io.Writer, value any) error {
	return jsonAPI.NewEncoder(w).Encode(value)
}

func parseIDs(args []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(args))

	for _, arg := range args {
		id, err := uuid.Parse(arg)
		if err != nil {
			return nil, errors.Join(entity.ErrInvalidUUID, err)
		}

		ids = append(ids, id)
	}

	return ids, nil
}

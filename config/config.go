package config

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	_ "github.com/joho/godotenv/autoload" // loads .env into the process environment
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of all environment variables read by Load.
const EnvPrefix = "ENTITYSTORE_"

const (
	driverPGX  = "pgx"
	driverSQL  = "sql"
	driverSQLX = "sqlx"
)

var (
	// ErrLoadingConfig is returned when the environment cannot be read or decoded.
	ErrLoadingConfig = errors.New("loading config failed")

	// ErrInvalidConfig is returned when the loaded config does not pass validation.
	ErrInvalidConfig = errors.New("invalid config")
)

// Config is the root configuration of the entity store.
type Config struct {
	Database  DatabaseConfig  `koanf:"database" validate:"required"`
	Redis     RedisConfig     `koanf:"redis"`
	Kafka     KafkaConfig     `koanf:"kafka"`
	Benchmark BenchmarkConfig `koanf:"benchmark"`
	Logging   LoggingConfig   `koanf:"logging"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// DatabaseConfig selects the database driver and tunes its connection pool.
// ReplicaDSN is optional, reads go to the replica when it is set.
// SQLDriverName is the database/sql driver used by the sql and sqlx drivers, lib/pq registers "postgres".
type DatabaseConfig struct {
	Driver            string        `koanf:"driver" validate:"oneof=pgx sql sqlx"`
	Dialect           string        `koanf:"dialect" validate:"oneof=postgres postgresql mysql mariadb"`
	SQLDriverName     string        `koanf:"sql_driver_name" validate:"required"`
	DSN               string        `koanf:"dsn" validate:"required"`
	ReplicaDSN        string        `koanf:"replica_dsn"`
	MaxOpenConns      int           `koanf:"max_open_conns" validate:"gt=0"`
	MinIdleConns      int           `koanf:"min_idle_conns" validate:"gte=0,ltefield=MaxOpenConns"`
	ConnMaxLifetime   time.Duration `koanf:"conn_max_lifetime" validate:"gt=0"`
	ConnMaxIdleTime   time.Duration `koanf:"conn_max_idle_time" validate:"gt=0"`
	HealthCheckPeriod time.Duration `koanf:"health_check_period" validate:"gt=0"`
	ConnectTimeout    time.Duration `koanf:"connect_timeout" validate:"gt=0"`
}

// RedisConfig configures the row cache. The cache is disabled while Address is empty.
type RedisConfig struct {
	Address   string        `koanf:"address" validate:"omitempty,hostname_port"`
	Password  string        `koanf:"password"`
	DB        int           `koanf:"db" validate:"gte=0"`
	KeyPrefix string        `koanf:"key_prefix" validate:"required"`
	TTL       time.Duration `koanf:"ttl" validate:"gt=0"`
}

// Enabled reports whether a redis address is configured.
func (c RedisConfig) Enabled() bool {
	return c.Address != ""
}

// KafkaConfig configures the written-event bus. The bus is disabled while Brokers is empty.
type KafkaConfig struct {
	Brokers  []string `koanf:"brokers" validate:"dive,hostname_port"`
	Topic    string   `koanf:"topic" validate:"required"`
	GroupID  string   `koanf:"group_id" validate:"required"`
	ClientID string   `koanf:"client_id" validate:"required"`
}

// Enabled reports whether at least one broker is configured.
func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

// BenchmarkConfig configures the statistics endpoint client.
type BenchmarkConfig struct {
	Endpoint string        `koanf:"endpoint" validate:"omitempty,url"`
	Timeout  time.Duration `koanf:"timeout" validate:"gt=0"`
}

// LoggingConfig configures the slog logger.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=text json"`
}

// TelemetryConfig configures the OpenTelemetry providers. Telemetry is off unless Enabled is set.
type TelemetryConfig struct {
	Enabled        bool   `koanf:"enabled"`
	ServiceName    string `koanf:"service_name" validate:"required"`
	ServiceVersion string `koanf:"service_version"`
}

// Default returns the configuration used for every variable that is not set.
// The defaults mirror a single postgres node accessed through pgxpool.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:            driverPGX,
			Dialect:           "postgres",
			SQLDriverName:     "postgres",
			MaxOpenConns:      50,
			MinIdleConns:      10,
			ConnMaxLifetime:   time.Hour,
			ConnMaxIdleTime:   5 * time.Minute,
			HealthCheckPeriod: time.Minute,
			ConnectTimeout:    5 * time.Second,
		},
		Redis: RedisConfig{
			KeyPrefix: "entity",
			TTL:       10 * time.Minute,
		},
		Kafka: KafkaConfig{
			Topic:    "entity.written",
			GroupID:  "entitystore",
			ClientID: "entitystore",
		},
		Benchmark: BenchmarkConfig{
			Timeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "entitystore",
		},
	}
}

// Load reads the ENTITYSTORE_ environment variables over the defaults and validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil)
	if err != nil {
		return nil, errors.Join(ErrLoadingConfig, err)
	}

	cfg := Default()
	if err = k.UnmarshalWithConf("", cfg, unmarshalConf(cfg)); err != nil {
		return nil, errors.Join(ErrLoadingConfig, err)
	}

	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// unmarshalConf extends the koanf defaults with comma separated lists, e.g. ENTITYSTORE_KAFKA__BROKERS=a:9092,b:9092.
func unmarshalConf(cfg *Config) koanf.UnmarshalConf {
	return koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
				mapstructure.TextUnmarshallerHookFunc(),
			),
			Result:           cfg,
			WeaklyTypedInput: true,
		},
	}
}

// Validate checks the struct tags of the whole configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}

	return nil
}

// envKey maps ENTITYSTORE_DATABASE__MAX_OPEN_CONNS to database.max_open_conns.
func envKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(name, EnvPrefix)), "__", ".")
}

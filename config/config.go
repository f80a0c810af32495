package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/marcelsud/webhook-dispatch/retry"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

/* Config is read from an optional .env TOML file in the working directory,
 * overridden by environment variables of the same name
 */

const (
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Port string `mapstructure:"PORT"`

	StoreDriver string `mapstructure:"STORE_DRIVER"`
	QueueDriver string `mapstructure:"QUEUE_DRIVER"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	DatabaseURL                string `mapstructure:"DATABASE_URL"`
	PostgresMaxOpenConns       int    `mapstructure:"POSTGRES_MAX_OPEN_CONNS"`
	PostgresMaxIdleConns       int    `mapstructure:"POSTGRES_MAX_IDLE_CONNS"`
	PostgresConnMaxLifeMinutes int    `mapstructure:"POSTGRES_CONN_MAX_LIFE_MINUTES"`

	WorkerCount      int           `mapstructure:"WORKER_COUNT"`
	MaxRetries       int           `mapstructure:"MAX_RETRIES"`
	RetryBaseDelay   time.Duration `mapstructure:"RETRY_BASE_DELAY"`
	RetryMaxDelay    time.Duration `mapstructure:"RETRY_MAX_DELAY"`
	DeliveryTimeout  time.Duration `mapstructure:"DELIVERY_TIMEOUT"`
	DisableThreshold int           `mapstructure:"DISABLE_THRESHOLD"`
	EventTypesFile   string        `mapstructure:"EVENT_TYPES_FILE"`
	ReclaimIdle      time.Duration `mapstructure:"RECLAIM_IDLE"`
	ConsumerName     string        `mapstructure:"CONSUMER_NAME"`

	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	LogJSON         bool          `mapstructure:"LOG_JSON"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

func GetConfig() (*Config, error) {
	return load(viper.New(), ".")
}

func load(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)

	v.SetConfigName(".env")
	v.SetConfigType("toml")
	v.AddConfigPath(path)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("parsing config data: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &config, nil
}

// AutomaticEnv only sees keys viper already knows, so every key gets a default
func setDefaults(v *viper.Viper) {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "webhook-dispatch"
	}

	v.SetDefault("PORT", "8080")
	v.SetDefault("STORE_DRIVER", DriverRedis)
	v.SetDefault("QUEUE_DRIVER", DriverRedis)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("POSTGRES_MAX_OPEN_CONNS", 25)
	v.SetDefault("POSTGRES_MAX_IDLE_CONNS", 5)
	v.SetDefault("POSTGRES_CONN_MAX_LIFE_MINUTES", 5)
	v.SetDefault("WORKER_COUNT", 4)
	v.SetDefault("MAX_RETRIES", retry.DefaultStrategy().MaxRetries)
	v.SetDefault("RETRY_BASE_DELAY", retry.DefaultStrategy().BaseDelay)
	v.SetDefault("RETRY_MAX_DELAY", retry.DefaultStrategy().MaxDelay)
	v.SetDefault("DELIVERY_TIMEOUT", 30*time.Second)
	v.SetDefault("DISABLE_THRESHOLD", 10)
	v.SetDefault("EVENT_TYPES_FILE", "")
	v.SetDefault("RECLAIM_IDLE", 5*time.Minute)
	v.SetDefault("CONSUMER_NAME", hostname)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_JSON", true)
	v.SetDefault("SHUTDOWN_TIMEOUT", 30*time.Second)
}

// Validate checks driver names and the values the backends depend on
func (c Config) Validate() error {
	usesRedis := c.StoreDriver == DriverRedis || c.QueueDriver == DriverRedis

	return validation.ValidateStruct(&c,
		validation.Field(&c.Port, validation.Required),
		validation.Field(&c.StoreDriver, validation.Required, validation.In(DriverRedis, DriverPostgres, DriverMemory)),
		validation.Field(&c.QueueDriver, validation.Required, validation.In(DriverRedis, DriverMemory)),
		validation.Field(&c.RedisAddr, validation.When(usesRedis, validation.Required)),
		validation.Field(&c.DatabaseURL, validation.When(c.StoreDriver == DriverPostgres, validation.Required)),
		validation.Field(&c.WorkerCount, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxRetries, validation.Min(0)),
		validation.Field(&c.RetryBaseDelay, validation.By(func(interface{}) error {
			return c.Retry().Validate()
		})),
		validation.Field(&c.DeliveryTimeout, validation.Min(time.Millisecond)),
		validation.Field(&c.ReclaimIdle, validation.Min(time.Second), validation.By(func(interface{}) error {
			// a job still being delivered must never look abandoned
			if c.ReclaimIdle <= c.DeliveryTimeout {
				return fmt.Errorf("must be greater than DELIVERY_TIMEOUT (%s)", c.DeliveryTimeout)
			}
			return nil
		})),
		validation.Field(&c.LogLevel, validation.By(func(value interface{}) error {
			_, err := zerolog.ParseLevel(value.(string))
			return err
		})),
	)
}

// Retry builds the retry strategy from the configured bounds
func (c Config) Retry() retry.Strategy {
	return retry.Strategy{
		MaxRetries:      c.MaxRetries,
		BaseDelay:       c.RetryBaseDelay,
		MaxDelay:        c.RetryMaxDelay,
		ExponentialBase: retry.DefaultStrategy().ExponentialBase,
	}
}

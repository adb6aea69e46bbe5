package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,       default=8000"`
	Env       string `env:"ENV,        default=development"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	CORSAllowOrigins []string      `env:"CORS_ALLOW_ORIGINS, default=http://localhost:3000,http://localhost:3001"`
	TrackInterval    time.Duration `env:"TRACK_INTERVAL,     default=15m"`

	RateLimit RateLimitConfig
	Store     StoreConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Maps      MapsConfig
	Notify    NotifyConfig
	RabbitMQ  RabbitMQConfig
}

type RateLimitConfig struct {
	RPS   float64 `env:"RATE_LIMIT_RPS,   default=5"`
	Burst int     `env:"RATE_LIMIT_BURST, default=10"`
}

// StoreConfig selects the persistence backend: sqlite, postgres, mysql or mongo.
// An empty DSN means price_tracker.db for sqlite and is rejected for postgres
// and mysql.
type StoreConfig struct {
	Driver       string `env:"STORE_DRIVER,      default=sqlite"`
	DSN          string `env:"DATABASE_URL"`
	MaxOpenConns int    `env:"DB_MAX_OPEN_CONNS, default=10"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=ridefare"`
}

// RedisConfig enables the shared check lock when Addr is set. Addr may also
// be a redis:// URL.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// MapsConfig falls back to the built-in distance table without an API key.
type MapsConfig struct {
	APIKey          string `env:"GOOGLE_MAPS_API_KEY"`
	RateLimitPerMin int    `env:"MAPS_RATE_LIMIT_PER_MIN, default=600"`
}

type NotifyConfig struct {
	Channel string `env:"NOTIFIER, default=log"`

	TwilioAccountSID string `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `env:"TWILIO_AUTH_TOKEN"`
	TwilioFrom       string `env:"TWILIO_FROM_NUMBER"`

	AWSRegion   string `env:"AWS_REGION,       default=us-east-1"`
	SNSEndpoint string `env:"AWS_SNS_ENDPOINT"`
	SNSSenderID string `env:"SNS_SENDER_ID"`
}

// RabbitMQConfig enables alert publishing when URL is set.
type RabbitMQConfig struct {
	URL string `env:"RABBITMQ_URL"`
}

var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through an arbitrary lookuper.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	switch c.Store.Driver {
	case "sqlite", "mongo":
	case "postgres", "mysql":
		if strings.TrimSpace(c.Store.DSN) == "" {
			return fmt.Errorf("%w: STORE_DRIVER=%s needs DATABASE_URL", ErrInvalidConfig, c.Store.Driver)
		}
	default:
		return fmt.Errorf("%w: STORE_DRIVER %q", ErrInvalidConfig, c.Store.Driver)
	}

	c.Notify.Channel = strings.ToLower(strings.TrimSpace(c.Notify.Channel))
	switch c.Notify.Channel {
	case "log", "sns":
	case "twilio":
		if c.Notify.TwilioAccountSID == "" || c.Notify.TwilioAuthToken == "" || c.Notify.TwilioFrom == "" {
			return fmt.Errorf("%w: NOTIFIER=twilio needs TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_FROM_NUMBER", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: NOTIFIER %q", ErrInvalidConfig, c.Notify.Channel)
	}

	if c.TrackInterval <= 0 {
		return fmt.Errorf("%w: TRACK_INTERVAL must be positive", ErrInvalidConfig)
	}
	if c.RateLimit.RPS < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("%w: rate limit must not be negative", ErrInvalidConfig)
	}
	return nil
}

// IsProduction reports whether ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

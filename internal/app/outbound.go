package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/airiscab/ridefare/internal/api/handler"
	"github.com/airiscab/ridefare/internal/core/ports"
	"github.com/airiscab/ridefare/internal/infrastructure/config"
	"github.com/airiscab/ridefare/internal/infrastructure/db/redis"
	"github.com/airiscab/ridefare/internal/infrastructure/maps/googlemaps"
	"github.com/airiscab/ridefare/internal/infrastructure/maps/static"
	"github.com/airiscab/ridefare/internal/infrastructure/notify"
	"github.com/airiscab/ridefare/internal/infrastructure/queue"
)

// NewDistanceProvider returns the Distance Matrix client when an API key is
// configured and the built-in table otherwise.
func NewDistanceProvider(cfg *config.Config, log zerolog.Logger) (ports.DistanceProvider, error) {
	if cfg.Maps.APIKey == "" {
		log.Warn().Msg("GOOGLE_MAPS_API_KEY not set, using the built-in distance table")
		return static.New(), nil
	}

	mc := googlemaps.ClientConfigDefaults()
	mc.APIKey = cfg.Maps.APIKey
	mc.RateLimitPerMin = cfg.Maps.RateLimitPerMin

	client, err := googlemaps.NewClient(mc, log)
	if err != nil {
		return nil, fmt.Errorf("distance provider: %w", err)
	}
	return client, nil
}

func newNotifier(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.Notifier, error) {
	switch cfg.Notify.Channel {
	case "twilio":
		n, err := notify.NewTwilioNotifier(notify.TwilioConfig{
			AccountSID: cfg.Notify.TwilioAccountSID,
			AuthToken:  cfg.Notify.TwilioAuthToken,
			From:       cfg.Notify.TwilioFrom,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("notifier: %w", err)
		}
		return n, nil
	case "sns":
		client, err := notify.NewSNSClient(ctx, cfg.Notify.AWSRegion, cfg.Notify.SNSEndpoint)
		if err != nil {
			return nil, fmt.Errorf("notifier: %w", err)
		}
		n, err := notify.NewSNSNotifier(client, notify.SNSConfig{SenderID: cfg.Notify.SNSSenderID}, log)
		if err != nil {
			return nil, fmt.Errorf("notifier: %w", err)
		}
		return n, nil
	default:
		return notify.NewLogNotifier(log.With().Str("component", "notifier").Logger()), nil
	}
}

// checkLock connects to Redis when REDIS_ADDR is set. Without it the lock only
// guards checks within this process.
func (a *App) checkLock(ctx context.Context) (ports.CheckLock, error) {
	if a.Config.Redis.Addr == "" {
		return redis.NewLocalLock(), nil
	}

	client, err := redis.Connect(ctx, redis.Config{
		Addr:     a.Config.Redis.Addr,
		Password: a.Config.Redis.Password,
		DB:       a.Config.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("check lock: %w", err)
	}
	a.addCloser("redis", func(context.Context) error { return client.Close() })
	a.checks = append(a.checks, handler.DependencyCheck{Name: "redis", Ping: func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}})
	return redis.NewCheckLock(client), nil
}

// alertPublisher connects to RabbitMQ when RABBITMQ_URL is set.
func (a *App) alertPublisher() (ports.AlertPublisher, error) {
	if a.Config.RabbitMQ.URL == "" {
		return queue.NopPublisher{}, nil
	}

	conn, err := queue.Dial(a.Config.RabbitMQ.URL)
	if err != nil {
		return nil, fmt.Errorf("alert publisher: %w", err)
	}
	a.addCloser("rabbitmq", func(context.Context) error { return conn.Close() })
	a.checks = append(a.checks, handler.DependencyCheck{Name: "rabbitmq", Ping: func(context.Context) error {
		if conn.IsClosed() {
			return errors.New("connection closed")
		}
		return nil
	}})

	pub, err := queue.NewAlertPublisher(conn)
	if err != nil {
		return nil, fmt.Errorf("alert publisher: %w", err)
	}
	return pub, nil
}

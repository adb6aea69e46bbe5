package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/airiscab/ridefare/internal/core/ports"
	"github.com/airiscab/ridefare/internal/infrastructure/config"
	mongostore "github.com/airiscab/ridefare/internal/infrastructure/db/mongo"
	"github.com/airiscab/ridefare/internal/infrastructure/db/sqlstore"
)

// store is the persistence backend selected by STORE_DRIVER.
type store struct {
	name    string
	routes  ports.RouteRepository
	history ports.PriceHistoryRepository
	migrate func(ctx context.Context) error
	ping    func(ctx context.Context) error
	close   func(ctx context.Context) error
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*store, error) {
	if cfg.Store.Driver == "mongo" {
		return openMongo(ctx, cfg)
	}

	db, err := sqlstore.Open(ctx, sqlstore.Config{
		Driver:       cfg.Store.Driver,
		DSN:          cfg.Store.DSN,
		MaxOpenConns: cfg.Store.MaxOpenConns,
	}, log.With().Str("component", "sqlstore").Logger())
	if err != nil {
		return nil, err
	}

	return &store{
		name:    cfg.Store.Driver,
		routes:  sqlstore.NewRouteRepository(db),
		history: sqlstore.NewPriceHistoryRepository(db),
		migrate: func(ctx context.Context) error { return sqlstore.Migrate(ctx, db) },
		ping:    func(ctx context.Context) error { return sqlstore.Ping(ctx, db) },
		close:   func(context.Context) error { return sqlstore.Close(db) },
	}, nil
}

func openMongo(ctx context.Context, cfg *config.Config) (*store, error) {
	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	return &store{
		name:    "mongodb",
		routes:  mongostore.NewRouteRepository(db),
		history: mongostore.NewPriceHistoryRepository(db),
		migrate: func(ctx context.Context) error { return mongostore.EnsureIndexes(ctx, db) },
		ping:    func(ctx context.Context) error { return client.Ping(ctx, nil) },
		close:   client.Disconnect,
	}, nil
}

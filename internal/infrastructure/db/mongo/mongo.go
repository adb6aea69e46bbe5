// Package mongo stores tracked routes and price history in MongoDB.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

const (
	connectTimeout = 10 * time.Second
	defaultTimeout = 5 * time.Second
	appName        = "ridefare"
)

// Config selects the deployment and the database holding tracked_routes,
// price_history and counters.
type Config struct {
	URI      string
	Database string
}

// Connect opens a client with majority writes, so a deactivation seen by one
// replica is seen by all, and pings the primary before returning.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	if cfg.Database == "" {
		return nil, nil, fmt.Errorf("mongo connect: database name is required")
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName(appName).
		SetServerSelectionTimeout(connectTimeout).
		SetWriteConcern(writeconcern.Majority())

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// EnsureIndexes creates the indexes of every collection the store uses.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if err := NewRouteRepository(db).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("tracked_routes indexes: %w", err)
	}
	if err := NewPriceHistoryRepository(db).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("price_history indexes: %w", err)
	}
	return nil
}

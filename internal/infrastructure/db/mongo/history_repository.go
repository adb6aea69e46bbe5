package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/airiscab/ridefare/internal/core/domain"
)

const collectionHistory = "price_history"

type historyDoc struct {
	ID        int64     `bson:"_id"`
	RouteID   int64     `bson:"route_id"`
	Service   string    `bson:"service"`
	Price     float64   `bson:"price"`
	Timestamp time.Time `bson:"timestamp"`
}

type PriceHistoryRepository struct {
	db  *mongo.Database
	col *mongo.Collection
}

func NewPriceHistoryRepository(db *mongo.Database) *PriceHistoryRepository {
	return &PriceHistoryRepository{db: db, col: db.Collection(collectionHistory)}
}

// Append reserves a block of ids and inserts all entries in one call.
func (r *PriceHistoryRepository) Append(ctx context.Context, entries []domain.PriceHistory) error {
	if len(entries) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	first, err := nextIDs(ctx, r.db, collectionHistory, int64(len(entries)))
	if err != nil {
		return fmt.Errorf("append price history: %w", err)
	}

	docs := make([]interface{}, len(entries))
	for i, e := range entries {
		docs[i] = historyDoc{
			ID:        first + int64(i),
			RouteID:   e.RouteID,
			Service:   e.Service,
			Price:     e.Price,
			Timestamp: e.Timestamp.UTC(),
		}
	}
	if _, err := r.col.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("append price history: %w", err)
	}
	return nil
}

// ListByRoute returns the newest limit entries of a route.
func (r *PriceHistoryRepository) ListByRoute(ctx context.Context, routeID int64, limit int) ([]domain.PriceHistory, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, bson.M{"route_id": routeID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list price history: %w", err)
	}
	defer cur.Close(ctx)

	var docs []historyDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list price history: %w", err)
	}
	out := make([]domain.PriceHistory, len(docs))
	for i, d := range docs {
		out[i] = domain.PriceHistory{
			ID:        d.ID,
			RouteID:   d.RouteID,
			Service:   d.Service,
			Price:     d.Price,
			Timestamp: d.Timestamp.UTC(),
		}
	}
	return out, nil
}

// EnsureIndexes creates necessary indexes on the price_history collection.
func (r *PriceHistoryRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "route_id", Value: 1}, {Key: "timestamp", Value: -1}},
	})
	return err
}

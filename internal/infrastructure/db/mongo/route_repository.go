package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/airiscab/ridefare/internal/core/domain"
)

const collectionRoutes = "tracked_routes"

type routeDoc struct {
	ID             int64     `bson:"_id"`
	Pickup         string    `bson:"pickup"`
	Dropoff        string    `bson:"dropoff"`
	PassengerCount int       `bson:"passenger_count"`
	PhoneNumber    string    `bson:"phone_number"`
	TargetPrice    float64   `bson:"target_price"`
	IsActive       bool      `bson:"is_active"`
	CreatedAt      time.Time `bson:"created_at"`
}

func (d *routeDoc) toDomain() *domain.TrackedRoute {
	return &domain.TrackedRoute{
		ID:             d.ID,
		Pickup:         d.Pickup,
		Dropoff:        d.Dropoff,
		PassengerCount: d.PassengerCount,
		PhoneNumber:    d.PhoneNumber,
		TargetPrice:    d.TargetPrice,
		IsActive:       d.IsActive,
		CreatedAt:      d.CreatedAt.UTC(),
	}
}

type RouteRepository struct {
	db  *mongo.Database
	col *mongo.Collection
}

func NewRouteRepository(db *mongo.Database) *RouteRepository {
	return &RouteRepository{db: db, col: db.Collection(collectionRoutes)}
}

// Create inserts a new route document with an id from the counters collection.
func (r *RouteRepository) Create(ctx context.Context, route *domain.TrackedRoute) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := nextIDs(ctx, r.db, collectionRoutes, 1)
	if err != nil {
		return fmt.Errorf("create route: %w", err)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := routeDoc{
		ID:             id,
		Pickup:         route.Pickup,
		Dropoff:        route.Dropoff,
		PassengerCount: route.PassengerCount,
		PhoneNumber:    route.PhoneNumber,
		TargetPrice:    route.TargetPrice,
		IsActive:       route.IsActive,
		CreatedAt:      now,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("create route: %w", err)
	}

	route.ID = id
	route.CreatedAt = now
	return nil
}

// FindByID retrieves a route by its integer id.
func (r *RouteRepository) FindByID(ctx context.Context, id int64) (*domain.TrackedRoute, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc routeDoc
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRouteNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *RouteRepository) ListByPhone(ctx context.Context, phone string) ([]*domain.TrackedRoute, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	return r.find(ctx, bson.M{"phone_number": phone}, opts)
}

func (r *RouteRepository) ListActive(ctx context.Context) ([]*domain.TrackedRoute, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	return r.find(ctx, bson.M{"is_active": true}, opts)
}

func (r *RouteRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.TrackedRoute, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	defer cur.Close(ctx)

	var docs []routeDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	out := make([]*domain.TrackedRoute, len(docs))
	for i := range docs {
		out[i] = docs[i].toDomain()
	}
	return out, nil
}

// Deactivate matches on is_active=true so only one caller flips the flag.
func (r *RouteRepository) Deactivate(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "is_active": true},
		bson.M{"$set": bson.M{"is_active": false}},
	)
	if err != nil {
		return fmt.Errorf("deactivate route %d: %w", id, err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	n, err := r.col.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("deactivate route %d: %w", id, err)
	}
	if n == 0 {
		return domain.ErrRouteNotFound
	}
	return domain.ErrRouteInactive
}

func (r *RouteRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete route %d: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrRouteNotFound
	}
	return nil
}

// EnsureIndexes creates necessary indexes on the tracked_routes collection.
func (r *RouteRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "phone_number", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "is_active", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// ErrMarkerExists is returned when an activity entry for a (kind, key) pair has
// already been written. The unique index on activity_logs makes this the losing
// side of a concurrent execution race.
var ErrMarkerExists = errors.New("activity marker already exists")

// ErrStockConflict is returned when a guarded batch deduction matches no
// document, meaning a concurrent writer drained the batch first.
var ErrStockConflict = errors.New("stock batch concurrently modified")

const (
	collFeedTypes     = "feed_types"
	collFeedStocks    = "feed_stocks"
	collSchedules     = "feeding_schedules"
	collAnimals       = "animals"
	collConsumptions  = "daily_consumptions"
	collActivityLogs  = "activity_logs"
	animalStatusValue = "active"
)

// Repository is the MongoDB-backed store for the consumption engine.
type Repository struct {
	client *mongo.Client
	dbName string
}

// NewRepository connects to MongoDB, verifies the connection and ensures the
// indexes the engine's correctness depends on.
func NewRepository(ctx context.Context, uri string, dbName string) (*Repository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	r := &Repository{client: client, dbName: dbName}
	if err := r.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Repository) collection(name string) *mongo.Collection {
	return r.client.Database(r.dbName).Collection(name)
}

// ensureIndexes creates the unique (kind, key) index backing the idempotency
// marker guarantee, plus the lookup indexes the hot paths rely on.
func (r *Repository) ensureIndexes(ctx context.Context) error {
	_, err := r.collection(collActivityLogs).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "kind", Value: 1}, {Key: "key", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("ensure activity log index: %w", err)
	}

	_, err = r.collection(collFeedStocks).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "feed_type_id", Value: 1}, {Key: "purchase_date", Value: 1}, {Key: "created_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("ensure feed stock index: %w", err)
	}

	_, err = r.collection(collConsumptions).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "date", Value: 1}, {Key: "feed_type_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("ensure daily consumption index: %w", err)
	}

	return nil
}

// InTransaction runs fn inside a single transaction with snapshot reads and
// majority writes. Every read and write fn performs through the passed context
// belongs to that transaction; fn returning an error aborts it wholesale.
func (r *Repository) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start mongodb session: %w", err)
	}
	defer session.EndSession(ctx)

	txnOptions := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	}, txnOptions)
	return err
}

// Close closes the MongoDB connection.
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

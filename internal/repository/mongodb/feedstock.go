package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/agrotrack/feedengine/internal/domain/models"
)

// AvailableBatches returns the non-empty stock batches of a feed type in FIFO
// order: oldest purchase date first, creation time as tiebreaker.
func (r *Repository) AvailableBatches(ctx context.Context, feedTypeID string) ([]models.FeedStock, error) {
	filter := bson.M{
		"feed_type_id": feedTypeID,
		"quantity":     bson.M{"$gt": 0},
	}
	opts := options.Find().SetSort(bson.D{{Key: "purchase_date", Value: 1}, {Key: "created_at", Value: 1}})

	cursor, err := r.collection(collFeedStocks).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find stock batches for %s: %w", feedTypeID, err)
	}

	var batches []models.FeedStock
	if err := cursor.All(ctx, &batches); err != nil {
		return nil, fmt.Errorf("decode stock batches: %w", err)
	}
	return batches, nil
}

// DeductBatch subtracts quantity from one batch. The filter re-asserts that the
// batch still holds at least that much, so a plan computed from a stale read
// cannot push a batch negative; a non-match surfaces as ErrStockConflict and
// aborts the surrounding transaction.
func (r *Repository) DeductBatch(ctx context.Context, batchID string, quantity float64) error {
	filter := bson.M{
		"_id":      batchID,
		"quantity": bson.M{"$gte": quantity},
	}
	update := bson.M{"$inc": bson.M{"quantity": -quantity}}

	result, err := r.collection(collFeedStocks).UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("deduct batch %s: %w", batchID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("deduct batch %s: %w", batchID, ErrStockConflict)
	}
	return nil
}

package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/agrotrack/feedengine/internal/domain/models"
)

// AddDailyConsumption increments the ledger row for (day, feed type, enclosure)
// or creates it when absent. Because a missing enclosure reference cannot
// anchor a storage-level upsert, this is an explicit find-then-increment inside
// the caller's transaction.
func (r *Repository) AddDailyConsumption(ctx context.Context, day time.Time, feedTypeID string, enclosureID *string, quantity, cost float64) error {
	coll := r.collection(collConsumptions)
	now := time.Now().UTC()

	filter := bson.M{
		"date":         models.DayStart(day),
		"feed_type_id": feedTypeID,
	}
	if enclosureID != nil {
		filter["enclosure_id"] = *enclosureID
	} else {
		filter["enclosure_id"] = bson.M{"$exists": false}
	}

	var existing models.DailyConsumption
	err := coll.FindOne(ctx, filter).Decode(&existing)
	switch {
	case err == nil:
		update := bson.M{
			"$inc": bson.M{"quantity": quantity, "cost": cost},
			"$set": bson.M{"updated_at": now},
		}
		if _, err := coll.UpdateOne(ctx, bson.M{"_id": existing.ID}, update); err != nil {
			return fmt.Errorf("increment daily consumption %s: %w", existing.ID, err)
		}
		return nil
	case err == mongo.ErrNoDocuments:
		row := models.DailyConsumption{
			ID:          uuid.NewString(),
			Date:        models.DayStart(day),
			FeedTypeID:  feedTypeID,
			EnclosureID: enclosureID,
			Quantity:    quantity,
			Cost:        cost,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if _, err := coll.InsertOne(ctx, row); err != nil {
			return fmt.Errorf("insert daily consumption: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("find daily consumption: %w", err)
	}
}

// ConsumptionRange returns ledger rows with a date inside [start, end],
// ordered by date then feed type.
func (r *Repository) ConsumptionRange(ctx context.Context, start, end time.Time) ([]models.DailyConsumption, error) {
	filter := bson.M{"date": bson.M{
		"$gte": models.DayStart(start),
		"$lte": models.DayStart(end),
	}}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "feed_type_id", Value: 1}})

	cursor, err := r.collection(collConsumptions).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find consumption range: %w", err)
	}

	var rows []models.DailyConsumption
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode consumption rows: %w", err)
	}
	return rows, nil
}

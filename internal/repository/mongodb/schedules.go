package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/agrotrack/feedengine/internal/domain/models"
)

// FeedTypes returns all feed type reference documents.
func (r *Repository) FeedTypes(ctx context.Context) ([]models.FeedType, error) {
	cursor, err := r.collection(collFeedTypes).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find feed types: %w", err)
	}

	var types []models.FeedType
	if err := cursor.All(ctx, &types); err != nil {
		return nil, fmt.Errorf("decode feed types: %w", err)
	}
	return types, nil
}

// ActiveSchedules returns every feeding schedule flagged active. Date-range
// effectiveness for a specific day is the aggregator's concern, not a query
// filter, so a single read serves a whole catch-up run.
func (r *Repository) ActiveSchedules(ctx context.Context) ([]models.FeedingSchedule, error) {
	cursor, err := r.collection(collSchedules).Find(ctx, bson.M{"is_active": true})
	if err != nil {
		return nil, fmt.Errorf("find active schedules: %w", err)
	}

	var schedules []models.FeedingSchedule
	if err := cursor.All(ctx, &schedules); err != nil {
		return nil, fmt.Errorf("decode schedules: %w", err)
	}
	return schedules, nil
}

// EarliestActiveScheduleStart returns the oldest start date among active
// schedules, or nil when no schedule is active.
func (r *Repository) EarliestActiveScheduleStart(ctx context.Context) (*time.Time, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "start_date", Value: 1}})

	var schedule models.FeedingSchedule
	err := r.collection(collSchedules).FindOne(ctx, bson.M{"is_active": true}, opts).Decode(&schedule)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("find earliest schedule: %w", err)
	}

	start := schedule.StartDate
	return &start, nil
}

// HeadcountByEnclosure counts active animals grouped by enclosure. Animals
// without an enclosure are grouped under the empty key, matching the
// unassigned schedule group.
func (r *Repository) HeadcountByEnclosure(ctx context.Context) (map[string]int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": animalStatusValue}}},
		{{Key: "$group", Value: bson.M{"_id": "$enclosure_id", "count": bson.M{"$sum": 1}}}},
	}

	cursor, err := r.collection(collAnimals).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate headcounts: %w", err)
	}

	var groups []struct {
		ID    *string `bson:"_id"`
		Count int     `bson:"count"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("decode headcounts: %w", err)
	}

	headcounts := make(map[string]int, len(groups))
	for _, g := range groups {
		headcounts[models.EnclosureKey(g.ID)] = g.Count
	}
	return headcounts, nil
}

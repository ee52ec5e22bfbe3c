package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/agrotrack/feedengine/internal/domain/models"
)

// MarkerExists reports whether an activity entry for (kind, key) was already
// written. Called again inside the per-day transaction so a racing execution
// that committed between the outer check and the transaction start is seen.
func (r *Repository) MarkerExists(ctx context.Context, kind, key string) (bool, error) {
	err := r.collection(collActivityLogs).
		FindOne(ctx, bson.M{"kind": kind, "key": key}).
		Err()
	switch {
	case err == nil:
		return true, nil
	case err == mongo.ErrNoDocuments:
		return false, nil
	default:
		return false, fmt.Errorf("check activity marker %s/%s: %w", kind, key, err)
	}
}

// AppendActivity writes one log entry. The unique (kind, key) index rejects a
// second marker for the same day; that duplicate surfaces as ErrMarkerExists.
func (r *Repository) AppendActivity(ctx context.Context, entry models.ActivityEntry) error {
	_, err := r.collection(collActivityLogs).InsertOne(ctx, entry)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("append activity %s/%s: %w", entry.Kind, entry.Key, ErrMarkerExists)
		}
		return fmt.Errorf("append activity %s/%s: %w", entry.Kind, entry.Key, err)
	}
	return nil
}

// ExecutedDayKeys returns the marker keys of the given kind whose key falls in
// [from, to], as a set. Used by catch-up to filter already settled days.
func (r *Repository) ExecutedDayKeys(ctx context.Context, kind string, from, to time.Time) (map[string]struct{}, error) {
	filter := bson.M{
		"kind": kind,
		"key": bson.M{
			"$gte": models.DayKey(from),
			"$lte": models.DayKey(to),
		},
	}

	cursor, err := r.collection(collActivityLogs).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find activity markers: %w", err)
	}

	var entries []models.ActivityEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode activity markers: %w", err)
	}

	keys := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		keys[entry.Key] = struct{}{}
	}
	return keys, nil
}

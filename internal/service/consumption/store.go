package consumption

import (
	"context"
	"time"

	"github.com/agrotrack/feedengine/internal/domain/models"
)

// Store defines the persistence operations the execution engine requires.
// Implementations must make every call issued through the context passed to an
// InTransaction callback part of that transaction, and must return
// mongodb.ErrMarkerExists / mongodb.ErrStockConflict (possibly wrapped) for the
// corresponding write conflicts.
type Store interface {
	FeedTypes(ctx context.Context) ([]models.FeedType, error)
	ActiveSchedules(ctx context.Context) ([]models.FeedingSchedule, error)
	EarliestActiveScheduleStart(ctx context.Context) (*time.Time, error)
	HeadcountByEnclosure(ctx context.Context) (map[string]int, error)

	ExecutedDayKeys(ctx context.Context, kind string, from, to time.Time) (map[string]struct{}, error)
	MarkerExists(ctx context.Context, kind, key string) (bool, error)
	AppendActivity(ctx context.Context, entry models.ActivityEntry) error

	AvailableBatches(ctx context.Context, feedTypeID string) ([]models.FeedStock, error)
	DeductBatch(ctx context.Context, batchID string, quantity float64) error
	AddDailyConsumption(ctx context.Context, day time.Time, feedTypeID string, enclosureID *string, quantity, cost float64) error

	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

package consumption

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/agrotrack/feedengine/internal/domain/models"
	"github.com/agrotrack/feedengine/internal/repository/mongodb"
)

// memStore is an in-memory Store with the same transactional contract as the
// MongoDB repository: InTransaction serializes concurrent units of work, a
// failed callback rolls every write back, markers are unique per (kind, key)
// and deductions are guarded against overdraw.
type memStore struct {
	mu sync.Mutex

	feedTypes    []models.FeedType
	schedules    []models.FeedingSchedule
	headcounts   map[string]int
	batches      []models.FeedStock
	consumptions []models.DailyConsumption
	activities   []models.ActivityEntry
}

func newMemStore() *memStore {
	return &memStore{headcounts: make(map[string]int)}
}

func (m *memStore) FeedTypes(ctx context.Context) ([]models.FeedType, error) {
	return append([]models.FeedType(nil), m.feedTypes...), nil
}

func (m *memStore) ActiveSchedules(ctx context.Context) ([]models.FeedingSchedule, error) {
	var active []models.FeedingSchedule
	for _, s := range m.schedules {
		if s.IsActive {
			active = append(active, s)
		}
	}
	return active, nil
}

func (m *memStore) EarliestActiveScheduleStart(ctx context.Context) (*time.Time, error) {
	var earliest *time.Time
	for _, s := range m.schedules {
		if !s.IsActive {
			continue
		}
		start := s.StartDate
		if earliest == nil || start.Before(*earliest) {
			earliest = &start
		}
	}
	return earliest, nil
}

func (m *memStore) HeadcountByEnclosure(ctx context.Context) (map[string]int, error) {
	out := make(map[string]int, len(m.headcounts))
	for k, v := range m.headcounts {
		out[k] = v
	}
	return out, nil
}

func (m *memStore) ExecutedDayKeys(ctx context.Context, kind string, from, to time.Time) (map[string]struct{}, error) {
	keys := make(map[string]struct{})
	for _, a := range m.activities {
		if a.Kind != kind {
			continue
		}
		if a.Key >= models.DayKey(from) && a.Key <= models.DayKey(to) {
			keys[a.Key] = struct{}{}
		}
	}
	return keys, nil
}

func (m *memStore) MarkerExists(ctx context.Context, kind, key string) (bool, error) {
	for _, a := range m.activities {
		if a.Kind == kind && a.Key == key {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) AppendActivity(ctx context.Context, entry models.ActivityEntry) error {
	for _, a := range m.activities {
		if a.Kind == entry.Kind && a.Key == entry.Key {
			return mongodb.ErrMarkerExists
		}
	}
	m.activities = append(m.activities, entry)
	return nil
}

func (m *memStore) AvailableBatches(ctx context.Context, feedTypeID string) ([]models.FeedStock, error) {
	var available []models.FeedStock
	for _, b := range m.batches {
		if b.FeedTypeID == feedTypeID && b.Quantity > 0 {
			available = append(available, b)
		}
	}
	return available, nil
}

func (m *memStore) DeductBatch(ctx context.Context, batchID string, quantity float64) error {
	for i := range m.batches {
		if m.batches[i].ID != batchID {
			continue
		}
		if m.batches[i].Quantity < quantity {
			return mongodb.ErrStockConflict
		}
		m.batches[i].Quantity -= quantity
		return nil
	}
	return fmt.Errorf("batch %s not found: %w", batchID, mongodb.ErrStockConflict)
}

func (m *memStore) AddDailyConsumption(ctx context.Context, day time.Time, feedTypeID string, enclosureID *string, quantity, cost float64) error {
	key := models.EnclosureKey(enclosureID)
	for i := range m.consumptions {
		row := &m.consumptions[i]
		if row.Date.Equal(models.DayStart(day)) && row.FeedTypeID == feedTypeID && models.EnclosureKey(row.EnclosureID) == key {
			row.Quantity += quantity
			row.Cost += cost
			return nil
		}
	}
	m.consumptions = append(m.consumptions, models.DailyConsumption{
		ID:          fmt.Sprintf("dc-%d", len(m.consumptions)+1),
		Date:        models.DayStart(day),
		FeedTypeID:  feedTypeID,
		EnclosureID: enclosureID,
		Quantity:    quantity,
		Cost:        cost,
	})
	return nil
}

func (m *memStore) ConsumptionRange(ctx context.Context, start, end time.Time) ([]models.DailyConsumption, error) {
	var rows []models.DailyConsumption
	for _, row := range m.consumptions {
		if !row.Date.Before(models.DayStart(start)) && !row.Date.After(models.DayStart(end)) {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (m *memStore) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	batches := append([]models.FeedStock(nil), m.batches...)
	consumptions := append([]models.DailyConsumption(nil), m.consumptions...)
	activities := append([]models.ActivityEntry(nil), m.activities...)

	if err := fn(ctx); err != nil {
		m.batches = batches
		m.consumptions = consumptions
		m.activities = activities
		return err
	}
	return nil
}

func (m *memStore) batch(id string) models.FeedStock {
	for _, b := range m.batches {
		if b.ID == id {
			return b
		}
	}
	return models.FeedStock{}
}

func strPtr(s string) *string { return &s }

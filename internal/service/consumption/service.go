package consumption

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agrotrack/feedengine/internal/domain/models"
)

// ErrNoActor is returned when execution is triggered without a resolvable
// actor identity. Anonymous runs are refused before any read.
var ErrNoActor = errors.New("no actor identity resolved")

// ShortageError is the hard failure of a manual single-day execution whose
// requirement exceeded available stock. It carries every short feed type, not
// just the first one found.
type ShortageError struct {
	Date      string
	Shortages []models.Shortage
}

func (e *ShortageError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: %d feed type(s) short", e.Date, len(e.Shortages))
}

// Service executes feed consumption: manual single days and auto catch-up runs.
type Service struct {
	store        Store
	logger       *zap.Logger
	lookbackDays int
	now          func() time.Time
}

// NewService constructs the consumption execution service. lookbackDays bounds
// how far back an auto run replays outstanding days.
func NewService(store Store, lookbackDays int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:        store,
		logger:       logger,
		lookbackDays: lookbackDays,
		now:          time.Now,
	}
}

// ExecuteManual executes exactly one calendar day on behalf of actor. A
// shortage fails the whole call with a ShortageError and mutates nothing; a
// day already executed succeeds with an empty report.
func (s *Service) ExecuteManual(ctx context.Context, actor string, day time.Time) (models.ExecutionReport, error) {
	if actor == "" {
		return models.ExecutionReport{}, ErrNoActor
	}

	runID := uuid.NewString()
	names, err := s.feedTypeNames(ctx)
	if err != nil {
		return models.ExecutionReport{}, err
	}

	key := models.DayKey(day)
	s.logger.Info("manual execution requested",
		zap.String("day", key), zap.String("actor", actor), zap.String("run_id", runID))

	outcome, err := s.executeDay(ctx, day, actor, runID)
	if err != nil {
		return models.ExecutionReport{}, fmt.Errorf("execute day %s: %w", key, err)
	}

	report := models.ExecutionReport{Success: true, RunID: runID}
	switch outcome.status {
	case dayAlreadyDone:
		report.Message = fmt.Sprintf("consumption for %s was already executed", key)
	case dayNoOp:
		report.ExecutedDates = []string{key}
		report.Message = fmt.Sprintf("no feed required on %s, day marked as executed", key)
	case dayApplied:
		report.ExecutedDates = []string{key}
		report.Consumed = consumedFeeds(outcome.consumedKg, names)
		report.TotalConsumed = outcome.totalKg
		report.Message = fmt.Sprintf("executed %s, consumed %.2f kg", key, outcome.totalKg)
	case dayShortage:
		shortages := withFeedTypeNames(outcome.shortages, names)
		report.Success = false
		report.SkippedDates = []models.SkippedDay{{Date: key, Shortages: shortages}}
		report.Message = fmt.Sprintf("insufficient stock for %s, nothing was deducted", key)
		return report, &ShortageError{Date: key, Shortages: shortages}
	}

	return report, nil
}

// ExecuteAuto executes every outstanding day up to today within the lookback
// window, in chronological order. Days short on stock are skipped with their
// shortages reported and stay eligible for a later run; a failing day never
// blocks the days after it.
func (s *Service) ExecuteAuto(ctx context.Context, actor string) (models.ExecutionReport, error) {
	if actor == "" {
		return models.ExecutionReport{}, ErrNoActor
	}

	runID := uuid.NewString()
	report := models.ExecutionReport{Success: true, RunID: runID}

	names, err := s.feedTypeNames(ctx)
	if err != nil {
		return models.ExecutionReport{}, err
	}

	days, err := s.pendingDays(ctx)
	if err != nil {
		return models.ExecutionReport{}, err
	}
	if len(days) == 0 {
		report.Message = "no outstanding days to execute"
		return report, nil
	}

	s.logger.Info("auto catch-up starting",
		zap.Int("pending_days", len(days)), zap.String("actor", actor), zap.String("run_id", runID))

	consumedKg := make(map[string]float64)
	for _, day := range days {
		key := models.DayKey(day)

		outcome, err := s.executeDay(ctx, day, actor, runID)
		if err != nil {
			// Skip-and-continue: one bad day must not block the rest.
			s.logger.Error("day execution failed, skipping", zap.String("day", key), zap.Error(err))
			report.SkippedDates = append(report.SkippedDates, models.SkippedDay{Date: key})
			continue
		}

		switch outcome.status {
		case dayAlreadyDone:
			// Raced by a concurrent run; absent from both lists.
		case dayNoOp:
			report.ExecutedDates = append(report.ExecutedDates, key)
		case dayApplied:
			report.ExecutedDates = append(report.ExecutedDates, key)
			for feedTypeID, kg := range outcome.consumedKg {
				consumedKg[feedTypeID] += kg
			}
			report.TotalConsumed += outcome.totalKg
		case dayShortage:
			report.SkippedDates = append(report.SkippedDates, models.SkippedDay{
				Date:      key,
				Shortages: withFeedTypeNames(outcome.shortages, names),
			})
		}
	}

	report.Consumed = consumedFeeds(consumedKg, names)
	report.Message = fmt.Sprintf("executed %d day(s), skipped %d, consumed %.2f kg",
		len(report.ExecutedDates), len(report.SkippedDates), report.TotalConsumed)

	s.logger.Info("auto catch-up finished",
		zap.Strings("executed", report.ExecutedDates),
		zap.Int("skipped", len(report.SkippedDates)),
		zap.Float64("total_kg", report.TotalConsumed),
		zap.String("run_id", runID))

	return report, nil
}

func (s *Service) feedTypeNames(ctx context.Context) (map[string]string, error) {
	types, err := s.store.FeedTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load feed types: %w", err)
	}
	names := make(map[string]string, len(types))
	for _, ft := range types {
		names[ft.ID] = ft.Name
	}
	return names, nil
}

func consumedFeeds(consumedKg map[string]float64, names map[string]string) []models.ConsumedFeed {
	feeds := make([]models.ConsumedFeed, 0, len(consumedKg))
	for feedTypeID, kg := range consumedKg {
		feeds = append(feeds, models.ConsumedFeed{
			FeedTypeID:   feedTypeID,
			FeedTypeName: names[feedTypeID],
			ConsumedKg:   kg,
		})
	}
	sort.Slice(feeds, func(i, j int) bool { return feeds[i].FeedTypeID < feeds[j].FeedTypeID })
	return feeds
}

func withFeedTypeNames(shortages []models.Shortage, names map[string]string) []models.Shortage {
	named := make([]models.Shortage, len(shortages))
	for i, shortage := range shortages {
		shortage.FeedTypeName = names[shortage.FeedTypeID]
		named[i] = shortage
	}
	return named
}

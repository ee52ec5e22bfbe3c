package consumption

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agrotrack/feedengine/internal/domain/models"
	"github.com/agrotrack/feedengine/internal/repository/mongodb"
)

type dayStatus int

const (
	dayAlreadyDone dayStatus = iota
	dayNoOp
	dayApplied
	dayShortage
)

// dayOutcome is the result of driving one calendar day through the execution
// state machine.
type dayOutcome struct {
	status     dayStatus
	shortages  []models.Shortage
	consumedKg map[string]float64
	totalKg    float64
	totalCost  float64
}

// executeDay runs the whole per-day state machine inside one transaction:
// marker re-check, requirement aggregation, depletion planning for every feed
// type, and only when every plan checked out, batch deductions, ledger
// increments and the idempotency marker. A day with shortages or an already
// present marker leaves the transaction with nothing written.
//
// A marker or stock write conflict means another execution of the same day
// committed first; the day is reported as already done, not as a failure.
func (s *Service) executeDay(ctx context.Context, day time.Time, actor, runID string) (dayOutcome, error) {
	outcome := dayOutcome{consumedKg: make(map[string]float64)}
	key := models.DayKey(day)

	err := s.store.InTransaction(ctx, func(txCtx context.Context) error {
		// The driver may retry this callback on transient errors; start from a
		// clean outcome every attempt.
		outcome = dayOutcome{consumedKg: make(map[string]float64)}

		marked, err := s.store.MarkerExists(txCtx, models.KindFeedConsumptionExecution, key)
		if err != nil {
			return err
		}
		if marked {
			outcome.status = dayAlreadyDone
			return nil
		}

		schedules, err := s.store.ActiveSchedules(txCtx)
		if err != nil {
			return err
		}
		headcounts, err := s.store.HeadcountByEnclosure(txCtx)
		if err != nil {
			return err
		}

		requirements := AggregateRequirements(day, schedules, headcounts)
		if len(requirements) == 0 {
			outcome.status = dayNoOp
			return s.store.AppendActivity(txCtx, models.ActivityEntry{
				ID:        uuid.NewString(),
				Kind:      models.KindFeedConsumptionExecution,
				Key:       key,
				Actor:     actor,
				RunID:     runID,
				Status:    models.ActivityStatusNoOp,
				CreatedAt: time.Now().UTC(),
			})
		}

		// Plan every feed type before mutating anything: a day is applied in
		// full or not at all.
		feedTypeIDs := make([]string, 0, len(requirements))
		for id := range requirements {
			feedTypeIDs = append(feedTypeIDs, id)
		}
		sort.Strings(feedTypeIDs)

		plans := make([]models.DepletionPlan, 0, len(feedTypeIDs))
		for _, feedTypeID := range feedTypeIDs {
			batches, err := s.store.AvailableBatches(txCtx, feedTypeID)
			if err != nil {
				return err
			}

			plan, shortage := BuildDepletionPlan(feedTypeID, batches, requirements[feedTypeID].Total)
			if shortage != nil {
				outcome.shortages = append(outcome.shortages, *shortage)
				continue
			}
			plans = append(plans, plan)
		}

		if len(outcome.shortages) > 0 {
			outcome.status = dayShortage
			return nil
		}

		for _, plan := range plans {
			for _, draw := range plan.Draws {
				if err := s.store.DeductBatch(txCtx, draw.BatchID, draw.Quantity); err != nil {
					return err
				}
			}

			// Ledger rows are grouped by enclosure; each row's cost share uses
			// the plan's FIFO-weighted unit cost.
			requirement := requirements[plan.FeedTypeID]
			enclosureKeys := make([]string, 0, len(requirement.ByEnclosure))
			for enclosureKey := range requirement.ByEnclosure {
				enclosureKeys = append(enclosureKeys, enclosureKey)
			}
			sort.Strings(enclosureKeys)

			for _, enclosureKey := range enclosureKeys {
				quantity := requirement.ByEnclosure[enclosureKey]
				cost := quantity * plan.UnitCost()
				if err := s.store.AddDailyConsumption(txCtx, day, plan.FeedTypeID, models.EnclosureRef(enclosureKey), quantity, cost); err != nil {
					return err
				}
			}

			outcome.consumedKg[plan.FeedTypeID] += plan.Quantity
			outcome.totalKg += plan.Quantity
			outcome.totalCost += plan.Cost
		}

		outcome.status = dayApplied
		return s.store.AppendActivity(txCtx, models.ActivityEntry{
			ID:         uuid.NewString(),
			Kind:       models.KindFeedConsumptionExecution,
			Key:        key,
			Actor:      actor,
			RunID:      runID,
			Status:     models.ActivityStatusApplied,
			QuantityKg: outcome.totalKg,
			Cost:       outcome.totalCost,
			CreatedAt:  time.Now().UTC(),
		})
	})
	if err != nil {
		if errors.Is(err, mongodb.ErrMarkerExists) || errors.Is(err, mongodb.ErrStockConflict) {
			s.logger.Warn("lost execution race, day already handled",
				zap.String("day", key), zap.Error(err))
			return dayOutcome{status: dayAlreadyDone, consumedKg: map[string]float64{}}, nil
		}
		return dayOutcome{}, err
	}

	return outcome, nil
}

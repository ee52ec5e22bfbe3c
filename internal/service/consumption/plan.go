package consumption

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/agrotrack/feedengine/internal/domain/models"
)

// MonthlyPlan projects the feed requirement of every day in the given month
// from today's schedules and headcounts. Planning is purely speculative: no
// stock is deducted and no markers are written, so the projection can be
// recomputed freely as schedules change.
func (s *Service) MonthlyPlan(ctx context.Context, month time.Time) (models.ConsumptionPlan, error) {
	schedules, err := s.store.ActiveSchedules(ctx)
	if err != nil {
		return models.ConsumptionPlan{}, fmt.Errorf("load schedules: %w", err)
	}
	headcounts, err := s.store.HeadcountByEnclosure(ctx)
	if err != nil {
		return models.ConsumptionPlan{}, fmt.Errorf("load headcounts: %w", err)
	}
	names, err := s.feedTypeNames(ctx)
	if err != nil {
		return models.ConsumptionPlan{}, err
	}

	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)

	plan := models.ConsumptionPlan{
		Month:    first.Format("2006-01"),
		Totals:   make(map[string]float64),
		Computed: time.Now().UTC(),
	}

	for day := first; day.Before(next); day = day.AddDate(0, 0, 1) {
		requirements := AggregateRequirements(day, schedules, headcounts)
		if len(requirements) == 0 {
			continue
		}

		feedTypeIDs := make([]string, 0, len(requirements))
		for id := range requirements {
			feedTypeIDs = append(feedTypeIDs, id)
		}
		sort.Strings(feedTypeIDs)

		planDay := models.PlanDay{Date: models.DayKey(day)}
		for _, feedTypeID := range feedTypeIDs {
			req := requirements[feedTypeID]
			planDay.Requirements = append(planDay.Requirements, models.PlannedRequirement{
				FeedTypeID:   feedTypeID,
				FeedTypeName: names[feedTypeID],
				Quantity:     req.Total,
				ByEnclosure:  req.ByEnclosure,
			})
			plan.Totals[feedTypeID] += req.Total
			plan.TotalKg += req.Total
		}
		plan.Days = append(plan.Days, planDay)
	}

	return plan, nil
}

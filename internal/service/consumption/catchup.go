package consumption

import (
	"context"
	"fmt"
	"time"

	"github.com/agrotrack/feedengine/internal/domain/models"
)

// pendingDays enumerates the calendar days an auto run still has to execute:
// every day in [max(earliestScheduleStart, today - lookback), today] without an
// execution marker, oldest first. The lookback clamp keeps old schedules from
// triggering an unbounded historical replay.
func (s *Service) pendingDays(ctx context.Context) ([]time.Time, error) {
	today := models.DayStart(s.now())

	earliest, err := s.store.EarliestActiveScheduleStart(ctx)
	if err != nil {
		return nil, fmt.Errorf("find earliest schedule start: %w", err)
	}
	if earliest == nil {
		return nil, nil
	}

	from := models.DayStart(*earliest)
	if clamp := today.AddDate(0, 0, -s.lookbackDays); from.Before(clamp) {
		from = clamp
	}
	if from.After(today) {
		return nil, nil
	}

	executed, err := s.store.ExecutedDayKeys(ctx, models.KindFeedConsumptionExecution, from, today)
	if err != nil {
		return nil, fmt.Errorf("load executed day markers: %w", err)
	}

	var days []time.Time
	for day := from; !day.After(today); day = day.AddDate(0, 0, 1) {
		if _, done := executed[models.DayKey(day)]; done {
			continue
		}
		days = append(days, day)
	}
	return days, nil
}

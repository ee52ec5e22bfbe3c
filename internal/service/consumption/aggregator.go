package consumption

import (
	"time"

	"github.com/agrotrack/feedengine/internal/domain/models"
)

// AggregateRequirements computes the feed demand of one calendar day from the
// standing schedules and current enclosure headcounts. It is a pure function
// and safe to call speculatively; the planning endpoint and the reorder
// analytics reuse it without side effects.
//
// A schedule contributes quantityPerHeadPerDay x headcount of its enclosure
// (current headcount, not the headcount of the historical day). Contributions
// for the same feed type accumulate across schedules and enclosures. Schedules
// whose enclosure holds no animals contribute nothing, so feed types with a
// zero total never appear in the result.
func AggregateRequirements(day time.Time, schedules []models.FeedingSchedule, headcounts map[string]int) map[string]models.Requirement {
	requirements := make(map[string]models.Requirement)

	for _, schedule := range schedules {
		if !schedule.EffectiveOn(day) {
			continue
		}

		heads := headcounts[models.EnclosureKey(schedule.EnclosureID)]
		if heads <= 0 {
			continue
		}

		quantity := schedule.QuantityPerHeadPerDay * float64(heads)
		if quantity <= 0 {
			continue
		}

		req, ok := requirements[schedule.FeedTypeID]
		if !ok {
			req = models.Requirement{
				FeedTypeID:  schedule.FeedTypeID,
				ByEnclosure: make(map[string]float64),
			}
		}

		req.Total += quantity
		req.ByEnclosure[models.EnclosureKey(schedule.EnclosureID)] += quantity
		requirements[schedule.FeedTypeID] = req
	}

	return requirements
}

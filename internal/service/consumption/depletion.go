package consumption

import (
	"sort"

	"github.com/agrotrack/feedengine/internal/domain/models"
)

// BuildDepletionPlan walks the stock batches of one feed type in FIFO order
// (oldest purchase date first, then oldest creation time) and allocates the
// required quantity across them. Each allocated unit carries the unit cost of
// the batch it came from, so the plan's total cost is FIFO-weighted rather
// than a single static price.
//
// The function never mutates anything. When total available stock falls short
// of the requirement it returns a shortage instead of a plan, leaving the
// caller to discard the day untouched.
func BuildDepletionPlan(feedTypeID string, batches []models.FeedStock, required float64) (models.DepletionPlan, *models.Shortage) {
	ordered := make([]models.FeedStock, len(batches))
	copy(ordered, batches)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].PurchaseDate.Equal(ordered[j].PurchaseDate) {
			return ordered[i].PurchaseDate.Before(ordered[j].PurchaseDate)
		}
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	plan := models.DepletionPlan{FeedTypeID: feedTypeID}
	remaining := required

	for _, batch := range ordered {
		if remaining <= 0 {
			break
		}
		if batch.Quantity <= 0 {
			continue
		}

		take := batch.Quantity
		if take > remaining {
			take = remaining
		}

		plan.Draws = append(plan.Draws, models.BatchDraw{
			BatchID:  batch.ID,
			Quantity: take,
			UnitCost: batch.UnitCost,
		})
		plan.Quantity += take
		plan.Cost += take * batch.UnitCost
		remaining -= take
	}

	if remaining > 0 {
		return models.DepletionPlan{}, &models.Shortage{
			FeedTypeID: feedTypeID,
			Required:   required,
			Available:  plan.Quantity,
		}
	}

	return plan, nil
}

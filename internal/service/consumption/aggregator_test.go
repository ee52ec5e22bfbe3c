package consumption

import (
	"testing"
	"time"

	"github.com/agrotrack/feedengine/internal/domain/models"
)

func day(value string) time.Time {
	t, err := time.Parse(models.DayLayout, value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestAggregateRequirements(t *testing.T) {
	headcounts := map[string]int{"enc-1": 5, "enc-2": 10, "": 3}

	t.Run("schedule effective window", func(t *testing.T) {
		end := day("2026-03-10")
		schedules := []models.FeedingSchedule{
			{ID: "s1", FeedTypeID: "hay", EnclosureID: strPtr("enc-1"), QuantityPerHeadPerDay: 2, StartDate: day("2026-03-01"), EndDate: &end, IsActive: true},
		}

		if got := AggregateRequirements(day("2026-02-28"), schedules, headcounts); len(got) != 0 {
			t.Errorf("expected no requirement before start date, got %v", got)
		}
		if got := AggregateRequirements(day("2026-03-11"), schedules, headcounts); len(got) != 0 {
			t.Errorf("expected no requirement after end date, got %v", got)
		}
		got := AggregateRequirements(day("2026-03-10"), schedules, headcounts)
		if req, ok := got["hay"]; !ok || req.Total != 10 {
			t.Errorf("expected 10kg hay on end date, got %v", got)
		}
	})

	t.Run("inactive schedule contributes nothing", func(t *testing.T) {
		schedules := []models.FeedingSchedule{
			{ID: "s1", FeedTypeID: "hay", EnclosureID: strPtr("enc-1"), QuantityPerHeadPerDay: 2, StartDate: day("2026-03-01"), IsActive: false},
		}
		if got := AggregateRequirements(day("2026-03-05"), schedules, headcounts); len(got) != 0 {
			t.Errorf("expected empty result, got %v", got)
		}
	})

	t.Run("contributions accumulate across enclosures", func(t *testing.T) {
		schedules := []models.FeedingSchedule{
			{ID: "s1", FeedTypeID: "hay", EnclosureID: strPtr("enc-1"), QuantityPerHeadPerDay: 2, StartDate: day("2026-03-01"), IsActive: true},
			{ID: "s2", FeedTypeID: "hay", EnclosureID: strPtr("enc-2"), QuantityPerHeadPerDay: 1, StartDate: day("2026-03-01"), IsActive: true},
			{ID: "s3", FeedTypeID: "concentrate", EnclosureID: strPtr("enc-2"), QuantityPerHeadPerDay: 0.5, StartDate: day("2026-03-01"), IsActive: true},
		}

		got := AggregateRequirements(day("2026-03-05"), schedules, headcounts)
		if len(got) != 2 {
			t.Fatalf("expected 2 feed types, got %d", len(got))
		}

		hay := got["hay"]
		if hay.Total != 20 {
			t.Errorf("expected hay total 20, got %v", hay.Total)
		}
		if hay.ByEnclosure["enc-1"] != 10 || hay.ByEnclosure["enc-2"] != 10 {
			t.Errorf("unexpected hay breakdown: %v", hay.ByEnclosure)
		}
		if got["concentrate"].Total != 5 {
			t.Errorf("expected concentrate total 5, got %v", got["concentrate"].Total)
		}
	})

	t.Run("zero headcount excluded from result", func(t *testing.T) {
		schedules := []models.FeedingSchedule{
			{ID: "s1", FeedTypeID: "hay", EnclosureID: strPtr("enc-empty"), QuantityPerHeadPerDay: 2, StartDate: day("2026-03-01"), IsActive: true},
		}
		if got := AggregateRequirements(day("2026-03-05"), schedules, headcounts); len(got) != 0 {
			t.Errorf("expected zero-headcount schedule to be excluded, got %v", got)
		}
	})

	t.Run("unassigned group uses its own headcount", func(t *testing.T) {
		schedules := []models.FeedingSchedule{
			{ID: "s1", FeedTypeID: "hay", QuantityPerHeadPerDay: 2, StartDate: day("2026-03-01"), IsActive: true},
		}
		got := AggregateRequirements(day("2026-03-05"), schedules, headcounts)
		req, ok := got["hay"]
		if !ok || req.Total != 6 {
			t.Fatalf("expected 6kg for 3 unassigned animals, got %v", got)
		}
		if req.ByEnclosure[models.NoEnclosureKey] != 6 {
			t.Errorf("expected unassigned group key, got %v", req.ByEnclosure)
		}
	})
}

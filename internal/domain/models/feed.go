package models

import "time"

// FeedType is reference data describing a feed category (hay, concentrate, ...).
type FeedType struct {
	ID   string `bson:"_id" json:"id"`
	Name string `bson:"name" json:"name"`
}

// FeedStock is a purchased lot of a feed type. Quantity is the remaining amount
// in kilograms; the engine only ever decreases it, never below zero.
type FeedStock struct {
	ID           string     `bson:"_id" json:"id"`
	FeedTypeID   string     `bson:"feed_type_id" json:"feedTypeId"`
	Quantity     float64    `bson:"quantity" json:"quantity"`
	UnitCost     float64    `bson:"unit_cost" json:"unitCost"`
	PurchaseDate time.Time  `bson:"purchase_date" json:"purchaseDate"`
	ExpiryDate   *time.Time `bson:"expiry_date,omitempty" json:"expiryDate,omitempty"`
	CreatedAt    time.Time  `bson:"created_at" json:"createdAt"`
}

// FeedingSchedule is a standing instruction to feed an enclosure a quantity per
// head per day. A nil EnclosureID targets the unassigned animal group.
type FeedingSchedule struct {
	ID                    string     `bson:"_id" json:"id"`
	FeedTypeID            string     `bson:"feed_type_id" json:"feedTypeId"`
	EnclosureID           *string    `bson:"enclosure_id,omitempty" json:"enclosureId,omitempty"`
	QuantityPerHeadPerDay float64    `bson:"quantity_per_head_per_day" json:"quantityPerHeadPerDay"`
	Frequency             string     `bson:"frequency" json:"frequency"`
	StartDate             time.Time  `bson:"start_date" json:"startDate"`
	EndDate               *time.Time `bson:"end_date,omitempty" json:"endDate,omitempty"`
	IsActive              bool       `bson:"is_active" json:"isActive"`
}

// EffectiveOn reports whether the schedule applies to the given calendar day.
func (s FeedingSchedule) EffectiveOn(day time.Time) bool {
	d := DayStart(day)
	if !s.IsActive {
		return false
	}
	if DayStart(s.StartDate).After(d) {
		return false
	}
	if s.EndDate != nil && DayStart(*s.EndDate).Before(d) {
		return false
	}
	return true
}

// DayLayout is the ISO calendar date format used for marker keys and responses.
const DayLayout = "2006-01-02"

// DayStart truncates a timestamp to midnight UTC, the canonical identity of a
// calendar day throughout the engine.
func DayStart(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayKey formats a day as its ISO marker key.
func DayKey(t time.Time) string {
	return DayStart(t).Format(DayLayout)
}

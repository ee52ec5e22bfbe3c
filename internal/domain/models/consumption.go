package models

import "time"

// NoEnclosureKey is the application-level group key used when a schedule or
// consumption row has no enclosure. MongoDB does not treat two absent
// references as equal under a unique index, so grouping happens on this key
// rather than on a storage-level constraint.
const NoEnclosureKey = ""

// EnclosureKey maps an optional enclosure reference to its stable group key.
func EnclosureKey(enclosureID *string) string {
	if enclosureID == nil {
		return NoEnclosureKey
	}
	return *enclosureID
}

// EnclosureRef maps a group key back to an optional enclosure reference.
func EnclosureRef(key string) *string {
	if key == NoEnclosureKey {
		return nil
	}
	return &key
}

// Requirement is the computed feed demand of one feed type for one day,
// broken down by enclosure group key.
type Requirement struct {
	FeedTypeID  string
	Total       float64
	ByEnclosure map[string]float64
}

// BatchDraw records how much a depletion plan takes from a single stock batch.
type BatchDraw struct {
	BatchID  string
	Quantity float64
	UnitCost float64
}

// DepletionPlan is the FIFO consumption plan for one feed type. It is computed
// without touching stock; batches are only mutated once every plan for the day
// checked out.
type DepletionPlan struct {
	FeedTypeID string
	Draws      []BatchDraw
	Quantity   float64
	Cost       float64
}

// UnitCost returns the FIFO-weighted average cost per unit of the plan.
func (p DepletionPlan) UnitCost() float64 {
	if p.Quantity == 0 {
		return 0
	}
	return p.Cost / p.Quantity
}

// Shortage reports a feed type whose daily requirement exceeds available stock.
type Shortage struct {
	FeedTypeID   string  `json:"feedTypeId"`
	FeedTypeName string  `json:"feedTypeName,omitempty"`
	Required     float64 `json:"required"`
	Available    float64 `json:"available"`
}

// DailyConsumption is the ledger aggregate for one (day, feed type, enclosure)
// triple. Rows are created or incremented by execution, never decremented.
type DailyConsumption struct {
	ID          string    `bson:"_id" json:"id"`
	Date        time.Time `bson:"date" json:"date"`
	FeedTypeID  string    `bson:"feed_type_id" json:"feedTypeId"`
	EnclosureID *string   `bson:"enclosure_id,omitempty" json:"enclosureId,omitempty"`
	Quantity    float64   `bson:"quantity" json:"quantity"`
	Cost        float64   `bson:"cost" json:"cost"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updatedAt"`
}

package models

import "time"

// KindFeedConsumptionExecution is the activity kind proving a calendar day's
// feed consumption was executed.
const KindFeedConsumptionExecution = "feed-consumption-execution"

// Activity entry statuses.
const (
	ActivityStatusApplied = "applied"
	ActivityStatusNoOp    = "no_op"
)

// ActivityEntry is an append-only log record. Entries with a (Kind, Key) pair
// double as idempotency markers: the activity collection enforces uniqueness on
// that pair, so the marker can only ever be written once.
type ActivityEntry struct {
	ID         string    `bson:"_id" json:"id"`
	Kind       string    `bson:"kind" json:"kind"`
	Key        string    `bson:"key" json:"key"`
	Actor      string    `bson:"actor" json:"actor"`
	RunID      string    `bson:"run_id" json:"runId"`
	Status     string    `bson:"status" json:"status"`
	QuantityKg float64   `bson:"quantity_kg" json:"quantityKg"`
	Cost       float64   `bson:"cost" json:"cost"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
}

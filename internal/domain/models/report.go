package models

import "time"

// ExecuteRequest is the trigger payload for feed consumption execution. An
// empty Date with Auto false targets today; Auto true runs every outstanding
// day within the lookback window.
type ExecuteRequest struct {
	Date string `json:"date"`
	Auto bool   `json:"auto"`
}

// SkippedDay describes a day an auto run left untouched because stock could
// not cover its requirement. The day stays eligible for a future retry.
type SkippedDay struct {
	Date      string     `json:"date"`
	Shortages []Shortage `json:"shortages"`
}

// ConsumedFeed summarizes the quantity consumed of one feed type across an
// execution run.
type ConsumedFeed struct {
	FeedTypeID   string  `json:"feedTypeId"`
	FeedTypeName string  `json:"feedTypeName"`
	ConsumedKg   float64 `json:"consumedKg"`
}

// ExecutionReport is the response payload for both manual and auto execution.
type ExecutionReport struct {
	Success       bool           `json:"success"`
	RunID         string         `json:"runId"`
	ExecutedDates []string       `json:"executedDates"`
	SkippedDates  []SkippedDay   `json:"skippedDates"`
	Consumed      []ConsumedFeed `json:"consumed"`
	TotalConsumed float64        `json:"totalConsumed"`
	Message       string         `json:"message"`
}

// PlannedRequirement is one feed type's projected demand within a plan day.
type PlannedRequirement struct {
	FeedTypeID   string             `json:"feedTypeId"`
	FeedTypeName string             `json:"feedTypeName"`
	Quantity     float64            `json:"quantity"`
	ByEnclosure  map[string]float64 `json:"byEnclosure"`
}

// PlanDay is the projected requirement set for a single calendar day.
type PlanDay struct {
	Date         string               `json:"date"`
	Requirements []PlannedRequirement `json:"requirements"`
}

// ConsumptionPlan is a speculative monthly projection computed from today's
// schedules and headcounts. Nothing is deducted or marked when planning.
type ConsumptionPlan struct {
	Month    string             `json:"month"`
	Days     []PlanDay          `json:"days"`
	Totals   map[string]float64 `json:"totals"`
	TotalKg  float64            `json:"totalKg"`
	Computed time.Time          `json:"computedAt"`
}

// FeedConsumptionSummary aggregates ledger rows for one feed type over a range.
type FeedConsumptionSummary struct {
	FeedTypeID   string  `json:"feedTypeId"`
	FeedTypeName string  `json:"feedTypeName"`
	Quantity     float64 `json:"quantity"`
	Cost         float64 `json:"cost"`
}

// ConsumptionSummary is the reporting service output for a date range.
type ConsumptionSummary struct {
	Start         string                   `json:"start"`
	End           string                   `json:"end"`
	Feeds         []FeedConsumptionSummary `json:"feeds"`
	TotalQuantity float64                  `json:"totalQuantity"`
	TotalCost     float64                  `json:"totalCost"`
}

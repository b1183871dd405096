package model

import "time"

// SkipReason explains why a trade produced no result.
type SkipReason string

const (
	SkipProviderError SkipReason = "provider_error"
	SkipEmptyWindow   SkipReason = "empty_window"
)

// EdgeCaseReason names the numeric edge case behind a NaN result.
type EdgeCaseReason string

const (
	EdgeZeroDuration EdgeCaseReason = "zero_duration"
	EdgeZeroBuyPrice EdgeCaseReason = "zero_buy_price"
)

// SkipEvent is emitted when a trade is left out of the results.
type SkipEvent struct {
	RunID        string
	Symbol       string
	PurchaseDate time.Time
	Reason       SkipReason
	Kind         string // provider error kind, empty for empty windows
	Err          error
}

// EdgeCaseEvent is emitted when a result carries NaN returns.
type EdgeCaseEvent struct {
	RunID  string
	Symbol string
	Reason EdgeCaseReason
}

// RunSummary describes one completed evaluation run.
type RunSummary struct {
	RunID     string
	StartedAt time.Time
	EndDate   time.Time
	Trades    int
	Results   []AnnualizedReturn
	Skipped   int
}

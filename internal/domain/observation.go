package domain

import "time"

// Observation is a classified transaction ready for aggregation.
type Observation struct {
	Signature  string
	Label      Label
	Amount     string  // largest balance change in SOL, 4 decimals
	AmountSOL  float64 // Amount as a number
	Fee        string  // fee in SOL, 6 decimals
	FeeSOL     float64 // Fee as a number
	Failed     bool
	ProgramIDs []string  // invoked programs, counted as active programs
	BlockTime  *int64    // Unix seconds, from the block
	ObservedAt time.Time // when the dashboard saw it
}

// LiveFeedRow is one row of the recent transactions table.
type LiveFeedRow struct {
	Time      string `json:"time"`
	Signature string `json:"signature"`
	Type      Label  `json:"type"`
	Amount    string `json:"amount"`
	Fee       string `json:"fee"`
	Status    string `json:"status"`
}

// BigTransaction is a large successful transfer tracked for one hour.
type BigTransaction struct {
	Signature string  `json:"signature"`
	Amount    float64 `json:"amount"`
	Type      Label   `json:"type"`
	Timestamp int64   `json:"timestamp"` // ms, when the dashboard saw it
	BlockTime *int64  `json:"blockTime,omitempty"`
}

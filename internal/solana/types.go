package solana

import (
	"github.com/shopspring/decimal"

	"solanalysis/internal/domain"
)

// Block represents a Solana block.
type Block struct {
	Slot         int64
	BlockHeight  *int64
	BlockTime    *int64
	Transactions []domain.TransactionRecord
}

// PerformanceSample from getRecentPerformanceSamples.
type PerformanceSample struct {
	Slot                   int64 `json:"slot"`
	NumTransactions        int64 `json:"numTransactions"`
	NumNonVoteTransactions int64 `json:"numNonVoteTransactions"`
	NumSlots               int64 `json:"numSlots"`
	SamplePeriodSecs       int64 `json:"samplePeriodSecs"`
}

// Valid reports whether the sample can be used for a TPS estimate.
func (s PerformanceSample) Valid() bool {
	return s.NumTransactions > 0 && s.SamplePeriodSecs > 0
}

// TPS returns transactions per second over the sample period.
func (s PerformanceSample) TPS() float64 {
	if s.SamplePeriodSecs <= 0 {
		return 0
	}
	return float64(s.NumTransactions) / float64(s.SamplePeriodSecs)
}

// VoteAccounts from getVoteAccounts.
type VoteAccounts struct {
	Current    []VoteAccount `json:"current"`
	Delinquent []VoteAccount `json:"delinquent"`
}

// VoteAccount is one validator vote account.
type VoteAccount struct {
	VotePubkey     string `json:"votePubkey"`
	NodePubkey     string `json:"nodePubkey"`
	ActivatedStake uint64 `json:"activatedStake"`
	Commission     int    `json:"commission"`
}

// TokenSupply from getTokenSupply.
type TokenSupply struct {
	Amount         string `json:"amount"` // raw base units
	Decimals       int    `json:"decimals"`
	UIAmountString string `json:"uiAmountString"`
}

// Supply returns Amount scaled by Decimals.
func (s TokenSupply) Supply() (decimal.Decimal, error) {
	raw, err := decimal.NewFromString(s.Amount)
	if err != nil {
		return decimal.Zero, err
	}
	return raw.Shift(int32(-s.Decimals)), nil
}

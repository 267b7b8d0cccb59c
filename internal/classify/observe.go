package classify

import (
	"time"

	"solanalysis/internal/domain"
)

// Observe classifies tx and computes its amounts in one pass.
func Observe(tx *domain.TransactionRecord, at time.Time) domain.Observation {
	if tx == nil {
		return domain.Observation{Label: domain.LabelTransfer, Amount: "0", Fee: "0", ObservedAt: at}
	}
	obs := domain.Observation{
		Signature:  tx.Signature(),
		Label:      Classify(tx),
		Amount:     Amount(tx),
		AmountSOL:  AmountSOL(tx),
		Fee:        Fee(tx),
		FeeSOL:     FeeSOL(tx),
		Failed:     tx.Failed(),
		BlockTime:  tx.BlockTime,
		ObservedAt: at,
	}
	if tx.Message != nil {
		obs.ProgramIDs = append([]string(nil), tx.Message.ProgramIDs...)
	}
	return obs
}

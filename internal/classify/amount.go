package classify

import (
	"github.com/shopspring/decimal"

	"solanalysis/internal/domain"
)

var lamportsPerSOL = decimal.NewFromInt(domain.LamportsPerSOL)

// Amount returns the largest absolute balance change of tx in SOL,
// formatted with 4 decimals. Only indices present in both balance lists
// count. A missing list yields "0".
func Amount(tx *domain.TransactionRecord) string {
	d, ok := maxChange(tx)
	if !ok {
		return "0"
	}
	return d.StringFixed(4)
}

// AmountSOL returns Amount as a number.
func AmountSOL(tx *domain.TransactionRecord) float64 {
	d, ok := maxChange(tx)
	if !ok {
		return 0
	}
	f, _ := d.Round(4).Float64()
	return f
}

// Fee returns the fee of tx in SOL with 6 decimals, or "0" without meta.
func Fee(tx *domain.TransactionRecord) string {
	if tx == nil || tx.Meta == nil {
		return "0"
	}
	return feeDecimal(tx.Meta).StringFixed(6)
}

// FeeSOL returns Fee as a number.
func FeeSOL(tx *domain.TransactionRecord) float64 {
	if tx == nil || tx.Meta == nil {
		return 0
	}
	f, _ := feeDecimal(tx.Meta).Round(6).Float64()
	return f
}

// LamportsToSOL converts a lamport amount to SOL.
func LamportsToSOL(lamports int64) float64 {
	f, _ := decimal.NewFromInt(lamports).Div(lamportsPerSOL).Float64()
	return f
}

func feeDecimal(meta *domain.TransactionMeta) decimal.Decimal {
	if meta.Fee == nil {
		return decimal.Zero
	}
	return decimal.NewFromInt(*meta.Fee).Div(lamportsPerSOL)
}

func maxChange(tx *domain.TransactionRecord) (decimal.Decimal, bool) {
	if tx == nil || tx.Meta == nil || tx.Meta.PreBalances == nil || tx.Meta.PostBalances == nil {
		return decimal.Zero, false
	}

	var largest int64
	n := overlap(tx.Meta)
	for i := 0; i < n; i++ {
		if d := abs(tx.Meta.PostBalances[i] - tx.Meta.PreBalances[i]); d > largest {
			largest = d
		}
	}
	return decimal.NewFromInt(largest).Div(lamportsPerSOL), true
}

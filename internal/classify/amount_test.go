package classify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"solanalysis/internal/domain"
)

func TestAmount(t *testing.T) {
	tests := []struct {
		name string
		pre  []int64
		post []int64
		want string
	}{
		{"two sol", []int64{0, 0}, []int64{2_000_000_000, 0}, "2.0000"},
		{"largest absolute", []int64{10_000_000_000, 0}, []int64{1_000_000_000, 500_000_000}, "9.0000"},
		{"overlap only", []int64{0}, []int64{1_000_000, 99_000_000_000}, "0.0010"},
		{"rounding", []int64{0}, []int64{123_456_789}, "0.1235"},
		{"no change", []int64{7}, []int64{7}, "0.0000"},
		{"missing pre", nil, []int64{1}, "0"},
		{"missing post", []int64{1}, nil, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := &domain.TransactionRecord{Meta: &domain.TransactionMeta{PreBalances: tt.pre, PostBalances: tt.post}}
			assert.Equal(t, tt.want, Amount(tx))
		})
	}
}

func TestAmount_NoMeta(t *testing.T) {
	assert.Equal(t, "0", Amount(&domain.TransactionRecord{}))
	assert.Equal(t, "0", Amount(nil))
	assert.Zero(t, AmountSOL(nil))
}

func TestFee(t *testing.T) {
	tx := &domain.TransactionRecord{Meta: &domain.TransactionMeta{Fee: i64(5000)}}
	assert.Equal(t, "0.000005", Fee(tx))
	assert.InDelta(t, 0.000005, FeeSOL(tx), 1e-12)

	assert.Equal(t, "0", Fee(&domain.TransactionRecord{}))
	assert.Equal(t, "0.000000", Fee(&domain.TransactionRecord{Meta: &domain.TransactionMeta{}}))
}

func TestLamportsToSOL(t *testing.T) {
	assert.Equal(t, 12.5, LamportsToSOL(12_500_000_000))
}

func TestObserve(t *testing.T) {
	at := time.Unix(1_700_000_000, 0)
	tx := &domain.TransactionRecord{
		Signatures: []string{"5sig"},
		Message:    &domain.TransactionMessage{AccountKeys: []string{TokenProgram}, ProgramIDs: []string{TokenProgram}},
		Meta: &domain.TransactionMeta{
			Err:          map[string]interface{}{"InstructionError": []interface{}{0, "Custom"}},
			Fee:          i64(10_000),
			PreBalances:  []int64{20_000_000_000},
			PostBalances: []int64{5_000_000_000},
		},
	}

	obs := Observe(tx, at)
	assert.Equal(t, "5sig", obs.Signature)
	assert.Equal(t, domain.LabelToken, obs.Label)
	assert.Equal(t, "15.0000", obs.Amount)
	assert.Equal(t, 15.0, obs.AmountSOL)
	assert.Equal(t, "0.000010", obs.Fee)
	assert.True(t, obs.Failed)
	assert.Equal(t, []string{TokenProgram}, obs.ProgramIDs)
	assert.Equal(t, at, obs.ObservedAt)
}

package classify

import (
	"testing"

	"solanalysis/internal/domain"
)

func i64(v int64) *int64 { return &v }

func txWith(logs []string, keys []string) *domain.TransactionRecord {
	return &domain.TransactionRecord{
		Signatures: []string{"sig"},
		Message:    &domain.TransactionMessage{AccountKeys: keys},
		Meta:       &domain.TransactionMeta{LogMessages: logs},
	}
}

func TestClassify_NoMessage(t *testing.T) {
	tx := &domain.TransactionRecord{Meta: &domain.TransactionMeta{LogMessages: []string{"Vote"}}}
	if got := Classify(tx); got != domain.LabelTransfer {
		t.Errorf("expected Transfer, got %s", got)
	}
	if got := Classify(nil); got != domain.LabelTransfer {
		t.Errorf("expected Transfer for nil, got %s", got)
	}
}

func TestClassify_VoteLogPrecedence(t *testing.T) {
	tx := txWith([]string{"Program log: Vote", "Program log: swap"}, nil)
	if got := Classify(tx); got != domain.LabelVote {
		t.Errorf("expected Vote, got %s", got)
	}
}

func TestClassify_LogKeywords(t *testing.T) {
	tests := []struct {
		log  string
		want domain.Label
	}{
		{"Program log: Instruction: DelegateStake", domain.LabelStake},
		{"Program log: ray_log raydium", domain.LabelSwap},
		{"Program log: Orca whirlpool", domain.LabelSwap},
		{"Program log: Candy Machine mint", domain.LabelNFT},
		{"Program log: Instruction: MintTo", domain.LabelToken},
		{"Program log: Instruction: Borrow", domain.LabelDeFi},
		{"Program log: nothing interesting", domain.LabelTransfer},
	}

	for _, tt := range tests {
		if got := Classify(txWith([]string{tt.log}, nil)); got != tt.want {
			t.Errorf("%q: expected %s, got %s", tt.log, tt.want, got)
		}
	}
}

func TestClassify_ProgramIDs(t *testing.T) {
	tests := []struct {
		key  string
		want domain.Label
	}{
		{VoteProgram, domain.LabelVote},
		{StakeProgram, domain.LabelStake},
		{TokenProgram, domain.LabelToken},
		{TokenMetadataProgram, domain.LabelNFT},
		{SerumDEXV3, domain.LabelSwap},
		{JupiterV4, domain.LabelSwap},
	}

	for _, tt := range tests {
		tx := txWith(nil, []string{"11111111111111111111111111111111", tt.key})
		if got := Classify(tx); got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.key, tt.want, got)
		}
	}
}

func TestClassify_ProgramOrder(t *testing.T) {
	// Vote is checked before Token.
	tx := txWith(nil, []string{TokenProgram, VoteProgram})
	if got := Classify(tx); got != domain.LabelVote {
		t.Errorf("expected Vote, got %s", got)
	}
}

func TestClassify_LogsBeforePrograms(t *testing.T) {
	tx := txWith([]string{"Program log: Instruction: Swap"}, []string{TokenProgram})
	if got := Classify(tx); got != domain.LabelSwap {
		t.Errorf("expected Swap, got %s", got)
	}
}

func TestClassify_BalanceChange(t *testing.T) {
	tx := txWith(nil, []string{"a", "b"})
	tx.Meta.PreBalances = []int64{5_000_000_000, 0}
	tx.Meta.PostBalances = []int64{2_000_000_000, 3_000_000_000}
	if got := Classify(tx); got != domain.LabelTransfer {
		t.Errorf("expected Transfer, got %s", got)
	}
}

func TestIsVote(t *testing.T) {
	if !IsVote(txWith(nil, []string{VoteProgram})) {
		t.Error("expected vote")
	}
	if IsVote(txWith(nil, []string{TokenProgram})) {
		t.Error("expected non-vote")
	}
}

// Package classify labels Solana transactions and computes the amounts
// shown on the dashboard.
package classify

import (
	"strings"

	"solanalysis/internal/domain"
)

type rule struct {
	label    domain.Label
	keywords []string
}

// logRules are checked in order against the lowercased, space-joined logs.
var logRules = []rule{
	{domain.LabelVote, []string{"vote"}},
	{domain.LabelStake, []string{"stake"}},
	{domain.LabelSwap, []string{"swap", "raydium", "orca"}},
	{domain.LabelNFT, []string{"nft", "metaplex", "candy"}},
	{domain.LabelToken, []string{"token", "mint"}},
	{domain.LabelDeFi, []string{"defi", "lend", "borrow"}},
}

// programRules are checked in order against the space-joined account keys.
var programRules = []rule{
	{domain.LabelVote, []string{VoteProgram}},
	{domain.LabelStake, []string{StakeProgram}},
	{domain.LabelToken, []string{TokenProgram}},
	{domain.LabelNFT, []string{TokenMetadataProgram}},
	{domain.LabelSwap, []string{SerumDEXV3, JupiterV4}},
}

// Classify assigns exactly one label to tx. Rules apply in order and the
// first match wins: log keywords, then program IDs in the account keys.
// Missing fields never fail; they fall through to Transfer.
func Classify(tx *domain.TransactionRecord) domain.Label {
	if tx == nil || tx.Message == nil {
		return domain.LabelTransfer
	}

	if tx.Meta != nil && len(tx.Meta.LogMessages) > 0 {
		logs := strings.ToLower(strings.Join(tx.Meta.LogMessages, " "))
		if label, ok := match(logs, logRules); ok {
			return label
		}
	}

	keys := strings.Join(tx.Message.AccountKeys, " ")
	if label, ok := match(keys, programRules); ok {
		return label
	}

	// Large balance moves and everything unmatched are transfers.
	return domain.LabelTransfer
}

// IsVote reports whether tx classifies as a vote.
func IsVote(tx *domain.TransactionRecord) bool {
	return Classify(tx) == domain.LabelVote
}

func match(s string, rules []rule) (domain.Label, bool) {
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(s, kw) {
				return r.label, true
			}
		}
	}
	return "", false
}

func overlap(meta *domain.TransactionMeta) int {
	n := len(meta.PreBalances)
	if len(meta.PostBalances) < n {
		n = len(meta.PostBalances)
	}
	return n
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

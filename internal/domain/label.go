package domain

// Label is the dashboard category assigned to a transaction.
type Label string

// Transaction labels, in the order the type breakdown displays them.
const (
	LabelTransfer Label = "Transfer"
	LabelSwap     Label = "Swap"
	LabelNFT      Label = "NFT"
	LabelToken    Label = "Token"
	LabelDeFi     Label = "DeFi"
	LabelStake    Label = "Stake"
	LabelVote     Label = "Vote"
	LabelOther    Label = "Other"
)

// AllLabels lists every label in display order.
var AllLabels = []Label{
	LabelTransfer,
	LabelSwap,
	LabelNFT,
	LabelToken,
	LabelDeFi,
	LabelStake,
	LabelVote,
	LabelOther,
}

// Valid reports whether l is one of the known labels.
func (l Label) Valid() bool {
	for _, known := range AllLabels {
		if l == known {
			return true
		}
	}
	return false
}

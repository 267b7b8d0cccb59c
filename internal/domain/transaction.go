package domain

// LamportsPerSOL is the base-unit divisor for SOL amounts.
const LamportsPerSOL = 1_000_000_000

// TransactionRecord is a transaction as returned by getBlock.
// Every field is optional; a record is never mutated after decoding.
type TransactionRecord struct {
	Slot       int64               // slot of the containing block
	BlockTime  *int64              // Unix timestamp (seconds), nil if unknown
	Signatures []string            // first entry is the transaction id
	Message    *TransactionMessage // nil when the message could not be parsed
	Meta       *TransactionMeta    // nil when the node returned no status meta
}

// TransactionMessage holds the parts of the message the dashboard inspects.
type TransactionMessage struct {
	AccountKeys []string // account and program identifiers, in message order
	ProgramIDs  []string // programs invoked by top-level instructions
}

// TransactionMeta holds status metadata.
type TransactionMeta struct {
	Err          interface{} // non-nil when the transaction failed
	Fee          *int64      // lamports
	PreBalances  []int64     // lamports, nil when absent
	PostBalances []int64     // lamports, nil when absent
	LogMessages  []string
}

// Signature returns the transaction id, or "" if the record carries none.
func (t *TransactionRecord) Signature() string {
	if t == nil || len(t.Signatures) == 0 {
		return ""
	}
	return t.Signatures[0]
}

// Failed reports whether the meta carries an error.
func (t *TransactionRecord) Failed() bool {
	return t != nil && t.Meta != nil && t.Meta.Err != nil
}

// Status returns the live feed status string.
func (t *TransactionRecord) Status() string {
	if t.Failed() {
		return StatusFailed
	}
	return StatusSuccess
}

// Transaction status strings.
const (
	StatusSuccess = "Success"
	StatusFailed  = "Failed"
)

package solana

import (
	"bytes"
	"context"
	"encoding/json"

	"solanalysis/internal/domain"
)

// GetBlock retrieves a block by slot number with full transaction details.
func (c *HTTPClient) GetBlock(ctx context.Context, slot int64) (*Block, error) {
	params := []interface{}{
		slot,
		map[string]interface{}{
			"encoding":                       "json",
			"transactionDetails":             "full",
			"maxSupportedTransactionVersion": 0,
			"rewards":                        false,
		},
	}

	var result getBlockResult
	if err := c.call(ctx, "getBlock", params, &result); err != nil {
		return nil, err
	}

	block := &Block{
		Slot:         slot,
		BlockHeight:  result.BlockHeight,
		BlockTime:    result.BlockTime,
		Transactions: make([]domain.TransactionRecord, 0, len(result.Transactions)),
	}

	for i, raw := range result.Transactions {
		var w getBlockTxWrapper
		if err := json.Unmarshal(raw, &w); err != nil {
			c.logger.Printf("getBlock %d: skipping transaction %d: %v", slot, i, err)
			continue
		}
		block.Transactions = append(block.Transactions, w.record(slot, result.BlockTime))
	}

	return block, nil
}

// getBlockResult is the raw RPC response for getBlock. Transactions are
// decoded one by one so a malformed entry does not cost the whole block.
type getBlockResult struct {
	BlockHeight  *int64            `json:"blockHeight"`
	BlockTime    *int64            `json:"blockTime"`
	Transactions []json.RawMessage `json:"transactions"`
}

type getBlockTxWrapper struct {
	Transaction *getBlockTx   `json:"transaction"`
	Meta        *getBlockMeta `json:"meta"`
}

type getBlockTx struct {
	Signatures []string         `json:"signatures"`
	Message    *getBlockMessage `json:"message"`
}

type getBlockMessage struct {
	AccountKeys  []accountKey          `json:"accountKeys"`
	Instructions []getBlockInstruction `json:"instructions"`
}

type getBlockInstruction struct {
	ProgramIDIndex *int   `json:"programIdIndex"`
	ProgramID      string `json:"programId"` // jsonParsed encoding
}

type getBlockMeta struct {
	Err          interface{} `json:"err"`
	Fee          *int64      `json:"fee"`
	PreBalances  []int64     `json:"preBalances"`
	PostBalances []int64     `json:"postBalances"`
	LogMessages  []string    `json:"logMessages"`
}

// accountKey decodes either a plain base58 string or a {"pubkey": ...} object.
type accountKey string

func (k *accountKey) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var obj struct {
			Pubkey string `json:"pubkey"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*k = accountKey(obj.Pubkey)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*k = accountKey(s)
	return nil
}

func (w getBlockTxWrapper) record(slot int64, blockTime *int64) domain.TransactionRecord {
	rec := domain.TransactionRecord{
		Slot:      slot,
		BlockTime: blockTime,
	}

	if w.Transaction != nil {
		rec.Signatures = w.Transaction.Signatures
		if msg := w.Transaction.Message; msg != nil {
			rec.Message = msg.toDomain()
		}
	}

	if m := w.Meta; m != nil {
		rec.Meta = &domain.TransactionMeta{
			Err:          m.Err,
			Fee:          m.Fee,
			PreBalances:  m.PreBalances,
			PostBalances: m.PostBalances,
			LogMessages:  m.LogMessages,
		}
	}

	return rec
}

func (m *getBlockMessage) toDomain() *domain.TransactionMessage {
	msg := &domain.TransactionMessage{
		AccountKeys: make([]string, 0, len(m.AccountKeys)),
	}
	for _, k := range m.AccountKeys {
		if k != "" {
			msg.AccountKeys = append(msg.AccountKeys, string(k))
		}
	}

	seen := make(map[string]struct{})
	for _, ix := range m.Instructions {
		id := ix.ProgramID
		if id == "" && ix.ProgramIDIndex != nil {
			idx := *ix.ProgramIDIndex
			if idx >= 0 && idx < len(m.AccountKeys) {
				id = string(m.AccountKeys[idx])
			}
		}
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		msg.ProgramIDs = append(msg.ProgramIDs, id)
	}

	return msg
}

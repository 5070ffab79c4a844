package solana

import "context"

// RPCClient defines Solana RPC HTTP interface.
type RPCClient interface {
	// GetTransaction retrieves a jsonParsed transaction by signature.
	// Returns (nil, nil) when the transaction is unknown to the node.
	GetTransaction(ctx context.Context, signature string) (*Transaction, error)

	// GetSignaturesForAddress retrieves signatures for an address with pagination.
	GetSignaturesForAddress(ctx context.Context, address string, opts *SignaturesOpts) ([]SignatureInfo, error)
}

// Transaction represents a confirmed Solana transaction in jsonParsed form.
type Transaction struct {
	Slot      int64               `json:"slot"`
	Signature string              `json:"signature"`
	BlockTime int64               `json:"blockTime"` // Unix timestamp (seconds)
	Meta      *TransactionMeta    `json:"meta"`
	Message   *TransactionMessage `json:"message"`
}

// TransactionMeta contains transaction status metadata.
type TransactionMeta struct {
	Err               interface{}         `json:"err"`
	Fee               uint64              `json:"fee"`
	PreBalances       []uint64            `json:"preBalances"`
	PostBalances      []uint64            `json:"postBalances"`
	PreTokenBalances  []TokenBalance      `json:"preTokenBalances"`
	PostTokenBalances []TokenBalance      `json:"postTokenBalances"`
	InnerInstructions []InnerInstructions `json:"innerInstructions"`
	LogMessages       []string            `json:"logMessages"`
}

// TransactionMessage contains the parsed transaction message.
type TransactionMessage struct {
	AccountKeys  []AccountKey  `json:"accountKeys"`
	Instructions []Instruction `json:"instructions"`
}

// Failed reports whether the transaction executed with an error.
func (tx *Transaction) Failed() bool {
	return tx.Meta != nil && tx.Meta.Err != nil
}

// AccountKey returns the address at index i, or "" when out of range.
func (tx *Transaction) AccountKey(i int) string {
	if tx.Message == nil || i < 0 || i >= len(tx.Message.AccountKeys) {
		return ""
	}
	return tx.Message.AccountKeys[i].Pubkey
}

// FeePayer returns the first account key.
func (tx *Transaction) FeePayer() string {
	return tx.AccountKey(0)
}

// Signers returns signer addresses in account-key order.
func (tx *Transaction) Signers() []string {
	if tx.Message == nil {
		return nil
	}
	var signers []string
	for _, k := range tx.Message.AccountKeys {
		if k.Signer {
			signers = append(signers, k.Pubkey)
		}
	}
	return signers
}

// InstructionGroups calls fn for every top-level instruction in order, then
// for every inner instruction group in order. inner is -1 for top-level ones.
func (tx *Transaction) InstructionGroups(fn func(ix Instruction, outer, inner int)) {
	if tx.Message != nil {
		for i, ix := range tx.Message.Instructions {
			fn(ix, i, -1)
		}
	}
	if tx.Meta != nil {
		for _, group := range tx.Meta.InnerInstructions {
			for j, ix := range group.Instructions {
				fn(ix, group.Index, j)
			}
		}
	}
}

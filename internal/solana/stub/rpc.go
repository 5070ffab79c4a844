package stub

import (
	"context"
	"errors"
	"sync"

	"solana-trade-recon/internal/solana"
)

// ErrNotFound is returned when a transaction is not found.
var ErrNotFound = errors.New("not found")

// RPCClient implements solana.RPCClient for testing.
type RPCClient struct {
	mu           sync.RWMutex
	Transactions map[string]*solana.Transaction
	Signatures   map[string][]solana.SignatureInfo
	Calls        map[string]int // per-signature GetTransaction calls

	SignatureCalls int // GetSignaturesForAddress calls
}

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Transactions: make(map[string]*solana.Transaction),
		Signatures:   make(map[string][]solana.SignatureInfo),
		Calls:        make(map[string]int),
	}
}

// GetTransaction retrieves a transaction by signature from the stub store.
func (c *RPCClient) GetTransaction(_ context.Context, signature string) (*solana.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Calls[signature]++
	tx, ok := c.Transactions[signature]
	if !ok {
		return nil, ErrNotFound
	}
	return tx, nil
}

// GetSignaturesForAddress returns the stored signatures of address, newest
// first, honoring Before, Until and Limit like the RPC node: listing starts
// after Before, stops before Until, and returns at most Limit entries.
func (c *RPCClient) GetSignaturesForAddress(_ context.Context, address string, opts *solana.SignaturesOpts) ([]solana.SignatureInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.SignatureCalls++
	sigs := c.Signatures[address]
	if opts == nil {
		return append([]solana.SignatureInfo(nil), sigs...), nil
	}

	start := 0
	if opts.Before != "" {
		start = len(sigs)
		for i, s := range sigs {
			if s.Signature == opts.Before {
				start = i + 1
				break
			}
		}
	}

	var out []solana.SignatureInfo
	for _, s := range sigs[start:] {
		if opts.Until != "" && s.Signature == opts.Until {
			break
		}
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
		out = append(out, s)
	}
	return out, nil
}

// AddTransaction adds a transaction to the stub store.
func (c *RPCClient) AddTransaction(tx *solana.Transaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Transactions[tx.Signature] = tx
}

// AddSignatures adds signatures for an address to the stub store.
func (c *RPCClient) AddSignatures(address string, sigs []solana.SignatureInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Signatures[address] = sigs
}

// CallCount returns how often GetTransaction was called for signature.
func (c *RPCClient) CallCount(signature string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Calls[signature]
}

var _ solana.RPCClient = (*RPCClient)(nil)

package pipeline

import "errors"

// Reconstruction errors. Heuristic misses are not errors: a transaction
// without recognizable trades yields an empty leg list.
var (
	ErrNilTransaction    = errors.New("nil transaction")
	ErrTransactionFailed = errors.New("transaction failed on chain")
	ErrNoWallets         = errors.New("at least one user wallet is required")
)

package storage

import "context"

// WalletProgress is the newest transaction already processed for a wallet.
type WalletProgress struct {
	Slot      int64  // slot of the newest processed transaction
	Signature string // its signature, used as the "until" cursor
}

// ProgressStore persists per-wallet scan cursors.
// This lets wallet scans resume after restarts without reprocessing history.
type ProgressStore interface {
	// GetLastProcessed returns the cursor of a wallet.
	// Returns ErrNotFound if the wallet was never scanned.
	GetLastProcessed(ctx context.Context, wallet string) (*WalletProgress, error)

	// SetLastProcessed saves the cursor of a wallet.
	SetLastProcessed(ctx context.Context, wallet string, progress *WalletProgress) error
}

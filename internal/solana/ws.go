package solana

import "context"

// WSClient defines Solana WebSocket subscription interface.
type WSClient interface {
	// SubscribeWallet streams log notifications of transactions that
	// mention wallet.
	SubscribeWallet(ctx context.Context, wallet string) (<-chan LogNotification, error)

	// Close closes the WebSocket connection.
	Close() error
}

// LogNotification represents a logs subscription message.
type LogNotification struct {
	Signature string
	Slot      int64
	Wallet    string // wallet whose subscription delivered the message
	Err       interface{}
}

package domain

import "github.com/shopspring/decimal"

// Trade action types.
const (
	ActionBuy      = "buy"
	ActionSell     = "sell"
	ActionSwap     = "swap"
	ActionTransfer = "transfer"
)

// TradeAction is a swap leg enriched for consumers.
// Corresponds to trade_actions table in PostgreSQL.
type TradeAction struct {
	ID           string           // deterministic hash, see idhash.ComputeActionID
	Signature    string           // Solana transaction signature
	Slot         int64            // Solana slot number
	BlockTime    int64            // Unix timestamp in seconds
	Wallet       string           // user wallet
	Type         string           // buy | sell | swap | transfer
	Strategy     string           // strategy that produced the leg
	SoldMint     string           // mint given up
	SoldAmount   decimal.Decimal  // UI units
	BoughtMint   string           // mint received, empty for transfers
	BoughtAmount decimal.Decimal  // UI units
	NativeAmount decimal.Decimal  // SOL side of the trade, zero if none
	PriceUSD     *decimal.Decimal // SOL/USD close used for valuation
	ValueUSD     *decimal.Decimal // NativeAmount * PriceUSD
	NetworkFee   decimal.Decimal  // SOL
	RouterFees   decimal.Decimal  // SOL
	Tip          decimal.Decimal  // SOL
	PathSeqs     []int            // provenance, sorted
	CreatedAt    int64            // record creation timestamp (ms)
}

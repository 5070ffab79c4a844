package domain

import "github.com/shopspring/decimal"

// NativeMint is the wrapped SOL mint. Native lamport movements are
// normalized onto it so that SOL and wSOL share one value space.
const NativeMint = "So11111111111111111111111111111111111111112"

// NativeDecimals is the decimal precision of SOL.
const NativeDecimals = 9

// Edge is a single directed value movement observed in a transaction.
type Edge struct {
	Seq         int             // traversal position, dense from 0
	Source      string          // sending account
	Destination string          // receiving account
	Mint        string          // token mint, NativeMint for SOL
	Amount      decimal.Decimal // UI units, never negative
	Authority   string          // signer that authorized the movement
	ProgramID   string          // program that executed the movement
	Depth       int             // 0 top-level, 1 inner
	Decimals    *uint8          // mint decimals when known
	Checked     bool            // transferChecked variant
	Synthetic   bool            // emitted by balance reconciliation
	Ix          int             // outer instruction index
	InnerIx     int             // position inside the inner group, -1 for top-level
}

// IsNative reports whether the edge moves SOL or wSOL.
func (e Edge) IsNative() bool {
	return e.Mint == NativeMint
}

// Lamports returns the amount in lamports. Only meaningful for native edges.
func (e Edge) Lamports() int64 {
	return ToLamports(e.Amount)
}

// ToLamports converts a SOL amount to lamports, rounding to the nearest unit.
func ToLamports(sol decimal.Decimal) int64 {
	return sol.Shift(NativeDecimals).Round(0).IntPart()
}

// FromLamports converts lamports to a SOL amount.
func FromLamports(lamports int64) decimal.Decimal {
	return decimal.New(lamports, -NativeDecimals)
}

// FromBaseUnits scales a raw integer amount down by decimals.
func FromBaseUnits(raw string, decimals uint8) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, err
	}
	return d.Shift(-int32(decimals)), nil
}

// Uint8Ptr returns a pointer to v.
func Uint8Ptr(v uint8) *uint8 {
	return &v
}

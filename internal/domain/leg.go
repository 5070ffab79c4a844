package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Leg kinds. A strategy sets one when the shape of the leg decides it.
const (
	LegKindBuy      = "buy"
	LegKindSell     = "sell"
	LegKindSwap     = "swap"
	LegKindTransfer = "transfer"
)

// SwapLeg is one reconstructed trade or transfer for a user wallet.
// An empty BoughtMint with a zero BoughtAmount is a plain outbound transfer.
type SwapLeg struct {
	SoldMint     string
	SoldAmount   decimal.Decimal
	BoughtMint   string
	BoughtAmount decimal.Decimal
	Path         []Edge   // edges the leg was assembled from
	UserWallet   string   // wallet the leg is attributed to
	Strategy     string   // producing strategy
	Kind         string   // LegKind*, empty when undetermined
	Fees         *LegFees // set by the fee attacher
}

// Seqs returns the sorted seqs of the leg's path.
func (l *SwapLeg) Seqs() []int {
	seqs := make([]int, len(l.Path))
	for i, e := range l.Path {
		seqs[i] = e.Seq
	}
	sort.Ints(seqs)
	return seqs
}

// SeqRange returns the lowest and highest seq on the path.
func (l *SwapLeg) SeqRange() (int, int) {
	if len(l.Path) == 0 {
		return 0, 0
	}
	lo, hi := l.Path[0].Seq, l.Path[0].Seq
	for _, e := range l.Path[1:] {
		if e.Seq < lo {
			lo = e.Seq
		}
		if e.Seq > hi {
			hi = e.Seq
		}
	}
	return lo, hi
}

// IsTransfer reports whether the leg has no bought side.
func (l *SwapLeg) IsTransfer() bool {
	return l.BoughtMint == "" && l.BoughtAmount.IsZero()
}

// SoldNative reports whether the leg spends SOL.
func (l *SwapLeg) SoldNative() bool {
	return l.SoldMint == NativeMint
}

// BoughtNative reports whether the leg receives SOL.
func (l *SwapLeg) BoughtNative() bool {
	return l.BoughtMint == NativeMint
}

// FeeBucket names a group of fee flows attached to a leg.
type FeeBucket string

// Fee buckets.
const (
	FeeBucketCore   FeeBucket = "core"
	FeeBucketRouter FeeBucket = "router"
	FeeBucketTip    FeeBucket = "tip"
)

// FeeItem is one native flow counted into a fee bucket.
type FeeItem struct {
	Seq    int
	Amount decimal.Decimal
}

// LegFees is the fee decomposition attached to an accepted leg.
// Pointer fields are unset for legs where they do not apply.
type LegFees struct {
	SoldCore      *decimal.Decimal
	RouterFees    decimal.Decimal
	Tip           decimal.Decimal
	NetworkFee    decimal.Decimal
	TransfersOnly *decimal.Decimal
	SoldAllIn     *decimal.Decimal
	Breakdown     map[FeeBucket][]FeeItem
}

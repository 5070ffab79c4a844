package strategy

import (
	"github.com/shopspring/decimal"

	"solana-trade-recon/internal/domain"
)

// WalletTransfer matches plain token transfers out of a user wallet. Runs
// of same-mint outflows close together become one leg with no bought side.
type WalletTransfer struct {
	Window int // max seq gap between consecutive outflows of one transfer
}

// NewWalletTransfer creates a WalletTransfer strategy.
func NewWalletTransfer(window int) *WalletTransfer {
	return &WalletTransfer{Window: window}
}

// Name returns the strategy name.
func (s *WalletTransfer) Name() string { return NameWalletTransfer }

// Match clusters user-signed token outflows to accounts outside the user
// set.
func (s *WalletTransfer) Match(in Input) []domain.SwapLeg {
	var legs []domain.SwapLeg
	for _, w := range in.Wallets {
		open := make(map[string][]domain.Edge)
		var mints []string

		flush := func(mint string) {
			cluster := open[mint]
			if len(cluster) == 0 {
				return
			}
			legs = append(legs, newLeg(s.Name(), w, domain.LegKindTransfer,
				mint, sum(cluster), "", decimal.Zero, cluster...))
			delete(open, mint)
		}

		for _, e := range in.Edges {
			if e.IsNative() || e.Authority != w || in.Accounts.IsUser(e.Destination) {
				continue
			}
			if !in.Accounts.Outflow(e, w) {
				continue
			}
			cluster, ok := open[e.Mint]
			if ok && e.Seq-cluster[len(cluster)-1].Seq > s.Window {
				flush(e.Mint)
				ok = false
			}
			if !ok {
				mints = append(mints, e.Mint)
			}
			open[e.Mint] = append(open[e.Mint], e)
		}

		for _, m := range mints {
			flush(m)
		}
	}
	return dedupe(legs)
}

var _ Strategy = (*WalletTransfer)(nil)

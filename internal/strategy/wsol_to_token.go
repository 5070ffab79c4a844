package strategy

import (
	"solana-trade-recon/internal/domain"
)

// WsolToToken matches buys: a token arriving in a user account paid for by
// native outflows the user signed.
type WsolToToken struct {
	Pairing
}

// NewWsolToToken creates a WsolToToken strategy.
func NewWsolToToken(p Pairing) *WsolToToken {
	return &WsolToToken{Pairing: p}
}

// Name returns the strategy name.
func (s *WsolToToken) Name() string { return NameWsolToToken }

// Match pairs every user token inflow with the user's nearby native outflows.
func (s *WsolToToken) Match(in Input) []domain.SwapLeg {
	var legs []domain.SwapLeg
	for _, w := range in.Wallets {
		f := flows{in: in, wallet: w}
		used := make(map[int]struct{})
		free := func(e domain.Edge) bool {
			_, taken := used[e.Seq]
			return !taken && f.nativeOut(e)
		}

		for _, tin := range in.Edges {
			if !f.tokenIn(tin) {
				continue
			}
			paid := s.choose(s.candidates(in.Edges, tin, free))
			if len(paid) == 0 {
				continue
			}
			for _, e := range paid {
				used[e.Seq] = struct{}{}
			}
			legs = append(legs, newLeg(s.Name(), w, domain.LegKindBuy,
				domain.NativeMint, sum(paid), tin.Mint, tin.Amount, append(paid, tin)...))
		}
	}
	return dedupe(legs)
}

var _ Strategy = (*WsolToToken)(nil)

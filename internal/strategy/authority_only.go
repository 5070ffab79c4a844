package strategy

import (
	"solana-trade-recon/internal/domain"
)

// AuthorityOnly is the least specific strategy: any native user outflow
// followed by a token inflow to the user is read as a buy.
type AuthorityOnly struct {
	Window int // max seq distance from the outflow to the inflow
}

// NewAuthorityOnly creates an AuthorityOnly strategy.
func NewAuthorityOnly(window int) *AuthorityOnly {
	return &AuthorityOnly{Window: window}
}

// Name returns the strategy name.
func (s *AuthorityOnly) Name() string { return NameAuthorityOnly }

// Fallback reports that dust must be filtered before matching.
func (s *AuthorityOnly) Fallback() bool { return true }

// Match pairs each native outflow with the first later token inflow.
func (s *AuthorityOnly) Match(in Input) []domain.SwapLeg {
	var legs []domain.SwapLeg
	for _, w := range in.Wallets {
		f := flows{in: in, wallet: w}
		used := make(map[int]struct{})

		for i, out := range in.Edges {
			if !f.nativeOut(out) {
				continue
			}
			for _, tin := range in.Edges[i+1:] {
				if tin.Seq-out.Seq > s.Window {
					break
				}
				if _, taken := used[tin.Seq]; taken || !f.tokenIn(tin) {
					continue
				}
				used[tin.Seq] = struct{}{}
				legs = append(legs, newLeg(s.Name(), w, domain.LegKindBuy,
					domain.NativeMint, out.Amount, tin.Mint, tin.Amount, out, tin))
				break
			}
		}
	}
	return dedupe(legs)
}

var _ Strategy = (*AuthorityOnly)(nil)

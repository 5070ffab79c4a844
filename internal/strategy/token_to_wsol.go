package strategy

import (
	"solana-trade-recon/internal/domain"
)

// TokenToWsol matches sells: native value arriving for the user, not signed
// by the user, paid for by token outflows the user signed.
type TokenToWsol struct {
	Pairing
}

// NewTokenToWsol creates a TokenToWsol strategy.
func NewTokenToWsol(p Pairing) *TokenToWsol {
	return &TokenToWsol{Pairing: p}
}

// Name returns the strategy name.
func (s *TokenToWsol) Name() string { return NameTokenToWsol }

// Match pairs every native inflow with the user's nearby token outflows of
// a single mint.
func (s *TokenToWsol) Match(in Input) []domain.SwapLeg {
	var legs []domain.SwapLeg
	for _, w := range in.Wallets {
		f := flows{in: in, wallet: w}
		used := make(map[int]struct{})
		free := func(e domain.Edge) bool {
			_, taken := used[e.Seq]
			return !taken && f.tokenOut(e)
		}

		for _, nin := range in.Edges {
			if !f.nativeIn(nin) || in.Accounts.IsUser(nin.Authority) {
				continue
			}
			cands := s.candidates(in.Edges, nin, free)
			if len(cands) == 0 {
				continue
			}
			sold := s.choose(onlyMint(cands, largest(cands).Mint))
			for _, e := range sold {
				used[e.Seq] = struct{}{}
			}
			legs = append(legs, newLeg(s.Name(), w, domain.LegKindSell,
				sold[0].Mint, sum(sold), domain.NativeMint, nin.Amount, append(sold, nin)...))
		}
	}
	return dedupe(legs)
}

var _ Strategy = (*TokenToWsol)(nil)

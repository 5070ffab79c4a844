package strategy

import (
	"solana-trade-recon/internal/domain"
)

// ProxyVaultSwap matches token-for-token swaps bridged through native value
// held briefly by a vault: token out, native into the vault, native out of
// the vault, token in.
type ProxyVaultSwap struct {
	stables map[string]struct{}
}

// NewProxyVaultSwap creates a ProxyVaultSwap strategy.
func NewProxyVaultSwap(stablecoins []string) *ProxyVaultSwap {
	return &ProxyVaultSwap{stables: stableSet(stablecoins)}
}

// Name returns the strategy name.
func (s *ProxyVaultSwap) Name() string { return NameProxyVaultSwap }

// Match walks backward from every user token inflow looking for the
// four-edge chain.
func (s *ProxyVaultSwap) Match(in Input) []domain.SwapLeg {
	var legs []domain.SwapLeg
	for _, w := range in.Wallets {
		f := flows{in: in, wallet: w}
		used := make(map[int]struct{})

		for i, tin := range in.Edges {
			if !f.tokenIn(tin) {
				continue
			}
			chain, ok := s.chain(in, f, i, used)
			if !ok {
				continue
			}
			for _, e := range chain {
				used[e.Seq] = struct{}{}
			}
			out := chain[0]
			legs = append(legs, newLeg(s.Name(), w, kindFor(out.Mint, tin.Mint, s.stables),
				out.Mint, out.Amount, tin.Mint, tin.Amount, chain...))
		}
	}
	return dedupe(legs)
}

// chain returns [tokenOut, vaultIn, vaultOut, tokenIn] ending at
// in.Edges[last], taking the nearest candidate at every step.
func (s *ProxyVaultSwap) chain(in Input, f flows, last int, used map[int]struct{}) ([]domain.Edge, bool) {
	tin := in.Edges[last]
	free := func(e domain.Edge) bool {
		_, taken := used[e.Seq]
		return !taken
	}

	for j := last - 1; j >= 0; j-- {
		vout := in.Edges[j]
		vault := vout.Source
		if !vout.IsNative() || vault == "" || in.Accounts.IsUser(vault) || f.foreign(vout) || !free(vout) {
			continue
		}
		for k := j - 1; k >= 0; k-- {
			vin := in.Edges[k]
			if !vin.IsNative() || vin.Destination != vault || f.foreign(vin) || !free(vin) {
				continue
			}
			for m := k - 1; m >= 0; m-- {
				out := in.Edges[m]
				if f.tokenOut(out) && out.Mint != tin.Mint && free(out) {
					return []domain.Edge{out, vin, vout, tin}, true
				}
			}
		}
	}
	return nil, false
}

var _ Strategy = (*ProxyVaultSwap)(nil)

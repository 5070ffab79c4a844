package strategy

import (
	"solana-trade-recon/internal/domain"
)

// AggregatorHub matches swaps routed through an intermediary account that
// receives native value and forwards it on.
type AggregatorHub struct {
	Window int // seq distance between a token inflow and the hub outflows paying for it
}

// NewAggregatorHub creates an AggregatorHub strategy.
func NewAggregatorHub(window int) *AggregatorHub {
	return &AggregatorHub{Window: window}
}

// Name returns the strategy name.
func (s *AggregatorHub) Name() string { return NameAggregatorHub }

// Match pairs user token outflows with the next hub inflow (sells) and user
// token inflows with the hub outflows around them (buys).
func (s *AggregatorHub) Match(in Input) []domain.SwapLeg {
	var legs []domain.SwapLeg
	for _, w := range in.Wallets {
		legs = append(legs, s.matchWallet(in, w)...)
	}
	return dedupe(legs)
}

func (s *AggregatorHub) matchWallet(in Input, w string) []domain.SwapLeg {
	hubs := findHubs(in)
	if len(hubs) == 0 {
		return nil
	}
	f := flows{in: in, wallet: w}
	used := make(map[int]struct{})
	var legs []domain.SwapLeg

	// Sells: token out, then the hub collects the proceeds.
	for _, out := range in.Edges {
		if !f.tokenOut(out) {
			continue
		}
		for _, e := range in.Edges {
			if e.Seq <= out.Seq || !e.IsNative() {
				continue
			}
			if _, ok := hubs[e.Destination]; !ok || in.Accounts.Outflow(e, w) || f.foreign(e) {
				continue
			}
			if _, taken := used[e.Seq]; taken {
				continue
			}
			used[out.Seq] = struct{}{}
			used[e.Seq] = struct{}{}
			legs = append(legs, newLeg(s.Name(), w, domain.LegKindSell,
				out.Mint, out.Amount, domain.NativeMint, e.Amount, out, e))
			break
		}
	}

	// Buys: token in, paid for by hub outflows nearby.
	for _, tin := range in.Edges {
		if !f.tokenIn(tin) {
			continue
		}
		if _, taken := used[tin.Seq]; taken {
			continue
		}
		var paid []domain.Edge
		for _, e := range in.Edges {
			if !e.IsNative() || abs(e.Seq-tin.Seq) > s.Window {
				continue
			}
			first, ok := hubs[e.Source]
			if !ok || first >= tin.Seq || e.Seq <= first || in.Accounts.OwnedBy(e.Destination, w) || f.foreign(e) {
				continue
			}
			if _, taken := used[e.Seq]; taken {
				continue
			}
			paid = append(paid, e)
		}
		if len(paid) == 0 {
			continue
		}
		for _, e := range paid {
			used[e.Seq] = struct{}{}
		}
		used[tin.Seq] = struct{}{}
		legs = append(legs, newLeg(s.Name(), w, domain.LegKindBuy,
			domain.NativeMint, sum(paid), tin.Mint, tin.Amount, append(paid, tin)...))
	}

	return legs
}

// findHubs returns non-user accounts that receive native value and later
// send native value without a user signing, keyed to the seq of their
// first inflow.
func findHubs(in Input) map[string]int {
	firstIn := make(map[string]int)
	hubs := make(map[string]int)
	for _, e := range in.Edges {
		if !e.IsNative() {
			continue
		}
		if first, ok := firstIn[e.Source]; ok && first < e.Seq && !in.Accounts.IsUser(e.Authority) {
			hubs[e.Source] = first
		}
		if e.Destination == "" || in.Accounts.IsUser(e.Destination) {
			continue
		}
		if _, ok := firstIn[e.Destination]; !ok {
			firstIn[e.Destination] = e.Seq
		}
	}
	return hubs
}

var _ Strategy = (*AggregatorHub)(nil)

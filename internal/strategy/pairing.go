package strategy

import (
	"solana-trade-recon/internal/config"
	"solana-trade-recon/internal/domain"
)

// Pairing selects the counter-side edges paying for one anchor edge.
type Pairing struct {
	Lookback     int   // candidates strictly preceding the anchor
	Symmetric    int   // fallback window on both sides of the anchor
	DustLamports int64 // native candidates below this are ignored
	Aggregate    bool  // sum all candidates instead of taking the largest
}

// NewPairing reads the pairing windows from p.
func NewPairing(p config.StrategyParams) Pairing {
	return Pairing{
		Lookback:     p.LookbackWindow,
		Symmetric:    p.SymmetricWindow,
		DustLamports: p.NativeDustLamports,
		Aggregate:    p.AggregateNative,
	}
}

// candidates returns the edges matching ok near anchor: preceding within
// Lookback, else within Symmetric on either side.
func (p Pairing) candidates(edges []domain.Edge, anchor domain.Edge, ok func(domain.Edge) bool) []domain.Edge {
	var before, around []domain.Edge
	for _, e := range edges {
		if e.Seq == anchor.Seq || !ok(e) {
			continue
		}
		if e.IsNative() && e.Lamports() < p.DustLamports {
			continue
		}
		d := anchor.Seq - e.Seq
		if d > 0 && d <= p.Lookback {
			before = append(before, e)
		}
		if abs(d) <= p.Symmetric {
			around = append(around, e)
		}
	}
	if len(before) > 0 {
		return before
	}
	return around
}

// choose applies checked preference and the aggregate-or-largest policy.
func (p Pairing) choose(cands []domain.Edge) []domain.Edge {
	if len(cands) == 0 {
		return nil
	}

	var checked []domain.Edge
	for _, e := range cands {
		if e.Checked {
			checked = append(checked, e)
		}
	}
	if len(checked) > 0 {
		cands = checked
	}

	if p.Aggregate {
		return cands
	}
	return []domain.Edge{largest(cands)}
}

// largest returns the edge with the greatest amount, earliest on ties.
func largest(edges []domain.Edge) domain.Edge {
	best := edges[0]
	for _, e := range edges[1:] {
		if e.Amount.GreaterThan(best.Amount) {
			best = e
		}
	}
	return best
}

// onlyMint keeps the edges of mint.
func onlyMint(edges []domain.Edge, mint string) []domain.Edge {
	var out []domain.Edge
	for _, e := range edges {
		if e.Mint == mint {
			out = append(out, e)
		}
	}
	return out
}

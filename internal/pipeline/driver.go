// Package pipeline runs the reconstruction of one transaction: graph,
// tagging, strategy passes and fee attachment.
package pipeline

import (
	"go.uber.org/zap"

	"solana-trade-recon/internal/domain"
	"solana-trade-recon/internal/observability"
	"solana-trade-recon/internal/strategy"
	"solana-trade-recon/internal/tagging"
)

// Driver runs strategies in priority order over repeated passes. It alone
// owns the set of consumed edges.
type Driver struct {
	strategies []strategy.Strategy
	maxPasses  int
	logger     *zap.Logger
}

// DriveResult is the outcome of one driver run.
type DriveResult struct {
	Legs     []domain.SwapLeg
	Passes   int  // passes executed
	Capped   bool // stopped by the pass limit while still making progress
	Rejected int  // legs dropped because an edge was already claimed
}

// NewDriver creates a driver. Strategies run in the given order.
func NewDriver(strategies []strategy.Strategy, maxPasses int, logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxPasses <= 0 {
		maxPasses = 1
	}
	return &Driver{
		strategies: strategies,
		maxPasses:  maxPasses,
		logger:     logger.Named("driver"),
	}
}

// Run claims edges into legs. A leg is accepted only when its path is
// non-empty and none of its edges was claimed before; accepted legs keep
// their order of acceptance.
func (d *Driver) Run(edges []domain.Edge, wallets []string, ua domain.UserAccounts, tags tagging.Tags) (*DriveResult, error) {
	if len(wallets) == 0 {
		return nil, ErrNoWallets
	}

	res := &DriveResult{}
	consumed := make(map[int]struct{}, len(edges))

	for pass := 1; pass <= d.maxPasses; pass++ {
		res.Passes = pass
		progress := false

		for _, s := range d.strategies {
			in := strategy.Input{
				Edges:    available(edges, consumed, tags, strategy.IsFallback(s)),
				Wallets:  wallets,
				Accounts: ua,
			}
			if len(in.Edges) == 0 {
				continue
			}

			for _, leg := range s.Match(in) {
				if !claimable(leg, consumed) {
					res.Rejected++
					observability.RecordLeg(s.Name(), false)
					continue
				}
				for _, e := range leg.Path {
					consumed[e.Seq] = struct{}{}
				}
				res.Legs = append(res.Legs, leg)
				progress = true
				observability.RecordLeg(s.Name(), true)
			}
		}

		if !progress {
			break
		}
		if pass == d.maxPasses {
			res.Capped = true
			d.logger.Debug("pass limit reached", zap.Int("passes", pass), zap.Int("legs", len(res.Legs)))
		}
	}

	observability.RecordPasses(res.Passes, res.Capped)
	return res, nil
}

// available returns the edges a strategy may see: unclaimed, not fee or
// tip, and not dust for fallback strategies.
func available(edges []domain.Edge, consumed map[int]struct{}, tags tagging.Tags, fallback bool) []domain.Edge {
	out := make([]domain.Edge, 0, len(edges))
	for _, e := range edges {
		if _, taken := consumed[e.Seq]; taken {
			continue
		}
		if tags.Is(e.Seq, domain.TagFee, domain.TagTip) {
			continue
		}
		if fallback && tags.Get(e.Seq) == domain.TagDust {
			continue
		}
		out = append(out, e)
	}
	return out
}

func claimable(leg domain.SwapLeg, consumed map[int]struct{}) bool {
	if len(leg.Path) == 0 {
		return false
	}
	for _, e := range leg.Path {
		if _, taken := consumed[e.Seq]; taken {
			return false
		}
	}
	return true
}

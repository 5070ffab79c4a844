package graph

import (
	"solana-trade-recon/internal/domain"
	"solana-trade-recon/internal/solana"
)

// reconcile emits one synthetic edge per wallet whose native balance change
// is not explained by the native edges touching it. The network fee is added
// back for the fee payer so it does not surface as a residual.
func (b *Builder) reconcile(tx *solana.Transaction, wallets []string, em *Emitter) {
	if tx.Meta == nil || tx.Message == nil {
		return
	}

	positions := make(map[string]int, len(tx.Message.AccountKeys))
	for i, k := range tx.Message.AccountKeys {
		if _, dup := positions[k.Pubkey]; !dup {
			positions[k.Pubkey] = i
		}
	}

	em.outer, em.inner, em.programID = -1, -1, ""
	seen := make(map[string]struct{}, len(wallets))

	for _, w := range wallets {
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}

		i, ok := positions[w]
		if !ok || i >= len(tx.Meta.PreBalances) || i >= len(tx.Meta.PostBalances) {
			continue
		}

		residual := int64(tx.Meta.PostBalances[i]) - int64(tx.Meta.PreBalances[i])
		if w == tx.FeePayer() {
			residual += int64(tx.Meta.Fee)
		}
		for _, e := range em.edges {
			if !e.IsNative() {
				continue
			}
			if e.Destination == w {
				residual -= e.Lamports()
			}
			if e.Source == w {
				residual += e.Lamports()
			}
		}

		if abs(residual) <= b.params.ResidualDustLamports {
			continue
		}

		edge := domain.Edge{
			Mint:      domain.NativeMint,
			Decimals:  domain.Uint8Ptr(domain.NativeDecimals),
			Depth:     1,
			Synthetic: true,
		}
		if residual > 0 {
			edge.Destination = w
			edge.Amount = domain.FromLamports(residual)
		} else {
			edge.Source = w
			edge.Authority = w
			edge.Amount = domain.FromLamports(-residual)
		}
		em.Emit(edge)
	}
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

package pipeline

import (
	"github.com/shopspring/decimal"

	"solana-trade-recon/internal/domain"
	"solana-trade-recon/internal/solana"
	"solana-trade-recon/internal/tagging"
)

// AttachFees decomposes the native flows around each leg into core, router
// and tip buckets and sets the network fee. Legs are modified in place.
//
// Flows considered are the owning wallet's non-internal native outflows
// within window seqs of the leg's path. Top-level flows always count as
// tips. Buys ignore dust; on sells every non-tip flow, dust included, is
// router fee.
func AttachFees(tx *solana.Transaction, legs []domain.SwapLeg, edges []domain.Edge, tags tagging.Tags, ua domain.UserAccounts, window int) {
	networkFee := decimal.Zero
	if tx != nil && tx.Meta != nil {
		networkFee = domain.FromLamports(int64(tx.Meta.Fee))
	}

	for i := range legs {
		leg := &legs[i]
		fees := &domain.LegFees{NetworkFee: networkFee}
		leg.Fees = fees

		buy, sell := leg.SoldNative(), leg.BoughtNative()
		if !buy && !sell {
			continue
		}

		buckets := make(map[domain.FeeBucket][]domain.FeeItem)
		lo, hi := leg.SeqRange()
		for _, e := range edges {
			if !e.IsNative() || e.Seq < lo-window || e.Seq > hi+window {
				continue
			}
			if !ua.Outflow(e, leg.UserWallet) {
				continue
			}

			tag := tags.Get(e.Seq)
			if e.Depth == 0 {
				tag = domain.TagTip
			}

			var bucket domain.FeeBucket
			switch {
			case tag == domain.TagTip:
				bucket = domain.FeeBucketTip
			case buy && tag == domain.TagDust:
				continue
			case buy && tag == domain.TagNormal:
				bucket = domain.FeeBucketCore
			default:
				bucket = domain.FeeBucketRouter
			}
			buckets[bucket] = append(buckets[bucket], domain.FeeItem{Seq: e.Seq, Amount: e.Amount})
		}

		core := total(buckets[domain.FeeBucketCore])
		fees.RouterFees = total(buckets[domain.FeeBucketRouter])
		fees.Tip = total(buckets[domain.FeeBucketTip])

		if buy {
			transfers := core.Add(fees.RouterFees).Add(fees.Tip)
			allIn := transfers.Add(networkFee)
			fees.SoldCore = &core
			fees.TransfersOnly = &transfers
			fees.SoldAllIn = &allIn
		}

		if len(buckets) > 0 {
			fees.Breakdown = buckets
		}
	}
}

func total(items []domain.FeeItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Amount)
	}
	return sum
}

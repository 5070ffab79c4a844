package tagging

import (
	"sort"

	"github.com/shopspring/decimal"

	"solana-trade-recon/internal/config"
	"solana-trade-recon/internal/domain"
	"solana-trade-recon/internal/observability"
)

// Tag classifies edges in five layers. Each layer may overwrite tags set by
// earlier ones:
//
//  1. dust by absolute native floor or relative to the mint maximum
//  2. repeated near-equal native outflows of a wallet are fees
//  3. unchecked user-signed native outflows are banded into fee or tip
//  4. native outflows around a token inflow: largest is the trade, rest fee or tip
//  5. tiny token outflows into a sink account are fees
//
// Tag is pure. The result covers every edge.
func Tag(edges []domain.Edge, wallets []string, ua domain.UserAccounts, p config.TaggingParams) Tags {
	t := &tagger{
		edges:   edges,
		wallets: wallets,
		ua:      ua,
		p:       p,
		tags:    make(map[int]domain.EdgeTag, len(edges)),
		maxMint: maxByMint(edges),
	}

	t.dust()
	t.feeClusters()
	t.uncheckedBands()
	t.inflowClusters()
	t.sinks()

	for _, tag := range t.tags {
		observability.RecordTag(tag.String())
	}
	return Tags{m: t.tags}
}

type tagger struct {
	edges   []domain.Edge
	wallets []string
	ua      domain.UserAccounts
	p       config.TaggingParams
	tags    map[int]domain.EdgeTag
	maxMint map[string]decimal.Decimal
}

func maxByMint(edges []domain.Edge) map[string]decimal.Decimal {
	m := make(map[string]decimal.Decimal)
	for _, e := range edges {
		if cur, ok := m[e.Mint]; !ok || e.Amount.GreaterThan(cur) {
			m[e.Mint] = e.Amount
		}
	}
	return m
}

func (t *tagger) dust() {
	rel := decimal.NewFromFloat(t.p.DustRelPct)
	for _, e := range t.edges {
		tag := domain.TagNormal
		if e.IsNative() && e.Lamports() < t.p.DustAbsLamports {
			tag = domain.TagDust
		} else if e.Amount.LessThan(t.maxMint[e.Mint].Mul(rel)) {
			tag = domain.TagDust
		}
		t.tags[e.Seq] = tag
	}
}

// nativeOutflows returns the native outflows of wallet in seq order.
func (t *tagger) nativeOutflows(wallet string) []domain.Edge {
	var out []domain.Edge
	for _, e := range t.edges {
		if e.IsNative() && t.ua.Outflow(e, wallet) {
			out = append(out, e)
		}
	}
	return out
}

func (t *tagger) feeClusters() {
	for _, w := range t.wallets {
		outs := t.nativeOutflows(w)
		for i := range outs {
			for j := i + 1; j < len(outs); j++ {
				if outs[j].Seq-outs[i].Seq > t.p.FeeClusterWindow {
					break
				}
				if abs(outs[j].Lamports()-outs[i].Lamports()) <= t.p.FeeClusterTolerance {
					t.tags[outs[i].Seq] = domain.TagFee
					t.tags[outs[j].Seq] = domain.TagFee
				}
			}
		}
	}
}

func (t *tagger) feeOrTip(seq int) bool {
	tag := t.tags[seq]
	return tag == domain.TagFee || tag == domain.TagTip
}

func (t *tagger) uncheckedBands() {
	for _, w := range t.wallets {
		outs := t.nativeOutflows(w)
		for _, e := range outs {
			if e.Checked || e.Authority != w || t.feeOrTip(e.Seq) {
				continue
			}
			amount := e.Lamports()

			if t.hasLargerChecked(outs, e) {
				t.tags[e.Seq] = domain.TagFee
				continue
			}
			switch {
			case amount <= t.p.TipMaxLamports:
				t.tags[e.Seq] = domain.TagTip
			case amount <= t.p.FeeMaxLamports:
				t.tags[e.Seq] = domain.TagFee
			}
		}
	}
}

func (t *tagger) hasLargerChecked(outs []domain.Edge, e domain.Edge) bool {
	for _, c := range outs {
		if !c.Checked || c.Seq == e.Seq || abs(c.Seq-e.Seq) > t.p.CheckedWindow {
			continue
		}
		if c.Lamports()-e.Lamports() >= t.p.CheckedMinLamports {
			return true
		}
	}
	return false
}

func (t *tagger) inflowClusters() {
	for _, in := range t.edges {
		if in.IsNative() || t.ua.IsUser(in.Authority) {
			continue
		}
		w, ok := t.ua.OwnerOf(in.Destination)
		if !ok || !t.ua.Inflow(in, w) {
			continue
		}

		var cluster []domain.Edge
		for _, e := range t.nativeOutflows(w) {
			if abs(e.Seq-in.Seq) <= t.p.InflowClusterWindow {
				cluster = append(cluster, e)
			}
		}
		if len(cluster) == 0 {
			continue
		}

		// Largest first, earliest seq on ties.
		sort.SliceStable(cluster, func(i, j int) bool {
			return cluster[i].Amount.GreaterThan(cluster[j].Amount)
		})

		t.tags[cluster[0].Seq] = domain.TagNormal
		for _, e := range cluster[1:] {
			if t.feeOrTip(e.Seq) {
				continue
			}
			if e.Lamports() <= t.p.TipMaxLamports {
				t.tags[e.Seq] = domain.TagTip
			} else {
				t.tags[e.Seq] = domain.TagFee
			}
		}
	}
}

func (t *tagger) sinks() {
	type key struct{ account, mint string }
	received := make(map[key]int)
	forwards := make(map[key]bool)
	for _, e := range t.edges {
		received[key{e.Destination, e.Mint}]++
		forwards[key{e.Source, e.Mint}] = true
	}

	pct := decimal.NewFromFloat(t.p.SinkMaxPct)
	for _, e := range t.edges {
		if e.IsNative() || !t.ua.IsUser(e.Authority) || t.tags[e.Seq] != domain.TagNormal {
			continue
		}
		if e.Amount.GreaterThan(t.maxMint[e.Mint].Mul(pct)) {
			continue
		}
		k := key{e.Destination, e.Mint}
		if e.Destination == "" || received[k] != 1 || forwards[k] {
			continue
		}
		t.tags[e.Seq] = domain.TagFee
	}
}

type integer interface{ ~int | ~int64 }

func abs[T integer](v T) T {
	if v < 0 {
		return -v
	}
	return v
}

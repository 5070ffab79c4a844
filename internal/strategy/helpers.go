package strategy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"solana-trade-recon/internal/domain"
)

// newLeg builds a leg with its path in seq order.
func newLeg(name, wallet, kind, soldMint string, sold decimal.Decimal, boughtMint string, bought decimal.Decimal, path ...domain.Edge) domain.SwapLeg {
	p := make([]domain.Edge, len(path))
	copy(p, path)
	sort.Slice(p, func(i, j int) bool { return p[i].Seq < p[j].Seq })

	return domain.SwapLeg{
		SoldMint:     soldMint,
		SoldAmount:   sold,
		BoughtMint:   boughtMint,
		BoughtAmount: bought,
		Path:         p,
		UserWallet:   wallet,
		Strategy:     name,
		Kind:         kind,
	}
}

// dedupe drops legs whose sold mint, bought mint and path seqs repeat an
// earlier leg.
func dedupe(legs []domain.SwapLeg) []domain.SwapLeg {
	if len(legs) < 2 {
		return legs
	}
	seen := make(map[string]struct{}, len(legs))
	out := legs[:0:0]
	for i := range legs {
		k := legKey(&legs[i])
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, legs[i])
	}
	return out
}

func legKey(l *domain.SwapLeg) string {
	var b strings.Builder
	b.WriteString(l.SoldMint)
	b.WriteByte('|')
	b.WriteString(l.BoughtMint)
	for _, s := range l.Seqs() {
		fmt.Fprintf(&b, "|%d", s)
	}
	return b.String()
}

func sum(edges []domain.Edge) decimal.Decimal {
	total := decimal.Zero
	for _, e := range edges {
		total = total.Add(e.Amount)
	}
	return total
}

// kindFor types a token leg by stablecoin membership of either side.
func kindFor(soldMint, boughtMint string, stables map[string]struct{}) string {
	if _, ok := stables[boughtMint]; ok {
		return domain.LegKindSell
	}
	if _, ok := stables[soldMint]; ok {
		return domain.LegKindBuy
	}
	return domain.LegKindSwap
}

func stableSet(mints []string) map[string]struct{} {
	set := make(map[string]struct{}, len(mints))
	for _, m := range mints {
		set[m] = struct{}{}
	}
	return set
}

// flows classifies the edges of one wallet.
type flows struct {
	in     Input
	wallet string
}

func (f flows) tokenIn(e domain.Edge) bool {
	return !e.IsNative() && f.in.Accounts.Inflow(e, f.wallet)
}

func (f flows) tokenOut(e domain.Edge) bool {
	return !e.IsNative() && f.in.Accounts.Outflow(e, f.wallet)
}

func (f flows) nativeIn(e domain.Edge) bool {
	return e.IsNative() && f.in.Accounts.Inflow(e, f.wallet)
}

func (f flows) nativeOut(e domain.Edge) bool {
	return e.IsNative() && f.in.Accounts.Outflow(e, f.wallet)
}

// foreign reports whether e touches an account of another user wallet, as
// source, destination or authority.
func (f flows) foreign(e domain.Edge) bool {
	for _, account := range [...]string{e.Source, e.Destination, e.Authority} {
		if owner, ok := f.in.Accounts.OwnerOf(account); ok && owner != f.wallet {
			return true
		}
	}
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

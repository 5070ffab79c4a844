package strategy

import (
	"github.com/shopspring/decimal"

	"solana-trade-recon/internal/domain"
)

// TokenToToken matches a direct swap between two non-native mints by the
// net balance change of the wallet in each mint.
type TokenToToken struct {
	stables map[string]struct{}
}

// NewTokenToToken creates a TokenToToken strategy.
func NewTokenToToken(stablecoins []string) *TokenToToken {
	return &TokenToToken{stables: stableSet(stablecoins)}
}

// Name returns the strategy name.
func (s *TokenToToken) Name() string { return NameTokenToToken }

// Match emits at most one leg per wallet: the mint with the most negative
// net is sold, the mint with the most positive net is bought.
func (s *TokenToToken) Match(in Input) []domain.SwapLeg {
	var legs []domain.SwapLeg
	for _, w := range in.Wallets {
		if leg, ok := s.matchWallet(in, w); ok {
			legs = append(legs, leg)
		}
	}
	return dedupe(legs)
}

func (s *TokenToToken) matchWallet(in Input, w string) (domain.SwapLeg, bool) {
	f := flows{in: in, wallet: w}
	net := make(map[string]decimal.Decimal)
	var order []string
	var touched []domain.Edge

	for _, e := range in.Edges {
		var delta decimal.Decimal
		switch {
		case f.tokenIn(e):
			delta = e.Amount
		case f.tokenOut(e):
			delta = e.Amount.Neg()
		default:
			continue
		}
		if _, ok := net[e.Mint]; !ok {
			order = append(order, e.Mint)
		}
		net[e.Mint] = net[e.Mint].Add(delta)
		touched = append(touched, e)
	}

	var sold, bought string
	for _, m := range order {
		if n := net[m]; n.IsNegative() && (sold == "" || n.LessThan(net[sold])) {
			sold = m
		}
		if n := net[m]; n.IsPositive() && (bought == "" || n.GreaterThan(net[bought])) {
			bought = m
		}
	}
	if sold == "" || bought == "" {
		return domain.SwapLeg{}, false
	}

	var path []domain.Edge
	for _, e := range touched {
		if e.Mint == sold || e.Mint == bought {
			path = append(path, e)
		}
	}

	return newLeg(s.Name(), w, kindFor(sold, bought, s.stables),
		sold, net[sold].Neg(), bought, net[bought], path...), true
}

var _ Strategy = (*TokenToToken)(nil)

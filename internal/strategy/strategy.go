// Package strategy assembles tagged edges into swap legs. Each strategy
// recognizes one routing pattern and is a pure function of its input.
package strategy

import (
	"solana-trade-recon/internal/domain"
)

// Strategy names, in default priority order.
const (
	NameAggregatorHub  = "aggregator_hub"
	NameProxyVaultSwap = "proxy_vault_swap"
	NameTokenToToken   = "token_to_token"
	NameWsolToToken    = "wsol_to_token"
	NameTokenToWsol    = "token_to_wsol"
	NameWalletTransfer = "wallet_to_wallet_transfer"
	NameAuthorityOnly  = "authority_only"
)

// Strategy matches one pattern of edges into legs.
type Strategy interface {
	// Name identifies the strategy in legs, logs and metrics.
	Name() string

	// Match returns the legs found in the input. It must not modify the
	// input and must attribute every leg to one of the input wallets.
	Match(in Input) []domain.SwapLeg
}

// Fallback is implemented by strategies that must not see dust edges.
type Fallback interface {
	Fallback() bool
}

// IsFallback reports whether s wants dust edges filtered out.
func IsFallback(s Strategy) bool {
	f, ok := s.(Fallback)
	return ok && f.Fallback()
}

// Input holds the edges a strategy may claim.
type Input struct {
	Edges    []domain.Edge // seq order, unclaimed and not fee or tip
	Wallets  []string
	Accounts domain.UserAccounts
}

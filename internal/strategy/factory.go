package strategy

import (
	"errors"
	"fmt"

	"solana-trade-recon/internal/config"
)

// ErrUnknownStrategy is returned for names no strategy answers to.
var ErrUnknownStrategy = errors.New("unknown strategy")

// Names lists all strategies in default priority order.
func Names() []string {
	return []string{
		NameAggregatorHub,
		NameProxyVaultSwap,
		NameTokenToToken,
		NameWsolToToken,
		NameTokenToWsol,
		NameWalletTransfer,
		NameAuthorityOnly,
	}
}

// Default returns all strategies in priority order.
func Default(p config.StrategyParams) []Strategy {
	out, _ := FromNames(Names(), p)
	return out
}

// FromName creates the strategy called name.
func FromName(name string, p config.StrategyParams) (Strategy, error) {
	switch name {
	case NameAggregatorHub:
		return NewAggregatorHub(p.HubWindow), nil
	case NameProxyVaultSwap:
		return NewProxyVaultSwap(p.Stablecoins), nil
	case NameTokenToToken:
		return NewTokenToToken(p.Stablecoins), nil
	case NameWsolToToken:
		return NewWsolToToken(NewPairing(p)), nil
	case NameTokenToWsol:
		return NewTokenToWsol(NewPairing(p)), nil
	case NameWalletTransfer:
		return NewWalletTransfer(p.TransferClusterWindow), nil
	case NameAuthorityOnly:
		return NewAuthorityOnly(p.FallbackWindow), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// FromNames creates strategies in the given order.
func FromNames(names []string, p config.StrategyParams) ([]Strategy, error) {
	out := make([]Strategy, 0, len(names))
	for _, name := range names {
		s, err := FromName(name, p)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

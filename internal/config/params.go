// Package config holds the policy parameters of trade reconstruction.
// Every window and threshold used by the graph builder, tagger, strategies
// and fee attacher lives here so it can be tuned without code changes.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Params is the full set of reconstruction parameters.
type Params struct {
	Graph    GraphParams    `yaml:"graph"`
	Tagging  TaggingParams  `yaml:"tagging"`
	Strategy StrategyParams `yaml:"strategy"`
	Pipeline PipelineParams `yaml:"pipeline"`
	Pricing  PricingParams  `yaml:"pricing"`
}

// GraphParams tunes the graph builder.
type GraphParams struct {
	// Residual balance deltas at or below this are not materialized.
	ResidualDustLamports int64 `yaml:"residual_dust_lamports"`
}

// TaggingParams tunes the edge tagger. Windows are in seq units.
type TaggingParams struct {
	DustAbsLamports     int64   `yaml:"dust_abs_lamports"`
	DustRelPct          float64 `yaml:"dust_rel_pct"`
	FeeClusterWindow    int     `yaml:"fee_cluster_window"`
	FeeClusterTolerance int64   `yaml:"fee_cluster_tolerance"`
	CheckedWindow       int     `yaml:"checked_window"`
	CheckedMinLamports  int64   `yaml:"checked_min_lamports"`
	TipMaxLamports      int64   `yaml:"tip_max_lamports"`
	FeeMaxLamports      int64   `yaml:"fee_max_lamports"`
	InflowClusterWindow int     `yaml:"inflow_cluster_window"`
	SinkMaxPct          float64 `yaml:"sink_max_pct"`
}

// StrategyParams tunes the matching strategies. Windows are in seq units.
type StrategyParams struct {
	HubWindow             int      `yaml:"hub_window"`
	LookbackWindow        int      `yaml:"lookback_window"`
	SymmetricWindow       int      `yaml:"symmetric_window"`
	NativeDustLamports    int64    `yaml:"native_dust_lamports"`
	AggregateNative       bool     `yaml:"aggregate_native"`
	TransferClusterWindow int      `yaml:"transfer_cluster_window"`
	FallbackWindow        int      `yaml:"fallback_window"`
	Stablecoins           []string `yaml:"stablecoins"`
}

// PipelineParams tunes the strategy driver and fee attacher.
type PipelineParams struct {
	MaxPasses int `yaml:"max_passes"`
	FeeWindow int `yaml:"fee_window"`
}

// PricingParams tunes USD valuation of trade actions.
type PricingParams struct {
	Symbol string `yaml:"symbol"`
	// Candles opened up to this far before the block time are considered.
	LookbackMs int64 `yaml:"lookback_ms"`
}

// DefaultParams returns the calibrated defaults.
func DefaultParams() Params {
	return Params{
		Graph: GraphParams{
			ResidualDustLamports: 500,
		},
		Tagging: TaggingParams{
			DustAbsLamports:     100_000,
			DustRelPct:          0.005,
			FeeClusterWindow:    30,
			FeeClusterTolerance: 10,
			CheckedWindow:       60,
			CheckedMinLamports:  300_000,
			TipMaxLamports:      2_000_000,
			FeeMaxLamports:      10_000_000,
			InflowClusterWindow: 120,
			SinkMaxPct:          0.02,
		},
		Strategy: StrategyParams{
			HubWindow:             40,
			LookbackWindow:        60,
			SymmetricWindow:       30,
			NativeDustLamports:    100_000,
			AggregateNative:       true,
			TransferClusterWindow: 40,
			FallbackWindow:        120,
			Stablecoins: []string{
				"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", // USDC
				"Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB", // USDT
			},
		},
		Pipeline: PipelineParams{
			MaxPasses: 6,
			FeeWindow: 200,
		},
		Pricing: PricingParams{
			Symbol:     "SOLUSD",
			LookbackMs: 3_600_000,
		},
	}
}

// LoadParams reads a YAML file on top of the defaults. Keys missing from the
// file keep their default value. An empty path returns the defaults.
func LoadParams(path string) (Params, error) {
	p := DefaultParams()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Params{}, fmt.Errorf("read params: %w", err)
	}

	if err := yaml.Unmarshal(data, &p); err != nil {
		return Params{}, fmt.Errorf("parse params %s: %w", path, err)
	}

	if err := p.Validate(); err != nil {
		return Params{}, fmt.Errorf("invalid params %s: %w", path, err)
	}

	return p, nil
}

// Validate rejects non-positive windows and out-of-range percentages.
func (p Params) Validate() error {
	var errs []error

	positive := map[string]int{
		"tagging.fee_cluster_window":       p.Tagging.FeeClusterWindow,
		"tagging.checked_window":           p.Tagging.CheckedWindow,
		"tagging.inflow_cluster_window":    p.Tagging.InflowClusterWindow,
		"strategy.hub_window":              p.Strategy.HubWindow,
		"strategy.lookback_window":         p.Strategy.LookbackWindow,
		"strategy.symmetric_window":        p.Strategy.SymmetricWindow,
		"strategy.transfer_cluster_window": p.Strategy.TransferClusterWindow,
		"strategy.fallback_window":         p.Strategy.FallbackWindow,
		"pipeline.max_passes":              p.Pipeline.MaxPasses,
		"pipeline.fee_window":              p.Pipeline.FeeWindow,
		"pricing.lookback_ms":              int(p.Pricing.LookbackMs),
	}
	for name, v := range positive {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", name, v))
		}
	}

	if p.Tagging.DustRelPct < 0 || p.Tagging.DustRelPct >= 1 {
		errs = append(errs, fmt.Errorf("tagging.dust_rel_pct must be in [0,1), got %g", p.Tagging.DustRelPct))
	}
	if p.Tagging.SinkMaxPct < 0 || p.Tagging.SinkMaxPct >= 1 {
		errs = append(errs, fmt.Errorf("tagging.sink_max_pct must be in [0,1), got %g", p.Tagging.SinkMaxPct))
	}
	if p.Tagging.TipMaxLamports > p.Tagging.FeeMaxLamports {
		errs = append(errs, fmt.Errorf("tagging.tip_max_lamports %d exceeds fee_max_lamports %d",
			p.Tagging.TipMaxLamports, p.Tagging.FeeMaxLamports))
	}
	if p.Pricing.Symbol == "" {
		errs = append(errs, fmt.Errorf("pricing.symbol must be set"))
	}
	if p.Graph.ResidualDustLamports < 0 {
		errs = append(errs, fmt.Errorf("graph.residual_dust_lamports must not be negative"))
	}

	return errors.Join(errs...)
}

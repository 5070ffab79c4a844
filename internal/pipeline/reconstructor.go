package pipeline

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"solana-trade-recon/internal/config"
	"solana-trade-recon/internal/domain"
	"solana-trade-recon/internal/graph"
	"solana-trade-recon/internal/observability"
	"solana-trade-recon/internal/solana"
	"solana-trade-recon/internal/strategy"
	"solana-trade-recon/internal/tagging"
)

// Analysis holds every intermediate product of one reconstruction.
type Analysis struct {
	Signature string
	Wallets   []string
	Graph     *graph.Graph
	Users     domain.UserAccounts
	Tags      tagging.Tags
	Legs      []domain.SwapLeg
	Passes    int
	Capped    bool
}

// Reconstructor turns one transaction into swap legs for a set of wallets.
// It holds no per-transaction state and is safe for concurrent use.
type Reconstructor struct {
	params  config.Params
	builder *graph.Builder
	driver  *Driver
	logger  *zap.Logger
	clock   func() time.Time
}

// NewReconstructor creates a reconstructor with the default strategy set.
func NewReconstructor(params config.Params, logger *zap.Logger) *Reconstructor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconstructor{
		params:  params,
		builder: graph.NewBuilder(params.Graph, logger),
		driver:  NewDriver(strategy.Default(params.Strategy), params.Pipeline.MaxPasses, logger),
		logger:  logger.Named("reconstructor"),
		clock:   time.Now,
	}
}

// WithStrategies replaces the strategy set, in priority order.
func (r *Reconstructor) WithStrategies(strategies []strategy.Strategy) *Reconstructor {
	r.driver = NewDriver(strategies, r.params.Pipeline.MaxPasses, r.logger)
	return r
}

// WithVisitor registers an additional instruction visitor.
func (r *Reconstructor) WithVisitor(v graph.Visitor) *Reconstructor {
	r.builder.Register(v)
	return r
}

// WithClock sets the clock used for timing metrics.
func (r *Reconstructor) WithClock(clock func() time.Time) *Reconstructor {
	r.clock = clock
	return r
}

// Reconstruct returns the legs of tx attributed to wallets.
func (r *Reconstructor) Reconstruct(tx *solana.Transaction, wallets []string) ([]domain.SwapLeg, error) {
	a, err := r.Analyze(tx, wallets)
	if err != nil {
		return nil, err
	}
	return a.Legs, nil
}

// Analyze runs the full reconstruction and keeps the intermediate products.
func (r *Reconstructor) Analyze(tx *solana.Transaction, wallets []string) (*Analysis, error) {
	start := r.clock()
	a, status, err := r.analyze(tx, wallets)
	observability.RecordTransaction(status, r.clock().Sub(start).Seconds())
	return a, err
}

func (r *Reconstructor) analyze(tx *solana.Transaction, wallets []string) (*Analysis, string, error) {
	if tx == nil {
		return nil, "invalid", ErrNilTransaction
	}
	if tx.Failed() {
		return nil, "failed", fmt.Errorf("%w: %s", ErrTransactionFailed, tx.Signature)
	}
	if len(wallets) == 0 {
		return nil, "invalid", ErrNoWallets
	}

	g := r.builder.Build(tx, wallets)
	ua := domain.NewUserAccounts(wallets, g.Accounts)
	tags := tagging.Tag(g.Edges, wallets, ua, r.params.Tagging)

	res, err := r.driver.Run(g.Edges, wallets, ua, tags)
	if err != nil {
		return nil, "invalid", err
	}

	AttachFees(tx, res.Legs, g.Edges, tags, ua, r.params.Pipeline.FeeWindow)

	r.logger.Debug("transaction reconstructed",
		zap.String("signature", tx.Signature),
		zap.Strings("wallets", wallets),
		zap.Int("edges", len(g.Edges)),
		zap.Int("fees", tags.Count(domain.TagFee)),
		zap.Int("tips", tags.Count(domain.TagTip)),
		zap.Int("legs", len(res.Legs)),
		zap.Int("rejected", res.Rejected),
		zap.Int("passes", res.Passes))

	status := "ok"
	if len(res.Legs) == 0 {
		status = "empty"
	}

	return &Analysis{
		Signature: tx.Signature,
		Wallets:   wallets,
		Graph:     g,
		Users:     ua,
		Tags:      tags,
		Legs:      res.Legs,
		Passes:    res.Passes,
		Capped:    res.Capped,
	}, status, nil
}

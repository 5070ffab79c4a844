// Package graph turns a parsed transaction into a flat, ordered list of value
// movements (edges) plus an index of the token accounts it touches.
package graph

import (
	"go.uber.org/zap"

	"solana-trade-recon/internal/config"
	"solana-trade-recon/internal/domain"
	"solana-trade-recon/internal/observability"
	"solana-trade-recon/internal/solana"
)

// Graph is the movement graph of one transaction.
type Graph struct {
	Edges    []domain.Edge // sorted by Seq, Seq == position
	Accounts domain.AccountIndex
}

// Visitor handles the instructions of one program family.
type Visitor interface {
	// Supports reports whether the visitor understands ix.
	Supports(ix solana.Instruction) bool
	// Visit emits the edges and account facts of ix.
	Visit(ix solana.Instruction, em *Emitter)
}

// Builder dispatches instructions to the first visitor that supports them.
type Builder struct {
	visitors []Visitor
	fallback Visitor
	params   config.GraphParams
	logger   *zap.Logger
}

// NewBuilder creates a builder with the token, associated-account and
// system visitors registered.
func NewBuilder(params config.GraphParams, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("graph")

	b := &Builder{
		params:   params,
		logger:   logger,
		fallback: fallbackVisitor{logger: logger},
	}

	b.Register(tokenVisitor{logger: logger})
	b.Register(associatedAccountVisitor{})
	b.Register(systemVisitor{})

	return b
}

// Register appends a visitor. Earlier registrations win.
func (b *Builder) Register(v Visitor) {
	b.visitors = append(b.visitors, v)
}

// Build converts tx into its movement graph. Residual native balance changes
// of wallets not explained by any instruction are appended as synthetic edges.
// Missing transaction parts yield an empty graph, never an error.
func (b *Builder) Build(tx *solana.Transaction, wallets []string) *Graph {
	em := &Emitter{accounts: domain.AccountIndex{}}
	if tx == nil {
		return &Graph{Accounts: em.accounts}
	}

	seedAccounts(tx, em.accounts)

	tx.InstructionGroups(func(ix solana.Instruction, outer, inner int) {
		em.outer, em.inner, em.programID = outer, inner, ix.ProgramID
		b.dispatch(ix, em)
	})

	explicit := len(em.edges)
	b.reconcile(tx, wallets, em)

	observability.RecordEdges(len(em.edges), len(em.edges)-explicit)
	b.logger.Debug("graph built",
		zap.String("signature", tx.Signature),
		zap.Int("edges", len(em.edges)),
		zap.Int("synthetic", len(em.edges)-explicit),
		zap.Int("accounts", len(em.accounts)))

	return &Graph{Edges: em.edges, Accounts: em.accounts}
}

func (b *Builder) dispatch(ix solana.Instruction, em *Emitter) {
	for _, v := range b.visitors {
		if v.Supports(ix) {
			v.Visit(ix, em)
			return
		}
	}
	b.fallback.Visit(ix, em)
}

// seedAccounts fills the index from pre and post token balances.
func seedAccounts(tx *solana.Transaction, idx domain.AccountIndex) {
	if tx.Meta == nil {
		return
	}
	for _, balances := range [][]solana.TokenBalance{tx.Meta.PreTokenBalances, tx.Meta.PostTokenBalances} {
		for _, tb := range balances {
			idx.Merge(tx.AccountKey(tb.AccountIndex), domain.AccountInfo{
				Mint:     tb.Mint,
				Decimals: domain.Uint8Ptr(tb.UITokenAmount.Decimals),
				Owner:    tb.Owner,
			})
		}
	}
}

// Emitter collects edges in traversal order and exposes the account index
// to visitors.
type Emitter struct {
	accounts  domain.AccountIndex
	edges     []domain.Edge
	outer     int
	inner     int
	programID string
}

// Emit appends e, assigning its seq and instruction position.
func (em *Emitter) Emit(e domain.Edge) {
	e.Seq = len(em.edges)
	e.Ix = em.outer
	e.InnerIx = em.inner
	if em.inner >= 0 {
		e.Depth = 1
	}
	if e.ProgramID == "" {
		e.ProgramID = em.programID
	}
	em.edges = append(em.edges, e)
}

// Accounts returns the account index being built.
func (em *Emitter) Accounts() domain.AccountIndex {
	return em.accounts
}

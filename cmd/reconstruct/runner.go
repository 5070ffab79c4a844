package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"

	"solana-trade-recon/internal/actions"
	"solana-trade-recon/internal/domain"
	"solana-trade-recon/internal/pipeline"
	"solana-trade-recon/internal/solana"
	"solana-trade-recon/internal/storage"
	"solana-trade-recon/internal/wallet"
	"solana-trade-recon/internal/worker"
)

// runner reconstructs batches of transactions and persists the resulting actions.
type runner struct {
	rpc      solana.RPCClient
	pool     *worker.Pool
	enricher *actions.Enricher
	actions  storage.ActionStore
	progress storage.ProgressStore
	logger   *zap.Logger

	// wallets overrides inference when set.
	wallets []string
	// multiWallet attributes legs to every plausible signer instead of one.
	multiWallet bool

	outMu sync.Mutex
	out   io.Writer
}

func newRunner(rpc solana.RPCClient, recon *pipeline.Reconstructor, enricher *actions.Enricher,
	actionStore storage.ActionStore, progress storage.ProgressStore, workers int, logger *zap.Logger) *runner {
	return &runner{
		rpc:      rpc,
		pool:     worker.NewPool(workers, recon.Reconstruct, logger),
		enricher: enricher,
		actions:  actionStore,
		progress: progress,
		logger:   logger,
		out:      os.Stdout,
	}
}

// walletsFor returns the wallets legs of tx are attributed to.
func (r *runner) walletsFor(tx *solana.Transaction, subject []string) []string {
	switch {
	case len(r.wallets) > 0:
		return r.wallets
	case len(subject) > 0:
		return subject
	case r.multiWallet:
		return wallet.InferAll(tx)
	default:
		return wallet.Infer(tx)
	}
}

// process reconstructs txs, stores and prints their actions.
// subject names the wallets being scanned, if any.
// Returns the number of actions produced. Per-transaction failures are
// logged; only storage errors abort.
func (r *runner) process(ctx context.Context, txs []*solana.Transaction, subject []string) (int, error) {
	jobs := make([]worker.Job, 0, len(txs))
	for _, tx := range txs {
		if tx == nil {
			continue
		}
		ws := r.walletsFor(tx, subject)
		if len(ws) == 0 {
			r.logger.Debug("no user wallet", zap.String("signature", tx.Signature))
			continue
		}
		jobs = append(jobs, worker.Job{Tx: tx, Wallets: ws})
	}
	if len(jobs) == 0 {
		return 0, nil
	}

	results := r.pool.Run(ctx, jobs)

	total := 0
	for i, res := range results {
		if res.Err != nil {
			r.logJobError(res)
			continue
		}
		if len(res.Legs) == 0 {
			continue
		}

		acts := r.enricher.Enrich(ctx, jobs[i].Tx, res.Legs)
		if err := r.store(ctx, acts); err != nil {
			return total, err
		}
		if err := r.emit(acts); err != nil {
			return total, err
		}
		total += len(acts)
	}

	if err := results.Err(); err != nil {
		r.logger.Debug("batch finished with failures", zap.Error(err))
	}
	return total, nil
}

func (r *runner) logJobError(res worker.Result) {
	switch {
	case errors.Is(res.Err, pipeline.ErrTransactionFailed):
		r.logger.Debug("skipping failed transaction", zap.String("signature", res.Signature))
	case errors.Is(res.Err, context.Canceled), errors.Is(res.Err, context.DeadlineExceeded):
		r.logger.Debug("job not run", zap.String("signature", res.Signature), zap.Error(res.Err))
	default:
		r.logger.Warn("reconstruction failed",
			zap.String("signature", res.Signature),
			zap.Strings("wallets", res.Wallets),
			zap.Error(res.Err))
	}
}

// store persists acts. Re-processing a transaction is not an error.
func (r *runner) store(ctx context.Context, acts []*domain.TradeAction) error {
	if r.actions == nil || len(acts) == 0 {
		return nil
	}
	err := r.actions.InsertBulk(ctx, acts)
	if errors.Is(err, storage.ErrDuplicateKey) {
		r.logger.Debug("actions already stored", zap.String("signature", acts[0].Signature))
		return nil
	}
	if err != nil {
		return fmt.Errorf("store actions: %w", err)
	}
	return nil
}

func (r *runner) emit(acts []*domain.TradeAction) error {
	r.outMu.Lock()
	defer r.outMu.Unlock()

	enc := json.NewEncoder(r.out)
	for _, a := range acts {
		if err := enc.Encode(a); err != nil {
			return fmt.Errorf("write action: %w", err)
		}
	}
	return nil
}

// fetch retrieves transactions by signature. Unknown signatures are logged
// and skipped.
func (r *runner) fetch(ctx context.Context, signatures []string) ([]*solana.Transaction, error) {
	txs := make([]*solana.Transaction, 0, len(signatures))
	for _, sig := range signatures {
		if err := ctx.Err(); err != nil {
			return txs, err
		}
		tx, err := r.rpc.GetTransaction(ctx, sig)
		if err != nil {
			return txs, fmt.Errorf("get transaction %s: %w", sig, err)
		}
		if tx == nil {
			r.logger.Warn("transaction not found", zap.String("signature", sig))
			continue
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// maxSignaturePage is the largest page getSignaturesForAddress returns.
const maxSignaturePage = 1000

// scanWallet processes the history of w newer than its stored cursor,
// oldest first, and advances the cursor. With a cursor, pages of limit
// signatures are read backwards until the cursor is reached. Without one,
// only the newest page is read.
func (r *runner) scanWallet(ctx context.Context, w string, limit int) (int, error) {
	if limit <= 0 || limit > maxSignaturePage {
		limit = maxSignaturePage
	}

	var until string
	if r.progress != nil {
		last, err := r.progress.GetLastProcessed(ctx, w)
		switch {
		case err == nil:
			until = last.Signature
		case !errors.Is(err, storage.ErrNotFound):
			return 0, fmt.Errorf("load progress %s: %w", w, err)
		}
	}

	sigs, err := r.listSignatures(ctx, w, until, limit)
	if err != nil {
		return 0, err
	}
	if len(sigs) == 0 {
		return 0, nil
	}

	// Newest first from the node; process oldest first.
	ordered := make([]string, 0, len(sigs))
	for i := len(sigs) - 1; i >= 0; i-- {
		if sigs[i].Err != nil {
			continue
		}
		ordered = append(ordered, sigs[i].Signature)
	}

	txs, err := r.fetch(ctx, ordered)
	if err != nil {
		return 0, err
	}

	n, err := r.process(ctx, txs, []string{w})
	if err != nil {
		return n, err
	}

	if r.progress != nil {
		newest := &storage.WalletProgress{Slot: sigs[0].Slot, Signature: sigs[0].Signature}
		if err := r.progress.SetLastProcessed(ctx, w, newest); err != nil {
			return n, fmt.Errorf("save progress %s: %w", w, err)
		}
	}
	return n, nil
}

// listSignatures returns signatures of w newer than until, newest first.
// An empty until reads a single page.
func (r *runner) listSignatures(ctx context.Context, w, until string, limit int) ([]solana.SignatureInfo, error) {
	var sigs []solana.SignatureInfo
	opts := &solana.SignaturesOpts{Until: until, Limit: limit}
	for {
		page, err := r.rpc.GetSignaturesForAddress(ctx, w, opts)
		if err != nil {
			return nil, fmt.Errorf("list signatures %s: %w", w, err)
		}
		sigs = append(sigs, page...)

		if until == "" || len(page) < limit {
			return sigs, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		opts = &solana.SignaturesOpts{Until: until, Before: page[len(page)-1].Signature, Limit: limit}
		r.logger.Debug("paging signatures", zap.String("wallet", w), zap.Int("fetched", len(sigs)))
	}
}

// watch streams notifications for wallets and processes each transaction
// as it lands. Returns when ctx is done or a subscription closes.
func (r *runner) watch(ctx context.Context, ws solana.WSClient, wallets []string) error {
	merged := make(chan solana.LogNotification, 256)
	var wg sync.WaitGroup

	for _, w := range wallets {
		ch, err := ws.SubscribeWallet(ctx, w)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", w, err)
		}
		wg.Add(1)
		go func(ch <-chan solana.LogNotification) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case n, ok := <-ch:
					if !ok {
						return
					}
					select {
					case merged <- n:
					case <-ctx.Done():
						return
					}
				}
			}
		}(ch)
	}

	go func() {
		wg.Wait()
		close(merged)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n, ok := <-merged:
			if !ok {
				return errors.New("all subscriptions closed")
			}
			if n.Err != nil {
				continue
			}
			if err := r.handleNotification(ctx, n); err != nil {
				return err
			}
		}
	}
}

func (r *runner) handleNotification(ctx context.Context, n solana.LogNotification) error {
	txs, err := r.fetch(ctx, []string{n.Signature})
	if err != nil {
		r.logger.Warn("fetch notified transaction", zap.String("signature", n.Signature), zap.Error(err))
		return nil
	}

	if _, err := r.process(ctx, txs, []string{n.Wallet}); err != nil {
		return err
	}

	if r.progress != nil {
		p := &storage.WalletProgress{Slot: n.Slot, Signature: n.Signature}
		if err := r.progress.SetLastProcessed(ctx, n.Wallet, p); err != nil {
			return fmt.Errorf("save progress %s: %w", n.Wallet, err)
		}
	}
	return nil
}

// readTransactions decodes a file holding one getTransaction result or a
// JSON array of them.
func readTransactions(path string) ([]*solana.Transaction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		raws = []json.RawMessage{data}
	}

	txs := make([]*solana.Transaction, 0, len(raws))
	for i, raw := range raws {
		tx, err := solana.DecodeTransaction("", raw)
		if err != nil {
			return nil, fmt.Errorf("%s entry %d: %w", path, i, err)
		}
		if tx != nil {
			txs = append(txs, tx)
		}
	}
	return txs, nil
}

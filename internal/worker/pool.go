// Package worker reconstructs many transactions in parallel with a fixed
// number of workers.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"solana-trade-recon/internal/domain"
	"solana-trade-recon/internal/observability"
	"solana-trade-recon/internal/solana"
)

// ErrJobPanicked marks a job whose processing panicked.
var ErrJobPanicked = errors.New("job panicked")

// Job is one transaction to reconstruct for a set of wallets.
type Job struct {
	Tx      *solana.Transaction
	Wallets []string
}

// Func processes one job. pipeline.Reconstructor.Reconstruct satisfies it.
type Func func(tx *solana.Transaction, wallets []string) ([]domain.SwapLeg, error)

// Result is the outcome of one job. Exactly one of Legs or Err is
// meaningful.
type Result struct {
	Index     int
	Signature string
	Wallets   []string
	Legs      []domain.SwapLeg
	Err       error
}

// Results holds job outcomes in job order.
type Results []Result

// Err returns all job failures combined, or nil.
func (rs Results) Err() error {
	var merr *multierror.Error
	for _, r := range rs {
		if r.Err != nil {
			merr = multierror.Append(merr, fmt.Errorf("job %d (%s): %w", r.Index, r.Signature, r.Err))
		}
	}
	return merr.ErrorOrNil()
}

// Legs returns the legs of all successful jobs in job order.
func (rs Results) Legs() []domain.SwapLeg {
	var legs []domain.SwapLeg
	for _, r := range rs {
		legs = append(legs, r.Legs...)
	}
	return legs
}

// Pool runs jobs on a fixed number of workers.
type Pool struct {
	size   int
	fn     Func
	logger *zap.Logger
}

// NewPool creates a pool of size workers running fn.
func NewPool(size int, fn Func, logger *zap.Logger) *Pool {
	if size <= 0 {
		size = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{size: size, fn: fn, logger: logger.Named("worker")}
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}

// Run processes jobs and returns one result per job, in job order. Jobs are
// dispatched first in, first out. A failing or panicking job only affects
// its own result; a worker that panicked is replaced. Jobs not yet started
// when ctx is done fail with the context error.
func (p *Pool) Run(ctx context.Context, jobs []Job) Results {
	results := make(Results, len(jobs))
	started := make([]bool, len(jobs))
	for i, j := range jobs {
		results[i] = Result{Index: i, Wallets: j.Wallets}
		if j.Tx != nil {
			results[i].Signature = j.Tx.Signature
		}
	}

	queue := make(chan int, len(jobs))
	for i := range jobs {
		queue <- i
	}
	close(queue)

	var wg sync.WaitGroup
	var spawn func()
	spawn = func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			observability.DefaultMetrics.WorkersActive.Inc()
			defer observability.DefaultMetrics.WorkersActive.Dec()

			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				idx, ok := <-queue
				if !ok {
					return
				}
				started[idx] = true

				if !p.process(jobs[idx], &results[idx]) {
					// Retire this worker, keep the pool at full size.
					spawn()
					return
				}
			}
		}()
	}

	for i := 0; i < p.size && i < len(jobs); i++ {
		spawn()
	}
	wg.Wait()

	for i := range results {
		if !started[i] {
			results[i].Err = ctx.Err()
			observability.RecordJob(results[i].Err)
		}
	}
	return results
}

// process runs one job and reports whether the worker is still healthy.
func (p *Pool) process(job Job, res *Result) (healthy bool) {
	defer func() {
		if r := recover(); r != nil {
			res.Legs = nil
			res.Err = fmt.Errorf("%w: %v", ErrJobPanicked, r)
			p.logger.Error("job panicked",
				zap.String("signature", res.Signature),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
			observability.RecordJob(res.Err)
			healthy = false
		}
	}()

	res.Legs, res.Err = p.fn(job.Tx, job.Wallets)
	if res.Err != nil {
		p.logger.Debug("job failed", zap.String("signature", res.Signature), zap.Error(res.Err))
	}
	observability.RecordJob(res.Err)
	return true
}

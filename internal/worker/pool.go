// Package worker runs pipeline jobs in the background and watches for documents that stopped
// making progress.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/banky/internal/domain"
	"github.com/iho/banky/internal/usecase"
)

var (
	ErrQueueFull  = errors.New("worker queue is full")
	ErrPoolClosed = errors.New("worker pool is closed")
)

const runLockPrefix = "run:"

// Runner executes the pipeline for one document.
type Runner interface {
	Run(ctx context.Context, documentID string) (*domain.Document, error)
}

// QueueMetrics receives the number of queued documents.
type QueueMetrics interface {
	SetQueueDepth(n int)
}

// PoolConfig sizes the pool.
type PoolConfig struct {
	Workers   int
	QueueSize int
	// LockTTL bounds how long a crashed worker can hold a document's run lock.
	LockTTL time.Duration
}

// Pool is a bounded in-process dispatcher. Dispatch never blocks: when the queue is full the
// document stays INGESTED and the caller gets ErrQueueFull.
type Pool struct {
	runner  Runner
	lock    usecase.RunLock
	metrics QueueMetrics
	cfg     PoolConfig
	logger  zerolog.Logger

	jobs   chan string
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	runCtx    context.Context
	cancelRun context.CancelFunc
}

// NewPool creates a pool. lock and metrics may be nil.
func NewPool(runner Runner, lock usecase.RunLock, metrics QueueMetrics, cfg PoolConfig, logger zerolog.Logger) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 0 {
		cfg.QueueSize = 0
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 15 * time.Minute
	}
	return &Pool{
		runner:  runner,
		lock:    lock,
		metrics: metrics,
		cfg:     cfg,
		logger:  logger.With().Str("component", "worker_pool").Logger(),
		jobs:    make(chan string, cfg.QueueSize),
	}
}

// Start launches the workers. Runs use a context derived from ctx, so cancelling ctx aborts
// in-flight pipelines.
func (p *Pool) Start(ctx context.Context) {
	p.runCtx, p.cancelRun = context.WithCancel(ctx)
	for i := 0; i < p.cfg.Workers; i++ {
		p.wg.Add(1)
		go p.work(i)
	}
	p.logger.Info().Int("workers", p.cfg.Workers).Int("queue_size", p.cfg.QueueSize).Msg("worker pool started")
}

// Dispatch implements usecase.Dispatcher.
func (p *Pool) Dispatch(ctx context.Context, documentID string) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case p.jobs <- documentID:
		p.reportDepth()
		return nil
	default:
		return fmt.Errorf("dispatch %s: %w", documentID, ErrQueueFull)
	}
}

// Stop refuses new work and waits for queued and running documents. When ctx expires first,
// running pipelines are cancelled and Stop returns ctx's error.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		p.logger.Info().Msg("worker pool stopped")
		return nil
	case <-ctx.Done():
		p.cancel()
		<-done
		return ctx.Err()
	}
}

func (p *Pool) cancel() {
	if p.cancelRun != nil {
		p.cancelRun()
	}
}

func (p *Pool) work(n int) {
	defer p.wg.Done()

	log := p.logger.With().Int("worker", n).Logger()
	for id := range p.jobs {
		p.reportDepth()
		p.runOne(id, log)
	}
}

func (p *Pool) runOne(documentID string, log zerolog.Logger) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Str("document_id", documentID).Interface("panic", rec).Msg("pipeline run panicked")
		}
	}()

	ctx := p.runCtx
	if p.lock != nil {
		key := runLockPrefix + documentID
		acquired, err := p.lock.Acquire(ctx, key, p.cfg.LockTTL)
		if err != nil {
			log.Error().Err(err).Str("document_id", documentID).Msg("run lock unavailable, document left ingested")
			return
		}
		if !acquired {
			log.Info().Str("document_id", documentID).Msg("document already running elsewhere")
			return
		}
		defer func() {
			if err := p.lock.Release(context.WithoutCancel(ctx), key); err != nil {
				log.Warn().Err(err).Str("document_id", documentID).Msg("release run lock")
			}
		}()
	}

	doc, err := p.runner.Run(ctx, documentID)
	switch {
	case errors.Is(err, domain.ErrDocumentNotRunnable):
		event := log.Debug().Str("document_id", documentID)
		if doc != nil {
			event = event.Str("status", string(doc.Status))
		}
		event.Msg("document not runnable, skipped")
	case err != nil:
		log.Error().Err(err).Str("document_id", documentID).Msg("pipeline run failed")
	}
}

func (p *Pool) reportDepth() {
	if p.metrics != nil {
		p.metrics.SetQueueDepth(len(p.jobs))
	}
}

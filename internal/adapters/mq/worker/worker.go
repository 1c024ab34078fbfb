// Package worker evaluates candidate baseline windows on a pool of goroutines.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/excess/internal/adapters/mq/queue"
	"github.com/okian/excess/internal/domain/baseline"
	"github.com/okian/excess/internal/domain/model"
	"github.com/okian/excess/internal/domain/selection"
	"github.com/okian/excess/pkg/logger"
	"github.com/okian/excess/pkg/metrics"
)

const (
	metricsUpdateInterval = 5 * time.Second
	workerShutdownTimeout = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Queue is where workers receive jobs from.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// JobQueue is the queue a Pool submits to and drains.
type JobQueue interface {
	Queue
	Submit(ctx context.Context, j queue.Job) error
	Close() error
}

// Worker processes jobs until its queue closes.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker once its current job finishes.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker fits and scores one window per job.
type InMemoryWorker struct {
	queue     Queue
	name      string
	processed *atomic.Int64

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker reading from q.
func NewInMemoryWorker(q Queue, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		name:      "worker",
		processed: new(atomic.Int64),
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, j)
		}
	}
}

// Shutdown signals the worker and waits for it to exit.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, j queue.Job) {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	ev := selection.Evaluate(j.Points, j.Period, j.Index, j.Window)
	metrics.RecordCandidateEvaluated()
	metrics.RecordBaselineFit(Outcome(ev.Err))
	w.processed.Add(1)
	if ev.Err != nil {
		w.logger.Debug(ctx, "candidate has no model",
			logger.String("window", j.Window.Label()),
			logger.Error(ev.Err),
		)
	}

	select {
	case j.Reply <- ev:
	case <-ctx.Done():
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "reply_cancelled")
	}
}

// Outcome labels a fit error for metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, baseline.ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, baseline.ErrDegenerate):
		return "degenerate"
	default:
		return "error"
	}
}

// Pool runs workers over a shared job queue and implements selection.Evaluator.
type Pool struct {
	workers []*InMemoryWorker
	queue   JobQueue

	processed         atomic.Int64
	lastProcessedTime time.Time
	started           atomic.Bool

	shutdown     chan struct{}
	shutdownOnce sync.Once

	logger logger.Logger
}

var _ selection.Evaluator = (*Pool)(nil)

// NewPool creates a pool of workerCount workers. A non-positive count uses runtime.NumCPU().
func NewPool(workerCount int, q JobQueue, opts ...PoolOption) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	p := &Pool{
		workers:           make([]*InMemoryWorker, workerCount),
		queue:             q,
		shutdown:          make(chan struct{}),
		lastProcessedTime: time.Now(),
		logger:            logger.Get().Named("worker-pool"),
	}
	for _, opt := range opts {
		opt(p)
	}

	for i := range p.workers {
		w := NewInMemoryWorker(q, WithName("worker-"+strconv.Itoa(i)), WithLogger(p.logger))
		w.processed = &p.processed
		p.workers[i] = w
	}

	metrics.UpdateWorkerActiveCount(workerCount)
	metrics.UpdateWorkerEvaluationsPerSecond(0)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	if !p.started.CompareAndSwap(false, true) {
		return
	}
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	go p.startMetricsUpdater(ctx)
}

func (p *Pool) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case now := <-ticker.C:
			elapsed := now.Sub(p.lastProcessedTime).Seconds()
			if elapsed > 0 {
				metrics.UpdateWorkerEvaluationsPerSecond(float64(p.processed.Swap(0)) / elapsed)
			}
			p.lastProcessedTime = now
		}
	}
}

// EvaluateAll submits one job per window and waits for every reply. Results
// are placed at their window's index, so the outcome does not depend on
// which worker finished first.
func (p *Pool) EvaluateAll(ctx context.Context, points []model.Point, period selection.Period, windows []model.Window) ([]selection.Evaluation, error) {
	if !p.started.Load() {
		return nil, ErrNotStarted
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reply := make(chan selection.Evaluation, len(windows))
	for i, w := range windows {
		j := queue.Job{Index: i, Window: w, Points: points, Period: period, Reply: reply}
		if err := p.queue.Submit(ctx, j); err != nil {
			return nil, fmt.Errorf("submit %s: %w", w.Label(), err)
		}
	}

	out := make([]selection.Evaluation, len(windows))
	for range windows {
		select {
		case ev := <-reply:
			out[ev.Index] = ev
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return out, nil
}

// Stop signals every worker and waits briefly for each.
func (p *Pool) Stop() {
	p.shutdownOnce.Do(func() { close(p.shutdown) })
	for _, w := range p.workers {
		w.shutdownOnce.Do(func() { close(w.shutdown) })
		if !p.started.Load() {
			continue
		}
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
}

// Shutdown closes the queue and waits for workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if err := p.queue.Close(); err != nil {
		p.logger.Error(ctx, "error closing queue", logger.Error(err))
	}
	p.shutdownOnce.Do(func() { close(p.shutdown) })
	if !p.started.Load() {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("%w: %w", ErrStopped, shutdownCtx.Err())
		}
	}
	return nil
}

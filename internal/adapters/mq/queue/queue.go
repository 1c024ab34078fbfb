// Package queue carries candidate-window evaluation jobs to the worker pool.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/okian/excess/internal/domain/model"
	"github.com/okian/excess/internal/domain/selection"
	"github.com/okian/excess/pkg/metrics"
)

const defaultQueueCapacity = 1024

// Job asks a worker to fit one window and score it over Period.
// Points is shared between jobs and must not be modified.
type Job struct {
	Index  int
	Window model.Window
	Points []model.Point
	Period selection.Period
	Reply  chan<- selection.Evaluation
}

// Queue provides enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a job without blocking. It returns false when the queue is full or closed.
	Enqueue(ctx context.Context, j Job) bool

	// Submit adds a job, waiting for room until ctx is done.
	Submit(ctx context.Context, j Job) error

	// Dequeue returns a channel of jobs that is closed when the queue closes.
	Dequeue(ctx context.Context) <-chan Job

	// Len returns the number of queued jobs.
	Len(ctx context.Context) int

	// Close stops accepting jobs. Queued jobs are still delivered.
	Close() error

	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	jobs      chan Job
	capacity  int
	mu        sync.RWMutex
	closed    bool
	// done is closed before the write lock is taken so blocked submitters let go of the read lock.
	done      chan struct{}
	closeOnce sync.Once
}

// NewInMemoryQueue creates a bounded in-memory queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity, done: make(chan struct{})}
	for _, opt := range opts {
		opt(q)
	}
	q.jobs = make(chan Job, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0)
	return q
}

// Enqueue adds a job if there is room.
func (q *InMemoryQueue) Enqueue(ctx context.Context, j Job) bool {
	start := time.Now()
	defer func() {
		metrics.RecordQueueProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.reject("closed")
		return false
	}

	select {
	case q.jobs <- j:
		q.accepted()
		return true
	case <-ctx.Done():
		q.reject("context_cancelled")
		return false
	default:
		q.reject("queue_full")
		return false
	}
}

// Submit adds a job, blocking while the queue is full.
func (q *InMemoryQueue) Submit(ctx context.Context, j Job) error {
	start := time.Now()
	defer func() {
		metrics.RecordQueueProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.reject("closed")
		return ErrClosed
	}

	select {
	case q.jobs <- j:
		q.accepted()
		return nil
	case <-q.done:
		q.reject("closed")
		return ErrClosed
	case <-ctx.Done():
		q.reject("context_cancelled")
		return ctx.Err()
	}
}

func (q *InMemoryQueue) accepted() {
	metrics.RecordQueueEnqueue()
	q.observe()
}

func (q *InMemoryQueue) reject(reason string) {
	metrics.RecordQueueEnqueueError()
	metrics.RecordErrorByComponent("queue", reason)
}

func (q *InMemoryQueue) observe() {
	size := len(q.jobs)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}

// Dequeue returns a channel that receives jobs as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Job {
	out := make(chan Job)
	go func() {
		defer close(out)
		for j := range q.jobs {
			select {
			case out <- j:
				metrics.RecordQueueDequeue()
				q.observe()
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued jobs.
func (q *InMemoryQueue) Len(_ context.Context) int {
	q.observe()
	return len(q.jobs)
}

// Close stops the queue. It is safe to call more than once.
func (q *InMemoryQueue) Close() error {
	q.closeOnce.Do(func() { close(q.done) })

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.jobs)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

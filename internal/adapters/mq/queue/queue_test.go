package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/excess/internal/domain/model"
)

func job(i int) Job {
	return Job{Index: i, Window: model.YearWindow(2001, 2004+i)}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if !q.Enqueue(ctx, job(1)) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	got := <-q.Dequeue(ctx)
	if got.Index != 1 || got.Window.Label() != "2001-2005" {
		t.Errorf("unexpected job %+v", got)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, job(0)) || !q.Enqueue(ctx, job(1)) {
		t.Fatal("expected enqueue to succeed")
	}
	if q.Enqueue(ctx, job(2)) {
		t.Error("expected enqueue to fail when full")
	}
	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_SubmitWaitsForRoom(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1))
	ctx := context.Background()

	if err := q.Submit(ctx, job(0)); err != nil {
		t.Fatalf("submit: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- q.Submit(ctx, job(1)) }()

	select {
	case <-done:
		t.Fatal("expected submit to block while full")
	case <-time.After(20 * time.Millisecond):
	}

	jobs := q.Dequeue(ctx)
	<-jobs
	if err := <-done; err != nil {
		t.Fatalf("submit after room: %v", err)
	}
	if got := <-jobs; got.Index != 1 {
		t.Errorf("expected job 1, got %d", got.Index)
	}
}

func TestInMemoryQueue_SubmitHonoursContext(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1))
	_ = q.Submit(context.Background(), job(0))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := q.Submit(ctx, job(1)); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestInMemoryQueue_CloseReleasesBlockedSubmit(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1))
	ctx := context.Background()
	if err := q.Submit(ctx, job(0)); err != nil {
		t.Fatalf("submit: %v", err)
	}

	submitted := make(chan error, 1)
	go func() { submitted <- q.Submit(ctx, job(1)) }()
	time.Sleep(20 * time.Millisecond)

	closed := make(chan error, 1)
	go func() { closed <- q.Close() }()

	select {
	case err := <-closed:
		if err != nil {
			t.Fatalf("close: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("close blocked behind a waiting submit")
	}
	select {
	case err := <-submitted:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("expected ErrClosed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("submit still blocked after close")
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed")
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(16))
	ctx := context.Background()
	const producers, perProducer = 8, 50

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				if err := q.Submit(ctx, job(p*perProducer+i)); err != nil {
					t.Errorf("submit: %v", err)
				}
			}
		}(p)
	}

	seen := make(map[int]bool)
	jobs := q.Dequeue(ctx)
	go func() {
		wg.Wait()
		_ = q.Close()
	}()
	for j := range jobs {
		seen[j.Index] = true
	}

	if len(seen) != producers*perProducer {
		t.Errorf("expected %d distinct jobs, got %d", producers*perProducer, len(seen))
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	if !q.Enqueue(ctx, job(0)) {
		t.Fatal("expected enqueue to succeed")
	}
	if q.IsClosed() {
		t.Error("expected queue to be open initially")
	}
	if err := q.Close(); err != nil {
		t.Errorf("expected close to succeed, got error: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed after Close()")
	}
	if q.Enqueue(ctx, job(1)) {
		t.Error("expected enqueue to fail after closing")
	}
	if err := q.Submit(ctx, job(1)); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	jobs := q.Dequeue(ctx)
	if got, ok := <-jobs; !ok || got.Index != 0 {
		t.Error("expected the queued job to be drained after close")
	}
	select {
	case _, ok := <-jobs:
		if ok {
			t.Error("expected dequeue channel to be closed")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("expected dequeue channel to be closed within timeout")
	}

	if err := q.Close(); err != nil {
		t.Errorf("expected second close to succeed, got error: %v", err)
	}
}

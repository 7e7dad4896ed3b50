package recalc

import (
	"context"
	"sync"

	"github.com/light-bringer/promo-engine/internal/app/promotion/contracts"
)

// HandlerFunc processes one job. Returning an error does not redeliver it.
type HandlerFunc func(ctx context.Context, job contracts.RecalcJob) error

// Queue carries recalculation jobs from the Store to the workers.
type Queue interface {
	// Enqueue must not block on a slow consumer.
	Enqueue(ctx context.Context, job contracts.RecalcJob) error

	// Consume delivers jobs to handle until ctx is cancelled or the queue
	// is closed. It may be called from several goroutines.
	Consume(ctx context.Context, handle HandlerFunc) error

	Close() error
}

// MemoryQueue is a bounded in-process queue. Jobs still buffered at shutdown
// are lost; the next full recalculation repairs their products.
type MemoryQueue struct {
	jobs      chan contracts.RecalcJob
	closeOnce sync.Once
	done      chan struct{}
}

// NewMemoryQueue creates a queue holding up to size jobs.
func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 1
	}
	return &MemoryQueue{
		jobs: make(chan contracts.RecalcJob, size),
		done: make(chan struct{}),
	}
}

// Enqueue adds a job or returns contracts.ErrQueueFull immediately.
func (q *MemoryQueue) Enqueue(_ context.Context, job contracts.RecalcJob) error {
	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}

	select {
	case q.jobs <- job:
		return nil
	default:
		return contracts.ErrQueueFull
	}
}

// Consume runs handle for each job until ctx is done or Close is called.
func (q *MemoryQueue) Consume(ctx context.Context, handle HandlerFunc) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-q.done:
			return nil
		case job := <-q.jobs:
			_ = handle(ctx, job)
		}
	}
}

// Len reports buffered jobs.
func (q *MemoryQueue) Len() int {
	return len(q.jobs)
}

// Close stops consumers and rejects further jobs.
func (q *MemoryQueue) Close() error {
	q.closeOnce.Do(func() { close(q.done) })
	return nil
}

// Package async feeds jobs to a processor from a bounded queue.
package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/material-list/internal/common"
)

// Job asks for one material list to be generated.
type Job struct {
	ID           uuid.UUID
	InputPath    string
	DocumentName string
	SubmittedAt  time.Time
}

// Processor runs a single job.
type Processor interface {
	Process(ctx context.Context, job Job) error
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, job Job) error

func (f ProcessorFunc) Process(ctx context.Context, job Job) error { return f(ctx, job) }

// JobQueue runs jobs one at a time, in submission order.
type JobQueue struct {
	proc    Processor
	logger  *slog.Logger
	timeout time.Duration
	onDone  func(Job, error)

	ch      chan Job
	done    chan struct{}
	wg      sync.WaitGroup
	senders sync.WaitGroup
	once    sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*JobQueue)

func WithQueueSize(n int) Option {
	return func(q *JobQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *JobQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// WithOnDone is called by the worker after every job.
func WithOnDone(fn func(Job, error)) Option {
	return func(q *JobQueue) { q.onDone = fn }
}

func NewJobQueue(proc Processor, logger *slog.Logger, opts ...Option) *JobQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &JobQueue{
		proc:    proc,
		logger:  logger,
		timeout: 10 * time.Minute,
		ch:      make(chan Job, 64),
		done:    make(chan struct{}),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *JobQueue) start() {
	q.once.Do(func() {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			q.logger.Info("worker started")

			for job := range q.ch {
				err := q.run(job)
				if err != nil {
					q.logger.Error("job failed", "job_id", job.ID, "input", job.InputPath, "error", err)
				} else {
					q.logger.Info("job finished", "job_id", job.ID, "input", job.InputPath,
						"waited_ms", time.Since(job.SubmittedAt).Milliseconds())
				}
				if q.onDone != nil {
					q.onDone(job, err)
				}
			}

			q.logger.Info("worker stopped")
		}()
	})
}

func (q *JobQueue) run(job Job) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = common.UnexpectedError("processor panicked", nil)
			q.logger.Error("processor panic", "job_id", job.ID, "panic", r)
		}
	}()
	return q.proc.Process(ctx, job)
}

// Enqueue blocks while the queue is full, until ctx is done. It fails with
// common.ErrQueueClosed once Shutdown has started, including while it waits
// for space.
func (q *JobQueue) Enqueue(ctx context.Context, job Job) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now().UTC()
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Warn("cannot enqueue: queue is shutting down", "input", job.InputPath)
		return common.ErrQueueClosed
	}
	// Shutdown waits for senders before it closes ch.
	q.senders.Add(1)
	q.mu.Unlock()
	defer q.senders.Done()

	select {
	case q.ch <- job:
		q.logger.Info("queued job", "job_id", job.ID, "input", job.InputPath, "pending", len(q.ch))
		return nil
	default:
	}
	q.logger.Warn("queue full, applying backpressure", "input", job.InputPath)
	select {
	case q.ch <- job:
		q.logger.Info("queued job", "job_id", job.ID, "input", job.InputPath, "pending", len(q.ch))
		return nil
	case <-q.done:
		return common.ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Accepting reports whether Enqueue still takes jobs.
func (q *JobQueue) Accepting() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return !q.closed
}

// Shutdown stops accepting jobs and waits for queued ones to finish, or
// for ctx to end.
func (q *JobQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.done)
	q.mu.Unlock()

	q.senders.Wait()
	close(q.ch)

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}

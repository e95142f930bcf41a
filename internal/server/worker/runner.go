// Package worker consumes background jobs: thumbnail derivation for
// uploaded images and the post-registration welcome side effect.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ubonisrael/alx-files-manager/internal/server/queue"
)

// PermanentError marks a job failure that must not be retried, such as
// a malformed payload or a dangling record reference.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return "permanent: " + e.Err.Error()
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// Permanent wraps err as a PermanentError.
func Permanent(err error) error {
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err is a permanent job failure.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// Handler processes one dequeued job payload. A nil return means
// success; a PermanentError means the job was unprocessable; any other
// error means the job failed after valid dequeue. In all three cases
// the job is acked: once dequeued it runs to completion or terminal
// failure.
type Handler func(ctx context.Context, payload []byte) error

const dequeueTimeout = 5 * time.Second

// Runner drives a fixed number of concurrent consumers over one queue.
// Each consumer processes a single job at a time; there is no ordering
// guarantee across jobs.
type Runner struct {
	queue       *queue.Queue
	handler     Handler
	concurrency int
	wg          sync.WaitGroup
}

// NewRunner creates a runner with the given consumer count.
func NewRunner(q *queue.Queue, handler Handler, concurrency int) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Runner{queue: q, handler: handler, concurrency: concurrency}
}

// Start requeues jobs stranded by a previous crash and launches the
// consumer goroutines. It returns immediately; cancel ctx to stop.
func (r *Runner) Start(ctx context.Context) {
	if moved, err := r.queue.Requeue(ctx); err != nil {
		slog.Error("failed to requeue stranded jobs", "queue", r.queue.Name(), "error", err)
	} else if moved > 0 {
		slog.Info("requeued stranded jobs", "queue", r.queue.Name(), "count", moved)
	}

	slog.Info("worker started", "queue", r.queue.Name(), "concurrency", r.concurrency)

	for i := 0; i < r.concurrency; i++ {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.consume(ctx)
		}()
	}
}

// Wait blocks until all consumers have stopped.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) consume(ctx context.Context) {
	for {
		job, err := r.queue.Dequeue(ctx, dequeueTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Error("dequeue failed", "queue", r.queue.Name(), "error", err)
			continue
		}
		if job == nil {
			// Timed out waiting; check for shutdown and poll again.
			if ctx.Err() != nil {
				return
			}
			continue
		}

		r.process(ctx, job)
	}
}

func (r *Runner) process(ctx context.Context, job *queue.Job) {
	err := r.handler(ctx, job.Payload())
	switch {
	case err == nil:
	case IsPermanent(err):
		slog.Error("job failed permanently", "queue", r.queue.Name(), "error", err)
	default:
		slog.Error("job failed", "queue", r.queue.Name(), "error", err)
	}

	// Ack regardless of outcome: permanent failures must not be
	// redelivered, and transient failures are terminal once dequeued.
	if err := r.queue.Ack(ctx, job); err != nil {
		slog.Error("failed to ack job", "queue", r.queue.Name(), "error", err)
	}
}

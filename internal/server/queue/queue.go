// Package queue implements an at-least-once job queue over redis lists.
//
// Producers LPUSH JSON payloads onto the pending list. Consumers move an
// entry onto a per-queue processing list (BLMOVE) and only remove it on
// ack, so a consumer crash leaves the entry recoverable. Requeue pushes
// stranded processing entries back onto the pending list; consumers must
// therefore tolerate redelivery.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Queue names used by the application.
const (
	FileQueue = "file_queue"
	UserQueue = "user_queue"
)

// Queue is a named redis-backed job queue.
type Queue struct {
	client *redis.Client
	name   string
}

// Job is a single dequeued payload awaiting ack.
type Job struct {
	raw string
}

// Payload returns the raw JSON payload of the job.
func (j *Job) Payload() []byte {
	return []byte(j.raw)
}

// New creates a queue handle. Multiple producers and consumers may share
// one name; coordination happens entirely in redis.
func New(client *redis.Client, name string) *Queue {
	return &Queue{client: client, name: name}
}

// Name returns the queue name.
func (q *Queue) Name() string {
	return q.name
}

func (q *Queue) pendingKey() string {
	return "queue:" + q.name
}

func (q *Queue) processingKey() string {
	return "queue:" + q.name + ":processing"
}

// Enqueue marshals payload and pushes it onto the pending list. The call
// returns as soon as the entry is queued; it never waits for a consumer.
func (q *Queue) Enqueue(ctx context.Context, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal job payload: %w", err)
	}
	if err := q.client.LPush(ctx, q.pendingKey(), data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue job on %s: %w", q.name, err)
	}
	return nil
}

// Dequeue blocks up to timeout for the next job, moving it onto the
// processing list. Returns (nil, nil) when the wait times out.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*Job, error) {
	raw, err := q.client.BLMove(ctx, q.pendingKey(), q.processingKey(), "RIGHT", "LEFT", timeout).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue from %s: %w", q.name, err)
	}
	return &Job{raw: raw}, nil
}

// Ack removes a processed job from the processing list. Jobs are acked
// whether they succeeded or failed terminally; only a consumer crash
// leaves an entry behind for Requeue.
func (q *Queue) Ack(ctx context.Context, job *Job) error {
	if err := q.client.LRem(ctx, q.processingKey(), 1, job.raw).Err(); err != nil {
		return fmt.Errorf("failed to ack job on %s: %w", q.name, err)
	}
	return nil
}

// Requeue moves entries stranded on the processing list by a crashed
// consumer back onto the pending list, and returns how many it moved.
// Called on consumer startup.
func (q *Queue) Requeue(ctx context.Context) (int, error) {
	moved := 0
	for {
		err := q.client.LMove(ctx, q.processingKey(), q.pendingKey(), "RIGHT", "LEFT").Err()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return moved, nil
			}
			return moved, fmt.Errorf("failed to requeue jobs on %s: %w", q.name, err)
		}
		moved++
	}
}

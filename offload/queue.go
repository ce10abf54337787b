/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package offload

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/suparena/fastpath/telemetry"
)

// Queue is the producer side of the offload path. Request handlers enqueue
// and return; enqueue cost is O(1) relative to payload size and nothing in
// the request path waits on the work being done. Cancellation of the
// producer's context after Enqueue returns does not cancel the item.
type Queue struct {
	name      string
	broker    Broker
	collector telemetry.Collector
	logger    zerolog.Logger
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithQueueTelemetry attaches a telemetry collector.
func WithQueueTelemetry(c telemetry.Collector) QueueOption {
	return func(q *Queue) { q.collector = c }
}

// WithQueueLogger attaches a logger. The default discards everything.
func WithQueueLogger(l zerolog.Logger) QueueOption {
	return func(q *Queue) { q.logger = l }
}

// NewQueue creates a Queue over a broker.
func NewQueue(name string, broker Broker, opts ...QueueOption) *Queue {
	q := &Queue{
		name:      name,
		broker:    broker,
		collector: telemetry.Noop(),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// EnqueueOption configures a single enqueue.
type EnqueueOption func(*WorkItem)

// WithID fixes the work item ID. Producers that may crash and retry an
// enqueue pass the same ID both times; the broker deduplicates on it.
func WithID(id string) EnqueueOption {
	return func(w *WorkItem) { w.ID = id }
}

// Enqueue submits a payload for background processing and returns the work
// item ID. Once it returns nil the item is durable on the broker.
func (q *Queue) Enqueue(ctx context.Context, payload []byte, opts ...EnqueueOption) (string, error) {
	item := WorkItem{
		Payload:    payload,
		EnqueuedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(&item)
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	if err := q.broker.Enqueue(ctx, item); err != nil {
		return "", fmt.Errorf("enqueue on %q failed: %w", q.name, err)
	}

	if depth, err := q.broker.Depth(ctx); err == nil {
		q.collector.SetQueueDepth(q.name, depth)
	}
	q.logger.Debug().Str("queue", q.name).Str("id", item.ID).Msg("work item enqueued")
	return item.ID, nil
}

// Depth reports the number of pending items.
func (q *Queue) Depth(ctx context.Context) (int, error) {
	return q.broker.Depth(ctx)
}

// DeadLetters lists dead-lettered items for operator inspection.
func (q *Queue) DeadLetters(ctx context.Context) ([]WorkItem, error) {
	return q.broker.DeadLetters(ctx)
}

// Requeue returns a dead-lettered item to pending. Operator-facing.
func (q *Queue) Requeue(ctx context.Context, id string) error {
	return q.broker.Requeue(ctx, id)
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package offload

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"github.com/suparena/fastpath/telemetry"
)

// Handler processes one leased work item. Delivery is at-least-once, so
// handlers must be idempotent or deduplicate by item ID.
type Handler func(ctx context.Context, item *WorkItem) error

// Consumer drains a broker with a pool of workers, independent of the
// request-handling path and separately scalable. Each delivery invokes the
// handler under a bounded exponential backoff for transient errors; this is
// the only layer in FastPath that retries anything.
type Consumer struct {
	broker    Broker
	queue     string
	workers   int
	lease     time.Duration
	poll      time.Duration
	retryMax  uint64
	collector telemetry.Collector
	logger    zerolog.Logger
}

// ConsumerOption configures a Consumer.
type ConsumerOption func(*Consumer)

// WithWorkers sets the worker pool size (default 4).
func WithWorkers(n int) ConsumerOption {
	return func(c *Consumer) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithLeaseDuration sets how long a delivery holds its lease (default 30s).
// Handlers running past it risk redelivery to another worker.
func WithLeaseDuration(d time.Duration) ConsumerOption {
	return func(c *Consumer) {
		if d > 0 {
			c.lease = d
		}
	}
}

// WithPollInterval sets how long an idle worker waits before asking the
// broker again (default 250ms).
func WithPollInterval(d time.Duration) ConsumerOption {
	return func(c *Consumer) {
		if d > 0 {
			c.poll = d
		}
	}
}

// WithHandlerRetries bounds the in-delivery backoff retries for transient
// handler errors (default 2). Exhausting them abandons the delivery; the
// broker's retry budget takes over from there.
func WithHandlerRetries(n uint64) ConsumerOption {
	return func(c *Consumer) { c.retryMax = n }
}

// WithConsumerTelemetry attaches a telemetry collector.
func WithConsumerTelemetry(col telemetry.Collector) ConsumerOption {
	return func(c *Consumer) { c.collector = col }
}

// WithConsumerLogger attaches a logger. The default discards everything.
func WithConsumerLogger(l zerolog.Logger) ConsumerOption {
	return func(c *Consumer) { c.logger = l }
}

// NewConsumer creates a Consumer for the named queue.
func NewConsumer(queue string, broker Broker, opts ...ConsumerOption) *Consumer {
	c := &Consumer{
		broker:    broker,
		queue:     queue,
		workers:   4,
		lease:     30 * time.Second,
		poll:      250 * time.Millisecond,
		retryMax:  2,
		collector: telemetry.Noop(),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run processes work items until the context is canceled. It blocks; run it
// from its own goroutine or process.
func (c *Consumer) Run(ctx context.Context, h Handler) error {
	grp := pool.New().
		WithContext(ctx).
		WithMaxGoroutines(c.workers)

	for i := 0; i < c.workers; i++ {
		grp.Go(func(ctx context.Context) error {
			return c.workerLoop(ctx, h)
		})
	}

	err := grp.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (c *Consumer) workerLoop(ctx context.Context, h Handler) error {
	for {
		item, err := c.broker.Lease(ctx, c.lease)
		switch {
		case errors.Is(err, ErrNoWork):
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.poll):
			}
			continue
		case err != nil:
			return err
		}

		c.process(ctx, h, item)

		if depth, derr := c.broker.Depth(ctx); derr == nil {
			c.collector.SetQueueDepth(c.queue, depth)
		}
	}
}

// process runs the handler under bounded backoff, then acks or abandons.
func (c *Consumer) process(ctx context.Context, h Handler, item *WorkItem) {
	start := time.Now()

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.retryMax), ctx)
	err := backoff.Retry(func() error {
		return h(ctx, item)
	}, policy)

	if err != nil {
		c.logger.Warn().Str("queue", c.queue).Str("id", item.ID).Err(err).
			Int("attempts", item.Attempts).Msg("work item failed, abandoning")
		if aerr := c.broker.Abandon(ctx, item.ID, err.Error()); aerr != nil {
			c.logger.Error().Str("id", item.ID).Err(aerr).Msg("abandon failed")
		}
		return
	}

	if aerr := c.broker.Ack(ctx, item.ID); aerr != nil {
		// A lapsed lease means the item was requeued and will be
		// redelivered; the handler's idempotence covers the duplicate.
		c.logger.Warn().Str("id", item.ID).Err(aerr).Msg("ack failed")
		return
	}
	c.collector.ObserveRequest("consume", c.queue, 0, time.Since(start))
}

// Consume returns a lazy channel of leased work items. The sequence is
// restartable: all delivery state lives on the broker, so a consumer that
// stops and a new one that starts resume from the same queue. Callers own
// the ack/abandon calls for every item they receive.
func (c *Consumer) Consume(ctx context.Context, opts ...ConsumeOption) <-chan WorkItem {
	options := defaultConsumeOptions()
	for _, opt := range opts {
		opt(&options)
	}

	out := make(chan WorkItem, options.BufferSize)
	go func() {
		defer close(out)
		for {
			item, err := c.broker.Lease(ctx, c.lease)
			switch {
			case errors.Is(err, ErrNoWork):
				select {
				case <-ctx.Done():
					return
				case <-time.After(options.PollInterval):
				}
				continue
			case err != nil:
				return
			}

			select {
			case <-ctx.Done():
				// Undo the lease we cannot hand over.
				_ = c.broker.Abandon(context.WithoutCancel(ctx), item.ID, "consumer stopped")
				return
			case out <- *item:
			}
		}
	}()
	return out
}

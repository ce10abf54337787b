/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package offload

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestConsumerProcessesItems(t *testing.T) {
	b := NewMemoryBroker("test")
	q := NewQueue("test", b)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const n = 20
	ids := make(map[string]bool, n)
	var mu sync.Mutex
	for i := 0; i < n; i++ {
		id, err := q.Enqueue(ctx, []byte("payload"))
		if err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
		ids[id] = false
	}

	var processed int64
	c := NewConsumer("test", b,
		WithWorkers(4),
		WithPollInterval(5*time.Millisecond),
	)

	done := make(chan error, 1)
	go func() {
		done <- c.Run(ctx, func(ctx context.Context, item *WorkItem) error {
			mu.Lock()
			ids[item.ID] = true
			mu.Unlock()
			if atomic.AddInt64(&processed, 1) == n {
				cancel()
			}
			return nil
		})
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not drain the queue in time")
	}

	mu.Lock()
	defer mu.Unlock()
	for id, seen := range ids {
		if !seen {
			t.Errorf("work item %s was never processed", id)
		}
	}

	depth, _ := b.Depth(context.Background())
	if depth != 0 {
		t.Errorf("expected empty queue, got depth %d", depth)
	}
}

func TestConsumerAbandonsToDeadLetter(t *testing.T) {
	b := NewMemoryBroker("test", WithMaxRetries(1))
	q := NewQueue("test", b)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := q.Enqueue(ctx, []byte("poison"), WithID("w-poison")); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	var calls int64
	c := NewConsumer("test", b,
		WithWorkers(1),
		WithPollInterval(5*time.Millisecond),
		WithHandlerRetries(0), // broker budget only; no in-delivery retries
	)

	go func() {
		_ = c.Run(ctx, func(ctx context.Context, item *WorkItem) error {
			atomic.AddInt64(&calls, 1)
			return errors.New("permanent failure")
		})
	}()

	// maxRetries 1 -> two deliveries, then the DLQ.
	deadline := time.After(5 * time.Second)
	for {
		dead, err := q.DeadLetters(context.Background())
		if err == nil && len(dead) == 1 {
			if dead[0].ID != "w-poison" {
				t.Errorf("unexpected dead letter %+v", dead[0])
			}
			break
		}
		select {
		case <-deadline:
			t.Fatal("item never reached the dead-letter state")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()

	if got := atomic.LoadInt64(&calls); got != 2 {
		t.Errorf("expected 2 handler invocations, got %d", got)
	}
}

func TestConsumerRetriesTransientThenSucceeds(t *testing.T) {
	b := NewMemoryBroker("test")
	q := NewQueue("test", b)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := q.Enqueue(ctx, []byte("flaky"), WithID("w-flaky")); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	var calls int64
	c := NewConsumer("test", b,
		WithWorkers(1),
		WithPollInterval(5*time.Millisecond),
		WithHandlerRetries(3),
	)

	done := make(chan struct{})
	go func() {
		_ = c.Run(ctx, func(ctx context.Context, item *WorkItem) error {
			if atomic.AddInt64(&calls, 1) < 3 {
				return errors.New("transient")
			}
			close(done)
			return nil
		})
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("handler never succeeded")
	}
	cancel()

	// The transient failures were absorbed by in-delivery backoff: the item
	// was delivered once and never abandoned.
	dead, _ := q.DeadLetters(context.Background())
	if len(dead) != 0 {
		t.Errorf("expected no dead letters, got %d", len(dead))
	}
}

func TestConsumeChannel(t *testing.T) {
	b := NewMemoryBroker("test")
	q := NewQueue("test", b)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for i := 0; i < 5; i++ {
		if _, err := q.Enqueue(ctx, []byte("p")); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}

	c := NewConsumer("test", b, WithPollInterval(5*time.Millisecond))
	items := c.Consume(ctx, WithBufferSize(2), WithConsumePollInterval(5*time.Millisecond))

	received := 0
	for item := range items {
		if err := b.Ack(ctx, item.ID); err != nil {
			t.Fatalf("Ack failed: %v", err)
		}
		received++
		if received == 5 {
			cancel()
		}
	}
	if received != 5 {
		t.Errorf("expected 5 items, got %d", received)
	}
}

func TestEnqueueGeneratesID(t *testing.T) {
	q := NewQueue("test", NewMemoryBroker("test"))
	id, err := q.Enqueue(context.Background(), []byte("p"))
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if id == "" {
		t.Error("expected a generated work item ID")
	}
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package offload

import (
	"context"
	"errors"
	"testing"
	"time"

	fperrors "github.com/suparena/fastpath/errors"
)

func TestEnqueueLeaseAck(t *testing.T) {
	b := NewMemoryBroker("test")
	ctx := context.Background()

	if err := b.Enqueue(ctx, WorkItem{ID: "w-1", Payload: []byte("p")}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	depth, _ := b.Depth(ctx)
	if depth != 1 {
		t.Errorf("expected depth 1, got %d", depth)
	}

	item, err := b.Lease(ctx, time.Minute)
	if err != nil {
		t.Fatalf("Lease failed: %v", err)
	}
	if item.ID != "w-1" || item.State != StateLeased || item.Attempts != 1 {
		t.Errorf("unexpected leased item %+v", item)
	}

	if err := b.Ack(ctx, "w-1"); err != nil {
		t.Fatalf("Ack failed: %v", err)
	}

	if _, err := b.Lease(ctx, time.Minute); !errors.Is(err, ErrNoWork) {
		t.Errorf("expected ErrNoWork after ack, got %v", err)
	}
}

func TestEnqueueIdempotentByID(t *testing.T) {
	b := NewMemoryBroker("test")
	ctx := context.Background()

	// A producer that crashed after the broker acknowledged retries the
	// same enqueue with the same ID.
	for i := 0; i < 3; i++ {
		if err := b.Enqueue(ctx, WorkItem{ID: "w-dup", Payload: []byte("p")}); err != nil {
			t.Fatalf("Enqueue replay %d failed: %v", i, err)
		}
	}

	depth, _ := b.Depth(ctx)
	if depth != 1 {
		t.Errorf("expected a single pending entry, got depth %d", depth)
	}

	// Replays after completion must not resurrect the item either.
	if _, err := b.Lease(ctx, time.Minute); err != nil {
		t.Fatalf("Lease failed: %v", err)
	}
	if err := b.Ack(ctx, "w-dup"); err != nil {
		t.Fatalf("Ack failed: %v", err)
	}
	if err := b.Enqueue(ctx, WorkItem{ID: "w-dup"}); err != nil {
		t.Fatalf("post-completion replay failed: %v", err)
	}
	depth, _ = b.Depth(ctx)
	if depth != 0 {
		t.Errorf("completed item resurrected: depth %d", depth)
	}
}

func TestLeaseExpiryRedeliversExactlyOnceMore(t *testing.T) {
	now := time.Now()
	clock := &now
	b := NewMemoryBroker("test", withClock(func() time.Time { return *clock }))
	ctx := context.Background()

	if err := b.Enqueue(ctx, WorkItem{ID: "w-crash", Payload: []byte("p")}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	// First delivery; the consumer "crashes" and never acks.
	first, err := b.Lease(ctx, 30*time.Second)
	if err != nil {
		t.Fatalf("first Lease failed: %v", err)
	}
	if first.Attempts != 1 {
		t.Errorf("expected attempt 1, got %d", first.Attempts)
	}

	// Before the lease lapses nothing is redelivered.
	if _, err := b.Lease(ctx, 30*time.Second); !errors.Is(err, ErrNoWork) {
		t.Errorf("expected ErrNoWork while lease held, got %v", err)
	}

	// Lease elapses: the item reverts to Pending and is redelivered once.
	*clock = now.Add(31 * time.Second)
	second, err := b.Lease(ctx, 30*time.Second)
	if err != nil {
		t.Fatalf("redelivery Lease failed: %v", err)
	}
	if second.ID != "w-crash" || second.Attempts != 2 {
		t.Errorf("expected redelivery of w-crash at attempt 2, got %+v", second)
	}

	// Exactly once more: no third delivery while the new lease holds.
	if _, err := b.Lease(ctx, 30*time.Second); !errors.Is(err, ErrNoWork) {
		t.Errorf("expected ErrNoWork, got %v", err)
	}
}

func TestAckAfterLeaseExpiry(t *testing.T) {
	now := time.Now()
	clock := &now
	b := NewMemoryBroker("test", withClock(func() time.Time { return *clock }))
	ctx := context.Background()

	_ = b.Enqueue(ctx, WorkItem{ID: "w-slow"})
	if _, err := b.Lease(ctx, time.Second); err != nil {
		t.Fatalf("Lease failed: %v", err)
	}

	*clock = now.Add(2 * time.Second)
	if _, err := b.Depth(ctx); err != nil { // triggers reclaim
		t.Fatalf("Depth failed: %v", err)
	}

	if err := b.Ack(ctx, "w-slow"); !errors.Is(err, fperrors.ErrLeaseExpired) {
		t.Errorf("expected ErrLeaseExpired for ack after expiry, got %v", err)
	}
}

func TestAbandonAfterLeaseExpiry(t *testing.T) {
	now := time.Now()
	clock := &now
	b := NewMemoryBroker("test", withClock(func() time.Time { return *clock }))
	ctx := context.Background()

	_ = b.Enqueue(ctx, WorkItem{ID: "w-slow"})
	if _, err := b.Lease(ctx, time.Second); err != nil {
		t.Fatalf("Lease failed: %v", err)
	}

	*clock = now.Add(2 * time.Second)
	if _, err := b.Depth(ctx); err != nil { // triggers reclaim
		t.Fatalf("Depth failed: %v", err)
	}

	// The slow handler fails after its lease already lapsed. The item is
	// pending again; accepting the abandon would duplicate it.
	if err := b.Abandon(ctx, "w-slow", "handler failed"); !errors.Is(err, fperrors.ErrLeaseExpired) {
		t.Errorf("expected ErrLeaseExpired for abandon after expiry, got %v", err)
	}

	depth, err := b.Depth(ctx)
	if err != nil {
		t.Fatalf("Depth failed: %v", err)
	}
	if depth != 1 {
		t.Errorf("expected a single pending entry, got %d", depth)
	}

	// The reclaim already counted as the one extra delivery; the late
	// abandon must not have added another attempt.
	redelivered, err := b.Lease(ctx, time.Second)
	if err != nil {
		t.Fatalf("redelivery Lease failed: %v", err)
	}
	if redelivered.ID != "w-slow" || redelivered.Attempts != 2 {
		t.Errorf("expected w-slow at attempt 2, got %+v", redelivered)
	}
	if _, err := b.Lease(ctx, time.Second); !errors.Is(err, ErrNoWork) {
		t.Errorf("expected ErrNoWork after single redelivery, got %v", err)
	}
}

func TestDeadLetterAfterRetryBudget(t *testing.T) {
	const maxRetries = 3
	b := NewMemoryBroker("test", WithMaxRetries(maxRetries))
	ctx := context.Background()

	_ = b.Enqueue(ctx, WorkItem{ID: "w-poison", Payload: []byte("p")})

	// maxRetries+1 failed deliveries.
	for i := 0; i < maxRetries+1; i++ {
		item, err := b.Lease(ctx, time.Minute)
		if err != nil {
			t.Fatalf("Lease %d failed: %v", i, err)
		}
		if err := b.Abandon(ctx, item.ID, "boom"); err != nil {
			t.Fatalf("Abandon %d failed: %v", i, err)
		}
	}

	// Terminal: never re-leased.
	if _, err := b.Lease(ctx, time.Minute); !errors.Is(err, ErrNoWork) {
		t.Errorf("dead-lettered item must not be re-leased, got %v", err)
	}

	dead, err := b.DeadLetters(ctx)
	if err != nil {
		t.Fatalf("DeadLetters failed: %v", err)
	}
	if len(dead) != 1 {
		t.Fatalf("expected 1 dead letter, got %d", len(dead))
	}
	if dead[0].ID != "w-poison" || dead[0].State != StateDeadLettered {
		t.Errorf("unexpected dead letter %+v", dead[0])
	}
	if dead[0].Attempts != maxRetries+1 {
		t.Errorf("expected %d attempts, got %d", maxRetries+1, dead[0].Attempts)
	}
	if dead[0].LastError != "boom" {
		t.Errorf("expected last error to be recorded, got %q", dead[0].LastError)
	}
}

func TestRequeueDeadLetter(t *testing.T) {
	b := NewMemoryBroker("test", WithMaxRetries(0))
	ctx := context.Background()

	_ = b.Enqueue(ctx, WorkItem{ID: "w-dead"})
	item, _ := b.Lease(ctx, time.Minute)
	_ = b.Abandon(ctx, item.ID, "boom")

	dead, _ := b.DeadLetters(ctx)
	if len(dead) != 1 {
		t.Fatalf("expected 1 dead letter, got %d", len(dead))
	}

	// Operator puts it back with a fresh budget.
	if err := b.Requeue(ctx, "w-dead"); err != nil {
		t.Fatalf("Requeue failed: %v", err)
	}
	dead, _ = b.DeadLetters(ctx)
	if len(dead) != 0 {
		t.Errorf("expected empty DLQ after requeue, got %d", len(dead))
	}

	relived, err := b.Lease(ctx, time.Minute)
	if err != nil {
		t.Fatalf("Lease after requeue failed: %v", err)
	}
	if relived.Attempts != 1 {
		t.Errorf("expected fresh attempt count, got %d", relived.Attempts)
	}

	t.Run("NotDeadLettered", func(t *testing.T) {
		if err := b.Requeue(ctx, "w-dead"); err == nil {
			t.Error("expected error requeueing a non-dead item")
		}
	})
}

func TestEnqueueRequiresID(t *testing.T) {
	b := NewMemoryBroker("test")
	if err := b.Enqueue(context.Background(), WorkItem{}); err == nil {
		t.Error("expected error for missing ID")
	}
}

func TestRestoreSnapshot(t *testing.T) {
	b := NewMemoryBroker("test")
	err := b.Restore([]WorkItem{
		{ID: "w-pending", State: StatePending, Payload: []byte("a")},
		{ID: "w-leased", State: StateLeased, Payload: []byte("b")},
		{ID: "w-dead", State: StateDeadLettered, Attempts: 4, LastError: "boom"},
		{ID: "w-done", State: StateCompleted},
	})
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	// Leased items lose their lease across a snapshot and come back pending.
	depth, err := b.Depth(context.Background())
	if err != nil {
		t.Fatalf("Depth failed: %v", err)
	}
	if depth != 2 {
		t.Errorf("expected 2 pending after restore, got %d", depth)
	}

	dead, err := b.DeadLetters(context.Background())
	if err != nil {
		t.Fatalf("DeadLetters failed: %v", err)
	}
	if len(dead) != 1 || dead[0].ID != "w-dead" {
		t.Fatalf("unexpected dead letters: %+v", dead)
	}

	// Completed tombstones still deduplicate replayed enqueues.
	if err := b.Enqueue(context.Background(), WorkItem{ID: "w-done", Payload: []byte("x")}); err != nil {
		t.Fatalf("replayed enqueue failed: %v", err)
	}
	if depth, _ := b.Depth(context.Background()); depth != 2 {
		t.Errorf("tombstone should absorb the replay, depth = %d", depth)
	}

	// A populated broker refuses a second restore.
	if err := b.Restore([]WorkItem{{ID: "w-new", State: StatePending}}); err == nil {
		t.Error("expected restore into a populated broker to fail")
	}
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package offload

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	fperrors "github.com/suparena/fastpath/errors"
	"github.com/suparena/fastpath/telemetry"
)

// MemoryBroker is an in-process Broker. It implements the full lease
// lifecycle (expiry reclaim, retry budget, dead-lettering, enqueue
// deduplication) and is the reference for what an external broker binding
// must provide. Durability here is process-lifetime only.
type MemoryBroker struct {
	mu         sync.Mutex
	queue      string
	maxRetries int

	items   map[string]*WorkItem
	pending []string
	leased  map[string]time.Time
	dead    []string

	collector telemetry.Collector
	logger    zerolog.Logger
	now       func() time.Time
}

// MemoryOption configures a MemoryBroker.
type MemoryOption func(*MemoryBroker)

// WithMaxRetries sets the retry budget. An item abandoned more than
// maxRetries+1 times in total moves to the dead-letter state.
func WithMaxRetries(n int) MemoryOption {
	return func(b *MemoryBroker) {
		if n >= 0 {
			b.maxRetries = n
		}
	}
}

// WithBrokerTelemetry attaches a telemetry collector.
func WithBrokerTelemetry(c telemetry.Collector) MemoryOption {
	return func(b *MemoryBroker) { b.collector = c }
}

// WithBrokerLogger attaches a logger. The default discards everything.
func WithBrokerLogger(l zerolog.Logger) MemoryOption {
	return func(b *MemoryBroker) { b.logger = l }
}

// withClock overrides the time source in tests.
func withClock(now func() time.Time) MemoryOption {
	return func(b *MemoryBroker) { b.now = now }
}

// NewMemoryBroker creates a MemoryBroker for the named queue with a default
// retry budget of 3.
func NewMemoryBroker(queue string, opts ...MemoryOption) *MemoryBroker {
	b := &MemoryBroker{
		queue:      queue,
		maxRetries: 3,
		items:      make(map[string]*WorkItem),
		leased:     make(map[string]time.Time),
		collector:  telemetry.Noop(),
		logger:     zerolog.Nop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Enqueue accepts an item, deduplicating by ID. Replays of IDs the broker
// has already seen, whether pending, leased, completed or dead, are no-ops.
func (b *MemoryBroker) Enqueue(ctx context.Context, item WorkItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if item.ID == "" {
		return fmt.Errorf("work item ID is required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, seen := b.items[item.ID]; seen {
		b.logger.Debug().Str("id", item.ID).Msg("duplicate enqueue ignored")
		return nil
	}

	cp := item
	cp.State = StatePending
	if cp.EnqueuedAt.IsZero() {
		cp.EnqueuedAt = b.now()
	}
	b.items[cp.ID] = &cp
	b.pending = append(b.pending, cp.ID)
	b.collector.SetQueueDepth(b.queue, len(b.pending))
	return nil
}

// reclaimExpired reverts lapsed leases to pending. Caller holds the lock.
func (b *MemoryBroker) reclaimExpired() {
	now := b.now()
	for id, until := range b.leased {
		if until.After(now) {
			continue
		}
		delete(b.leased, id)
		item := b.items[id]
		item.State = StatePending
		item.LeaseUntil = time.Time{}
		b.pending = append(b.pending, id)
		b.collector.IncLeaseExpired(b.queue)
		b.logger.Debug().Str("id", id).Int("attempts", item.Attempts).Msg("lease expired, requeued")
	}
}

// Lease delivers the next pending item.
func (b *MemoryBroker) Lease(ctx context.Context, leaseFor time.Duration) (*WorkItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.reclaimExpired()
	if len(b.pending) == 0 {
		return nil, ErrNoWork
	}

	id := b.pending[0]
	b.pending = b.pending[1:]

	item := b.items[id]
	item.State = StateLeased
	item.Attempts++
	item.LeaseUntil = b.now().Add(leaseFor)
	b.leased[id] = item.LeaseUntil
	b.collector.SetQueueDepth(b.queue, len(b.pending))

	cp := *item
	return &cp, nil
}

// Ack completes a leased item. The item record is kept as a tombstone so
// replayed enqueues of the same ID stay no-ops.
func (b *MemoryBroker) Ack(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	item, ok := b.items[id]
	if !ok {
		return fmt.Errorf("unknown work item %q", id)
	}
	if _, held := b.leased[id]; !held {
		// The lease lapsed and the item was requeued; this ack loses the
		// race. At-least-once delivery makes the redelivery harmless as long
		// as handlers are idempotent.
		return fperrors.ErrLeaseExpired
	}
	delete(b.leased, id)
	item.State = StateCompleted
	item.Payload = nil
	item.LeaseUntil = time.Time{}
	return nil
}

// Abandon releases a leased item after a failure: requeue while budget
// remains, dead-letter once it is spent.
func (b *MemoryBroker) Abandon(ctx context.Context, id string, reason string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	item, ok := b.items[id]
	if !ok {
		return fmt.Errorf("unknown work item %q", id)
	}
	if _, held := b.leased[id]; !held {
		// The lease lapsed and the item was already requeued. Accepting
		// this abandon would append a second pending entry for the same ID
		// and double-count the attempt.
		return fperrors.ErrLeaseExpired
	}
	delete(b.leased, id)
	item.LastError = reason
	item.LeaseUntil = time.Time{}

	if item.Attempts >= b.maxRetries+1 {
		item.State = StateDeadLettered
		b.dead = append(b.dead, id)
		b.collector.IncDeadLettered(b.queue)
		b.logger.Warn().Str("id", id).Int("attempts", item.Attempts).Str("reason", reason).
			Msg("work item dead-lettered")
		return nil
	}

	item.State = StatePending
	b.pending = append(b.pending, id)
	b.collector.SetQueueDepth(b.queue, len(b.pending))
	return nil
}

// Depth reports the number of pending items, reclaiming lapsed leases
// first.
func (b *MemoryBroker) Depth(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.reclaimExpired()
	return len(b.pending), nil
}

// DeadLetters lists dead-lettered items in the order they died.
func (b *MemoryBroker) DeadLetters(ctx context.Context) ([]WorkItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]WorkItem, 0, len(b.dead))
	for _, id := range b.dead {
		out = append(out, *b.items[id])
	}
	return out, nil
}

// Restore loads externally captured work items into an empty broker,
// preserving their recorded states. Leased items come back as pending
// since their leases did not survive the snapshot.
func (b *MemoryBroker) Restore(items []WorkItem) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.items) > 0 {
		return fmt.Errorf("broker %q already holds items", b.queue)
	}

	for _, item := range items {
		if item.ID == "" {
			return fmt.Errorf("work item with empty ID in snapshot")
		}
		cp := item
		cp.LeaseUntil = time.Time{}
		switch cp.State {
		case StateDeadLettered:
			b.dead = append(b.dead, cp.ID)
		case StateCompleted:
			// Tombstone only.
		default:
			cp.State = StatePending
			b.pending = append(b.pending, cp.ID)
		}
		b.items[cp.ID] = &cp
	}
	b.collector.SetQueueDepth(b.queue, len(b.pending))
	return nil
}

// Requeue returns a dead-lettered item to pending with a fresh budget.
func (b *MemoryBroker) Requeue(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	item, ok := b.items[id]
	if !ok {
		return fmt.Errorf("unknown work item %q", id)
	}
	if item.State != StateDeadLettered {
		return fmt.Errorf("work item %q is not dead-lettered", id)
	}

	for i, d := range b.dead {
		if d == id {
			b.dead = append(b.dead[:i], b.dead[i+1:]...)
			break
		}
	}
	item.State = StatePending
	item.Attempts = 0
	item.LastError = ""
	b.pending = append(b.pending, id)
	b.collector.SetQueueDepth(b.queue, len(b.pending))
	return nil
}

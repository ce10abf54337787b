/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package offload

import (
	"context"
	"errors"
	"time"
)

// ErrNoWork is returned by Lease when no pending item is available.
var ErrNoWork = errors.New("no work available")

// Broker is the narrow interface the offload queue consumes a message
// broker through. Durability and at-least-once delivery are properties of
// the broker, not reimplemented here: once Enqueue returns nil the item
// survives a producer crash.
type Broker interface {
	// Enqueue durably accepts an item. Idempotent by item ID: replaying an
	// enqueue with an ID the broker has seen does not create a second
	// pending entry.
	Enqueue(ctx context.Context, item WorkItem) error

	// Lease delivers the next pending item, marking it leased for the given
	// duration and incrementing its attempt count. Returns ErrNoWork when
	// nothing is pending. Expired leases revert to pending before delivery
	// is considered.
	Lease(ctx context.Context, leaseFor time.Duration) (*WorkItem, error)

	// Ack completes a leased item.
	Ack(ctx context.Context, id string) error

	// Abandon releases a leased item after a handler failure. The broker
	// requeues it, or dead-letters it once the retry budget is spent.
	Abandon(ctx context.Context, id string, reason string) error

	// Depth reports the number of pending items.
	Depth(ctx context.Context) (int, error)

	// DeadLetters lists dead-lettered items for operator inspection.
	DeadLetters(ctx context.Context) ([]WorkItem, error)

	// Requeue returns a dead-lettered item to pending with a fresh retry
	// budget. Operator-facing; nothing requeues dead letters automatically.
	Requeue(ctx context.Context, id string) error
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package offload

import (
	"time"
)

// State is the lifecycle state of a WorkItem.
//
// Pending -> Leased -> {Completed | Abandoned}
//
// Leased reverts to Pending when the lease expires before completion.
// Abandoned items requeue until the retry budget is spent, then move to
// DeadLettered, which is terminal.
type State string

const (
	StatePending      State = "pending"
	StateLeased       State = "leased"
	StateCompleted    State = "completed"
	StateDeadLettered State = "dead_lettered"
)

// WorkItem is a unit of deferred work. It is created by a request handler,
// consumed by a worker, and destroyed (completed) after successful
// processing or dead-lettered after exceeding its retry budget.
//
// Delivery is at-least-once: handlers must be idempotent or deduplicate by
// ID.
type WorkItem struct {
	// ID identifies the item. Producers reuse the same ID when retrying an
	// enqueue after a crash; brokers deduplicate on it.
	ID string `json:"id"`
	// Payload is the opaque work payload.
	Payload []byte `json:"payload,omitempty"`
	// EnqueuedAt is when the item was first accepted.
	EnqueuedAt time.Time `json:"enqueuedAt"`
	// Attempts counts deliveries, including the current one.
	Attempts int `json:"attempts"`
	// LeaseUntil is the current lease expiry while Leased.
	LeaseUntil time.Time `json:"leaseUntil,omitempty"`
	// State is the current lifecycle state.
	State State `json:"state"`
	// LastError records the most recent handler failure, if any.
	LastError string `json:"lastError,omitempty"`
}

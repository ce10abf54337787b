/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
	"time"
)

// Common sentinel errors
var (
	// ErrResourceExhausted is returned when a handle pool checkout times out
	// or a resource limit is reached. Surfaced to the caller, never retried
	// automatically.
	ErrResourceExhausted = errors.New("resource exhausted")

	// ErrUnsupportedPushdown is returned when a projection, predicate or
	// aggregate cannot be evaluated natively by the backing store. The caller
	// must restructure the query; there is no in-memory fallback.
	ErrUnsupportedPushdown = errors.New("unsupported pushdown")

	// ErrLeaseExpired indicates a work item lease lapsed before completion.
	// Internal to the offload queue; it causes a requeue, not a caller error.
	ErrLeaseExpired = errors.New("lease expired")

	// ErrDeadLettered is returned when a work item has exhausted its retry
	// budget and moved to the terminal dead-letter state.
	ErrDeadLettered = errors.New("work item dead-lettered")

	// ErrUnknownSchema is returned when no schema is registered for a type
	ErrUnknownSchema = errors.New("no schema registered for type")

	// ErrInvalidQuery is returned when query validation fails
	ErrInvalidQuery = errors.New("invalid query")
)

// ResourceExhaustedError reports a failed pool checkout.
type ResourceExhaustedError struct {
	Kind    string
	Waited  time.Duration
	PoolCap int
}

func (e *ResourceExhaustedError) Error() string {
	return fmt.Sprintf("resource %q exhausted: no handle available after %s (pool capacity %d)",
		e.Kind, e.Waited, e.PoolCap)
}

func (e *ResourceExhaustedError) Is(target error) bool {
	return target == ErrResourceExhausted
}

// UnsupportedPushdownError reports the exact construct the store rejected so
// the caller can restructure it into a pushdown-compatible form.
type UnsupportedPushdownError struct {
	Store     string
	Construct string
	Hint      string
}

func (e *UnsupportedPushdownError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("store %q cannot evaluate %s natively: %s", e.Store, e.Construct, e.Hint)
	}
	return fmt.Sprintf("store %q cannot evaluate %s natively", e.Store, e.Construct)
}

func (e *UnsupportedPushdownError) Is(target error) bool {
	return target == ErrUnsupportedPushdown
}

// DeadLetteredError reports a work item that exceeded its retry budget.
type DeadLetteredError struct {
	ID       string
	Attempts int
	LastErr  string
}

func (e *DeadLetteredError) Error() string {
	return fmt.Sprintf("work item %q dead-lettered after %d attempts: %s", e.ID, e.Attempts, e.LastErr)
}

func (e *DeadLetteredError) Is(target error) bool {
	return target == ErrDeadLettered
}

// QueryValidationError represents an invalid EntityQuery.
type QueryValidationError struct {
	Field   string
	Message string
}

func (e *QueryValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid query: field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid query: %s", e.Message)
}

func (e *QueryValidationError) Is(target error) bool {
	return target == ErrInvalidQuery
}

// Helper functions for creating errors

// NewResourceExhaustedError creates a new ResourceExhaustedError
func NewResourceExhaustedError(kind string, waited time.Duration, poolCap int) error {
	return &ResourceExhaustedError{Kind: kind, Waited: waited, PoolCap: poolCap}
}

// NewUnsupportedPushdownError creates a new UnsupportedPushdownError
func NewUnsupportedPushdownError(store, construct, hint string) error {
	return &UnsupportedPushdownError{Store: store, Construct: construct, Hint: hint}
}

// NewDeadLetteredError creates a new DeadLetteredError
func NewDeadLetteredError(id string, attempts int, lastErr string) error {
	return &DeadLetteredError{ID: id, Attempts: attempts, LastErr: lastErr}
}

// NewQueryValidationError creates a new QueryValidationError
func NewQueryValidationError(field, message string) error {
	return &QueryValidationError{Field: field, Message: message}
}

// IsResourceExhausted checks if an error is a resource exhaustion error
func IsResourceExhausted(err error) bool {
	return errors.Is(err, ErrResourceExhausted)
}

// IsUnsupportedPushdown checks if an error is a pushdown rejection
func IsUnsupportedPushdown(err error) bool {
	return errors.Is(err, ErrUnsupportedPushdown)
}

// IsDeadLettered checks if an error is a dead-letter error
func IsDeadLettered(err error) bool {
	return errors.Is(err, ErrDeadLettered)
}

// IsInvalidQuery checks if an error is a query validation error
func IsInvalidQuery(err error) bool {
	return errors.Is(err, ErrInvalidQuery)
}

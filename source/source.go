/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package source

import (
	"context"

	"github.com/suparena/fastpath/querymodels"
	"github.com/suparena/fastpath/schema"
)

// Capabilities describes what a source can evaluate natively. The planner
// and executor consult it before composing a request; anything outside it is
// rejected with ErrUnsupportedPushdown rather than evaluated in process.
type Capabilities struct {
	// MultiEntityComposition reports whether one round trip can return a
	// parent together with its related sub-entity collections.
	MultiEntityComposition bool
	// NativeAggregates lists the aggregate kinds the source evaluates
	// server-side.
	NativeAggregates map[querymodels.AggregateKind]bool
	// NativeFunctions lists the computed predicate functions the source
	// evaluates server-side.
	NativeFunctions map[string]bool
}

// CompositeRequest describes one composed round trip against the source.
type CompositeRequest struct {
	// Schema is the parent entity's registered schema.
	Schema *schema.Schema
	// Key identifies the parent item collection.
	Key string
	// Projection is the explicit field list to transmit. Only these fields
	// may cross the source boundary, widened by whatever attributes the
	// source needs for decode dispatch. Fetches that compose relations read
	// full items: each related type carries its own attribute set and the
	// list applies to the parent type only.
	Projection []string
	// Relations are the related collections to compose into the same round
	// trip, when the source supports multi-entity composition. At most one
	// relation is passed to sources that do not.
	Relations []schema.Relation
	// RelationsOnly skips the parent rows and returns only the listed
	// relations. Used by planners splitting a fetch across round trips.
	RelationsOnly bool
	// Predicate is an optional pushed-down filter.
	Predicate *querymodels.Predicate
	// Limit caps the parent rows returned, if set.
	Limit *int32
	// Descending reverses traversal order.
	Descending bool
}

// CompositeResult is the decoded outcome of one composed round trip.
type CompositeResult struct {
	// Parents holds the decoded parent entities.
	Parents []interface{}
	// Related maps relation name to decoded related entities.
	Related map[string][]interface{}
}

// AggregateRequest describes a pushed-down aggregate computation.
type AggregateRequest struct {
	Schema    *schema.Schema
	Key       string
	Predicate *querymodels.Predicate
	Op        querymodels.AggregateOp
}

// Source is the narrow interface a backing store exposes to the planner and
// executor. Every method that touches the store issues exactly one round
// trip; round-trip minimization is the planner's job, honest accounting is
// the source's.
type Source interface {
	// Name identifies the store in errors and telemetry.
	Name() string

	// Capabilities reports what the store evaluates natively.
	Capabilities() Capabilities

	// Fetch issues one composed round trip and decodes the result through
	// the schema decoder registry.
	Fetch(ctx context.Context, req *CompositeRequest) (*CompositeResult, error)

	// Project issues one round trip returning raw rows shaped by the
	// request's projection; no other fields cross the boundary.
	Project(ctx context.Context, req *CompositeRequest) ([]map[string]interface{}, error)

	// Aggregate pushes the aggregate computation to the store. Sources
	// return ErrUnsupportedPushdown for aggregates outside their
	// capabilities; they never materialize rows to compute one.
	Aggregate(ctx context.Context, req *AggregateRequest) (querymodels.Scalar, error)
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package fastpath

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/suparena/fastpath/executor"
	"github.com/suparena/fastpath/offload"
	"github.com/suparena/fastpath/planner"
	"github.com/suparena/fastpath/querymodels"
	"github.com/suparena/fastpath/source"
	"github.com/suparena/fastpath/telemetry"
)

// Facade is the single entry point over a shared source. It wires the
// batch planner, the projection executor and an optional offload queue
// behind one object so callers never construct per-request clients.
type Facade struct {
	src       source.Source
	planner   *planner.Planner
	executor  *executor.Executor
	queue     *offload.Queue
	collector telemetry.Collector
	logger    zerolog.Logger
}

// Option customizes a Facade.
type Option func(*Facade)

// WithOffloadQueue attaches a background queue for deferred work.
func WithOffloadQueue(q *offload.Queue) Option {
	return func(f *Facade) { f.queue = q }
}

// WithTelemetry sets the metrics collector shared by the planner and
// executor.
func WithTelemetry(c telemetry.Collector) Option {
	return func(f *Facade) { f.collector = c }
}

// WithLogger sets the logger shared by the facade's components.
func WithLogger(l zerolog.Logger) Option {
	return func(f *Facade) { f.logger = l }
}

// New creates a Facade over the given source.
func New(src source.Source, opts ...Option) *Facade {
	f := &Facade{
		src:       src,
		collector: telemetry.Noop(),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.planner = planner.New(src,
		planner.WithTelemetry(f.collector),
		planner.WithLogger(f.logger),
	)
	f.executor = executor.New(src,
		executor.WithTelemetry(f.collector),
		executor.WithLogger(f.logger),
	)
	return f
}

// Fetch resolves a parent together with its declared relations, batching
// the round trips through the planner.
func (f *Facade) Fetch(ctx context.Context, q *querymodels.EntityQuery) (*querymodels.EntityGraph, error) {
	return f.planner.Fetch(ctx, q)
}

// Project returns only the requested fields for the matching rows.
func (f *Facade) Project(ctx context.Context, q *querymodels.EntityQuery) (*querymodels.ProjectedRows, error) {
	return f.executor.Project(ctx, q)
}

// Aggregate evaluates an aggregate at the source when the source supports
// it natively.
func (f *Facade) Aggregate(ctx context.Context, q *querymodels.EntityQuery, op querymodels.AggregateOp) (querymodels.Scalar, error) {
	return f.executor.Aggregate(ctx, q, op)
}

// Offload enqueues deferred work on the attached queue and returns the
// work item id.
func (f *Facade) Offload(ctx context.Context, payload []byte, opts ...offload.EnqueueOption) (string, error) {
	if f.queue == nil {
		return "", fmt.Errorf("no offload queue attached")
	}
	return f.queue.Enqueue(ctx, payload, opts...)
}

// Queue exposes the attached offload queue, or nil when none is attached.
func (f *Facade) Queue() *offload.Queue { return f.queue }

// TypedGraph is an EntityGraph whose parents are asserted to a concrete
// type.
type TypedGraph[T any] struct {
	Parents    []T
	Related    map[string][]interface{}
	RoundTrips int
}

// TypedFacade provides type-safe fetches for a specific parent type T.
type TypedFacade[T any] struct {
	f *Facade
}

// Typed wraps a Facade with a typed view for parent type T.
func Typed[T any](f *Facade) *TypedFacade[T] {
	return &TypedFacade[T]{f: f}
}

// Fetch resolves the query and asserts every parent to T. A parent of any
// other concrete type fails the whole fetch.
func (t *TypedFacade[T]) Fetch(ctx context.Context, q *querymodels.EntityQuery) (*TypedGraph[T], error) {
	graph, err := t.f.Fetch(ctx, q)
	if err != nil {
		return nil, err
	}

	parents := make([]T, 0, len(graph.Parents))
	for i, p := range graph.Parents {
		typed, ok := p.(T)
		if !ok {
			return nil, fmt.Errorf("parent %d: expected %T, got %T", i, *new(T), p)
		}
		parents = append(parents, typed)
	}

	return &TypedGraph[T]{
		Parents:    parents,
		Related:    graph.Related,
		RoundTrips: graph.RoundTrips,
	}, nil
}

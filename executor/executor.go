/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/suparena/fastpath/errors"
	"github.com/suparena/fastpath/querymodels"
	"github.com/suparena/fastpath/schema"
	"github.com/suparena/fastpath/source"
	"github.com/suparena/fastpath/telemetry"
)

// Executor pushes projections and aggregates down to the data source. When
// the source cannot evaluate a required predicate or aggregate natively the
// executor fails with ErrUnsupportedPushdown so the caller can restructure
// the query. It never falls back to materializing full rows in process:
// silent fallback is the expensive path this package exists to rule out.
type Executor struct {
	src       source.Source
	collector telemetry.Collector
	logger    zerolog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithTelemetry attaches a telemetry collector.
func WithTelemetry(c telemetry.Collector) Option {
	return func(e *Executor) { e.collector = c }
}

// WithLogger attaches a logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// New constructs an Executor over a source.
func New(src source.Source, opts ...Option) *Executor {
	e := &Executor{
		src:       src,
		collector: telemetry.Noop(),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// checkPredicate rejects predicates outside the source's native capability
// before any round trip is spent.
func (e *Executor) checkPredicate(p *querymodels.Predicate) error {
	if p == nil || p.Op != querymodels.OpFunction {
		return nil
	}
	if !e.src.Capabilities().NativeFunctions[p.Function] {
		return errors.NewUnsupportedPushdownError(e.src.Name(),
			fmt.Sprintf("predicate function %q", p.Function),
			"restructure into a boundary comparison, e.g. querymodels.InLastDays")
	}
	return nil
}

// Project returns rows shaped by the query's explicit field list. The list
// is pushed to the source's query capability; fields outside it never cross
// the source boundary.
func (e *Executor) Project(ctx context.Context, q *querymodels.EntityQuery) (*querymodels.ProjectedRows, error) {
	sc, err := q.Validate()
	if err != nil {
		return nil, err
	}
	if err := e.checkPredicate(q.Predicate); err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := e.src.Project(ctx, &source.CompositeRequest{
		Schema:     sc,
		Key:        q.Key,
		Projection: q.Projection,
		Predicate:  q.Predicate,
		Limit:      q.Limit,
		Descending: q.Descending,
	})
	if err != nil {
		return nil, err
	}

	e.collector.ObserveRequest("project", q.EntityType, 1, time.Since(start))
	return &querymodels.ProjectedRows{
		Fields:     q.Projection,
		Rows:       rows,
		RoundTrips: 1,
	}, nil
}

// Aggregate pushes the computation to the source and returns its scalar
// result. Aggregates outside the source's native capability fail with
// ErrUnsupportedPushdown before any round trip is spent.
func (e *Executor) Aggregate(ctx context.Context, q *querymodels.EntityQuery, op querymodels.AggregateOp) (querymodels.Scalar, error) {
	sc, err := validateForAggregate(q, op)
	if err != nil {
		return querymodels.Scalar{}, err
	}
	if err := e.checkPredicate(q.Predicate); err != nil {
		return querymodels.Scalar{}, err
	}
	if !e.src.Capabilities().NativeAggregates[op.Kind] {
		return querymodels.Scalar{}, errors.NewUnsupportedPushdownError(e.src.Name(),
			fmt.Sprintf("aggregate %s", op.Kind),
			"the store cannot evaluate this aggregate server-side")
	}

	start := time.Now()
	scalar, err := e.src.Aggregate(ctx, &source.AggregateRequest{
		Schema:    sc,
		Key:       q.Key,
		Predicate: q.Predicate,
		Op:        op,
	})
	if err != nil {
		return querymodels.Scalar{}, err
	}

	e.collector.ObserveRequest("aggregate", q.EntityType, 1, time.Since(start))
	e.logger.Debug().
		Str("entityType", q.EntityType).
		Str("aggregate", string(op.Kind)).
		Msg("aggregate pushed down")
	return scalar, nil
}

// validateForAggregate resolves the schema and checks the aggregate field.
// An aggregate query carries no projection list, so EntityQuery.Validate
// does not apply.
func validateForAggregate(q *querymodels.EntityQuery, op querymodels.AggregateOp) (*schema.Schema, error) {
	sc, ok := schema.GetSchemaByName(q.EntityType)
	if !ok {
		return nil, errors.ErrUnknownSchema
	}
	if op.Kind != querymodels.AggregateCount && !sc.HasField(op.Field) {
		return nil, errors.NewQueryValidationError(op.Field, "aggregate field not part of schema")
	}
	return sc, nil
}

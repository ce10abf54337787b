/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package planner

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"github.com/suparena/fastpath/querymodels"
	"github.com/suparena/fastpath/schema"
	"github.com/suparena/fastpath/source"
	"github.com/suparena/fastpath/telemetry"
)

// Planner composes the minimum number of data-source round trips needed to
// satisfy an EntityQuery. The round-trip count depends only on the distinct
// entity types requested, never on the number of rows returned: when the
// source supports multi-entity composition the whole graph costs one trip,
// otherwise one trip per entity type (never one per row).
type Planner struct {
	src       source.Source
	collector telemetry.Collector
	logger    zerolog.Logger

	// maxParallel bounds concurrent relation trips on sources without
	// multi-entity composition.
	maxParallel int
}

// Option configures a Planner.
type Option func(*Planner)

// WithTelemetry attaches a telemetry collector.
func WithTelemetry(c telemetry.Collector) Option {
	return func(p *Planner) { p.collector = c }
}

// WithLogger attaches a logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Planner) { p.logger = l }
}

// WithMaxParallel bounds the concurrent relation round trips issued against
// sources without multi-entity composition.
func WithMaxParallel(n int) Option {
	return func(p *Planner) {
		if n > 0 {
			p.maxParallel = n
		}
	}
}

// New constructs a Planner over a source.
func New(src source.Source, opts ...Option) *Planner {
	p := &Planner{
		src:         src,
		collector:   telemetry.Noop(),
		logger:      zerolog.Nop(),
		maxParallel: 4,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Fetch satisfies the query with a composed fetch. No retries happen here;
// errors propagate to the caller unchanged.
func (p *Planner) Fetch(ctx context.Context, q *querymodels.EntityQuery) (*querymodels.EntityGraph, error) {
	sc, err := q.Validate()
	if err != nil {
		return nil, err
	}

	relations := make([]schema.Relation, 0, len(q.Include))
	for _, name := range q.Include {
		rel, _ := sc.Relation(name) // declared; Validate checked
		relations = append(relations, rel)
	}

	start := time.Now()
	var graph *querymodels.EntityGraph
	if p.src.Capabilities().MultiEntityComposition || len(relations) == 0 {
		graph, err = p.fetchComposed(ctx, sc, q, relations)
	} else {
		graph, err = p.fetchPerType(ctx, sc, q, relations)
	}
	if err != nil {
		return nil, err
	}

	p.collector.ObserveRequest("fetch", q.EntityType, graph.RoundTrips, time.Since(start))
	p.logger.Debug().
		Str("entityType", q.EntityType).
		Int("relations", len(relations)).
		Int("roundTrips", graph.RoundTrips).
		Msg("composed fetch")
	return graph, nil
}

// fetchComposed issues the single round trip covering the parent and every
// included relation.
func (p *Planner) fetchComposed(ctx context.Context, sc *schema.Schema, q *querymodels.EntityQuery, relations []schema.Relation) (*querymodels.EntityGraph, error) {
	res, err := p.src.Fetch(ctx, &source.CompositeRequest{
		Schema:     sc,
		Key:        q.Key,
		Projection: q.Projection,
		Relations:  relations,
		Predicate:  q.Predicate,
		Limit:      q.Limit,
		Descending: q.Descending,
	})
	if err != nil {
		return nil, err
	}
	return &querymodels.EntityGraph{
		Parents:    res.Parents,
		Related:    res.Related,
		RoundTrips: 1,
	}, nil
}

// fetchPerType issues one round trip for the parent rows plus one per
// related collection type, concurrently. Row counts never add trips.
func (p *Planner) fetchPerType(ctx context.Context, sc *schema.Schema, q *querymodels.EntityQuery, relations []schema.Relation) (*querymodels.EntityGraph, error) {
	graph := &querymodels.EntityGraph{
		Related:    make(map[string][]interface{}, len(relations)),
		RoundTrips: 1 + len(relations),
	}

	var mu sync.Mutex
	grp := pool.New().
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError().
		WithMaxGoroutines(p.maxParallel)

	grp.Go(func(ctx context.Context) error {
		res, err := p.src.Fetch(ctx, &source.CompositeRequest{
			Schema:     sc,
			Key:        q.Key,
			Projection: q.Projection,
			Predicate:  q.Predicate,
			Limit:      q.Limit,
			Descending: q.Descending,
		})
		if err != nil {
			return err
		}
		mu.Lock()
		graph.Parents = res.Parents
		mu.Unlock()
		return nil
	})

	for _, rel := range relations {
		rel := rel
		grp.Go(func(ctx context.Context) error {
			res, err := p.src.Fetch(ctx, &source.CompositeRequest{
				Schema:        sc,
				Key:           q.Key,
				Relations:     []schema.Relation{rel},
				RelationsOnly: true,
			})
			if err != nil {
				return err
			}
			mu.Lock()
			graph.Related[rel.Name] = res.Related[rel.Name]
			mu.Unlock()
			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return graph, nil
}

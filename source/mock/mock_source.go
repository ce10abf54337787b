/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides a configurable in-memory Source implementation for testing
package mock

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/suparena/fastpath/errors"
	"github.com/suparena/fastpath/querymodels"
	"github.com/suparena/fastpath/source"
)

// Source is an in-memory source.Source for testing. It records every round
// trip and the exact field lists transmitted across the boundary, so tests
// can assert round-trip counts and projection behavior.
type Source struct {
	mu      sync.RWMutex
	name    string
	caps    source.Capabilities
	parents map[string][]map[string]interface{}
	related map[string]map[string][]map[string]interface{}

	roundTrips  int64
	transmitted [][]string

	fetchErr error
	aggErr   error
}

// New creates a new mock Source with multi-entity composition enabled and
// COUNT as the only native aggregate.
func New() *Source {
	return &Source{
		name: "mock",
		caps: source.Capabilities{
			MultiEntityComposition: true,
			NativeAggregates: map[querymodels.AggregateKind]bool{
				querymodels.AggregateCount: true,
			},
			NativeFunctions: map[string]bool{},
		},
		parents: make(map[string][]map[string]interface{}),
		related: make(map[string]map[string][]map[string]interface{}),
	}
}

// WithCapabilities overrides the advertised capabilities
func (m *Source) WithCapabilities(caps source.Capabilities) *Source {
	m.caps = caps
	return m
}

// WithFetchError makes Fetch and Project return an error
func (m *Source) WithFetchError(err error) *Source {
	m.fetchErr = err
	return m
}

// WithAggregateError makes Aggregate return an error
func (m *Source) WithAggregateError(err error) *Source {
	m.aggErr = err
	return m
}

// SeedParents stores parent rows under a key
func (m *Source) SeedParents(key string, rows []map[string]interface{}) *Source {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parents[key] = rows
	return m
}

// SeedRelated stores related rows under a key and relation name
func (m *Source) SeedRelated(key, relation string, rows []map[string]interface{}) *Source {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.related[key] == nil {
		m.related[key] = make(map[string][]map[string]interface{})
	}
	m.related[key][relation] = rows
	return m
}

// RoundTrips returns the number of store round trips issued so far.
func (m *Source) RoundTrips() int64 {
	return atomic.LoadInt64(&m.roundTrips)
}

// ResetRoundTrips zeroes the round-trip counter.
func (m *Source) ResetRoundTrips() {
	atomic.StoreInt64(&m.roundTrips, 0)
}

// TransmittedFields returns the projection list used by each round trip, in
// order. Tests use it to prove unrequested fields never crossed the boundary.
func (m *Source) TransmittedFields() [][]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([][]string, len(m.transmitted))
	copy(out, m.transmitted)
	return out
}

func (m *Source) Name() string { return m.name }

func (m *Source) Capabilities() source.Capabilities { return m.caps }

func (m *Source) recordTrip(projection []string) {
	atomic.AddInt64(&m.roundTrips, 1)
	m.mu.Lock()
	cp := make([]string, len(projection))
	copy(cp, projection)
	m.transmitted = append(m.transmitted, cp)
	m.mu.Unlock()
}

// Fetch issues one simulated round trip.
func (m *Source) Fetch(ctx context.Context, req *source.CompositeRequest) (*source.CompositeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	if !m.caps.MultiEntityComposition && len(req.Relations) > 1 {
		return nil, errors.NewUnsupportedPushdownError(m.name, "multi-entity composition", "one relation per round trip")
	}
	m.recordTrip(req.Projection)

	res := &source.CompositeResult{Related: make(map[string][]interface{})}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if !req.RelationsOnly {
		for _, row := range m.parents[req.Key] {
			res.Parents = append(res.Parents, project(row, req.Projection))
			if req.Limit != nil && int32(len(res.Parents)) >= *req.Limit {
				break
			}
		}
	}
	for _, rel := range req.Relations {
		for _, row := range m.related[req.Key][rel.Name] {
			res.Related[rel.Name] = append(res.Related[rel.Name], row)
		}
	}
	return res, nil
}

// Project issues one simulated round trip returning raw projected rows.
func (m *Source) Project(ctx context.Context, req *source.CompositeRequest) ([]map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	m.recordTrip(req.Projection)

	m.mu.RLock()
	defer m.mu.RUnlock()

	var rows []map[string]interface{}
	for _, row := range m.parents[req.Key] {
		rows = append(rows, project(row, req.Projection).(map[string]interface{}))
		if req.Limit != nil && int32(len(rows)) >= *req.Limit {
			break
		}
	}
	return rows, nil
}

// Aggregate evaluates a native aggregate over the seeded rows, or rejects
// the pushdown exactly as a real store would.
func (m *Source) Aggregate(ctx context.Context, req *source.AggregateRequest) (querymodels.Scalar, error) {
	if err := ctx.Err(); err != nil {
		return querymodels.Scalar{}, err
	}
	if m.aggErr != nil {
		return querymodels.Scalar{}, m.aggErr
	}
	if !m.caps.NativeAggregates[req.Op.Kind] {
		return querymodels.Scalar{}, errors.NewUnsupportedPushdownError(m.name, "aggregate "+string(req.Op.Kind), "")
	}
	m.recordTrip(nil)

	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := m.parents[req.Key]
	switch req.Op.Kind {
	case querymodels.AggregateCount:
		return querymodels.Scalar{Int: int64(len(rows))}, nil
	case querymodels.AggregateSum, querymodels.AggregateAvg:
		var sum float64
		for _, row := range rows {
			if v, ok := row[req.Op.Field].(float64); ok {
				sum += v
			}
		}
		if req.Op.Kind == querymodels.AggregateAvg && len(rows) > 0 {
			sum /= float64(len(rows))
		}
		return querymodels.Scalar{Float: sum, IsFloat: true}, nil
	default:
		return querymodels.Scalar{}, errors.NewUnsupportedPushdownError(m.name, "aggregate "+string(req.Op.Kind), "")
	}
}

// project copies only the requested fields out of a row. An empty projection
// transmits nothing; there is no select-all path even in the mock.
func project(row map[string]interface{}, fields []string) interface{} {
	out := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		if v, ok := row[f]; ok {
			out[f] = v
		}
	}
	return out
}

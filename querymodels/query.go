/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package querymodels

import (
	"github.com/suparena/fastpath/errors"
	"github.com/suparena/fastpath/schema"
)

// PredicateOp enumerates the comparison operators a predicate may use.
type PredicateOp string

const (
	OpEqual              PredicateOp = "="
	OpLessThan           PredicateOp = "<"
	OpLessThanOrEqual    PredicateOp = "<="
	OpGreaterThan        PredicateOp = ">"
	OpGreaterThanOrEqual PredicateOp = ">="
	OpBetween            PredicateOp = "between"
	OpBeginsWith         PredicateOp = "begins_with"
	OpContains           PredicateOp = "contains"

	// OpFunction marks a computed predicate (for example date arithmetic
	// evaluated per row). Stores that cannot evaluate the named function
	// natively reject it with ErrUnsupportedPushdown; callers restructure
	// using the helpers in timewindow.go instead.
	OpFunction PredicateOp = "function"
)

// Predicate is a single filter condition pushed down to the data source.
type Predicate struct {
	// Field is the attribute the predicate applies to.
	Field string
	// Op is the comparison operator.
	Op PredicateOp
	// Values holds the comparison operands: one value for simple operators,
	// two for OpBetween.
	Values []interface{}
	// Function names the computed function when Op is OpFunction.
	Function string
}

// AggregateKind enumerates the aggregate computations.
type AggregateKind string

const (
	AggregateCount AggregateKind = "count"
	AggregateSum   AggregateKind = "sum"
	AggregateAvg   AggregateKind = "avg"
	AggregateMin   AggregateKind = "min"
	AggregateMax   AggregateKind = "max"
)

// AggregateOp describes an aggregate computation pushed down to the source.
type AggregateOp struct {
	Kind AggregateKind
	// Field is the attribute being aggregated. Ignored for AggregateCount.
	Field string
}

// EntityQuery describes a logical fetch: the target entity type, the explicit
// field projection, the related sub-entity collections to include and an
// optional predicate. Absent a projection list there is no implicit
// select-all; validation rejects an empty Projection.
type EntityQuery struct {
	// EntityType is the registered type name of the parent entity.
	EntityType string
	// Key identifies the parent item collection (expanded through the
	// schema's key templates, e.g. an order ID).
	Key string
	// Projection is the explicit field list. Must be a non-empty subset of
	// the registered schema's fields.
	Projection []string
	// Include names the related sub-entity collections to fetch alongside
	// the parent. Each must be a declared relation of the schema.
	Include []string
	// Predicate is an optional filter pushed down to the source.
	Predicate *Predicate
	// Limit caps the number of parent rows returned, if set.
	Limit *int32
	// Descending reverses the traversal order when set.
	Descending bool
}

// Validate checks the query against the registered schema for its entity
// type: the projection must be a non-empty subset of the schema's fields and
// every included relation must be declared.
func (q *EntityQuery) Validate() (*schema.Schema, error) {
	s, ok := schema.GetSchemaByName(q.EntityType)
	if !ok {
		return nil, errors.ErrUnknownSchema
	}
	if len(q.Projection) == 0 {
		return nil, errors.NewQueryValidationError("Projection", "empty projection list; no implicit select-all")
	}
	for _, f := range q.Projection {
		if !s.HasField(f) {
			return nil, errors.NewQueryValidationError(f, "not part of schema")
		}
	}
	for _, rel := range q.Include {
		if _, ok := s.Relation(rel); !ok {
			return nil, errors.NewQueryValidationError(rel, "not a declared relation")
		}
	}
	return s, nil
}

// EntityGraph is the result of a composed fetch: the parent rows plus each
// included related collection, keyed by relation name.
type EntityGraph struct {
	// Parents holds the decoded parent entities.
	Parents []interface{}
	// Related maps relation name to the decoded related entities.
	Related map[string][]interface{}
	// RoundTrips is the number of data-source round trips the fetch used.
	RoundTrips int
}

// ProjectedRows is the result of a projection query. Each row carries only
// the requested fields; nothing else crossed the source boundary.
type ProjectedRows struct {
	// Fields echoes the projection list the rows were shaped by.
	Fields []string
	// Rows holds one map per row, keyed by field name.
	Rows []map[string]interface{}
	// RoundTrips is the number of data-source round trips used.
	RoundTrips int
}

// Scalar is the result of a pushed-down aggregate.
type Scalar struct {
	// Int carries the value for integral aggregates such as COUNT.
	Int int64
	// Float carries the value when IsFloat is set.
	Float float64
	// IsFloat reports whether Float holds the value instead of Int.
	IsFloat bool
}

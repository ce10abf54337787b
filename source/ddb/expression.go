/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/fastpath/errors"
	"github.com/suparena/fastpath/querymodels"
)

// builtExpression carries the translated pieces of a predicate or projection
// ready to drop into a QueryInput.
type builtExpression struct {
	expr   string
	names  map[string]string
	values map[string]types.AttributeValue
}

// translatePredicate converts a predicate into a DynamoDB filter expression.
// Predicates DynamoDB cannot evaluate natively are rejected with an
// UnsupportedPushdown error carrying a restructure hint; there is no
// in-process evaluation path.
func translatePredicate(p *querymodels.Predicate) (*builtExpression, error) {
	if p == nil {
		return nil, nil
	}
	if p.Op == querymodels.OpFunction {
		return nil, errors.NewUnsupportedPushdownError(storeName,
			fmt.Sprintf("predicate function %q", p.Function),
			"restructure into a boundary comparison, e.g. querymodels.InLastDays")
	}

	names := map[string]string{"#f0": p.Field}
	values := make(map[string]types.AttributeValue, len(p.Values))
	for i, v := range p.Values {
		av, err := attributevalue.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal predicate operand: %w", err)
		}
		values[fmt.Sprintf(":v%d", i)] = av
	}

	var expr string
	switch p.Op {
	case querymodels.OpEqual, querymodels.OpLessThan, querymodels.OpLessThanOrEqual,
		querymodels.OpGreaterThan, querymodels.OpGreaterThanOrEqual:
		if len(p.Values) != 1 {
			return nil, fmt.Errorf("operator %q requires exactly one operand", p.Op)
		}
		expr = fmt.Sprintf("#f0 %s :v0", p.Op)
	case querymodels.OpBetween:
		if len(p.Values) != 2 {
			return nil, fmt.Errorf("operator %q requires exactly two operands", p.Op)
		}
		expr = "#f0 BETWEEN :v0 AND :v1"
	case querymodels.OpBeginsWith:
		if len(p.Values) != 1 {
			return nil, fmt.Errorf("operator %q requires exactly one operand", p.Op)
		}
		expr = "begins_with(#f0, :v0)"
	case querymodels.OpContains:
		if len(p.Values) != 1 {
			return nil, fmt.Errorf("operator %q requires exactly one operand", p.Op)
		}
		expr = "contains(#f0, :v0)"
	default:
		return nil, errors.NewUnsupportedPushdownError(storeName,
			fmt.Sprintf("predicate operator %q", p.Op), "")
	}

	return &builtExpression{expr: expr, names: names, values: values}, nil
}

// buildProjection converts a field list into a ProjectionExpression with
// attribute name placeholders. extra fields (EntityType, SK) are appended
// when composed decoding needs them.
func buildProjection(fields []string, extra ...string) *builtExpression {
	all := make([]string, 0, len(fields)+len(extra))
	all = append(all, fields...)
	for _, e := range extra {
		dup := false
		for _, f := range all {
			if f == e {
				dup = true
				break
			}
		}
		if !dup {
			all = append(all, e)
		}
	}

	names := make(map[string]string, len(all))
	parts := make([]string, 0, len(all))
	for i, f := range all {
		ph := fmt.Sprintf("#p%d", i)
		names[ph] = f
		parts = append(parts, ph)
	}
	return &builtExpression{expr: strings.Join(parts, ", "), names: names}
}

// mergeNames combines attribute-name maps from projection and filter pieces.
func mergeNames(ms ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, m := range ms {
		for k, v := range m {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

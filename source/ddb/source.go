/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"

	"github.com/suparena/fastpath/errors"
	"github.com/suparena/fastpath/querymodels"
	"github.com/suparena/fastpath/schema"
	"github.com/suparena/fastpath/source"
)

const storeName = "dynamodb"

// entityTypeAttr is written alongside every item and drives decoder dispatch
// on composed reads.
const entityTypeAttr = "EntityType"

// Source implements source.Source over a single-table DynamoDB layout.
// Related sub-entities live in the parent's item collection (same PK,
// prefixed SK), so one Query returns the parent and all of its related
// collections in one round trip: DynamoDB has true multi-entity composition.
type Source struct {
	client    *sdk.Client
	tableName string
	logger    zerolog.Logger
}

// Option configures a Source.
type Option func(*Source)

// WithLogger attaches a logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Source) { s.logger = l }
}

// New constructs a Source over an existing shared client. The client comes
// from the fastpath registry; the Source never creates its own.
func New(client *sdk.Client, tableName string, opts ...Option) *Source {
	s := &Source{client: client, tableName: tableName, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Source) Name() string { return storeName }

// Capabilities reports what DynamoDB evaluates natively: composed item
// collections and COUNT. SUM/AVG/MIN/MAX and computed predicates are not in
// its query language and are rejected rather than emulated.
func (s *Source) Capabilities() source.Capabilities {
	return source.Capabilities{
		MultiEntityComposition: true,
		NativeAggregates: map[querymodels.AggregateKind]bool{
			querymodels.AggregateCount: true,
		},
		NativeFunctions: map[string]bool{},
	}
}

// buildQueryInput assembles the one QueryInput a composed round trip uses.
func (s *Source) buildQueryInput(req *source.CompositeRequest, projection *builtExpression) (*sdk.QueryInput, error) {
	pk, err := partitionKey(req.Schema.KeyTemplates, req.Key)
	if err != nil {
		return nil, err
	}

	keyCond := "PK = :pk"
	exprVals := map[string]types.AttributeValue{
		":pk": &types.AttributeValueMemberS{Value: pk},
	}

	switch {
	case req.RelationsOnly && len(req.Relations) == 1:
		// Narrow to one related collection by sort-key prefix.
		keyCond += " AND begins_with(SK, :skp)"
		exprVals[":skp"] = &types.AttributeValueMemberS{Value: req.Relations[0].SortKeyPrefix}
	case len(req.Relations) == 0:
		// Parent rows only: pin the sort key when the template expands.
		if sk := expandStringKey(req.Schema.KeyTemplates, req.Key)["SK"]; sk != "" {
			keyCond += " AND SK = :sk"
			exprVals[":sk"] = &types.AttributeValueMemberS{Value: sk}
		}
	}
	// Otherwise the whole item collection is read in one trip and items are
	// bucketed by EntityType after decoding.

	input := &sdk.QueryInput{
		TableName:                 &s.tableName,
		KeyConditionExpression:    &keyCond,
		ExpressionAttributeValues: exprVals,
	}
	if req.Descending {
		input.ScanIndexForward = aws.Bool(false)
	}
	if req.Limit != nil && len(req.Relations) == 0 {
		input.Limit = req.Limit
	}

	filter, err := translatePredicate(req.Predicate)
	if err != nil {
		return nil, err
	}
	var names map[string]string
	if filter != nil {
		input.FilterExpression = &filter.expr
		for k, v := range filter.values {
			input.ExpressionAttributeValues[k] = v
		}
		names = filter.names
	}
	if projection != nil {
		input.ProjectionExpression = &projection.expr
		names = mergeNames(names, projection.names)
	}
	if len(names) > 0 {
		input.ExpressionAttributeNames = names
	}
	return input, nil
}

// fetchProjection builds the ProjectionExpression for a composed fetch.
// Parent-only fetches push the explicit field list down, widened with the
// attributes decode dispatch needs. Relation-bearing fetches read full items
// because each related type carries its own attribute set.
func fetchProjection(req *source.CompositeRequest) *builtExpression {
	if len(req.Relations) > 0 || len(req.Projection) == 0 {
		return nil
	}
	return buildProjection(req.Projection, entityTypeAttr, "SK")
}

// Fetch issues one composed Query and decodes each returned item through the
// schema decoder registry, bucketing by entity type.
func (s *Source) Fetch(ctx context.Context, req *source.CompositeRequest) (*source.CompositeResult, error) {
	input, err := s.buildQueryInput(req, fetchProjection(req))
	if err != nil {
		return nil, err
	}

	out, err := s.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}

	relByType := make(map[string]schema.Relation, len(req.Relations))
	for _, rel := range req.Relations {
		relByType[rel.EntityType] = rel
	}

	res := &source.CompositeResult{Related: make(map[string][]interface{})}
	for _, item := range out.Items {
		var entityType string
		if attr, ok := item[entityTypeAttr]; ok {
			if err := attributevalue.Unmarshal(attr, &entityType); err != nil {
				return nil, fmt.Errorf("failed to unmarshal EntityType: %w", err)
			}
		} else {
			return nil, fmt.Errorf("missing EntityType attribute in item")
		}

		switch {
		case entityType == req.Schema.EntityType:
			if req.RelationsOnly {
				continue
			}
			obj, err := decodeItem(entityType, item)
			if err != nil {
				return nil, err
			}
			res.Parents = append(res.Parents, obj)
		default:
			rel, ok := relByType[entityType]
			if !ok {
				// Item collection may hold types this fetch did not ask for.
				s.logger.Debug().Str("entityType", entityType).Msg("skipping unrequested item type")
				continue
			}
			obj, err := decodeItem(entityType, item)
			if err != nil {
				return nil, err
			}
			res.Related[rel.Name] = append(res.Related[rel.Name], obj)
		}
	}
	return res, nil
}

func decodeItem(entityType string, item map[string]types.AttributeValue) (interface{}, error) {
	decode, err := schema.GetDecoder(entityType)
	if err != nil {
		// Fallback: decode into a generic map so composed reads are not
		// blocked by a missing registration.
		var generic map[string]interface{}
		if err := attributevalue.UnmarshalMap(item, &generic); err != nil {
			return nil, fmt.Errorf("failed to unmarshal generic item: %w", err)
		}
		return generic, nil
	}
	obj, err := decode(item)
	if err != nil {
		return nil, fmt.Errorf("failed to decode item for EntityType %q: %w", entityType, err)
	}
	return obj, nil
}

// Project issues one Query carrying a ProjectionExpression built from the
// request's field list. Only those attributes leave DynamoDB.
func (s *Source) Project(ctx context.Context, req *source.CompositeRequest) ([]map[string]interface{}, error) {
	input, err := s.buildQueryInput(req, buildProjection(req.Projection))
	if err != nil {
		return nil, err
	}

	out, err := s.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}

	rows := make([]map[string]interface{}, 0, len(out.Items))
	for _, item := range out.Items {
		var row map[string]interface{}
		if err := attributevalue.UnmarshalMap(item, &row); err != nil {
			return nil, fmt.Errorf("failed to unmarshal projected row: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Aggregate pushes the computation to DynamoDB. COUNT maps to Select=COUNT;
// everything else is outside DynamoDB's query language and is rejected with
// an UnsupportedPushdown error instead of scanning rows into memory.
func (s *Source) Aggregate(ctx context.Context, req *source.AggregateRequest) (querymodels.Scalar, error) {
	if req.Op.Kind != querymodels.AggregateCount {
		return querymodels.Scalar{}, errors.NewUnsupportedPushdownError(storeName,
			fmt.Sprintf("aggregate %s", req.Op.Kind),
			"DynamoDB evaluates only COUNT natively")
	}

	input, err := s.buildQueryInput(&source.CompositeRequest{
		Schema:    req.Schema,
		Key:       req.Key,
		Predicate: req.Predicate,
	}, nil)
	if err != nil {
		return querymodels.Scalar{}, err
	}
	input.Select = types.SelectCount

	out, err := s.client.Query(ctx, input)
	if err != nil {
		return querymodels.Scalar{}, fmt.Errorf("count query error: %w", err)
	}
	return querymodels.Scalar{Int: int64(out.Count)}, nil
}

// Put stores an entity using its registered schema: key templates expand
// from the entity's own attributes and the EntityType marker is injected so
// composed reads can dispatch decoding.
func Put[T any](ctx context.Context, s *Source, entity T) error {
	sc, ok := schema.GetSchema[T]()
	if !ok {
		return errors.ErrUnknownSchema
	}

	av, err := attributevalue.MarshalMap(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	expanded, err := expandMacros(sc.KeyTemplates, entity)
	if err != nil {
		return err
	}
	for k, v := range expanded {
		av[k] = &types.AttributeValueMemberS{Value: v}
	}
	av[entityTypeAttr] = &types.AttributeValueMemberS{Value: sc.EntityType}

	_, err = s.client.PutItem(ctx, &sdk.PutItemInput{
		TableName: &s.tableName,
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("PutItem failed: %w", err)
	}
	return nil
}

/*
Package ddb provides the DynamoDB implementation of the Source interface.

The Source supports:
  - Single-table item collections: a parent and its related sub-entities
    share a partition key, so one Query composes the whole entity graph in
    one round trip
  - Macro-based key expansion (e.g., "ORDER#{ID}")
  - ProjectionExpression pushdown: only the requested fields leave the store
  - FilterExpression pushdown for simple predicates
  - Native COUNT via Select=COUNT
  - Automatic EntityType injection for polymorphic decoding

Pushdown boundaries:

DynamoDB's query language has no SUM/AVG/MIN/MAX and no computed functions
(date arithmetic and the like). Aggregate and Project reject such requests
with errors.ErrUnsupportedPushdown instead of materializing rows in process;
querymodels provides time-window helpers for restructuring date predicates
into boundary comparisons DynamoDB can evaluate.

Macro Expansion:
Keys can use macros that are replaced with entity field values:

	templates := map[string]string{
	    "PK": "ORDER#{ID}",       // Becomes "ORDER#o-1"
	    "SK": "ORDER#{ID}",
	}

For usage examples, see the planner and executor tests.
*/
package ddb

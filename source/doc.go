/*
Package source defines the narrow interface FastPath uses to talk to a
backing data store.

The main interface is Source, which exposes exactly three store-touching
operations, each costing one round trip:

	type Source interface {
	    Name() string
	    Capabilities() Capabilities
	    Fetch(ctx context.Context, req *CompositeRequest) (*CompositeResult, error)
	    Project(ctx context.Context, req *CompositeRequest) ([]map[string]interface{}, error)
	    Aggregate(ctx context.Context, req *AggregateRequest) (querymodels.Scalar, error)
	}

Implementations:
  - ddb: DynamoDB implementation using single-table item collections for
    multi-entity composition
  - mock: configurable in-memory implementation for testing that records
    round trips and transmitted fields

A source reports what it can evaluate natively through Capabilities and
rejects everything else with errors.ErrUnsupportedPushdown. It never falls
back to materializing rows in process memory.
*/
package source

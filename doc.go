/*
Package fastpath provides a resource access facade for Go applications,
cutting per-request overhead by sharing clients, batching related reads
and pushing field selection down to the storage engine.

The library is built around four cooperating pieces:
  - Client registry: each resource kind's client is constructed exactly
    once and shared; non-concurrency-safe clients go through a bounded
    handle pool that fails fast when exhausted
  - Batch planner: a parent and its declared relations resolve in one
    source round trip when the source supports multi-entity composition,
    and in one trip per entity type otherwise (never one per row)
  - Projection executor: only the requested fields cross the wire, and
    aggregates run at the source when it evaluates them natively
  - Offload queue: deferred work is leased to background consumers with
    at-least-once delivery, retry budgets and a dead letter queue

Key Features:
  - Type-safe fetches using Go generics
  - DynamoDB source backed by single-table item collections
  - Semantic error types for better error handling
  - Structured logging and Prometheus metrics
  - In-memory broker and mock source for testing

Basic Usage:

	// Build a facade over a shared DynamoDB source
	src := ddb.New(client, "app-table")
	fp := fastpath.New(src)

	// One round trip for the order and its line items
	graph, err := fp.Fetch(ctx, &querymodels.EntityQuery{
		EntityType: "Order",
		Key:        "o-123",
		Projection: []string{"ID", "Status"},
		Include:    []string{"LineItems"},
	})

For more information, see the documentation at https://github.com/suparena/fastpath
*/
package fastpath

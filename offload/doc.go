/*
Package offload decouples resource-intensive work from the request-handling
path via an asynchronous, durable work queue with a separate consumer pool.

Producers enqueue and return:

	q := offload.NewQueue("thumbnails", broker)
	id, err := q.Enqueue(ctx, payload)

Consumers run in their own, independently scalable pool:

	c := offload.NewConsumer("thumbnails", broker,
	    offload.WithWorkers(8),
	    offload.WithLeaseDuration(time.Minute),
	)
	err := c.Run(ctx, func(ctx context.Context, item *offload.WorkItem) error {
	    return render(ctx, item.Payload)
	})

# Lifecycle

	Pending -> Leased -> {Completed | Abandoned}

A lease that expires before completion reverts the item to Pending (crash
recovery). An item abandoned beyond its retry budget moves to DeadLettered,
a terminal state surfaced only through the operator inspection interface,
never re-leased automatically.

# At-Least-Once Semantics

Items are delivered at least once. Duplicates occur when a worker crashes
after processing but before Ack, or a lease expires mid-processing.
Handlers must be idempotent or deduplicate by WorkItem ID. Enqueue itself is
idempotent by ID, so a producer that crashes and replays an enqueue does not
create a second pending entry.

Retries with bounded exponential backoff happen only here, at the
consumption layer; the planner and executor never retry.

The Broker interface captures the enqueue/lease/ack/abandon primitives an
external message broker must provide; durability is the broker's property.
MemoryBroker is the in-process reference implementation.
*/
package offload

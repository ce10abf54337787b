/*
Package executor pushes projections and aggregates down to the data source.

Project transmits the query's explicit field list through the source's query
capability; fields outside the list never cross the source boundary, and an
empty list is rejected rather than widened to select-all.

Aggregate pushes the computation itself (COUNT, SUM, ...) to the store.
Anything the store cannot evaluate natively fails with
errors.ErrUnsupportedPushdown before a round trip is spent, signaling the
caller to restructure the query (see querymodels' time-window helpers for
date predicates). The executor never silently falls back to fetching rows
and computing in process: that fallback is the extraneous-fetching path this
package exists to rule out.
*/
package executor

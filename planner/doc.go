/*
Package planner composes logical entity queries into the minimum number of
data-source round trips.

Given an EntityQuery that names a parent entity and K related sub-entity
collections, the planner issues:

  - 1 round trip when the source supports multi-entity composition (for
    example DynamoDB single-table item collections), or
  - 1 round trip for the parent type plus 1 per related collection type
    otherwise, never one per row.

The round-trip count therefore depends only on the distinct entity types
requested, not on the number of rows returned. Relation trips against
non-composing sources run concurrently under a bounded pool.

The planner applies no retries; errors propagate to the caller unchanged.
*/
package planner

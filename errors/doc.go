/*
Package errors provides semantic error types for the FastPath library.

The package defines common error scenarios with specific types that can be
checked using the standard errors.Is() function or the provided helper functions.

Common Errors:

	var (
	    ErrResourceExhausted   = errors.New("resource exhausted")
	    ErrUnsupportedPushdown = errors.New("unsupported pushdown")
	    ErrLeaseExpired        = errors.New("lease expired")
	    ErrDeadLettered        = errors.New("work item dead-lettered")
	    ErrUnknownSchema       = errors.New("no schema registered for type")
	    ErrInvalidQuery        = errors.New("invalid query")
	)

Usage:

	// Check error type
	rows, err := exec.Project(ctx, query)
	if err != nil {
	    if errors.IsUnsupportedPushdown(err) {
	        // Restructure the predicate into a pushdown-compatible form;
	        // there is no silent in-memory fallback.
	        return nil, fmt.Errorf("query must be restructured: %w", err)
	    }
	    return nil, err
	}

	// Create typed errors
	err := errors.NewResourceExhaustedError("legacy-db", 5*time.Second, 8)
	err := errors.NewUnsupportedPushdownError("dynamodb", "aggregate SUM", "only COUNT is native")
	err := errors.NewDeadLetteredError(id, 4, "handler: connection reset")

The error types implement the error interface and support wrapping,
making them compatible with Go's standard error handling patterns.

Propagation policy: transient resource errors are retried with bounded
backoff only at the queue-consumption layer; all other errors propagate to
the caller unchanged. No error is swallowed by falling back to a more
expensive code path.
*/
package errors

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package fastpath

import (
	"context"
	"fmt"
	"time"

	fperrors "github.com/suparena/fastpath/errors"
)

// HandlePool bounds concurrent use of clients that are not safe to share
// across goroutines. The pool constructs a fixed number of handles up
// front; a checkout that cannot be served within the timeout fails fast
// with a ResourceExhausted error instead of queueing unboundedly.
type HandlePool struct {
	kind    string
	timeout time.Duration
	slots   chan *ResourceHandle
	size    int
}

// NewHandlePool constructs size clients for the given kind and returns a
// pool over them. Construction failures abort the pool.
func NewHandlePool(ctx context.Context, kind string, size int, timeout time.Duration, ctor Constructor) (*HandlePool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("pool size must be positive, got %d", size)
	}
	if ctor == nil {
		return nil, fmt.Errorf("constructor for kind %q is nil", kind)
	}

	p := &HandlePool{
		kind:    kind,
		timeout: timeout,
		slots:   make(chan *ResourceHandle, size),
		size:    size,
	}
	for i := 0; i < size; i++ {
		client, err := ctor(ctx)
		if err != nil {
			return nil, fmt.Errorf("construct %q client %d of %d: %w", kind, i+1, size, err)
		}
		p.slots <- &ResourceHandle{
			Kind:      kind,
			Client:    client,
			CreatedAt: time.Now(),
		}
	}
	return p, nil
}

// Checkout takes a handle out of the pool. When all handles are in use it
// waits up to the pool timeout, then fails with ResourceExhausted.
func (p *HandlePool) Checkout(ctx context.Context) (*ResourceHandle, error) {
	select {
	case h := <-p.slots:
		return h, nil
	default:
	}

	start := time.Now()
	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case h := <-p.slots:
		return h, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, fperrors.NewResourceExhaustedError(p.kind, time.Since(start), p.size)
	}
}

// Checkin returns a handle to the pool. Returning a handle the pool did
// not hand out corrupts the accounting; callers must pair every Checkin
// with a prior Checkout.
func (p *HandlePool) Checkin(h *ResourceHandle) {
	if h == nil {
		return
	}
	select {
	case p.slots <- h:
	default:
		// Pool is already full; drop the extra handle.
	}
}

// Size returns the pool capacity.
func (p *HandlePool) Size() int { return p.size }

// Available returns how many handles are currently checked in.
func (p *HandlePool) Available() int { return len(p.slots) }

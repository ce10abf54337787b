/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package fastpath

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Constructor builds the underlying client for a resource kind. It is
// invoked at most once per kind no matter how many callers race on the
// first Acquire.
type Constructor func(ctx context.Context) (any, error)

// ResourceHandle wraps a shared underlying client together with the
// metadata the registry tracks about it. Handles whose clients are not
// safe for concurrent use should be checked out through a HandlePool
// instead of being shared directly.
type ResourceHandle struct {
	// Kind identifies the resource family, for example "dynamodb" or
	// "redis".
	Kind string
	// Client is the underlying client. The caller must type-assert it
	// to the concrete client type.
	Client any
	// CreatedAt records when the client was constructed.
	CreatedAt time.Time
	// ConcurrencySafe reports whether the client may be shared across
	// goroutines without external coordination.
	ConcurrencySafe bool
}

type constructorEntry struct {
	ctor            Constructor
	concurrencySafe bool
}

// registryEntry guards a single construction per kind.
type registryEntry struct {
	once   sync.Once
	handle *ResourceHandle
	err    error
}

// ClientRegistry hands out shared resource handles. Each kind's client is
// constructed exactly once and reused by every subsequent Acquire.
type ClientRegistry struct {
	mu           sync.RWMutex
	constructors map[string]constructorEntry
	entries      map[string]*registryEntry
}

// NewClientRegistry creates an empty registry.
func NewClientRegistry() *ClientRegistry {
	return &ClientRegistry{
		constructors: make(map[string]constructorEntry),
		entries:      make(map[string]*registryEntry),
	}
}

// RegisterConstructor associates a constructor with a resource kind.
// concurrencySafe declares whether the constructed client may be shared
// across goroutines.
func (r *ClientRegistry) RegisterConstructor(kind string, concurrencySafe bool, ctor Constructor) error {
	if ctor == nil {
		return fmt.Errorf("constructor for kind %q is nil", kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.constructors[kind]; exists {
		return fmt.Errorf("constructor for kind %q already registered", kind)
	}
	r.constructors[kind] = constructorEntry{ctor: ctor, concurrencySafe: concurrencySafe}
	return nil
}

// Acquire returns the shared handle for the given kind, constructing the
// underlying client on first use. Concurrent first-time callers block on
// the same construction; none of them triggers a second one. A failed
// construction is cached until Invalidate clears it.
func (r *ClientRegistry) Acquire(ctx context.Context, kind string) (*ResourceHandle, error) {
	r.mu.Lock()
	ce, known := r.constructors[kind]
	if !known {
		r.mu.Unlock()
		return nil, fmt.Errorf("no constructor registered for kind %q", kind)
	}
	entry, exists := r.entries[kind]
	if !exists {
		entry = &registryEntry{}
		r.entries[kind] = entry
	}
	r.mu.Unlock()

	entry.once.Do(func() {
		client, err := ce.ctor(ctx)
		if err != nil {
			entry.err = fmt.Errorf("construct %q client: %w", kind, err)
			return
		}
		entry.handle = &ResourceHandle{
			Kind:            kind,
			Client:          client,
			CreatedAt:       time.Now(),
			ConcurrencySafe: ce.concurrencySafe,
		}
	})

	if entry.err != nil {
		return nil, entry.err
	}
	return entry.handle, nil
}

// Invalidate drops the cached handle for a kind so the next Acquire
// constructs a fresh client. Callers holding the old handle keep it.
func (r *ClientRegistry) Invalidate(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, kind)
}

// Kinds returns the resource kinds with registered constructors.
func (r *ClientRegistry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.constructors))
	for k := range r.constructors {
		kinds = append(kinds, k)
	}
	return kinds
}

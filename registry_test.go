/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package fastpath

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestAcquireConstructsOnce(t *testing.T) {
	reg := NewClientRegistry()
	var constructions int32
	err := reg.RegisterConstructor("dynamodb", true, func(ctx context.Context) (any, error) {
		atomic.AddInt32(&constructions, 1)
		return "client", nil
	})
	if err != nil {
		t.Fatalf("failed to register constructor: %v", err)
	}

	const callers = 50
	var wg sync.WaitGroup
	handles := make([]*ResourceHandle, callers)
	errs := make([]error, callers)

	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			handles[i], errs[i] = reg.Acquire(context.Background(), "dynamodb")
		}(i)
	}
	wg.Wait()

	if n := atomic.LoadInt32(&constructions); n != 1 {
		t.Fatalf("expected exactly 1 construction for %d concurrent callers, got %d", callers, n)
	}
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d failed: %v", i, errs[i])
		}
		if handles[i] != handles[0] {
			t.Errorf("caller %d got a different handle", i)
		}
	}
	if !handles[0].ConcurrencySafe {
		t.Error("expected handle to be marked concurrency safe")
	}
	if handles[0].Client != "client" {
		t.Errorf("unexpected client: %v", handles[0].Client)
	}
}

func TestAcquireUnknownKind(t *testing.T) {
	reg := NewClientRegistry()
	if _, err := reg.Acquire(context.Background(), "redis"); err == nil {
		t.Fatal("expected error for unregistered kind")
	}
}

func TestRegisterConstructorDuplicate(t *testing.T) {
	reg := NewClientRegistry()
	ctor := func(ctx context.Context) (any, error) { return struct{}{}, nil }
	if err := reg.RegisterConstructor("dynamodb", true, ctor); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if err := reg.RegisterConstructor("dynamodb", true, ctor); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestAcquireCachesConstructionError(t *testing.T) {
	reg := NewClientRegistry()
	var constructions int32
	boom := errors.New("endpoint unreachable")
	_ = reg.RegisterConstructor("dynamodb", true, func(ctx context.Context) (any, error) {
		atomic.AddInt32(&constructions, 1)
		return nil, boom
	})

	for i := 0; i < 3; i++ {
		if _, err := reg.Acquire(context.Background(), "dynamodb"); !errors.Is(err, boom) {
			t.Fatalf("attempt %d: expected construction error, got %v", i, err)
		}
	}
	if n := atomic.LoadInt32(&constructions); n != 1 {
		t.Fatalf("expected 1 construction attempt, got %d", n)
	}
}

func TestInvalidateAllowsReconstruction(t *testing.T) {
	reg := NewClientRegistry()
	var constructions int32
	_ = reg.RegisterConstructor("dynamodb", true, func(ctx context.Context) (any, error) {
		return atomic.AddInt32(&constructions, 1), nil
	})

	first, err := reg.Acquire(context.Background(), "dynamodb")
	if err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}

	reg.Invalidate("dynamodb")

	second, err := reg.Acquire(context.Background(), "dynamodb")
	if err != nil {
		t.Fatalf("second acquire failed: %v", err)
	}
	if first.Client == second.Client {
		t.Error("expected a fresh client after invalidation")
	}
	if n := atomic.LoadInt32(&constructions); n != 2 {
		t.Fatalf("expected 2 constructions, got %d", n)
	}
}

func TestKinds(t *testing.T) {
	reg := NewClientRegistry()
	ctor := func(ctx context.Context) (any, error) { return struct{}{}, nil }
	_ = reg.RegisterConstructor("dynamodb", true, ctor)
	_ = reg.RegisterConstructor("redis", false, ctor)

	kinds := reg.Kinds()
	if len(kinds) != 2 {
		t.Fatalf("expected 2 kinds, got %d: %v", len(kinds), kinds)
	}
}

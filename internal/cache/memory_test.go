// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryCache_GetSet(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	if _, err := c.Get(ctx, "missing"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get missing: err = %v, want ErrCacheMiss", err)
	}

	value := []byte("hello")
	if err := c.Set(ctx, "k", value, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value[0] = 'j'

	got, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("Get = %q, want hello (value must be copied)", got)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "k", []byte("v"), 10*time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	now = now.Add(11 * time.Second)
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expired Get: err = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCache_ClearAndClose(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{})
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d after Clear", c.Len())
	}

	_ = c.Close()
	_ = c.Close()
	if err := c.Set(ctx, "a", []byte("1"), 0); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Set after Close: err = %v", err)
	}
}

func TestMemoryCache_MaxEntries(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{MaxEntries: 2})
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)
	_ = c.Set(ctx, "c", []byte("3"), 0)

	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
	// Overwriting an existing key is always allowed.
	if err := c.Set(ctx, "a", []byte("updated"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, _ := c.Get(ctx, "a")
	if string(got) != "updated" {
		t.Errorf("Get(a) = %q", got)
	}
}

func TestTypedCache_GetOrSet(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{})
	defer func() { _ = c.Close() }()

	type page struct {
		Titles []string `json:"titles"`
	}

	var hits, misses int
	tc := NewTypedCache[page](c, time.Minute)
	tc.OnLookup = func(hit bool) {
		if hit {
			hits++
		} else {
			misses++
		}
	}

	calls := 0
	load := func() (page, error) {
		calls++
		return page{Titles: []string{"Open day"}}, nil
	}

	ctx := context.Background()
	for range 3 {
		p, err := tc.GetOrSet(ctx, "announcements", load)
		if err != nil {
			t.Fatalf("GetOrSet: %v", err)
		}
		if len(p.Titles) != 1 || p.Titles[0] != "Open day" {
			t.Errorf("page = %+v", p)
		}
	}
	if calls != 1 {
		t.Errorf("loader called %d times, want 1", calls)
	}
	if hits != 2 || misses != 1 {
		t.Errorf("hits/misses = %d/%d, want 2/1", hits, misses)
	}

	if err := tc.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok := tc.Get(ctx, "announcements"); ok {
		t.Error("entry should be gone after Clear")
	}
}

func TestTypedCache_LoaderError(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{})
	defer func() { _ = c.Close() }()

	tc := NewTypedCache[int](c, time.Minute)
	boom := errors.New("db down")
	if _, err := tc.GetOrSet(context.Background(), "k", func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
	if c.Len() != 0 {
		t.Error("failed loads must not be cached")
	}
}

func TestNew_FallsBackToMemory(t *testing.T) {
	c := New(Config{RedisURL: "redis://127.0.0.1:1/0", DefaultTTL: time.Minute}, nil)
	defer func() { _ = c.Close() }()

	if _, ok := c.(*MemoryCache); !ok {
		t.Errorf("New returned %T, want *MemoryCache", c)
	}
}

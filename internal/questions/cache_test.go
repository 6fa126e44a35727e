package questions

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/abhisek/cybersage/internal/catalog"
)

type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	ttls    map[string]time.Duration
	getErr  error
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	b, ok := c.entries[key]
	return b, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	c.ttls[key] = ttl
	return nil
}

type countingSource struct {
	inner Source
	calls int
	err   error
}

func (s *countingSource) Name() string { return "counting" }

func (s *countingSource) Fetch(ctx context.Context, req Request) (*Set, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.inner.Fetch(ctx, req)
}

func TestCacheKey(t *testing.T) {
	tests := []struct {
		source string
		req    Request
		want   string
	}{
		{"llm", Request{ModuleID: catalog.CyberAttacks, Difficulty: catalog.Easy, Count: 5}, "llm:cyber_attacks:easy:5"},
		{"http", Request{Difficulty: catalog.Hard, Count: 3}, "http:_practice:hard:3"},
	}
	for _, tt := range tests {
		if got := CacheKey(tt.source, tt.req); got != tt.want {
			t.Errorf("CacheKey = %q, want %q", got, tt.want)
		}
	}
}

func TestCachedSource_HitAfterMiss(t *testing.T) {
	inner := &countingSource{inner: MustStaticBank()}
	cache := newMemCache()
	src := NewCachedSource(inner, cache, time.Hour, nil)
	req := Request{ModuleID: catalog.SocialMedia, Difficulty: catalog.Easy, Count: 4}

	first, err := src.Fetch(context.Background(), req)
	if err != nil {
		t.Fatalf("first Fetch: %v", err)
	}
	second, err := src.Fetch(context.Background(), req)
	if err != nil {
		t.Fatalf("second Fetch: %v", err)
	}

	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}
	if !slices.Equal(ids(first.Questions), ids(second.Questions)) {
		t.Errorf("cached questions %v differ from %v", ids(second.Questions), ids(first.Questions))
	}
	if ttl := cache.ttls[CacheKey("counting", req)]; ttl != time.Hour {
		t.Errorf("ttl = %v, want 1h", ttl)
	}
}

func TestCachedSource_CacheErrorFallsThrough(t *testing.T) {
	inner := &countingSource{inner: MustStaticBank()}
	cache := newMemCache()
	cache.getErr = errors.New("connection refused")
	src := NewCachedSource(inner, cache, 0, nil)

	set, err := src.Fetch(context.Background(), Request{Difficulty: catalog.Easy, Count: 2})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(set.Questions) != 2 {
		t.Errorf("got %d questions, want 2", len(set.Questions))
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}
}

func TestCachedSource_InnerErrorNotCached(t *testing.T) {
	inner := &countingSource{err: fetchErr("counting", errors.New("boom"))}
	cache := newMemCache()
	src := NewCachedSource(inner, cache, time.Minute, nil)

	if _, err := src.Fetch(context.Background(), Request{Difficulty: catalog.Easy, Count: 2}); err == nil {
		t.Fatal("expected the inner error")
	}
	if len(cache.entries) != 0 {
		t.Errorf("cache has %d entries after a failed fetch", len(cache.entries))
	}
}

func TestCachedSource_CorruptEntry(t *testing.T) {
	inner := &countingSource{inner: MustStaticBank()}
	cache := newMemCache()
	req := Request{Difficulty: catalog.Easy, Count: 1}
	cache.entries[CacheKey("counting", req)] = []byte("not json")

	src := NewCachedSource(inner, cache, time.Minute, nil)
	set, err := src.Fetch(context.Background(), req)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if set.Len() != 1 {
		t.Errorf("Len = %d, want 1", set.Len())
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}
}

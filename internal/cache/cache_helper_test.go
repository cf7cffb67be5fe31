package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestHelper(t *testing.T) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewCacheHelper(client, "test:"), mr
}

func TestCacheHelper_SetGet(t *testing.T) {
	ctx := context.Background()
	helper, _ := newTestHelper(t)

	type payload struct {
		Count int64 `json:"count"`
	}

	if err := helper.Set(ctx, "k", payload{Count: 7}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got payload
	if err := helper.Get(ctx, "k", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Count != 7 {
		t.Errorf("expected 7, got %d", got.Count)
	}

	if err := helper.Get(ctx, "missing", &got); !errors.Is(err, ErrCacheNotFound) {
		t.Fatalf("expected ErrCacheNotFound, got %v", err)
	}
}

func TestCacheHelper_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	helper, mr := newTestHelper(t)

	if err := helper.SetString(ctx, "otp", "1234", time.Minute); err != nil {
		t.Fatalf("set string: %v", err)
	}

	mr.FastForward(time.Minute + time.Second)

	if _, err := helper.GetString(ctx, "otp"); !errors.Is(err, ErrCacheNotFound) {
		t.Fatalf("expected expired key, got %v", err)
	}
}

func TestCacheHelper_CacheOrExecute(t *testing.T) {
	ctx := context.Background()
	helper, _ := newTestHelper(t)

	calls := 0
	loader := func() (interface{}, error) {
		calls++
		return int64(42), nil
	}

	var got int64
	if err := helper.CacheOrExecute(ctx, "count", &got, time.Minute, loader); err != nil {
		t.Fatalf("first read: %v", err)
	}
	if got != 42 || calls != 1 {
		t.Fatalf("expected loader hit, got value %d after %d calls", got, calls)
	}

	// Second read is served from cache.
	got = 0
	if err := helper.CacheOrExecute(ctx, "count", &got, time.Minute, loader); err != nil {
		t.Fatalf("second read: %v", err)
	}
	if got != 42 || calls != 1 {
		t.Fatalf("expected cache hit, got value %d after %d calls", got, calls)
	}
}

func TestCacheHelper_NilClientDegradesGracefully(t *testing.T) {
	ctx := context.Background()
	helper := NewCacheHelper(nil, "test:")

	if err := helper.Set(ctx, "k", 1, time.Minute); err != nil {
		t.Fatalf("expected set no-op, got %v", err)
	}

	var got int
	if err := helper.Get(ctx, "k", &got); !errors.Is(err, ErrCacheNotAvailable) {
		t.Fatalf("expected ErrCacheNotAvailable, got %v", err)
	}

	// The loader still runs, so reads work without Redis.
	var count int64
	err := helper.CacheOrExecute(ctx, "count", &count, time.Minute, func() (interface{}, error) {
		return int64(9), nil
	})
	if err != nil {
		t.Fatalf("cache-or-execute: %v", err)
	}
	if count != 9 {
		t.Errorf("expected 9, got %d", count)
	}

	if err := helper.Delete(ctx, "k"); err != nil {
		t.Fatalf("expected delete no-op, got %v", err)
	}
}

func TestCacheHelper_DeleteMultiple(t *testing.T) {
	ctx := context.Background()
	helper, mr := newTestHelper(t)

	for _, k := range []string{"a", "b", "c"} {
		if err := helper.SetString(ctx, k, "v", time.Minute); err != nil {
			t.Fatalf("set: %v", err)
		}
	}

	if err := helper.Delete(ctx, "a", "b"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if mr.Exists("test:a") || mr.Exists("test:b") {
		t.Error("expected a and b gone")
	}
	if !mr.Exists("test:c") {
		t.Error("expected c untouched")
	}
}

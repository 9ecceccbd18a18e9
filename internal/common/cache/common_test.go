package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"probrowse/pkg/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache, err := NewRedisCacheWithClient(client)
	if err != nil {
		t.Fatalf("create cache failed: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })
	return cache, mr
}

type testRecord struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestGetWithCachedFetchesOnce(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	calls := 0
	fetch := func(ctx context.Context) (testRecord, error) {
		calls++
		return testRecord{Name: "problems", Count: 3}, nil
	}
	isEmpty := func(r testRecord) bool { return r.Name == "" }
	marshal := func(r testRecord) string {
		data, _ := json.Marshal(r)
		return string(data)
	}
	unmarshal := func(s string) (testRecord, error) {
		var r testRecord
		err := json.Unmarshal([]byte(s), &r)
		return r, err
	}

	for i := 0; i < 3; i++ {
		got, err := GetWithCached(ctx, cache, "test:record", time.Minute, time.Second, isEmpty, marshal, unmarshal, fetch)
		testutil.AssertNil(t, err)
		testutil.AssertEqual(t, got, testRecord{Name: "problems", Count: 3})
	}
	testutil.AssertEqual(t, calls, 1)
}

func TestGetWithCachedNullCaching(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	calls := 0
	fetch := func(ctx context.Context) (string, error) {
		calls++
		return "", nil
	}
	identity := func(s string) (string, error) { return s, nil }

	for i := 0; i < 3; i++ {
		got, err := GetWithCached(ctx, cache, "test:missing", time.Minute, time.Minute,
			func(s string) bool { return s == "" },
			func(s string) string { return s },
			identity, fetch)
		testutil.AssertNil(t, err)
		testutil.AssertEqual(t, got, "")
	}
	// The empty result is cached as the null sentinel.
	testutil.AssertEqual(t, calls, 1)
	value, err := cache.Get(ctx, "test:missing")
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, value, NullCacheValue)
}

func TestGetWithCachedFetchError(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	wantErr := errors.New("database down")
	_, err := GetWithCached(ctx, cache, "test:error", time.Minute, time.Second,
		func(s string) bool { return s == "" },
		func(s string) string { return s },
		func(s string) (string, error) { return s, nil },
		func(ctx context.Context) (string, error) { return "", wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("got %v, want %v", err, wantErr)
	}

	// Errors are never cached.
	value, err := cache.Get(ctx, "test:error")
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, value, "")
}

func TestUpdateCachedInvalidates(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	testutil.AssertNil(t, cache.Set(ctx, "test:stale", "old", time.Minute))
	err := UpdateCached(ctx, cache, "test:stale", func(ctx context.Context) error { return nil })
	testutil.AssertNil(t, err)

	value, err := cache.Get(ctx, "test:stale")
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, value, "")
}

func TestTryLock(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	ok, err := cache.TryLock(ctx, "test:lock", time.Minute)
	testutil.AssertNil(t, err)
	testutil.AssertTrue(t, ok, "first lock attempt should succeed")

	ok, err = cache.TryLock(ctx, "test:lock", time.Minute)
	testutil.AssertNil(t, err)
	testutil.AssertFalse(t, ok, "second lock attempt should fail while held")

	testutil.AssertNil(t, cache.Unlock(ctx, "test:lock"))
	ok, err = cache.TryLock(ctx, "test:lock", time.Minute)
	testutil.AssertNil(t, err)
	testutil.AssertTrue(t, ok, "lock should be free after unlock")

	// Lock expires on its own.
	mr.FastForward(2 * time.Minute)
	ok, err = cache.TryLock(ctx, "test:lock", time.Minute)
	testutil.AssertNil(t, err)
	testutil.AssertTrue(t, ok, "lock should be free after TTL expiry")
}

func TestJitterTTL(t *testing.T) {
	ttl := 10 * time.Minute
	for i := 0; i < 100; i++ {
		jittered := JitterTTL(ttl)
		testutil.AssertTrue(t, jittered <= ttl, "jittered TTL must not exceed the base TTL")
		testutil.AssertTrue(t, jittered >= ttl-ttl/10, "jitter must stay within ten percent")
	}
	testutil.AssertEqual(t, JitterTTL(0), time.Duration(0))
}

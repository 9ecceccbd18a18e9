package repository

import (
	"context"
	"errors"
	"testing"

	"probrowse/internal/common/cache"
	"probrowse/internal/user/model"
	"probrowse/pkg/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRepository(t *testing.T) PreferenceRepository {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	redisCache, err := cache.NewRedisCacheWithClient(client)
	if err != nil {
		t.Fatalf("create cache failed: %v", err)
	}
	t.Cleanup(func() { _ = redisCache.Close() })
	return NewPreferenceRepository(redisCache)
}

func TestPreferenceRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	saved := model.Preference{
		UserID:              "tourist",
		Band:                "difficult",
		Exclude:             "2weeks",
		IncludeExperimental: true,
		Count:               25,
	}
	testutil.AssertNil(t, repo.Save(ctx, &saved))

	got, err := repo.Get(ctx, "tourist")
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, *got, saved)
}

func TestPreferenceGetMissing(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.Get(context.Background(), "nobody")
	if !errors.Is(err, ErrPreferenceNotFound) {
		t.Fatalf("got %v, want ErrPreferenceNotFound", err)
	}
}

func TestPreferenceDelete(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	pref := model.DefaultPreference("tourist")
	testutil.AssertNil(t, repo.Save(ctx, &pref))
	testutil.AssertNil(t, repo.Delete(ctx, "tourist"))

	_, err := repo.Get(ctx, "tourist")
	if !errors.Is(err, ErrPreferenceNotFound) {
		t.Fatalf("got %v, want ErrPreferenceNotFound", err)
	}
}

func TestPreferenceSaveValidation(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if err := repo.Save(ctx, nil); err == nil {
		t.Fatal("expected error for nil preference")
	}
	if err := repo.Save(ctx, &model.Preference{Band: "easy"}); err == nil {
		t.Fatal("expected error for empty user id")
	}
}

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/kirkpatrick8/eventpool/internal/models"
	"github.com/kirkpatrick8/eventpool/pkg/logger"
)

func setupTestCache(t *testing.T, ttl time.Duration) (*PredictionCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return NewPredictionCache(rdb, "owner/repo@main:predictions.csv", ttl, logger.NewNop()), mr
}

func samplePredictions() []models.Prediction {
	return []models.Prediction{
		{
			Name:        "Mark",
			StephGender: models.GenderBoy,
			AoifeGender: models.GenderGirl,
			SubmittedAt: time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC),
		},
	}
}

func TestPredictionCacheMissThenHit(t *testing.T) {
	c, _ := setupTestCache(t, time.Minute)
	ctx := context.Background()

	if _, ok := c.Get(ctx); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Set(ctx, samplePredictions())

	got, ok := c.Get(ctx)
	if !ok {
		t.Fatal("expected hit after set")
	}
	if len(got) != 1 || got[0].Name != "Mark" {
		t.Errorf("unexpected cached value: %+v", got)
	}
}

func TestPredictionCacheTTLExpiry(t *testing.T) {
	c, mr := setupTestCache(t, time.Minute)
	ctx := context.Background()

	c.Set(ctx, samplePredictions())
	if _, ok := c.Get(ctx); !ok {
		t.Fatal("expected hit within TTL window")
	}

	mr.FastForward(time.Minute + time.Second)

	if _, ok := c.Get(ctx); ok {
		t.Fatal("expected miss after TTL expiry")
	}
}

func TestPredictionCacheClear(t *testing.T) {
	c, _ := setupTestCache(t, time.Minute)
	ctx := context.Background()

	c.Set(ctx, samplePredictions())
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	if _, ok := c.Get(ctx); ok {
		t.Fatal("expected miss after clear")
	}
}

func TestPredictionCacheCorruptEntry(t *testing.T) {
	c, mr := setupTestCache(t, time.Minute)
	ctx := context.Background()

	mr.Set("eventpool:predictions:owner/repo@main:predictions.csv", "{not json")

	if _, ok := c.Get(ctx); ok {
		t.Fatal("expected miss on corrupt entry")
	}
	if mr.Exists("eventpool:predictions:owner/repo@main:predictions.csv") {
		t.Error("corrupt entry should have been dropped")
	}
}

func TestPredictionCacheEmptyListIsCacheable(t *testing.T) {
	c, _ := setupTestCache(t, time.Minute)
	ctx := context.Background()

	c.Set(ctx, []models.Prediction{})

	got, ok := c.Get(ctx)
	if !ok {
		t.Fatal("expected hit for cached empty list")
	}
	if len(got) != 0 {
		t.Errorf("expected empty list, got %d entries", len(got))
	}
}

package cache

import (
	"context"
	"testing"
	"time"

	basecache "github.com/febriansr/prediction-league/internal/platform/cache"
	"github.com/febriansr/prediction-league/internal/platform/logging"
	"github.com/febriansr/prediction-league/internal/usecase"
)

func TestRankingInvalidator_DropsSnapshot(t *testing.T) {
	ctx := context.Background()
	store := basecache.NewStore(time.Minute)
	key := usecase.RankingCacheKey("group-1")
	store.Set(ctx, key, "snapshot")

	invalidator, err := NewRankingInvalidator(store, 2, logging.NewNop())
	if err != nil {
		t.Fatalf("new ranking invalidator: %v", err)
	}
	defer invalidator.Close()

	invalidator.Invalidate("group-1")

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, ok := store.Get(ctx, key); !ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected snapshot to be invalidated")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRankingInvalidator_InvalidateAll(t *testing.T) {
	ctx := context.Background()
	store := basecache.NewStore(time.Minute)
	store.Set(ctx, usecase.RankingCacheKey("group-1"), "a")
	store.Set(ctx, usecase.RankingCacheKey("group-2"), "b")
	store.Set(ctx, "fixture:id:fx-1", "keep")

	invalidator, err := NewRankingInvalidator(store, 1, logging.NewNop())
	if err != nil {
		t.Fatalf("new ranking invalidator: %v", err)
	}
	defer invalidator.Close()

	invalidator.InvalidateAll()

	if _, ok := store.Get(ctx, usecase.RankingCacheKey("group-1")); ok {
		t.Fatalf("expected group-1 snapshot to be dropped")
	}
	if _, ok := store.Get(ctx, usecase.RankingCacheKey("group-2")); ok {
		t.Fatalf("expected group-2 snapshot to be dropped")
	}
	if _, ok := store.Get(ctx, "fixture:id:fx-1"); !ok {
		t.Fatalf("expected unrelated key to survive")
	}
}

func TestRankingInvalidator_NilStoreIsNoop(t *testing.T) {
	invalidator, err := NewRankingInvalidator(nil, 1, nil)
	if err != nil {
		t.Fatalf("new ranking invalidator: %v", err)
	}
	defer invalidator.Close()

	invalidator.Invalidate("group-1")
	invalidator.InvalidateAll()
}

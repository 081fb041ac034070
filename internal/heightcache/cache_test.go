package heightcache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCache_SingleFetchWithinWindow(t *testing.T) {
	cache := New(DefaultTTL)
	calls := 0
	fetch := func(ctx context.Context) (int64, error) {
		calls++
		return 800000, nil
	}

	ctx := context.Background()
	if h := cache.Get(ctx, "GAME", fetch); h != 800000 {
		t.Fatalf("expected 800000, got %d", h)
	}
	if h := cache.Get(ctx, "GAME", fetch); h != 800000 {
		t.Fatalf("expected cached 800000, got %d", h)
	}
	if calls != 1 {
		t.Errorf("expected exactly one upstream query, got %d", calls)
	}
}

func TestCache_RefetchAfterExpiry(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	cache := New(DefaultTTL)
	cache.nowFunc = func() time.Time { return now }

	calls := 0
	fetch := func(ctx context.Context) (int64, error) {
		calls++
		return int64(800000 + calls), nil
	}

	ctx := context.Background()
	_ = cache.Get(ctx, "GAME", fetch)

	now = now.Add(179 * time.Second)
	if h := cache.Get(ctx, "GAME", fetch); h != 800001 {
		t.Errorf("expected cached height inside window, got %d", h)
	}

	now = now.Add(2 * time.Second)
	if h := cache.Get(ctx, "GAME", fetch); h != 800002 {
		t.Errorf("expected fresh height after window, got %d", h)
	}
	if calls != 2 {
		t.Errorf("expected 2 upstream queries, got %d", calls)
	}
}

func TestCache_FailureResolvesToZeroUncached(t *testing.T) {
	cache := New(DefaultTTL)
	calls := 0
	fetch := func(ctx context.Context) (int64, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("connection refused")
		}
		return 800000, nil
	}

	ctx := context.Background()
	if h := cache.Get(ctx, "GAME", fetch); h != 0 {
		t.Fatalf("expected 0 on failed fetch, got %d", h)
	}

	// Failure was not cached: the next call retries upstream.
	if h := cache.Get(ctx, "GAME", fetch); h != 800000 {
		t.Fatalf("expected 800000 after retry, got %d", h)
	}
	if calls != 2 {
		t.Errorf("expected 2 upstream queries, got %d", calls)
	}
}

func TestCache_PerCurrencyEntries(t *testing.T) {
	cache := New(DefaultTTL)
	ctx := context.Background()

	game := cache.Get(ctx, "GAME", func(ctx context.Context) (int64, error) { return 100, nil })
	doge := cache.Get(ctx, "DOGE", func(ctx context.Context) (int64, error) { return 200, nil })

	if game != 100 || doge != 200 {
		t.Errorf("expected independent entries, got GAME=%d DOGE=%d", game, doge)
	}
}

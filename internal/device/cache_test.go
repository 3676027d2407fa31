package device

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubInfo struct {
	info  AssetInfo
	err   error
	calls int
}

func (s *stubInfo) Info(context.Context, string) (AssetInfo, error) {
	s.calls++
	if s.err != nil {
		return AssetInfo{}, s.err
	}
	return s.info, nil
}

func TestCachingInfoProviderInfo(t *testing.T) {
	base := &stubInfo{info: AssetInfo{URI: "file:///a.jpg"}}
	cache := NewCachingInfoProvider(base, time.Minute)

	ctx := context.Background()

	info, err := cache.Info(ctx, "a")
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if info.URI != "file:///a.jpg" {
		t.Fatalf("unexpected info: %+v", info)
	}
	if _, err := cache.Info(ctx, "a"); err != nil {
		t.Fatalf("info: %v", err)
	}
	if base.calls != 1 {
		t.Fatalf("expected cached result got %d calls", base.calls)
	}
}

func TestCachingInfoProviderExpiry(t *testing.T) {
	base := &stubInfo{info: AssetInfo{URI: "x"}}
	cache := NewCachingInfoProvider(base, time.Minute)
	now := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	if _, err := cache.Info(context.Background(), "a"); err != nil {
		t.Fatalf("info: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := cache.Info(context.Background(), "a"); err != nil {
		t.Fatalf("info: %v", err)
	}
	if base.calls != 2 {
		t.Fatalf("expected cache miss after expiry got %d calls", base.calls)
	}
}

func TestCachingInfoProviderErrors(t *testing.T) {
	var nilCache *CachingInfoProvider
	if _, err := nilCache.Info(context.Background(), "a"); !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable got %v", err)
	}

	base := &stubInfo{err: ErrAssetNotFound}
	cache := NewCachingInfoProvider(base, 0)
	if cache.ttl <= 0 {
		t.Fatalf("expected ttl to default positive got %v", cache.ttl)
	}
	for i := 0; i < 2; i++ {
		if _, err := cache.Info(context.Background(), "a"); !errors.Is(err, ErrAssetNotFound) {
			t.Fatalf("expected ErrAssetNotFound got %v", err)
		}
	}
	if base.calls != 2 {
		t.Fatalf("failures must not be cached, got %d calls", base.calls)
	}
}

func TestCachingInfoProviderRetain(t *testing.T) {
	base := &stubInfo{info: AssetInfo{URI: "file:///a.jpg"}}
	cache := NewCachingInfoProvider(base, time.Minute)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if _, err := cache.Info(ctx, id); err != nil {
			t.Fatalf("info %s: %v", id, err)
		}
	}
	if removed := cache.Retain([]string{"a", "c", "new"}); removed != 1 {
		t.Fatalf("expected one entry removed, got %d", removed)
	}
	if _, ok := cache.assets["b"]; ok {
		t.Fatal("expected unlisted asset to be evicted")
	}

	base.calls = 0
	if _, err := cache.Info(ctx, "a"); err != nil {
		t.Fatalf("info: %v", err)
	}
	if _, err := cache.Info(ctx, "b"); err != nil {
		t.Fatalf("info: %v", err)
	}
	if base.calls != 1 {
		t.Fatalf("expected only the evicted asset to be looked up again, got %d calls", base.calls)
	}
}

func TestCachingInfoProviderRetainDropsExpired(t *testing.T) {
	base := &stubInfo{info: AssetInfo{URI: "x"}}
	cache := NewCachingInfoProvider(base, time.Minute)
	now := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	if _, err := cache.Info(context.Background(), "a"); err != nil {
		t.Fatalf("info: %v", err)
	}
	now = now.Add(time.Hour)
	if removed := cache.Retain([]string{"a"}); removed != 1 || len(cache.assets) != 0 {
		t.Fatalf("expected the expired entry to be dropped, removed %d left %d", removed, len(cache.assets))
	}
}

func TestCachingInfoProviderEvictsMissingAsset(t *testing.T) {
	base := &stubInfo{info: AssetInfo{URI: "x"}}
	cache := NewCachingInfoProvider(base, time.Minute)
	now := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	if _, err := cache.Info(context.Background(), "a"); err != nil {
		t.Fatalf("info: %v", err)
	}
	now = now.Add(2 * time.Minute)
	base.err = ErrAssetNotFound
	if _, err := cache.Info(context.Background(), "a"); !errors.Is(err, ErrAssetNotFound) {
		t.Fatalf("expected ErrAssetNotFound got %v", err)
	}
	if _, ok := cache.assets["a"]; ok {
		t.Fatal("expected entry for a missing asset to be evicted")
	}
}

type staticLister []Asset

func (l staticLister) List(context.Context) ([]Asset, error) { return l, nil }

func TestScanEvictsAssetsNoLongerListed(t *testing.T) {
	base := &stubInfo{info: AssetInfo{URI: "file:///x.jpg"}}
	cache := NewCachingInfoProvider(base, time.Hour)
	ctx := context.Background()

	first := staticLister{{ID: "a", MediaType: MediaTypePhoto}, {ID: "b", MediaType: MediaTypePhoto}}
	if records, err := Scan(ctx, first, cache); err != nil || len(records) != 2 {
		t.Fatalf("first scan: %d records, %v", len(records), err)
	}

	second := staticLister{{ID: "a", MediaType: MediaTypePhoto}}
	if records, err := Scan(ctx, second, cache); err != nil || len(records) != 1 {
		t.Fatalf("second scan: %d records, %v", len(records), err)
	}
	if _, ok := cache.assets["b"]; ok {
		t.Fatal("expected the removed asset to leave the cache")
	}
	if base.calls != 2 {
		t.Fatalf("expected the listed asset to stay cached, got %d lookups", base.calls)
	}
}

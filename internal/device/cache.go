package device

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Retainer is implemented by info providers that keep per-asset state. Scan
// calls Retain with the ids of the latest listing so state for assets that
// left the device library is dropped.
type Retainer interface {
	Retain(assetIDs []string) int
}

type cachedInfo struct {
	info    AssetInfo
	fetched time.Time
}

// CachingInfoProvider remembers per-asset lookups for a TTL so repeated scans
// only read new or changed assets. Entries are evicted when the asset is
// missing from a listing or the underlying provider no longer finds it.
type CachingInfoProvider struct {
	base InfoProvider
	ttl  time.Duration
	now  func() time.Time

	mu     sync.RWMutex
	assets map[string]cachedInfo
}

// NewCachingInfoProvider wraps base. A non-positive ttl defaults to a minute.
func NewCachingInfoProvider(base InfoProvider, ttl time.Duration) *CachingInfoProvider {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachingInfoProvider{
		base:   base,
		ttl:    ttl,
		now:    time.Now,
		assets: make(map[string]cachedInfo),
	}
}

// Info returns the remembered details for assetID while they are fresh and
// looks them up otherwise. Lookup failures are never remembered.
func (c *CachingInfoProvider) Info(ctx context.Context, assetID string) (AssetInfo, error) {
	if c == nil || c.base == nil {
		return AssetInfo{}, ErrSourceUnavailable
	}

	now := c.now()
	if info, ok := c.fresh(assetID, now); ok {
		return info, nil
	}

	info, err := c.base.Info(ctx, assetID)
	if err != nil {
		if errors.Is(err, ErrAssetNotFound) {
			c.drop(assetID)
		}
		return AssetInfo{}, err
	}

	c.mu.Lock()
	c.assets[assetID] = cachedInfo{info: info, fetched: now}
	c.mu.Unlock()
	return info, nil
}

// Retain keeps only the entries for assetIDs and drops expired ones. It
// returns the number of entries removed.
func (c *CachingInfoProvider) Retain(assetIDs []string) int {
	if c == nil {
		return 0
	}

	listed := make(map[string]struct{}, len(assetIDs))
	for _, id := range assetIDs {
		listed[id] = struct{}{}
	}
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for id, entry := range c.assets {
		_, ok := listed[id]
		if ok && now.Sub(entry.fetched) < c.ttl {
			continue
		}
		delete(c.assets, id)
		removed++
	}
	return removed
}

func (c *CachingInfoProvider) fresh(assetID string, now time.Time) (AssetInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.assets[assetID]
	if !ok || now.Sub(entry.fetched) >= c.ttl {
		return AssetInfo{}, false
	}
	return entry.info, true
}

func (c *CachingInfoProvider) drop(assetID string) {
	c.mu.Lock()
	delete(c.assets, assetID)
	c.mu.Unlock()
}

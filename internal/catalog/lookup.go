package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// BarcodeLookup wraps repository barcode lookups with request coalescing and a
// short Redis cache. POS terminals rescan the same handful of barcodes in
// bursts; misses are not cached so a freshly registered item resolves at once.
type BarcodeLookup struct {
	repo   Repository
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewBarcodeLookup constructs the lookup layer. A nil Redis client disables
// caching but keeps coalescing.
func NewBarcodeLookup(repo Repository, client *redis.Client, ttl time.Duration) *BarcodeLookup {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &BarcodeLookup{repo: repo, client: client, ttl: ttl}
}

func (l *BarcodeLookup) Get(ctx context.Context, barcode string) (Item, error) {
	// Cache trouble must not break scanning; any miss or error falls through
	// to the coalesced repository lookup.
	if l.client != nil {
		if payload, err := l.client.Get(ctx, l.key(barcode)).Bytes(); err == nil {
			var item Item
			if err := json.Unmarshal(payload, &item); err == nil {
				return item, nil
			}
		}
	}

	v, err, _ := l.group.Do(barcode, func() (interface{}, error) {
		item, err := l.repo.GetByBarcode(ctx, barcode)
		if err != nil {
			return nil, err
		}
		if l.client != nil {
			if payload, err := json.Marshal(item); err == nil {
				_ = l.client.Set(ctx, l.key(barcode), payload, l.ttl).Err()
			}
		}
		return item, nil
	})
	if err != nil {
		return Item{}, err
	}
	return v.(Item), nil
}

// Invalidate drops the cached entry after an item changes.
func (l *BarcodeLookup) Invalidate(ctx context.Context, barcode *string) {
	if l.client == nil || barcode == nil || *barcode == "" {
		return
	}
	_ = l.client.Del(ctx, l.key(*barcode)).Err()
}

func (l *BarcodeLookup) key(barcode string) string {
	return "catalog:barcode:" + barcode
}

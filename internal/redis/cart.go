// Package redis persists the shopper's cart between restarts.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dukerupert/shopcore/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

// DefaultCartKey is the key the single in-process cart is saved under.
const DefaultCartKey = "shopcore:cart"

// DefaultCartTTL bounds how long an untouched cart survives.
const DefaultCartTTL = 30 * 24 * time.Hour

// kv is the subset of goredis.Cmdable the store needs.
type kv interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
}

// CartSnapshotStore saves cart lines as one JSON document.
type CartSnapshotStore struct {
	rdb kv
	key string
	ttl time.Duration
}

// Connect parses a redis:// URL, dials the server and verifies it with PING.
func Connect(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// NewCartSnapshotStore stores the cart under key with the given ttl.
// Empty key and zero ttl select the defaults.
func NewCartSnapshotStore(client goredis.Cmdable, key string, ttl time.Duration) *CartSnapshotStore {
	return newCartSnapshotStore(client, key, ttl)
}

func newCartSnapshotStore(rdb kv, key string, ttl time.Duration) *CartSnapshotStore {
	if key == "" {
		key = DefaultCartKey
	}
	if ttl <= 0 {
		ttl = DefaultCartTTL
	}
	return &CartSnapshotStore{rdb: rdb, key: key, ttl: ttl}
}

// Save replaces the stored snapshot. An empty cart deletes the key.
func (s *CartSnapshotStore) Save(ctx context.Context, items []domain.CartItem) error {
	const op = "cart_snapshot.save"

	if len(items) == 0 {
		if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
			return domain.WrapError(err, domain.EINTERNAL, op, "Failed to delete cart snapshot")
		}
		return nil
	}

	data, err := json.Marshal(items)
	if err != nil {
		return domain.WrapError(err, domain.EINTERNAL, op, "Failed to encode cart snapshot")
	}

	if err := s.rdb.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return domain.WrapError(err, domain.EINTERNAL, op, "Failed to save cart snapshot")
	}
	return nil
}

// Load returns the stored lines, or nil when nothing is saved.
func (s *CartSnapshotStore) Load(ctx context.Context) ([]domain.CartItem, error) {
	const op = "cart_snapshot.load"

	data, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.FetchFailed(err, op, "Failed to load cart snapshot")
	}

	var items []domain.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "Cart snapshot is corrupt")
	}
	return items, nil
}

// Package cache keeps read-through copies of catalog items in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"storefront/logging"
	"storefront/models"
)

// ErrMiss is returned when a key is not cached.
var ErrMiss = errors.New("cache miss")

// ItemCache stores items under their id and slug keys.
type ItemCache interface {
	Get(ctx context.Context, key string) (*models.Item, error)
	Set(ctx context.Context, item *models.Item) error
	Invalidate(ctx context.Context, keys ...string) error
}

// IDKey and SlugKey build the cache keys of an item.
func IDKey(id string) string     { return "id:" + id }
func SlugKey(slug string) string { return "slug:" + slug }

// Redis implements ItemCache using Redis.
type Redis struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Redis)

// WithTTL sets the expiration of cached items.
func WithTTL(ttl time.Duration) Option {
	return func(r *Redis) {
		r.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(r *Redis) {
		r.prefix = prefix
	}
}

// NewRedis creates a Redis item cache.
func NewRedis(address, password string, db int, opts ...Option) *Redis {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a Redis item cache from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Redis {
	r := &Redis{
		client: client,
		prefix: "storefront:item:",
		ttl:    10 * time.Minute,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis) key(k string) string {
	return r.prefix + k
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the client.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Get loads a cached item.
func (r *Redis) Get(ctx context.Context, key string) (*models.Item, error) {
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("failed to read cache: %w", err)
	}

	var cached cachedItem
	if err := json.Unmarshal(val, &cached); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached item: %w", err)
	}
	return cached.item(), nil
}

// Set stores item under both its id and slug keys.
func (r *Redis) Set(ctx context.Context, item *models.Item) error {
	data, err := json.Marshal(newCachedItem(item))
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.key(IDKey(item.ID)), data, r.ttl)
	if item.Slug != "" {
		pipe.Set(ctx, r.key(SlugKey(item.Slug)), data, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Invalidate drops the given keys.
func (r *Redis) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}
	if err := r.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	logging.Sugar.Debugf("🧹 cache invalidated: %v", keys)
	return nil
}

// cachedItem carries the fields of models.Item hidden from the API JSON.
type cachedItem struct {
	models.Item
	ImagePath string `json:"imagePath"`
}

func newCachedItem(it *models.Item) cachedItem {
	return cachedItem{Item: *it, ImagePath: it.ImagePath}
}

func (c cachedItem) item() *models.Item {
	it := c.Item
	it.ImagePath = c.ImagePath
	return &it
}

// Noop never caches. It is used when no Redis address is configured.
type Noop struct{}

func (Noop) Get(context.Context, string) (*models.Item, error) { return nil, ErrMiss }
func (Noop) Set(context.Context, *models.Item) error           { return nil }
func (Noop) Invalidate(context.Context, ...string) error       { return nil }

var (
	_ ItemCache = (*Redis)(nil)
	_ ItemCache = Noop{}
)

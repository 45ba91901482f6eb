package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"storefront-service/internal/domain"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// RedisClient is the subset of *redis.Client the cache needs.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

var _ RedisClient = (*redis.Client)(nil)

type Loader func(ctx context.Context) (*domain.Product, error)

// ProductCache is a read-through cache for catalog reads only. Cart and order
// pricing always read the database. A nil *ProductCache passes every call through.
type ProductCache struct {
	rdb   RedisClient
	ttl   time.Duration
	group singleflight.Group
}

func NewProductCache(rdb RedisClient, ttl time.Duration) *ProductCache {
	return &ProductCache{rdb: rdb, ttl: ttl}
}

func Key(id uint64) string {
	return fmt.Sprintf("product:%d", id)
}

func (c *ProductCache) Get(ctx context.Context, id uint64, load Loader) (*domain.Product, error) {
	if c == nil || c.rdb == nil {
		return load(ctx)
	}
	key := Key(id)

	cached, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var p domain.Product
		if err := json.Unmarshal(cached, &p); err == nil {
			return &p, nil
		}
		log.Printf("cache: corrupt entry %s dropped", key)
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("cache: get %s: %v", key, err)
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		p, err := load(ctx)
		if err != nil {
			return nil, err
		}
		c.store(ctx, key, p, c.ttl)
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	cp := *v.(*domain.Product)
	return &cp, nil
}

func (c *ProductCache) Invalidate(ctx context.Context, id uint64) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, Key(id)).Err(); err != nil {
		log.Printf("cache: invalidate %s: %v", Key(id), err)
	}
}

// Warm preloads products with a longer TTL.
func (c *ProductCache) Warm(ctx context.Context, products []domain.Product) {
	if c == nil || c.rdb == nil {
		return
	}
	for i := range products {
		c.store(ctx, Key(products[i].ID), &products[i], 5*c.ttl)
	}
}

func (c *ProductCache) store(ctx context.Context, key string, p *domain.Product, ttl time.Duration) {
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Printf("cache: set %s: %v", key, err)
	}
}

package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// LoadTimeout bounds a coalesced GetOrLoad miss.
const LoadTimeout = 5 * time.Second

type Cache struct {
	RDB *redis.Client
	sf  singleflight.Group
}

func New(addr, pass string, db int) *Cache {
	return &Cache{
		RDB: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}),
	}
}

func (c *Cache) Ping(ctx context.Context) error { return c.RDB.Ping(ctx).Err() }

func (c *Cache) Close() error { return c.RDB.Close() }

func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	// 先读缓存
	if b, err := c.RDB.Get(ctx, key).Bytes(); err == nil {
		return b, nil
	}
	// single flight 合并回源
	v, err := c.DoDetached(ctx, key, LoadTimeout, func(lctx context.Context) (any, error) {
		b, e := load(lctx)
		if e != nil {
			return nil, e
		}
		_ = c.RDB.Set(lctx, key, b, ttl).Err()
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Mark sets a presence flag that disappears after ttl.
func (c *Cache) Mark(ctx context.Context, key string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.RDB.Set(ctx, key, "1", ttl).Err()
}

// Marked 只认命中；redis 故障时返回 error，由调用方回落数据库
func (c *Cache) Marked(ctx context.Context, key string) (bool, error) {
	err := c.RDB.Get(ctx, key).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, err
	}
}

// DoDetached coalesces concurrent loads of key without caching the result. It runs fn on a
// context detached from any single caller, bounded by timeout. Each caller
// still stops waiting when its own ctx ends.
func (c *Cache) DoDetached(ctx context.Context, key string, timeout time.Duration, fn func(context.Context) (any, error)) (any, error) {
	ch := c.sf.DoChan(key, func() (any, error) {
		// 不继承首个调用方的取消，只保留其中的 value
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		return fn(lctx)
	})
	select {
	case r := <-ch:
		return r.Val, r.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cache) Del(ctx context.Context, keys ...string) error {
	return c.RDB.Del(ctx, keys...).Err()
}

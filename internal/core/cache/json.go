package cache

import (
	"context"
	"encoding/json"
	"time"
)

// GetOrLoadJSON 在 GetOrLoad 之上做 JSON 编解码；load 返回 nil 时缓存 "null"。
// 缓存里的值解不开（结构变更后的旧数据）就删掉重新回源。
func GetOrLoadJSON[T any](
	c *Cache,
	ctx context.Context,
	key string,
	ttl time.Duration,
	load func(ctx context.Context) (*T, error),
) (*T, error) {
	loadBytes := func(ctx context.Context) ([]byte, error) {
		v, e := load(ctx)
		if e != nil {
			return nil, e
		}
		return json.Marshal(v)
	}

	b, err := c.GetOrLoad(ctx, key, ttl, loadBytes)
	if err != nil {
		return nil, err
	}
	out, err := decodeJSON[T](b)
	if err == nil {
		return out, nil
	}

	_ = c.Del(ctx, key)
	if b, err = c.GetOrLoad(ctx, key, ttl, loadBytes); err != nil {
		return nil, err
	}
	return decodeJSON[T](b)
}

func decodeJSON[T any](b []byte) (*T, error) {
	if string(b) == "null" {
		return nil, nil
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

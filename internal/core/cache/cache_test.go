package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestGetOrLoadCachesValue(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	var calls int32
	load := func(context.Context) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		return []byte("v1"), nil
	}
	for i := 0; i < 3; i++ {
		b, err := c.GetOrLoad(ctx, "k", time.Minute, load)
		require.NoError(t, err)
		assert.Equal(t, "v1", string(b))
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetOrLoadError(t *testing.T) {
	c, _ := newTestCache(t)
	boom := errors.New("boom")
	_, err := c.GetOrLoad(context.Background(), "k", time.Minute, func(context.Context) ([]byte, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

type item struct {
	Name string `json:"name"`
}

func TestGetOrLoadJSON(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	got, err := GetOrLoadJSON(c, ctx, "item:1", time.Minute, func(context.Context) (*item, error) {
		return &item{Name: "widget"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "widget", got.Name)

	got, err = GetOrLoadJSON(c, ctx, "item:1", time.Minute, func(context.Context) (*item, error) {
		t.Fatal("loader must not run on a cache hit")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "widget", got.Name)
}

func TestGetOrLoadJSONReloadsCorruptEntry(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("item:2", "{not json"))

	got, err := GetOrLoadJSON(c, context.Background(), "item:2", time.Minute, func(context.Context) (*item, error) {
		return &item{Name: "fresh"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", got.Name)

	raw, err := mr.Get("item:2")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"fresh"}`, raw)
}

func TestMarkAndExpire(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	ok, err := c.Marked(ctx, "revoked:a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Mark(ctx, "revoked:a", time.Minute))
	ok, err = c.Marked(ctx, "revoked:a")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Minute)
	ok, err = c.Marked(ctx, "revoked:a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Mark(ctx, "revoked:b", 0))
	assert.False(t, mr.Exists("revoked:b"))
}

func TestMarkedRedisDown(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()
	_, err := c.Marked(context.Background(), "revoked:a")
	assert.Error(t, err)
}

func TestDoDetachedCoalesces(t *testing.T) {
	c, _ := newTestCache(t)

	var calls int32
	release := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.DoDetached(context.Background(), "same", time.Second, func(context.Context) (any, error) {
				atomic.AddInt32(&calls, 1)
				<-release
				return true, nil
			})
			assert.NoError(t, err)
			assert.Equal(t, true, v)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(1))
	assert.Less(t, atomic.LoadInt32(&calls), int32(5))
}

func TestDoDetachedSurvivesFirstCallerCancel(t *testing.T) {
	c, _ := newTestCache(t)

	started := make(chan struct{})
	release := make(chan struct{})
	loadErr := make(chan error, 1)
	load := func(lctx context.Context) (any, error) {
		close(started)
		<-release
		loadErr <- lctx.Err()
		return true, nil
	}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstDone := make(chan error, 1)
	go func() {
		_, err := c.DoDetached(firstCtx, "rev", time.Second, load)
		firstDone <- err
	}()
	<-started

	secondDone := make(chan any, 1)
	go func() {
		v, err := c.DoDetached(context.Background(), "rev", time.Second, load)
		assert.NoError(t, err)
		secondDone <- v
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	assert.ErrorIs(t, <-firstDone, context.Canceled)

	close(release)
	assert.Equal(t, true, <-secondDone)
	assert.NoError(t, <-loadErr, "shared load keeps running after the first caller leaves")
}

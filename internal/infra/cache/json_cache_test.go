package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type item struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

func setupJSONCache(t *testing.T) (*JSONCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewJSONCache(rdb, "test:", time.Minute, zap.NewNop()), mr
}

func TestJSONCache_FetchCachesLoaderResult(t *testing.T) {
	c, mr := setupJSONCache(t)
	ctx := context.Background()

	var calls int32
	load := func(ctx context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		return item{Name: "a", Items: []string{"x"}}, nil
	}

	var first item
	require.NoError(t, c.Fetch(ctx, "k", &first, load))
	assert.Equal(t, "a", first.Name)
	assert.True(t, mr.Exists("test:k"))

	var second item
	require.NoError(t, c.Fetch(ctx, "k", &second, load))
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	mr.FastForward(2 * time.Minute)
	var third item
	require.NoError(t, c.Fetch(ctx, "k", &third, load))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestJSONCache_NilValue(t *testing.T) {
	c, _ := setupJSONCache(t)

	var dst *item
	err := c.Fetch(context.Background(), "absent", &dst, func(ctx context.Context) (any, error) {
		return (*item)(nil), nil
	})
	require.NoError(t, err)
	assert.Nil(t, dst)
}

func TestJSONCache_LoaderError(t *testing.T) {
	c, mr := setupJSONCache(t)

	var dst item
	err := c.Fetch(context.Background(), "k", &dst, func(ctx context.Context) (any, error) {
		return nil, errors.New("db down")
	})
	assert.EqualError(t, err, "db down")
	assert.False(t, mr.Exists("test:k"))
}

func TestJSONCache_RedisDownFallsBack(t *testing.T) {
	c, mr := setupJSONCache(t)
	mr.Close()

	var dst item
	err := c.Fetch(context.Background(), "k", &dst, func(ctx context.Context) (any, error) {
		return item{Name: "fresh"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", dst.Name)
}

func TestJSONCache_Invalidate(t *testing.T) {
	c, mr := setupJSONCache(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("test:a", `{"name":"a"}`))
	require.NoError(t, mr.Set("test:b", `{"name":"b"}`))

	require.NoError(t, c.Invalidate(ctx, "a", "b"))
	assert.False(t, mr.Exists("test:a"))
	assert.False(t, mr.Exists("test:b"))
	assert.NoError(t, c.Invalidate(ctx))
}

func TestJSONCache_ConcurrentMissesShareLoad(t *testing.T) {
	c, _ := setupJSONCache(t)
	ctx := context.Background()

	var calls int32
	release := make(chan struct{})
	load := func(ctx context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return item{Name: "shared"}, nil
	}

	var wg sync.WaitGroup
	results := make([]item, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, c.Fetch(ctx, "hot", &results[i], load))
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, "shared", r.Name)
	}
	assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(5))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(1))
}

func TestJSONCache_InvalidateDuringLoadSkipsFill(t *testing.T) {
	c, mr := setupJSONCache(t)
	ctx := context.Background()

	var calls int32
	load := func(ctx context.Context) (any, error) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			// a write commits and invalidates while the old value is being read
			require.NoError(t, c.Invalidate(ctx, "k"))
			return item{Name: "old"}, nil
		}
		return item{Name: "new"}, nil
	}

	var first item
	require.NoError(t, c.Fetch(ctx, "k", &first, load))
	assert.Equal(t, "old", first.Name)
	assert.False(t, mr.Exists("test:k"))

	var second item
	require.NoError(t, c.Fetch(ctx, "k", &second, load))
	assert.Equal(t, "new", second.Name)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.True(t, mr.Exists("test:k"))
}

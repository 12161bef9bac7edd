package cache

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// genTTL outlives any load, so a fill never sees a generation key expire
// between reading it and storing its value.
const genTTL = 24 * time.Hour

var errStaleFill = errors.New("cache key invalidated during load")

// JSONCache is a best-effort read-through cache. Redis failures fall back to
// the loader; concurrent misses on the same key share one load.
//
// Every key has a generation counter bumped by Invalidate. A fill records the
// generation before loading and stores its value only if the counter is
// unchanged, so a load that raced a write never repopulates the old value.
type JSONCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	log    *zap.Logger
	group  singleflight.Group
}

func NewJSONCache(rdb *redis.Client, prefix string, ttl time.Duration, log *zap.Logger) *JSONCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &JSONCache{rdb: rdb, prefix: prefix, ttl: ttl, log: log}
}

func (c *JSONCache) key(k string) string { return c.prefix + k }

func genKey(full string) string { return full + ":gen" }

func (c *JSONCache) generation(ctx context.Context, full string) (int64, error) {
	n, err := c.rdb.Get(ctx, genKey(full)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// store writes enc under full unless full's generation moved past gen.
func (c *JSONCache) store(ctx context.Context, full string, gen int64, enc []byte) error {
	gk := genKey(full)
	return c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, gk).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, full, enc, c.ttl)
			return nil
		})
		return err
	}, gk)
}

// Fetch decodes the cached value for key into dst, calling load on a miss and
// storing its result.
func (c *JSONCache) Fetch(ctx context.Context, key string, dst any, load func(ctx context.Context) (any, error)) error {
	full := c.key(key)

	b, err := c.rdb.Get(ctx, full).Bytes()
	switch {
	case err == nil:
		if uerr := sonic.Unmarshal(b, dst); uerr == nil {
			return nil
		}
		c.log.Warn("drop undecodable cache entry", zap.String("key", full))
	case !errors.Is(err, redis.Nil):
		c.log.Warn("cache get failed", zap.String("key", full), zap.Error(err))
	}

	v, err, _ := c.group.Do(full, func() (any, error) {
		gen, genErr := c.generation(ctx, full)
		val, err := load(ctx)
		if err != nil {
			return nil, err
		}
		enc, err := sonic.Marshal(val)
		if err != nil {
			return nil, err
		}
		if genErr != nil {
			c.log.Warn("cache generation read failed", zap.String("key", full), zap.Error(genErr))
			return enc, nil
		}
		switch err := c.store(ctx, full, gen, enc); {
		case err == nil:
		case errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
			c.log.Debug("skip cache fill raced by invalidation", zap.String("key", full))
		default:
			c.log.Warn("cache set failed", zap.String("key", full), zap.Error(err))
		}
		return enc, nil
	})
	if err != nil {
		return err
	}
	return sonic.Unmarshal(v.([]byte), dst)
}

// Invalidate deletes keys and bumps their generations, which also cancels
// fills already in flight.
func (c *JSONCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, k := range keys {
			full := c.key(k)
			pipe.Del(ctx, full)
			pipe.Incr(ctx, genKey(full))
			pipe.Expire(ctx, genKey(full), genTTL)
		}
		return nil
	})
	return err
}

package redis

import (
	"context"
	"errors"
	"time"

	"github.com/NordCoder/SendModes/internal/codec"
	"github.com/NordCoder/SendModes/internal/domain/notification"
	"github.com/NordCoder/SendModes/internal/domain/sendmode"
	"github.com/NordCoder/SendModes/internal/liberr"
	"github.com/redis/go-redis/v9"
)

const DefaultTTL = 10 * time.Minute

// Doer sends a raw command. *redis.Client and redis.UniversalClient satisfy it.
type Doer interface {
	Do(ctx context.Context, args ...any) *redis.Cmd
}

// Cache keeps entities as single bulk values under caller-chosen keys.
type Cache[E any] struct {
	rdb   Doer
	codec codec.Codec[any, E]
	ttl   time.Duration
}

var (
	_ sendmode.Cache              = (*Cache[sendmode.SendMode])(nil)
	_ notification.TemplateCache = (*Cache[notification.Template])(nil)
)

func NewCache[E any](rdb Doer, c codec.Codec[any, E], ttl time.Duration) *Cache[E] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache[E]{rdb: rdb, codec: c, ttl: ttl}
}

func NewSendModeCache(rdb Doer, ttl time.Duration) *Cache[sendmode.SendMode] {
	return NewCache(rdb, codec.SendModeCache, ttl)
}

func NewTemplateCache(rdb Doer, ttl time.Duration) *Cache[notification.Template] {
	return NewCache(rdb, codec.TemplateCache, ttl)
}

func (c *Cache[E]) Get(ctx context.Context, key string) (E, error) {
	var zero E
	v, err := c.rdb.Do(ctx, "GET", key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return zero, liberr.NotFound("cache key " + key)
		}
		return zero, transportErr(ctx, err)
	}
	return c.codec.Decode(v)
}

func (c *Cache[E]) Set(ctx context.Context, key string, e E) error {
	v, err := c.codec.Encode(e)
	if err != nil {
		return err
	}
	if err := c.rdb.Do(ctx, "SET", key, v, "PX", c.ttl.Milliseconds()).Err(); err != nil {
		return transportErr(ctx, err)
	}
	return nil
}

// Delete removes key. A missing key is not an error.
func (c *Cache[E]) Delete(ctx context.Context, key string) error {
	if err := c.rdb.Do(ctx, "DEL", key).Err(); err != nil {
		return transportErr(ctx, err)
	}
	return nil
}

func transportErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return liberr.FromContext(ctx.Err())
	}
	return liberr.Transport(err)
}

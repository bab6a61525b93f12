// Package cache is a thin typed wrapper over redis. Every operation
// degrades gracefully: when redis is unreachable the call logs a warning
// and reports a miss (or lock-not-acquired), never an error. The
// persistent store stays the source of truth, so a cache outage costs
// round trips, not correctness.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

type Client struct {
	rdb *redis.Client
	log *slog.Logger
}

type Config struct {
	Addr     string
	Password string
	DB       int
}

func New(cfg Config, log *slog.Logger) *Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Client{rdb: rdb, log: log}
}

// NewFromClient wraps an existing redis client, mainly for tests.
func NewFromClient(rdb *redis.Client, log *slog.Logger) *Client {
	return &Client{rdb: rdb, log: log}
}

// ScoredMember is one entry of a sorted-set read.
type ScoredMember struct {
	Member string
	Score  float64
}

func (c *Client) warn(op, key string, err error) {
	c.log.Warn("cache op failed", "op", op, "key", key, "err", err)
}

// Get returns the value and true on a hit, "" and false on a miss or
// any store error.
func (c *Client) Get(ctx context.Context, key string) (string, bool) {
	v, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		c.warn("get", key, err)
		return "", false
	}
	return v, true
}

func (c *Client) Set(ctx context.Context, key, value string, ttl time.Duration) bool {
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		c.warn("set", key, err)
		return false
	}
	return true
}

func (c *Client) Del(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.warn("del", keys[0], err)
	}
}

// DelPattern bulk-deletes keys matching pattern via KEYS. Administrative
// invalidation only, never on a hot path.
func (c *Client) DelPattern(ctx context.Context, pattern string) {
	keys, err := c.rdb.Keys(ctx, pattern).Result()
	if err != nil {
		c.warn("keys", pattern, err)
		return
	}
	if len(keys) > 0 {
		c.Del(ctx, keys...)
	}
}

func (c *Client) Keys(ctx context.Context, pattern string) []string {
	keys, err := c.rdb.Keys(ctx, pattern).Result()
	if err != nil {
		c.warn("keys", pattern, err)
		return nil
	}
	return keys
}

// Incr atomically adds by and returns the new value, 0 on store error.
func (c *Client) Incr(ctx context.Context, key string, by int64) int64 {
	v, err := c.rdb.IncrBy(ctx, key, by).Result()
	if err != nil {
		c.warn("incrby", key, err)
		return 0
	}
	return v
}

func (c *Client) Expire(ctx context.Context, key string, ttl time.Duration) {
	if err := c.rdb.Expire(ctx, key, ttl).Err(); err != nil {
		c.warn("expire", key, err)
	}
}

// AcquireLock is the mutual-exclusion primitive: an atomic SET NX with a
// TTL so a crashed holder cannot block the key forever. False means the
// lock is held elsewhere or the store is unreachable; callers treat both
// the same way.
func (c *Client) AcquireLock(ctx context.Context, key string, ttl time.Duration) bool {
	ok, err := c.rdb.SetNX(ctx, key, "locked", ttl).Result()
	if err != nil {
		c.warn("setnx", key, err)
		return false
	}
	return ok
}

func (c *Client) ReleaseLock(ctx context.Context, key string) {
	c.Del(ctx, key)
}

func (c *Client) ZIncrBy(ctx context.Context, set, member string, by float64) {
	if err := c.rdb.ZIncrBy(ctx, set, by, member).Err(); err != nil {
		c.warn("zincrby", set, err)
	}
}

// ZTopN returns the n highest-scored members, best first. Members with
// equal scores come back in redis's lexicographic member order.
func (c *Client) ZTopN(ctx context.Context, set string, n int) []ScoredMember {
	if n <= 0 {
		return nil
	}
	zs, err := c.rdb.ZRevRangeWithScores(ctx, set, 0, int64(n-1)).Result()
	if err != nil {
		c.warn("zrevrange", set, err)
		return nil
	}
	out := make([]ScoredMember, 0, len(zs))
	for _, z := range zs {
		m, _ := z.Member.(string)
		out = append(out, ScoredMember{Member: m, Score: z.Score})
	}
	return out
}

func (c *Client) ZScore(ctx context.Context, set, member string) (float64, bool) {
	s, err := c.rdb.ZScore(ctx, set, member).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false
	}
	if err != nil {
		c.warn("zscore", set, err)
		return 0, false
	}
	return s, true
}

func (c *Client) SAdd(ctx context.Context, set string, members ...string) {
	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	if err := c.rdb.SAdd(ctx, set, args...).Err(); err != nil {
		c.warn("sadd", set, err)
	}
}

func (c *Client) SRem(ctx context.Context, set, member string) {
	if err := c.rdb.SRem(ctx, set, member).Err(); err != nil {
		c.warn("srem", set, err)
	}
}

func (c *Client) SCard(ctx context.Context, set string) int64 {
	n, err := c.rdb.SCard(ctx, set).Result()
	if err != nil {
		c.warn("scard", set, err)
		return 0
	}
	return n
}

func (c *Client) HIncrBy(ctx context.Context, key, field string, by int64) {
	if err := c.rdb.HIncrBy(ctx, key, field, by).Err(); err != nil {
		c.warn("hincrby", key, err)
	}
}

func (c *Client) HGetAll(ctx context.Context, key string) map[string]string {
	m, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		c.warn("hgetall", key, err)
		return nil
	}
	return m
}

func (c *Client) Publish(ctx context.Context, channel, payload string) {
	if err := c.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		c.warn("publish", channel, err)
	}
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) DBSize(ctx context.Context) int64 {
	n, err := c.rdb.DBSize(ctx).Result()
	if err != nil {
		c.warn("dbsize", "", err)
		return 0
	}
	return n
}

// FlushDB drops every key in the cache database. Administrative recovery
// after suspected cache/store divergence.
func (c *Client) FlushDB(ctx context.Context) {
	if err := c.rdb.FlushDB(ctx).Err(); err != nil {
		c.warn("flushdb", "", err)
	}
}

func (c *Client) Close() error { return c.rdb.Close() }

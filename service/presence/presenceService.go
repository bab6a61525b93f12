// Package presence tracks which users are currently online. The whole
// set carries a sliding 30-minute TTL, refreshed on every add, so the
// gauge empties itself when traffic stops.
package presence

import (
	"context"
	"strconv"
	"time"

	"booklend/cache"
	"booklend/util/metrics"
)

const onlineTTL = 30 * time.Minute

type Cache interface {
	SAdd(ctx context.Context, set string, members ...string)
	SRem(ctx context.Context, set, member string)
	SCard(ctx context.Context, set string) int64
	Expire(ctx context.Context, key string, ttl time.Duration)
}

type Service interface {
	AddOnlineUser(ctx context.Context, userID int64)
	RemoveOnlineUser(ctx context.Context, userID int64)
	OnlineUserCount(ctx context.Context) int64
}

type service struct{ c Cache }

func New(c Cache) Service { return &service{c: c} }

func (s *service) AddOnlineUser(ctx context.Context, userID int64) {
	s.c.SAdd(ctx, cache.OnlineUsers, strconv.FormatInt(userID, 10))
	s.c.Expire(ctx, cache.OnlineUsers, onlineTTL)
	metrics.OnlineUsers.Set(float64(s.c.SCard(ctx, cache.OnlineUsers)))
}

func (s *service) RemoveOnlineUser(ctx context.Context, userID int64) {
	s.c.SRem(ctx, cache.OnlineUsers, strconv.FormatInt(userID, 10))
	metrics.OnlineUsers.Set(float64(s.c.SCard(ctx, cache.OnlineUsers)))
}

func (s *service) OnlineUserCount(ctx context.Context) int64 {
	return s.c.SCard(ctx, cache.OnlineUsers)
}

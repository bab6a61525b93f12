// Package stats aggregates time-bucketed usage counters: borrows per
// day/week/month, per-day user activity, category totals and the cache
// hit rate. Every counter carries its own expiry, so buckets clean
// themselves up.
package stats

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"booklend/cache"
	"booklend/model"
)

const (
	dailyTTL    = 30 * 24 * time.Hour
	weeklyTTL   = 30 * 24 * time.Hour
	monthlyTTL  = 365 * 24 * time.Hour
	activityTTL = 30 * 24 * time.Hour
	rankingTTL  = 24 * time.Hour
	categoryTTL = 7 * 24 * time.Hour
)

type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Incr(ctx context.Context, key string, by int64) int64
	Expire(ctx context.Context, key string, ttl time.Duration)
	Del(ctx context.Context, keys ...string)
	DelPattern(ctx context.Context, pattern string)
	ZIncrBy(ctx context.Context, set, member string, by float64)
	ZTopN(ctx context.Context, set string, n int) []cache.ScoredMember
	HIncrBy(ctx context.Context, key, field string, by int64)
	HGetAll(ctx context.Context, key string) map[string]string
	Ping(ctx context.Context) error
}

// Presence reports the online-users gauge for the overview.
type Presence interface {
	OnlineUserCount(ctx context.Context) int64
}

// HotList supplies the ranked books shown in the overview.
type HotList interface {
	TopBooks(ctx context.Context, n int) ([]model.RankedBook, error)
}

// DayCount is one calendar day's borrow total.
type DayCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type Overview struct {
	TodayBorrowCount   int64              `json:"today_borrow_count"`
	WeeklyBorrowCount  int64              `json:"weekly_borrow_count"`
	MonthlyBorrowCount int64              `json:"monthly_borrow_count"`
	OnlineUserCount    int64              `json:"online_user_count"`
	HotBooks           []model.RankedBook `json:"hot_books"`
	CacheHitRate       float64            `json:"cache_hit_rate"`
	RedisStatus        string             `json:"redis_status"`
}

type Service interface {
	IncrementDaily(ctx context.Context)
	IncrementWeekly(ctx context.Context)
	IncrementMonthly(ctx context.Context)
	Today(ctx context.Context) int64
	ThisWeek(ctx context.Context) int64
	ThisMonth(ctx context.Context) int64
	RecentNDays(ctx context.Context, n int) []DayCount

	RecordUserActivity(ctx context.Context, userID int64)
	ActiveUsers(ctx context.Context, limit int) []model.ActiveUser

	BumpCategory(ctx context.Context, category string)
	CategoryStats(ctx context.Context) map[string]int64

	CacheHitRate(ctx context.Context) float64
	Overview(ctx context.Context) Overview
	CleanExpired(ctx context.Context)
}

type service struct {
	c        Cache
	presence Presence
	hot      HotList
	now      func() time.Time
}

func New(c Cache, presence Presence, hot HotList) Service {
	return &service{c: c, presence: presence, hot: hot, now: time.Now}
}

func dayOf(t time.Time) string   { return t.Format("2006-01-02") }
func monthOf(t time.Time) string { return t.Format("2006-01") }

// weekOf renders the ISO week, e.g. "2026-W35". Note the ISO year can
// differ from the calendar year around January 1st.
func weekOf(t time.Time) string {
	y, w := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", y, w)
}

func (s *service) bump(ctx context.Context, key string, ttl time.Duration) {
	s.c.Incr(ctx, key, 1)
	s.c.Expire(ctx, key, ttl)
}

func (s *service) readCount(ctx context.Context, key string) int64 {
	raw, ok := s.c.Get(ctx, key)
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func (s *service) IncrementDaily(ctx context.Context) {
	s.bump(ctx, cache.DailyKey(dayOf(s.now())), dailyTTL)
}

func (s *service) IncrementWeekly(ctx context.Context) {
	s.bump(ctx, cache.WeekKey(weekOf(s.now())), weeklyTTL)
}

func (s *service) IncrementMonthly(ctx context.Context) {
	s.bump(ctx, cache.MonthKey(monthOf(s.now())), monthlyTTL)
}

func (s *service) Today(ctx context.Context) int64 {
	return s.readCount(ctx, cache.DailyKey(dayOf(s.now())))
}

func (s *service) ThisWeek(ctx context.Context) int64 {
	return s.readCount(ctx, cache.WeekKey(weekOf(s.now())))
}

func (s *service) ThisMonth(ctx context.Context) int64 {
	return s.readCount(ctx, cache.MonthKey(monthOf(s.now())))
}

// RecentNDays returns exactly n entries, oldest first, zero-filled for
// days with no borrows.
func (s *service) RecentNDays(ctx context.Context, n int) []DayCount {
	if n <= 0 {
		return []DayCount{}
	}
	today := s.now()
	out := make([]DayCount, 0, n)
	for i := n - 1; i >= 0; i-- {
		day := dayOf(today.AddDate(0, 0, -i))
		out = append(out, DayCount{Date: day, Count: s.readCount(ctx, cache.DailyKey(day))})
	}
	return out
}

// RecordUserActivity bumps both the user's private day counter and the
// day's public activity ranking.
func (s *service) RecordUserActivity(ctx context.Context, userID int64) {
	day := dayOf(s.now())
	s.bump(ctx, cache.UserActivityKey(userID, day), activityTTL)

	ranking := cache.ActiveUsersKey(day)
	s.c.ZIncrBy(ctx, ranking, strconv.FormatInt(userID, 10), 1)
	s.c.Expire(ctx, ranking, rankingTTL)
}

func (s *service) ActiveUsers(ctx context.Context, limit int) []model.ActiveUser {
	members := s.c.ZTopN(ctx, cache.ActiveUsersKey(dayOf(s.now())), limit)
	out := make([]model.ActiveUser, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m.Member, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, model.ActiveUser{UserID: id, ActivityCount: int64(m.Score)})
	}
	return out
}

func (s *service) BumpCategory(ctx context.Context, category string) {
	if category == "" {
		return
	}
	s.c.HIncrBy(ctx, cache.CategoryStats, category, 1)
	s.c.Expire(ctx, cache.CategoryStats, categoryTTL)
}

func (s *service) CategoryStats(ctx context.Context) map[string]int64 {
	raw := s.c.HGetAll(ctx, cache.CategoryStats)
	out := make(map[string]int64, len(raw))
	for k, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		out[k] = n
	}
	return out
}

// CacheHitRate is hits/(hits+misses) as a percentage, 0.0 when nothing
// has been counted yet.
func (s *service) CacheHitRate(ctx context.Context) float64 {
	hits := s.readCount(ctx, cache.CacheHitCount)
	misses := s.readCount(ctx, cache.CacheMissCnt)
	if hits+misses == 0 {
		return 0.0
	}
	return float64(hits) / float64(hits+misses) * 100
}

func (s *service) Overview(ctx context.Context) Overview {
	o := Overview{
		TodayBorrowCount:   s.Today(ctx),
		WeeklyBorrowCount:  s.ThisWeek(ctx),
		MonthlyBorrowCount: s.ThisMonth(ctx),
		OnlineUserCount:    s.presence.OnlineUserCount(ctx),
		CacheHitRate:       s.CacheHitRate(ctx),
		RedisStatus:        "connected",
	}
	if err := s.c.Ping(ctx); err != nil {
		o.RedisStatus = "disconnected"
	}
	if hot, err := s.hot.TopBooks(ctx, 5); err == nil {
		o.HotBooks = hot
	}
	return o
}

// CleanExpired sweeps buckets older than the 30-day window. Counters
// normally expire on their own; this backstops keys whose EXPIRE call
// was lost to a cache outage.
func (s *service) CleanExpired(ctx context.Context) {
	cutoff := dayOf(s.now().AddDate(0, 0, -30))
	s.c.Del(ctx, cache.DailyKey(cutoff))
	s.c.DelPattern(ctx, "user_activity:*:"+cutoff)
}

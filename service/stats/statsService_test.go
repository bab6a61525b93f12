// service/stats/stats_service_test.go
package stats

import (
	"context"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"booklend/cache"
	"booklend/model"
)

// fakeCache is a map-backed counter store with working zsets and hashes.
type fakeCache struct {
	kv      map[string]string
	zsets   map[string]map[string]float64
	hashes  map[string]map[string]int64
	pingErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		kv:     map[string]string{},
		zsets:  map[string]map[string]float64{},
		hashes: map[string]map[string]int64{},
	}
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, bool) {
	v, ok := f.kv[key]
	return v, ok
}

func (f *fakeCache) Incr(ctx context.Context, key string, by int64) int64 {
	n, _ := strconv.ParseInt(f.kv[key], 10, 64)
	n += by
	f.kv[key] = strconv.FormatInt(n, 10)
	return n
}

func (f *fakeCache) Expire(ctx context.Context, key string, ttl time.Duration) {}

func (f *fakeCache) Del(ctx context.Context, keys ...string) {
	for _, k := range keys {
		delete(f.kv, k)
	}
}

func (f *fakeCache) DelPattern(ctx context.Context, pattern string) {}

func (f *fakeCache) ZIncrBy(ctx context.Context, set, member string, by float64) {
	if f.zsets[set] == nil {
		f.zsets[set] = map[string]float64{}
	}
	f.zsets[set][member] += by
}

func (f *fakeCache) ZTopN(ctx context.Context, set string, n int) []cache.ScoredMember {
	var out []cache.ScoredMember
	for m, s := range f.zsets[set] {
		out = append(out, cache.ScoredMember{Member: m, Score: s})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func (f *fakeCache) HIncrBy(ctx context.Context, key, field string, by int64) {
	if f.hashes[key] == nil {
		f.hashes[key] = map[string]int64{}
	}
	f.hashes[key][field] += by
}

func (f *fakeCache) HGetAll(ctx context.Context, key string) map[string]string {
	out := map[string]string{}
	for k, v := range f.hashes[key] {
		out[k] = strconv.FormatInt(v, 10)
	}
	return out
}

func (f *fakeCache) Ping(ctx context.Context) error { return f.pingErr }

type fakePresence struct{ n int64 }

func (p fakePresence) OnlineUserCount(ctx context.Context) int64 { return p.n }

type fakeHot struct{ books []model.RankedBook }

func (h fakeHot) TopBooks(ctx context.Context, n int) ([]model.RankedBook, error) {
	return h.books, nil
}

func newTestService(fc *fakeCache, at time.Time) *service {
	return &service{
		c:        fc,
		presence: fakePresence{n: 3},
		hot:      fakeHot{},
		now:      func() time.Time { return at },
	}
}

var fixedNow = time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)

func TestCountersRoundTrip(t *testing.T) {
	fc := newFakeCache()
	s := newTestService(fc, fixedNow)
	ctx := context.Background()

	require.Zero(t, s.Today(ctx))
	require.Zero(t, s.ThisWeek(ctx))
	require.Zero(t, s.ThisMonth(ctx))

	s.IncrementDaily(ctx)
	s.IncrementDaily(ctx)
	s.IncrementWeekly(ctx)
	s.IncrementMonthly(ctx)

	require.Equal(t, int64(2), s.Today(ctx))
	require.Equal(t, int64(1), s.ThisWeek(ctx))
	require.Equal(t, int64(1), s.ThisMonth(ctx))
}

func TestWeekBucketFormat(t *testing.T) {
	// Jan 1 2027 falls in ISO week 53 of 2026
	require.Equal(t, "2026-W53", weekOf(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, "2026-W35", weekOf(fixedNow))
}

func TestRecentNDays_AlwaysExactlyN(t *testing.T) {
	fc := newFakeCache()
	s := newTestService(fc, fixedNow)
	ctx := context.Background()

	days := s.RecentNDays(ctx, 7)
	require.Len(t, days, 7)
	for _, d := range days {
		require.Zero(t, d.Count, "day %s", d.Date)
	}
	require.Equal(t, "2026-08-23", days[0].Date)
	require.Equal(t, "2026-08-29", days[6].Date)

	// chronological order
	require.True(t, sort.SliceIsSorted(days, func(i, j int) bool { return days[i].Date < days[j].Date }))
}

func TestRecentNDays_PicksUpCounts(t *testing.T) {
	fc := newFakeCache()
	fc.kv[cache.DailyKey("2026-08-27")] = "5"
	s := newTestService(fc, fixedNow)

	days := s.RecentNDays(context.Background(), 3)
	require.Len(t, days, 3)
	require.Equal(t, int64(5), days[0].Count)
	require.Zero(t, days[1].Count)
	require.Zero(t, days[2].Count)
}

func TestActiveUsers_RankedByActivity(t *testing.T) {
	fc := newFakeCache()
	s := newTestService(fc, fixedNow)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		s.RecordUserActivity(ctx, 10)
	}
	s.RecordUserActivity(ctx, 20)
	s.RecordUserActivity(ctx, 20)
	s.RecordUserActivity(ctx, 30)

	users := s.ActiveUsers(ctx, 2)
	require.Len(t, users, 2)
	require.Equal(t, int64(10), users[0].UserID)
	require.Equal(t, int64(3), users[0].ActivityCount)
	require.Equal(t, int64(20), users[1].UserID)
}

func TestCategoryStats(t *testing.T) {
	fc := newFakeCache()
	s := newTestService(fc, fixedNow)
	ctx := context.Background()

	s.BumpCategory(ctx, "cs")
	s.BumpCategory(ctx, "cs")
	s.BumpCategory(ctx, "fiction")
	s.BumpCategory(ctx, "") // ignored

	got := s.CategoryStats(ctx)
	require.Equal(t, map[string]int64{"cs": 2, "fiction": 1}, got)
}

func TestCacheHitRate(t *testing.T) {
	fc := newFakeCache()
	s := newTestService(fc, fixedNow)
	ctx := context.Background()

	// no counters at all: never divide by zero
	require.Equal(t, 0.0, s.CacheHitRate(ctx))

	fc.kv[cache.CacheHitCount] = "3"
	fc.kv[cache.CacheMissCnt] = "1"
	require.InDelta(t, 75.0, s.CacheHitRate(ctx), 0.001)
}

func TestOverview(t *testing.T) {
	fc := newFakeCache()
	s := newTestService(fc, fixedNow)
	ctx := context.Background()

	s.IncrementDaily(ctx)
	o := s.Overview(ctx)
	require.Equal(t, int64(1), o.TodayBorrowCount)
	require.Equal(t, int64(3), o.OnlineUserCount)
	require.Equal(t, "connected", o.RedisStatus)
}

func TestCleanExpired(t *testing.T) {
	fc := newFakeCache()
	old := cache.DailyKey("2026-07-30")
	fc.kv[old] = "9"
	s := newTestService(fc, fixedNow)

	s.CleanExpired(context.Background())
	_, ok := fc.kv[old]
	require.False(t, ok)
}

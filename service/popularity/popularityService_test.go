package popularity_test

import (
	"context"
	"sort"
	"strconv"
	"testing"
	"time"

	"booklend/cache"
	"booklend/model"
	bookrepo "booklend/repository/book"
	"booklend/service/popularity"
)

type fakeCache struct {
	kv       map[string]string
	scores   map[string]float64
	topCalls int
}

func newFakeCache() *fakeCache {
	return &fakeCache{kv: map[string]string{}, scores: map[string]float64{}}
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, bool) {
	v, ok := f.kv[key]
	return v, ok
}
func (f *fakeCache) Set(ctx context.Context, key, value string, ttl time.Duration) bool {
	f.kv[key] = value
	return true
}
func (f *fakeCache) Del(ctx context.Context, keys ...string) {
	for _, k := range keys {
		delete(f.kv, k)
	}
}
func (f *fakeCache) ZIncrBy(ctx context.Context, set, member string, by float64) {
	f.scores[member] += by
}
func (f *fakeCache) ZTopN(ctx context.Context, set string, n int) []cache.ScoredMember {
	f.topCalls++
	var out []cache.ScoredMember
	for m, s := range f.scores {
		out = append(out, cache.ScoredMember{Member: m, Score: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Member > out[j].Member
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
func (f *fakeCache) ZScore(ctx context.Context, set, member string) (float64, bool) {
	s, ok := f.scores[member]
	return s, ok
}

type getterFn func(ctx context.Context, id int64) (*model.Book, error)

func (g getterFn) GetBook(ctx context.Context, id int64) (*model.Book, error) { return g(ctx, id) }

var okGetter = getterFn(func(ctx context.Context, id int64) (*model.Book, error) {
	return &model.Book{ID: id, Title: "book-" + strconv.FormatInt(id, 10)}, nil
})

func TestTopBooks_OrderedByScore(t *testing.T) {
	fc := newFakeCache()
	svc := popularity.New(fc, okGetter)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		svc.RecordBorrow(ctx, 1)
	}
	for i := 0; i < 2; i++ {
		svc.RecordBorrow(ctx, 2)
	}
	svc.RecordBorrow(ctx, 3)

	top, err := svc.TopBooks(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 3 {
		t.Fatalf("got %d entries; want 3", len(top))
	}
	for i := 1; i < len(top); i++ {
		if top[i].Score > top[i-1].Score {
			t.Fatalf("ranking not monotonic: %v", top)
		}
	}
	if top[0].Book.ID != 1 || top[0].Score != 5 {
		t.Fatalf("head = %+v; want book 1 score 5", top[0])
	}
}

func TestTopBooks_SecondQueryServedFromPageCache(t *testing.T) {
	fc := newFakeCache()
	svc := popularity.New(fc, okGetter)
	ctx := context.Background()

	svc.RecordBorrow(ctx, 1)
	if _, err := svc.TopBooks(ctx, 5); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.TopBooks(ctx, 5); err != nil {
		t.Fatal(err)
	}
	if fc.topCalls != 1 {
		t.Fatalf("zset read %d times; want 1 (second query must hit hot_books:5)", fc.topCalls)
	}
}

func TestTopBooks_SkipsDeletedBooks(t *testing.T) {
	fc := newFakeCache()
	getter := getterFn(func(ctx context.Context, id int64) (*model.Book, error) {
		if id == 2 {
			return nil, bookrepo.ErrNotFound
		}
		return &model.Book{ID: id}, nil
	})
	svc := popularity.New(fc, getter)
	ctx := context.Background()

	svc.RecordBorrow(ctx, 1)
	svc.RecordBorrow(ctx, 2)

	top, err := svc.TopBooks(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 1 || top[0].Book.ID != 1 {
		t.Fatalf("got %+v; want only book 1", top)
	}
}

func TestTopBooks_ZeroLimit(t *testing.T) {
	svc := popularity.New(newFakeCache(), okGetter)
	top, err := svc.TopBooks(context.Background(), 0)
	if err != nil || len(top) != 0 {
		t.Fatalf("got %v err=%v; want empty", top, err)
	}
}

func TestBorrowCountOf(t *testing.T) {
	fc := newFakeCache()
	svc := popularity.New(fc, okGetter)
	ctx := context.Background()

	if n := svc.BorrowCountOf(ctx, 9); n != 0 {
		t.Fatalf("unseen book count = %d; want 0", n)
	}

	svc.RecordBorrow(ctx, 9)
	svc.RecordBorrow(ctx, 9)
	if n := svc.BorrowCountOf(ctx, 9); n != 2 {
		t.Fatalf("count = %d; want 2", n)
	}
}

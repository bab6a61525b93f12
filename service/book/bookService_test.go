// service/book/book_service_test.go
package booksvc_test

import (
	"context"
	"path"
	"testing"
	"time"

	"booklend/model"
	bookrepo "booklend/repository/book"
	booksvc "booklend/service/book"
)

type repoMock struct {
	findCalls int
	findFn    func(ctx context.Context, id int64) (*model.Book, error)
	isbnFn    func(ctx context.Context, isbn string) (*model.Book, error)
	titleFn   func(ctx context.Context, term string) ([]model.Book, error)
	createFn  func(ctx context.Context, b *model.Book) error
	deleteFn  func(ctx context.Context, id int64) error
}

func (m *repoMock) FindByID(ctx context.Context, id int64) (*model.Book, error) {
	m.findCalls++
	return m.findFn(ctx, id)
}
func (m *repoMock) FindByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	return m.isbnFn(ctx, isbn)
}
func (m *repoMock) SearchTitle(ctx context.Context, term string) ([]model.Book, error) {
	return m.titleFn(ctx, term)
}
func (m *repoMock) SearchAuthor(ctx context.Context, term string) ([]model.Book, error) {
	return nil, nil
}
func (m *repoMock) SearchCategory(ctx context.Context, category string) ([]model.Book, error) {
	return nil, nil
}
func (m *repoMock) FindAll(ctx context.Context) ([]model.Book, error) { return nil, nil }
func (m *repoMock) Create(ctx context.Context, b *model.Book) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, b)
}
func (m *repoMock) Update(ctx context.Context, b *model.Book) error { return nil }
func (m *repoMock) Delete(ctx context.Context, id int64) error {
	if m.deleteFn == nil {
		return nil
	}
	return m.deleteFn(ctx, id)
}

// fakeCache is a map-backed stand-in honoring the cache contract.
type fakeCache struct {
	data map[string]string
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string]string{}} }

func (f *fakeCache) Get(ctx context.Context, key string) (string, bool) {
	v, ok := f.data[key]
	return v, ok
}
func (f *fakeCache) Set(ctx context.Context, key, value string, ttl time.Duration) bool {
	f.data[key] = value
	return true
}
func (f *fakeCache) Del(ctx context.Context, keys ...string) {
	for _, k := range keys {
		delete(f.data, k)
	}
}
func (f *fakeCache) DelPattern(ctx context.Context, pattern string) {
	for k := range f.data {
		if ok, _ := path.Match(pattern, k); ok {
			delete(f.data, k)
		}
	}
}
func (f *fakeCache) Incr(ctx context.Context, key string, by int64) int64  { return by }
func (f *fakeCache) Expire(ctx context.Context, key string, ttl time.Duration) {}
func (f *fakeCache) FlushDB(ctx context.Context) {
	f.data = map[string]string{}
}

func TestGetBook_ReadThrough(t *testing.T) {
	m := &repoMock{
		findFn: func(ctx context.Context, id int64) (*model.Book, error) {
			return &model.Book{ID: id, Title: "TAOCP", Author: "Knuth", Stock: 2}, nil
		},
	}
	s := booksvc.New(m, newFakeCache())

	b1, err := s.GetBook(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetBook error: %v", err)
	}
	b2, err := s.GetBook(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetBook error: %v", err)
	}
	if *b1 != *b2 {
		t.Fatalf("read-through not idempotent: %+v vs %+v", b1, b2)
	}
	if m.findCalls != 1 {
		t.Fatalf("store hit %d times; want 1 (second read must be a cache hit)", m.findCalls)
	}
}

func TestGetBook_NotFoundPassesThrough(t *testing.T) {
	m := &repoMock{
		findFn: func(ctx context.Context, id int64) (*model.Book, error) {
			return nil, bookrepo.ErrNotFound
		},
	}
	s := booksvc.New(m, newFakeCache())

	if _, err := s.GetBook(context.Background(), 404); err != booksvc.ErrNotFound {
		t.Fatalf("got %v; want ErrNotFound", err)
	}
}

func TestInvalidateBook_NextReadReloads(t *testing.T) {
	stock := int64(5)
	m := &repoMock{
		findFn: func(ctx context.Context, id int64) (*model.Book, error) {
			return &model.Book{ID: id, Title: "Go", Author: "Donovan", Stock: stock}, nil
		},
	}
	s := booksvc.New(m, newFakeCache())

	if _, err := s.GetBook(context.Background(), 1); err != nil {
		t.Fatal(err)
	}

	stock = 9
	s.InvalidateBook(context.Background(), 1)

	b, err := s.GetBook(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if b.Stock != 9 {
		t.Fatalf("stale read after invalidation: stock=%d; want 9", b.Stock)
	}
	if m.findCalls != 2 {
		t.Fatalf("store hit %d times; want 2", m.findCalls)
	}
}

func TestInvalidateBook_DropsSearchAndHotKeys(t *testing.T) {
	fc := newFakeCache()
	fc.data["book:1"] = "{}"
	fc.data["book:isbn:978"] = "{}"
	fc.data["book_search:title:go"] = "[]"
	fc.data["hot_books:10"] = "[]"
	fc.data["daily_stats:2026-08-29"] = "3"

	s := booksvc.New(&repoMock{}, fc)
	s.InvalidateBook(context.Background(), 1)

	for _, k := range []string{"book:1", "book:isbn:978", "book_search:title:go", "hot_books:10"} {
		if _, ok := fc.data[k]; ok {
			t.Fatalf("key %q survived invalidation", k)
		}
	}
	if _, ok := fc.data["daily_stats:2026-08-29"]; !ok {
		t.Fatal("invalidation must not touch stats counters")
	}
}

func TestSearchByTitle_CachesResult(t *testing.T) {
	calls := 0
	m := &repoMock{
		titleFn: func(ctx context.Context, term string) ([]model.Book, error) {
			calls++
			return []model.Book{{ID: 1, Title: "Go in Action"}}, nil
		},
	}
	s := booksvc.New(m, newFakeCache())

	for i := 0; i < 3; i++ {
		rows, err := s.SearchByTitle(context.Background(), "go")
		if err != nil || len(rows) != 1 {
			t.Fatalf("search got %v rows err=%v", rows, err)
		}
	}
	if calls != 1 {
		t.Fatalf("store searched %d times; want 1", calls)
	}
}

func TestGetBook_UndecodableEntryFallsBack(t *testing.T) {
	fc := newFakeCache()
	fc.data["book:3"] = "not json"
	m := &repoMock{
		findFn: func(ctx context.Context, id int64) (*model.Book, error) {
			return &model.Book{ID: id, Title: "Clean", Author: "Martin", Stock: 1}, nil
		},
	}
	s := booksvc.New(m, fc)

	b, err := s.GetBook(context.Background(), 3)
	if err != nil || b.Title != "Clean" {
		t.Fatalf("got %+v err=%v", b, err)
	}
	if m.findCalls != 1 {
		t.Fatalf("store hit %d times; want 1", m.findCalls)
	}
}

func TestCreate_Validation(t *testing.T) {
	s := booksvc.New(&repoMock{}, newFakeCache())
	ctx := context.Background()

	bad := []*model.Book{
		nil,
		{Author: "a"},
		{Title: "t"},
		{Title: "t", Author: "a", Stock: -1},
		{Title: "t", Author: "a", Stock: 1, Borrowed: 2},
	}
	for i, b := range bad {
		if err := s.Create(ctx, b); err != booksvc.ErrBadInput {
			t.Fatalf("case %d: got %v; want ErrBadInput", i, err)
		}
	}
}

func TestDelete_Invalidates(t *testing.T) {
	fc := newFakeCache()
	fc.data["book:2"] = "{}"
	s := booksvc.New(&repoMock{}, fc)

	if err := s.Delete(context.Background(), 2); err != nil {
		t.Fatal(err)
	}
	if _, ok := fc.data["book:2"]; ok {
		t.Fatal("book:2 survived delete")
	}
}

// Package booksvc is the read-through cache layer over the book store.
// Cache entries are advisory: the store stays authoritative, entries may
// be stale between invalidations.
package booksvc

import (
	"context"
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"

	"booklend/cache"
	"booklend/model"
	bookrepo "booklend/repository/book"
	"booklend/util/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	bookTTL       = time.Hour
	searchTTL     = time.Hour
	hitCounterTTL = 24 * time.Hour
)

var ErrBadInput = errors.New("invalid book payload")

// ErrNotFound re-exports the store's sentinel so controllers need not
// import the repository.
var ErrNotFound = bookrepo.ErrNotFound

type Repo interface {
	FindByID(ctx context.Context, id int64) (*model.Book, error)
	FindByISBN(ctx context.Context, isbn string) (*model.Book, error)
	SearchTitle(ctx context.Context, term string) ([]model.Book, error)
	SearchAuthor(ctx context.Context, term string) ([]model.Book, error)
	SearchCategory(ctx context.Context, category string) ([]model.Book, error)
	FindAll(ctx context.Context) ([]model.Book, error)
	Create(ctx context.Context, b *model.Book) error
	Update(ctx context.Context, b *model.Book) error
	Delete(ctx context.Context, id int64) error
}

type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration) bool
	Del(ctx context.Context, keys ...string)
	DelPattern(ctx context.Context, pattern string)
	Incr(ctx context.Context, key string, by int64) int64
	Expire(ctx context.Context, key string, ttl time.Duration)
	FlushDB(ctx context.Context)
}

type Service interface {
	GetBook(ctx context.Context, id int64) (*model.Book, error)
	GetBookByISBN(ctx context.Context, isbn string) (*model.Book, error)
	SearchByTitle(ctx context.Context, term string) ([]model.Book, error)
	SearchByAuthor(ctx context.Context, term string) ([]model.Book, error)
	SearchByCategory(ctx context.Context, category string) ([]model.Book, error)
	List(ctx context.Context) ([]model.Book, error)

	Create(ctx context.Context, b *model.Book) error
	Update(ctx context.Context, b *model.Book) error
	Delete(ctx context.Context, id int64) error

	InvalidateBook(ctx context.Context, id int64)
	InvalidateAll(ctx context.Context)
}

type service struct {
	r Repo
	c Cache
}

func New(r Repo, c Cache) Service { return &service{r: r, c: c} }

func (s *service) recordHit(ctx context.Context) {
	s.c.Incr(ctx, cache.CacheHitCount, 1)
	s.c.Expire(ctx, cache.CacheHitCount, hitCounterTTL)
	metrics.CacheHits.Inc()
}

func (s *service) recordMiss(ctx context.Context) {
	s.c.Incr(ctx, cache.CacheMissCnt, 1)
	s.c.Expire(ctx, cache.CacheMissCnt, hitCounterTTL)
	metrics.CacheMisses.Inc()
}

// getBookVia reads one book through the cache under key, loading from
// the store with load on a miss.
func (s *service) getBookVia(ctx context.Context, key string, load func() (*model.Book, error)) (*model.Book, error) {
	if raw, ok := s.c.Get(ctx, key); ok {
		var b model.Book
		if err := json.UnmarshalFromString(raw, &b); err == nil {
			s.recordHit(ctx)
			return &b, nil
		}
		// undecodable entry: drop it and fall through to the store
		s.c.Del(ctx, key)
	}
	s.recordMiss(ctx)

	b, err := load()
	if err != nil {
		return nil, err
	}
	if raw, err := json.MarshalToString(b); err == nil {
		s.c.Set(ctx, key, raw, bookTTL)
	}
	return b, nil
}

func (s *service) GetBook(ctx context.Context, id int64) (*model.Book, error) {
	return s.getBookVia(ctx, cache.BookKey(id), func() (*model.Book, error) {
		return s.r.FindByID(ctx, id)
	})
}

func (s *service) GetBookByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	return s.getBookVia(ctx, cache.BookISBNKey(isbn), func() (*model.Book, error) {
		return s.r.FindByISBN(ctx, isbn)
	})
}

func (s *service) searchVia(ctx context.Context, key string, load func() ([]model.Book, error)) ([]model.Book, error) {
	if raw, ok := s.c.Get(ctx, key); ok {
		var books []model.Book
		if err := json.UnmarshalFromString(raw, &books); err == nil {
			s.recordHit(ctx)
			return books, nil
		}
		s.c.Del(ctx, key)
	}
	s.recordMiss(ctx)

	books, err := load()
	if err != nil {
		return nil, err
	}
	if raw, err := json.MarshalToString(books); err == nil {
		s.c.Set(ctx, key, raw, searchTTL)
	}
	return books, nil
}

func (s *service) SearchByTitle(ctx context.Context, term string) ([]model.Book, error) {
	return s.searchVia(ctx, cache.SearchTitleKey(term), func() ([]model.Book, error) {
		return s.r.SearchTitle(ctx, term)
	})
}

func (s *service) SearchByAuthor(ctx context.Context, term string) ([]model.Book, error) {
	return s.searchVia(ctx, cache.SearchAuthorKey(term), func() ([]model.Book, error) {
		return s.r.SearchAuthor(ctx, term)
	})
}

func (s *service) SearchByCategory(ctx context.Context, category string) ([]model.Book, error) {
	return s.searchVia(ctx, cache.SearchCatKey(category), func() ([]model.Book, error) {
		return s.r.SearchCategory(ctx, category)
	})
}

// List always hits the store; the full catalog is not worth caching
// whole and going stale.
func (s *service) List(ctx context.Context) ([]model.Book, error) {
	return s.r.FindAll(ctx)
}

func validate(b *model.Book) error {
	if b == nil || b.Title == "" || b.Author == "" {
		return ErrBadInput
	}
	if b.Stock < 0 || b.Borrowed < 0 || b.Borrowed > b.Stock {
		return ErrBadInput
	}
	return nil
}

func (s *service) Create(ctx context.Context, b *model.Book) error {
	if err := validate(b); err != nil {
		return err
	}
	if err := s.r.Create(ctx, b); err != nil {
		return err
	}
	s.InvalidateBook(ctx, b.ID)
	return nil
}

func (s *service) Update(ctx context.Context, b *model.Book) error {
	if err := validate(b); err != nil {
		return err
	}
	if b.ID <= 0 {
		return ErrBadInput
	}
	if err := s.r.Update(ctx, b); err != nil {
		return err
	}
	s.InvalidateBook(ctx, b.ID)
	return nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := s.r.Delete(ctx, id); err != nil {
		return err
	}
	s.InvalidateBook(ctx, id)
	return nil
}

// InvalidateBook drops the point entry plus every search result and hot
// list in bulk: any of them may still reference the stale book, and
// surgical eviction is not worth the bookkeeping.
func (s *service) InvalidateBook(ctx context.Context, id int64) {
	s.c.Del(ctx, cache.BookKey(id))
	s.c.DelPattern(ctx, "book:isbn:*")
	s.c.DelPattern(ctx, "book_search:*")
	s.c.DelPattern(ctx, cache.HotBooks+":*")
}

func (s *service) InvalidateAll(ctx context.Context) {
	s.c.FlushDB(ctx)
}

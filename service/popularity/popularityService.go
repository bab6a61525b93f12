// Package popularity ranks books by cumulative borrow count. Scores only
// ever grow; returning a book does not demote it.
package popularity

import (
	"context"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"

	"booklend/cache"
	"booklend/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const hotListTTL = 30 * time.Minute

type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration) bool
	Del(ctx context.Context, keys ...string)
	ZIncrBy(ctx context.Context, set, member string, by float64)
	ZTopN(ctx context.Context, set string, n int) []cache.ScoredMember
	ZScore(ctx context.Context, set, member string) (float64, bool)
}

// BookGetter resolves ranked ids to full records through the book cache
// layer, so a miss here follows the usual read-through path.
type BookGetter interface {
	GetBook(ctx context.Context, id int64) (*model.Book, error)
}

type Service interface {
	RecordBorrow(ctx context.Context, bookID int64)
	TopBooks(ctx context.Context, n int) ([]model.RankedBook, error)
	BorrowCountOf(ctx context.Context, bookID int64) int64
}

type service struct {
	c     Cache
	books BookGetter
}

func New(c Cache, books BookGetter) Service { return &service{c: c, books: books} }

func (s *service) RecordBorrow(ctx context.Context, bookID int64) {
	s.c.ZIncrBy(ctx, cache.HotBooks, strconv.FormatInt(bookID, 10), 1)
}

// TopBooks returns the n most-borrowed books, best first. The resolved
// list is cached for 30 minutes per limit to absorb repeated queries.
// Books that have been deleted since their last borrow are skipped.
func (s *service) TopBooks(ctx context.Context, n int) ([]model.RankedBook, error) {
	if n <= 0 {
		return []model.RankedBook{}, nil
	}

	pageKey := cache.HotBooksPage(n)
	if raw, ok := s.c.Get(ctx, pageKey); ok {
		var out []model.RankedBook
		if err := json.UnmarshalFromString(raw, &out); err == nil {
			return out, nil
		}
		s.c.Del(ctx, pageKey)
	}

	members := s.c.ZTopN(ctx, cache.HotBooks, n)
	out := make([]model.RankedBook, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m.Member, 10, 64)
		if err != nil {
			continue
		}
		b, err := s.books.GetBook(ctx, id)
		if err != nil {
			continue
		}
		out = append(out, model.RankedBook{Book: *b, Score: int64(m.Score)})
	}

	if raw, err := json.MarshalToString(out); err == nil {
		s.c.Set(ctx, pageKey, raw, hotListTTL)
	}
	return out, nil
}

func (s *service) BorrowCountOf(ctx context.Context, bookID int64) int64 {
	score, ok := s.c.ZScore(ctx, cache.HotBooks, strconv.FormatInt(bookID, 10))
	if !ok {
		return 0
	}
	return int64(score)
}

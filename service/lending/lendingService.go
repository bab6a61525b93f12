// Package lending serializes borrow/return decisions against the
// bounded copy count. A short-lived per-book lock in the cache store
// keeps two concurrent borrows from both seeing the last copy; the
// authoritative row is always re-read under that lock before mutation.
package lending

import (
	"context"
	"errors"
	"time"

	"booklend/cache"
	"booklend/model"
	bookrepo "booklend/repository/book"
	"booklend/util/metrics"
)

// lockTTL bounds how long a crashed holder can block a book.
const lockTTL = 10 * time.Second

// errors used by controllers

type ErrCode string

const (
	ErrBusy             ErrCode = "BUSY"
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrOutOfStock       ErrCode = "OUT_OF_STOCK"
	ErrNothingToReturn  ErrCode = "NOTHING_TO_RETURN"
	ErrStoreUnavailable ErrCode = "STORE_UNAVAILABLE"
)

type codedError struct {
	code  ErrCode
	cause error
}

func (e codedError) Error() string {
	if e.cause != nil {
		return string(e.code) + ": " + e.cause.Error()
	}
	return string(e.code)
}
func (e codedError) Code() ErrCode { return e.code }
func (e codedError) Unwrap() error { return e.cause }

func makeErr(c ErrCode) error { return codedError{code: c} }

func wrapErr(c ErrCode, err error) error { return codedError{code: c, cause: err} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// Store is the authoritative book row access the coordinator needs.
type Store interface {
	FindByID(ctx context.Context, id int64) (*model.Book, error)
	Update(ctx context.Context, b *model.Book) error
}

// Locker is the advisory per-book lock primitive. A false acquire means
// contention or an unreachable cache store; both are reported as Busy.
type Locker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) bool
	ReleaseLock(ctx context.Context, key string)
}

// Invalidator evicts cache entries touched by a committed write.
type Invalidator interface {
	InvalidateBook(ctx context.Context, id int64)
}

type Ranking interface {
	RecordBorrow(ctx context.Context, bookID int64)
}

type Stats interface {
	IncrementDaily(ctx context.Context)
	IncrementWeekly(ctx context.Context)
	IncrementMonthly(ctx context.Context)
	RecordUserActivity(ctx context.Context, userID int64)
	BumpCategory(ctx context.Context, category string)
}

type Notifier interface {
	BookBorrowed(ctx context.Context, bookID, userID int64)
	BookReturned(ctx context.Context, bookID, userID int64)
	BookAvailable(ctx context.Context, bookID int64)
}

type Analytics interface {
	SendBorrowEvent(bookID, userID int64)
	SendReturnEvent(bookID, userID int64)
}

type Service interface {
	// Borrow lends one copy of the book to the user. Expected failures:
	// BUSY (lock contention, caller may retry), NOT_FOUND, OUT_OF_STOCK.
	Borrow(ctx context.Context, bookID, userID int64) (*model.Book, error)

	// Return hands one copy back. Expected failures: NOT_FOUND,
	// NOTHING_TO_RETURN.
	Return(ctx context.Context, bookID, userID int64) (*model.Book, error)
}

type service struct {
	store     Store
	locks     Locker
	books     Invalidator
	ranking   Ranking
	stats     Stats
	notify    Notifier
	analytics Analytics
}

func New(store Store, locks Locker, books Invalidator, ranking Ranking, stats Stats, notify Notifier, analytics Analytics) Service {
	return &service{
		store:     store,
		locks:     locks,
		books:     books,
		ranking:   ranking,
		stats:     stats,
		notify:    notify,
		analytics: analytics,
	}
}

func (s *service) Borrow(ctx context.Context, bookID, userID int64) (*model.Book, error) {
	lockKey := cache.BorrowLockKey(bookID)
	if !s.locks.AcquireLock(ctx, lockKey, lockTTL) {
		return nil, makeErr(ErrBusy)
	}
	// Released on every exit path; if the process dies first the TTL
	// frees the book.
	defer s.locks.ReleaseLock(ctx, lockKey)

	b, err := s.store.FindByID(ctx, bookID)
	if errors.Is(err, bookrepo.ErrNotFound) {
		return nil, makeErr(ErrNotFound)
	}
	if err != nil {
		return nil, wrapErr(ErrStoreUnavailable, err)
	}

	// Mandatory recheck against the authoritative row. A cache entry may
	// have shown availability that is already gone.
	if b.Available() <= 0 {
		return nil, makeErr(ErrOutOfStock)
	}

	b.Borrowed++
	if err := s.store.Update(ctx, b); err != nil {
		return nil, wrapErr(ErrStoreUnavailable, err)
	}

	s.ranking.RecordBorrow(ctx, bookID)
	s.stats.IncrementDaily(ctx)
	s.stats.IncrementWeekly(ctx)
	s.stats.IncrementMonthly(ctx)
	s.stats.RecordUserActivity(ctx, userID)
	s.stats.BumpCategory(ctx, b.Category)
	s.books.InvalidateBook(ctx, bookID)
	metrics.Borrows.Inc()

	s.notify.BookBorrowed(ctx, bookID, userID)
	s.analytics.SendBorrowEvent(bookID, userID)

	return b, nil
}

// Return is not lock-protected: a decrement only frees capacity, so the
// overbooking race does not apply. Two racing returns of the same unit
// remain possible in principle; kept as-is pending clarified
// requirements.
func (s *service) Return(ctx context.Context, bookID, userID int64) (*model.Book, error) {
	b, err := s.store.FindByID(ctx, bookID)
	if errors.Is(err, bookrepo.ErrNotFound) {
		return nil, makeErr(ErrNotFound)
	}
	if err != nil {
		return nil, wrapErr(ErrStoreUnavailable, err)
	}

	if b.Borrowed <= 0 {
		return nil, makeErr(ErrNothingToReturn)
	}

	b.Borrowed--
	if err := s.store.Update(ctx, b); err != nil {
		return nil, wrapErr(ErrStoreUnavailable, err)
	}

	s.stats.RecordUserActivity(ctx, userID)
	s.books.InvalidateBook(ctx, bookID)
	metrics.Returns.Inc()

	s.notify.BookReturned(ctx, bookID, userID)
	s.notify.BookAvailable(ctx, bookID)
	s.analytics.SendReturnEvent(bookID, userID)

	return b, nil
}

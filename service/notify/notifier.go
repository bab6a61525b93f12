// Package notify publishes lending events to the redis book_events
// channel. Downstream fan-out (websocket push, analytics pipelines)
// subscribes there; delivery is fire-and-forget.
package notify

import (
	"context"
	"time"

	jsoniter "github.com/json-iterator/go"

	"booklend/cache"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Event struct {
	Type   string `json:"type"`
	BookID int64  `json:"book_id"`
	UserID int64  `json:"user_id,omitempty"`
	At     int64  `json:"at"`
}

const (
	EventBorrowed  = "borrowed"
	EventReturned  = "returned"
	EventAvailable = "available"
)

type Cache interface {
	Publish(ctx context.Context, channel, payload string)
}

type Publisher interface {
	BookBorrowed(ctx context.Context, bookID, userID int64)
	BookReturned(ctx context.Context, bookID, userID int64)
	BookAvailable(ctx context.Context, bookID int64)
}

type publisher struct{ c Cache }

func New(c Cache) Publisher { return &publisher{c: c} }

func (p *publisher) emit(ctx context.Context, ev Event) {
	ev.At = time.Now().UnixMilli()
	raw, err := json.MarshalToString(ev)
	if err != nil {
		return
	}
	p.c.Publish(ctx, cache.BookEvents, raw)
}

func (p *publisher) BookBorrowed(ctx context.Context, bookID, userID int64) {
	p.emit(ctx, Event{Type: EventBorrowed, BookID: bookID, UserID: userID})
}

func (p *publisher) BookReturned(ctx context.Context, bookID, userID int64) {
	p.emit(ctx, Event{Type: EventReturned, BookID: bookID, UserID: userID})
}

func (p *publisher) BookAvailable(ctx context.Context, bookID int64) {
	p.emit(ctx, Event{Type: EventAvailable, BookID: bookID})
}

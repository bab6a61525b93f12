// Package analyticsrepo posts usage events to the external analytics
// service. Analytics is best-effort: a failure is logged and swallowed,
// it must never fail the lending path.
package analyticsrepo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"booklend/util/httpx"
)

type Event struct {
	BookID    int64  `json:"bookId,omitempty"`
	UserID    int64  `json:"userId"`
	Username  string `json:"username,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

type Repo interface {
	SendBorrowEvent(bookID, userID int64)
	SendReturnEvent(bookID, userID int64)
	SendLoginEvent(userID int64, username string)
}

type httpRepo struct {
	baseURL string
	client  *http.Client
	log     *slog.Logger
}

// NewHTTP returns a client for the analytics service at baseURL. An
// empty baseURL yields a no-op client.
func NewHTTP(baseURL string, log *slog.Logger) Repo {
	return &httpRepo{baseURL: baseURL, client: httpx.Client(), log: log}
}

func (r *httpRepo) post(path string, ev Event) {
	if r.baseURL == "" {
		return
	}
	ev.Timestamp = time.Now().UnixMilli()
	b, _ := json.Marshal(ev)
	resp, err := r.client.Post(r.baseURL+path, "application/json", bytes.NewReader(b))
	if err != nil {
		r.log.Warn("analytics event failed", "path", path, "err", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		r.log.Warn("analytics event rejected", "path", path, "err", fmt.Errorf("status %s", resp.Status))
	}
}

func (r *httpRepo) SendBorrowEvent(bookID, userID int64) {
	r.post("/api/collect/borrow", Event{BookID: bookID, UserID: userID})
}

func (r *httpRepo) SendReturnEvent(bookID, userID int64) {
	r.post("/api/collect/return", Event{BookID: bookID, UserID: userID})
}

func (r *httpRepo) SendLoginEvent(userID int64, username string) {
	r.post("/api/collect/login", Event{UserID: userID, Username: username})
}

// Package admin exposes raw cache inspection and bulk invalidation.
// These endpoints bypass every business invariant; they exist for
// operators recovering from cache/store divergence.
package admin

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"booklend/app/echoServer/jwtx"
	cachesvc "booklend/cache"
	booksvc "booklend/service/book"
)

type Controller struct {
	Cache *cachesvc.Client
	Books booksvc.Service
	Log   *slog.Logger
}

type setKeyReq struct {
	Key   string `json:"key" validate:"required"`
	Value string `json:"value" validate:"required"`
	TTL   int64  `json:"ttl_seconds"`
}

func (h *Controller) guard(c echo.Context) bool {
	return jwtx.RoleFromContext(c) == "admin"
}

// GET /v1/admin/cache/info
func (h *Controller) Info(c echo.Context) error {
	if !h.guard(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	ctx := c.Request().Context()
	status := "connected"
	if err := h.Cache.Ping(ctx); err != nil {
		status = "disconnected"
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  status,
		"db_size": h.Cache.DBSize(ctx),
	})
}

// GET /v1/admin/cache/keys?pattern=*
func (h *Controller) Keys(c echo.Context) error {
	if !h.guard(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	pattern := c.QueryParam("pattern")
	if pattern == "" {
		pattern = "*"
	}
	return c.JSON(http.StatusOK, echo.Map{"data": h.Cache.Keys(c.Request().Context(), pattern)})
}

// GET /v1/admin/cache/keys/:key
func (h *Controller) GetKey(c echo.Context) error {
	if !h.guard(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	key := c.Param("key")
	v, ok := h.Cache.Get(c.Request().Context(), key)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "key not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"key": key, "value": v})
}

// POST /v1/admin/cache/keys
func (h *Controller) SetKey(c echo.Context) error {
	if !h.guard(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	var req setKeyReq
	if err := c.Bind(&req); err != nil || req.Key == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid payload"})
	}
	ttl := time.Duration(req.TTL) * time.Second
	if !h.Cache.Set(c.Request().Context(), req.Key, req.Value, ttl) {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"message": "cache unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "ok"})
}

// DELETE /v1/admin/cache/keys/:key
func (h *Controller) DeleteKey(c echo.Context) error {
	if !h.guard(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	h.Cache.Del(c.Request().Context(), c.Param("key"))
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}

// POST /v1/admin/cache/flush
func (h *Controller) Flush(c echo.Context) error {
	if !h.guard(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	h.Books.InvalidateAll(c.Request().Context())
	h.Log.Warn("cache flushed by admin", "req_id", c.Response().Header().Get(echo.HeaderXRequestID))
	return c.JSON(http.StatusOK, echo.Map{"message": "cache flushed"})
}

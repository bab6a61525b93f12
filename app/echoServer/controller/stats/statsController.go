package stats

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"booklend/service/popularity"
	statssvc "booklend/service/stats"
)

type Controller struct {
	Svc statssvc.Service
	Pop popularity.Service
	Log *slog.Logger
}

func limitParam(c echo.Context, name string, def, max int) int {
	n, err := strconv.Atoi(c.QueryParam(name))
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// GET /v1/stats/overview
func (h *Controller) Overview(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Svc.Overview(c.Request().Context()))
}

// GET /v1/stats/daily?days=7
func (h *Controller) Daily(c echo.Context) error {
	days := limitParam(c, "days", 7, 90)
	return c.JSON(http.StatusOK, echo.Map{"data": h.Svc.RecentNDays(c.Request().Context(), days)})
}

// GET /v1/stats/active-users?limit=10
func (h *Controller) ActiveUsers(c echo.Context) error {
	limit := limitParam(c, "limit", 10, 100)
	return c.JSON(http.StatusOK, echo.Map{"data": h.Svc.ActiveUsers(c.Request().Context(), limit)})
}

// GET /v1/stats/categories
func (h *Controller) Categories(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"data": h.Svc.CategoryStats(c.Request().Context())})
}

// GET /v1/stats/hot-books?limit=10
func (h *Controller) HotBooks(c echo.Context) error {
	limit := limitParam(c, "limit", 10, 100)
	rows, err := h.Pop.TopBooks(c.Request().Context(), limit)
	if err != nil {
		h.Log.Error("hot books error", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/stats/books/:id/borrows
func (h *Controller) BookBorrowCount(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"book_id":      id,
		"borrow_count": h.Pop.BorrowCountOf(c.Request().Context(), id),
	})
}

// GET /v1/stats/cache
func (h *Controller) CacheStats(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"hit_rate": h.Svc.CacheHitRate(c.Request().Context()),
	})
}

package lending

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"booklend/app/echoServer/jwtx"
	ls "booklend/service/lending"
)

type Controller struct {
	Svc ls.Service
	Log *slog.Logger
}

func parseID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// POST /v1/books/:id/borrow
func (h *Controller) Borrow(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	b, err := h.Svc.Borrow(c.Request().Context(), id, uid)
	if err != nil {
		switch ls.Code(err) {
		case ls.ErrBusy:
			return c.JSON(http.StatusConflict, echo.Map{"message": "book is locked, try again"})
		case ls.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case ls.ErrOutOfStock:
			return c.JSON(http.StatusConflict, echo.Map{"message": "no copies available"})
		default:
			h.Log.Error("borrow error", "book_id", id, "err", err)
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"message": "store unavailable"})
		}
	}
	return c.JSON(http.StatusOK, b)
}

// POST /v1/books/:id/return
func (h *Controller) Return(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	b, err := h.Svc.Return(c.Request().Context(), id, uid)
	if err != nil {
		switch ls.Code(err) {
		case ls.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case ls.ErrNothingToReturn:
			return c.JSON(http.StatusConflict, echo.Map{"message": "no copies out"})
		default:
			h.Log.Error("return error", "book_id", id, "err", err)
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"message": "store unavailable"})
		}
	}
	return c.JSON(http.StatusOK, b)
}

package user

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"booklend/app/echoServer/jwtx"
	userrepo "booklend/repository/user"
)

type Controller struct {
	Repo userrepo.Repo
	Log  *slog.Logger
}

// GET /v1/users/me
func (h *Controller) Me(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	u, err := h.Repo.ByID(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("me error", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, u)
}

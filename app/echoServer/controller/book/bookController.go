package book

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"booklend/app/echoServer/jwtx"
	"booklend/model"
	booksvc "booklend/service/book"
)

type Controller struct {
	Svc booksvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func isAdmin(c echo.Context) bool {
	return jwtx.RoleFromContext(c) == "admin"
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// GET /v1/books
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.List(c.Request().Context())
	if err != nil {
		h.Log.Error("book list error", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/books/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	row, err := h.Svc.GetBook(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, booksvc.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
		}
		h.Log.Error("book detail error", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, row)
}

// GET /v1/books/isbn/:isbn
func (h *Controller) DetailByISBN(c echo.Context) error {
	isbn := c.Param("isbn")
	if isbn == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid isbn"})
	}
	row, err := h.Svc.GetBookByISBN(c.Request().Context(), isbn)
	if err != nil {
		if errors.Is(err, booksvc.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
		}
		h.Log.Error("book isbn error", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, row)
}

func (h *Controller) search(c echo.Context, fn func(string) ([]model.Book, error)) error {
	term := c.QueryParam("q")
	if term == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "missing q"})
	}
	rows, err := fn(term)
	if err != nil {
		h.Log.Error("book search error", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/books/search/title?q=
func (h *Controller) SearchTitle(c echo.Context) error {
	return h.search(c, func(q string) ([]model.Book, error) {
		return h.Svc.SearchByTitle(c.Request().Context(), q)
	})
}

// GET /v1/books/search/author?q=
func (h *Controller) SearchAuthor(c echo.Context) error {
	return h.search(c, func(q string) ([]model.Book, error) {
		return h.Svc.SearchByAuthor(c.Request().Context(), q)
	})
}

// GET /v1/books/search/category?q=
func (h *Controller) SearchCategory(c echo.Context) error {
	return h.search(c, func(q string) ([]model.Book, error) {
		return h.Svc.SearchByCategory(c.Request().Context(), q)
	})
}

func (h *Controller) bind(c echo.Context) (*UpsertBookReq, error) {
	var req UpsertBookReq
	if err := c.Bind(&req); err != nil {
		return nil, errors.New("invalid json")
	}
	if err := h.V.Struct(req); err != nil {
		return nil, err
	}
	return &req, nil
}

// POST /v1/books  (admin)
func (h *Controller) Create(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	req, err := h.bind(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}
	b := &model.Book{
		Title:     req.Title,
		Author:    req.Author,
		Category:  req.Category,
		Publisher: req.Publisher,
		ISBN:      req.ISBN,
		Stock:     req.Stock,
	}
	if err := h.Svc.Create(c.Request().Context(), b); err != nil {
		if errors.Is(err, booksvc.ErrBadInput) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
		}
		h.Log.Error("book create error", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusCreated, b)
}

// PUT /v1/books/:id  (admin)
func (h *Controller) Update(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	req, err := h.bind(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}

	// keep the borrowed count; only catalog fields and stock are editable
	cur, err := h.Svc.GetBook(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, booksvc.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
		}
		h.Log.Error("book update error", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}

	b := &model.Book{
		ID:        id,
		Title:     req.Title,
		Author:    req.Author,
		Category:  req.Category,
		Publisher: req.Publisher,
		ISBN:      req.ISBN,
		Stock:     req.Stock,
		Borrowed:  cur.Borrowed,
	}
	if err := h.Svc.Update(c.Request().Context(), b); err != nil {
		switch {
		case errors.Is(err, booksvc.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
		case errors.Is(err, booksvc.ErrBadInput):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
		default:
			h.Log.Error("book update error", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, b)
}

// DELETE /v1/books/:id  (admin)
func (h *Controller) Delete(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, booksvc.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
		}
		h.Log.Error("book delete error", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.NoContent(http.StatusNoContent)
}

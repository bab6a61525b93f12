package echoServer

import (
	"booklend/app/echoServer/controller/admin"
	"booklend/app/echoServer/controller/auth"
	"booklend/app/echoServer/controller/book"
	"booklend/app/echoServer/controller/lending"
	"booklend/app/echoServer/controller/stats"
	"booklend/app/echoServer/controller/user"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type C struct {
	Auth    *auth.Controller
	Book    *book.Controller
	Lending *lending.Controller
	Stats   *stats.Controller
	User    *user.Controller
	Admin   *admin.Controller

	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/users/register", c.Auth.Register)
	pub.POST("/users/login", c.Auth.Login)

	// Auth
	g := e.Group("/v1")
	g.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(c.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization",
	}))

	// Books (reads go through the cache layer)
	g.GET("/books", c.Book.List)
	g.GET("/books/:id", c.Book.Detail)
	g.GET("/books/isbn/:isbn", c.Book.DetailByISBN)
	g.GET("/books/search/title", c.Book.SearchTitle)
	g.GET("/books/search/author", c.Book.SearchAuthor)
	g.GET("/books/search/category", c.Book.SearchCategory)

	// Catalog writes (admin)
	g.POST("/books", c.Book.Create)
	g.PUT("/books/:id", c.Book.Update)
	g.DELETE("/books/:id", c.Book.Delete)

	// Lending
	g.POST("/books/:id/borrow", c.Lending.Borrow)
	g.POST("/books/:id/return", c.Lending.Return)

	// Users
	g.GET("/users/me", c.User.Me)

	// Statistics
	g.GET("/stats/overview", c.Stats.Overview)
	g.GET("/stats/daily", c.Stats.Daily)
	g.GET("/stats/active-users", c.Stats.ActiveUsers)
	g.GET("/stats/categories", c.Stats.Categories)
	g.GET("/stats/hot-books", c.Stats.HotBooks)
	g.GET("/stats/books/:id/borrows", c.Stats.BookBorrowCount)
	g.GET("/stats/cache", c.Stats.CacheStats)

	// Cache administration (admin)
	g.GET("/admin/cache/info", c.Admin.Info)
	g.GET("/admin/cache/keys", c.Admin.Keys)
	g.GET("/admin/cache/keys/:key", c.Admin.GetKey)
	g.POST("/admin/cache/keys", c.Admin.SetKey)
	g.DELETE("/admin/cache/keys/:key", c.Admin.DeleteKey)
	g.POST("/admin/cache/flush", c.Admin.Flush)
}

// Package main booklend API.
//
// @title           Booklend API
// @version         1.0
// @description     Library catalog, lending and usage statistics.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"booklend/app/echoServer"
	adminctrl "booklend/app/echoServer/controller/admin"
	authctrl "booklend/app/echoServer/controller/auth"
	bookctrl "booklend/app/echoServer/controller/book"
	lendingctrl "booklend/app/echoServer/controller/lending"
	statsctrl "booklend/app/echoServer/controller/stats"
	userctrl "booklend/app/echoServer/controller/user"
	"booklend/app/echoServer/validation"
	"booklend/cache"
	"booklend/config"
	"booklend/model"
	analyticsrepo "booklend/repository/analytics"
	bookrepo "booklend/repository/book"
	userrepo "booklend/repository/user"
	authsvc "booklend/service/auth"
	booksvc "booklend/service/book"
	lendingsvc "booklend/service/lending"
	"booklend/service/notify"
	popsvc "booklend/service/popularity"
	presencesvc "booklend/service/presence"
	statssvc "booklend/service/stats"
	"booklend/util/database"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB: *sql.DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// redis
	rc := cache.New(cache.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, log)
	defer rc.Close()
	if err := rc.Ping(ctx); err != nil {
		// degraded mode: every read becomes a store round trip
		log.Warn("redis unreachable at startup", "addr", cfg.RedisAddr, "err", err)
	}

	// repos
	br := bookrepo.New(db)
	ur := userrepo.New(db)
	an := analyticsrepo.NewHTTP(cfg.AnalyticsURL, log)

	// services
	bs := booksvc.New(br, rc)
	ps := presencesvc.New(rc)
	pop := popsvc.New(rc, bs)
	st := statssvc.New(rc, ps, pop)
	np := notify.New(rc)
	lend := lendingsvc.New(br, rc, bs, pop, st, np, an)
	as := authsvc.New(ur, cfg.JWTSecret, func(ctx context.Context, u *model.User) {
		ps.AddOnlineUser(ctx, u.ID)
		st.RecordUserActivity(ctx, u.ID)
		an.SendLoginEvent(u.ID, u.Username)
	})

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	lendingC := &lendingctrl.Controller{Svc: lend, Log: log}
	statsC := &statsctrl.Controller{Svc: st, Pop: pop, Log: log}
	userC := &userctrl.Controller{Repo: ur, Log: log}
	adminC := &adminctrl.Controller{Cache: rc, Books: bs, Log: log}

	// periodic sweep of stale stat buckets
	go func() {
		t := time.NewTicker(24 * time.Hour)
		defer t.Stop()
		for range t.C {
			st.CleanExpired(ctx)
		}
	}()

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:    authC,
		Book:    bookC,
		Lending: lendingC,
		Stats:   statsC,
		User:    userC,
		Admin:   adminC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}
	if port == "" {
		port = "8080"
	}

	slog.Info("starting server", "chosen_port", port)

	e.Logger.Fatal(e.Start(":" + port))
}

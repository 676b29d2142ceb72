package main

import (
	"log"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/altinm/password-vault/internal/config"
	"github.com/altinm/password-vault/internal/database"
	"github.com/altinm/password-vault/internal/handler"
	"github.com/altinm/password-vault/internal/queue"
	"github.com/altinm/password-vault/internal/repository"
	"github.com/altinm/password-vault/internal/router"
)

func main() {
	cfg := config.Load()

	// The pool is lazy: a store that is still booting only delays requests,
	// never startup. Requests hitting a down store answer 503.
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	// Optional: token revocation list. nil disables logout revocation.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, logout revocation disabled")
	}

	users := repository.NewUserRepo(db)
	entries := repository.NewEntryRepo(db)

	authHandler := handler.NewAuthHandler(cfg, users, rdb)
	vaultHandler := handler.NewVaultHandler(cfg, entries)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(echomw.CORS())

	router.Register(e, authHandler, vaultHandler, cfg.JWTSecret, rdb)

	// Audit trail consumer; reconnects on its own and never takes the
	// server down.
	go func() {
		if err := queue.StartAuditConsumer(); err != nil {
			log.Printf("audit consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

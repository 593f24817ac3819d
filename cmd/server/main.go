package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-identity-service/internal/config"
	"github.com/iliyamo/user-identity-service/internal/database"
	"github.com/iliyamo/user-identity-service/internal/handler"
	"github.com/iliyamo/user-identity-service/internal/logging"
	"github.com/iliyamo/user-identity-service/internal/queue"
	"github.com/iliyamo/user-identity-service/internal/repository"
	"github.com/iliyamo/user-identity-service/internal/router"
	"github.com/iliyamo/user-identity-service/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	logger, err := logging.New(cfg.LogDir)
	if err != nil {
		log.Fatalf("init logging: %v", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	users := repository.NewUserRepo(db)
	authSvc := service.NewAuthService(users, cfg, logger)
	userSvc := service.NewUserService(users, cfg, logger)

	// Background audit consumer; keeps reconnecting on broker failures.
	go func() {
		if err := queue.StartAccountConsumer(cfg.LogDir); err != nil {
			logger.Error("account consumer stopped", "err", err.Error())
		}
	}()

	rdb := config.NewRedisClient() // nil disables the response cache

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAPI(e, handler.NewAuthHandler(authSvc, logger), handler.NewUserHandler(userSvc, logger), cfg, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

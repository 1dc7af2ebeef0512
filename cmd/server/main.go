package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/velizhanin/scriptshop/internal/config"
	"github.com/velizhanin/scriptshop/internal/database"
	"github.com/velizhanin/scriptshop/internal/delivery"
	"github.com/velizhanin/scriptshop/internal/handler"
	"github.com/velizhanin/scriptshop/internal/logger"
	appmw "github.com/velizhanin/scriptshop/internal/middleware"
	"github.com/velizhanin/scriptshop/internal/queue"
	"github.com/velizhanin/scriptshop/internal/repository"
	"github.com/velizhanin/scriptshop/internal/router"
	queuepublisher "github.com/velizhanin/scriptshop/internal/service"
	"github.com/velizhanin/scriptshop/internal/staging"
	"github.com/velizhanin/scriptshop/internal/telegram"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env always wins
	cfg := config.Load()
	appLog := logger.New(0)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		appLog.Fatal("database connection failed", "error", err)
	}
	defer db.Close()
	if err := database.EnsureSchema(context.Background(), db); err != nil {
		appLog.Fatal("schema bootstrap failed", "error", err)
	}

	userRepo := repository.NewUserRepo(db)
	scriptRepo := repository.NewScriptRepo(db)
	adminRepo := repository.NewAdminRepo(db)

	// Seed the admin set so a fresh deployment has at least one caller that
	// can pass the admin gate.
	for _, id := range cfg.AdminIDs {
		if err := adminRepo.Add(context.Background(), id); err != nil {
			appLog.Fatal("admin seed failed", "admin_id", id, "error", err)
		}
	}

	apiTimeout := time.Duration(cfg.APITimeoutSec) * time.Second
	tg := telegram.New(cfg.TelegramAPIURL, cfg.BotToken, cfg.ChannelID, apiTimeout)
	stager := staging.New(cfg.StagingDir)
	publisher := queuepublisher.NewPublisher()

	pipeline := delivery.New(tg, userRepo, scriptRepo, stager, tg, publisher,
		appLog, cfg.ScriptPrice, apiTimeout)

	// Background consumer mirrors broker events into logs/delivery.log.
	go func() {
		if err := queue.StartDeliveryConsumer(); err != nil {
			appLog.Error("delivery consumer stopped", "error", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	rdb := config.NewRedisClient() // nil disables rate limiting
	limit := appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterPublic(e, handler.NewPublicHandler(scriptRepo), handler.NewUserHandler(userRepo))
	router.RegisterDelivery(e, handler.NewDeliveryHandler(pipeline), limit)
	router.RegisterAdmin(e, handler.NewAdminHandler(scriptRepo, userRepo), adminRepo, limit)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

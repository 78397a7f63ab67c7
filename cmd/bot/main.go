package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/ricksxxx/valorant-store-bot/internal/bot"
	"github.com/ricksxxx/valorant-store-bot/internal/config"
	"github.com/ricksxxx/valorant-store-bot/internal/dialog"
	"github.com/ricksxxx/valorant-store-bot/internal/domain/accounts"
	"github.com/ricksxxx/valorant-store-bot/internal/domain/orders"
	"github.com/ricksxxx/valorant-store-bot/internal/domain/users"
	"github.com/ricksxxx/valorant-store-bot/internal/infra/db"
	httpx "github.com/ricksxxx/valorant-store-bot/internal/infra/http"
	"github.com/ricksxxx/valorant-store-bot/internal/infra/logger"
	"github.com/ricksxxx/valorant-store-bot/internal/infra/notify"
	"github.com/ricksxxx/valorant-store-bot/internal/workflow"
)

func runMigrations(dsn string) error {
	sqlDB, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, "migrations")
}

func main() {
	cfg, err := config.Load("config/example.yaml")
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)

	if cfg.App.Timezone != "" {
		if loc, err := time.LoadLocation(cfg.App.Timezone); err == nil {
			time.Local = loc
		} else {
			log.Warn("unknown timezone, keeping default", "tz", cfg.App.Timezone)
		}
	}

	if err := runMigrations(cfg.Postgres.DSN); err != nil {
		log.Error("migrations failed", "err", err)
		return
	}
	log.Info("migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return
	}
	defer pool.Close()
	log.Info("db connected")

	usersRepo := users.NewRepo(pool)
	accountsRepo := accounts.NewRepo(pool)
	ordersRepo := orders.NewRepo(pool)
	statesRepo := dialog.NewRepo(pool)

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		log.Error("telegram init failed", "err", err)
		return
	}
	log.Info("telegram authorized", "bot", api.Self.UserName)

	notifier := notify.NewTelegram(api, log, cfg.Telegram.ManagerContact)
	svc := workflow.New(log, ordersRepo, accountsRepo, notifier,
		cfg.Telegram.AdminIDs, cfg.Orders.BoostAmountRUB, cfg.Orders.GraceWindow)

	sweeper := workflow.NewSweeper(log, svc, cfg.Orders.SweepInterval)
	go sweeper.Run(ctx)
	log.Info("sweeper started", "interval", cfg.Orders.SweepInterval.String())

	tgBot := bot.New(api, log, usersRepo, statesRepo, accountsRepo, ordersRepo,
		svc, cfg.Telegram.AdminIDs, cfg.Telegram.ManagerContact, cfg.Currency.USDRate)
	go func() {
		if err := tgBot.Run(ctx, 30); err != nil && ctx.Err() == nil {
			log.Error("bot stopped", "err", err)
		}
	}()
	log.Info("bot started")

	handler := httpx.NewHandler(log, accountsRepo, svc, cfg.Currency.USDRate)
	srv := httpx.New(cfg.HTTP.Addr, handler, cfg.Metrics.Enabled)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
}

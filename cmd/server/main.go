package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/kumbhsaathi/kumbhsaathi/internal/config"
	"github.com/kumbhsaathi/kumbhsaathi/internal/database"
	"github.com/kumbhsaathi/kumbhsaathi/internal/handler"
	"github.com/kumbhsaathi/kumbhsaathi/internal/logger"
	"github.com/kumbhsaathi/kumbhsaathi/internal/middleware"
	"github.com/kumbhsaathi/kumbhsaathi/internal/notify"
	"github.com/kumbhsaathi/kumbhsaathi/internal/queue"
	"github.com/kumbhsaathi/kumbhsaathi/internal/repository"
	"github.com/kumbhsaathi/kumbhsaathi/internal/router"
	"github.com/kumbhsaathi/kumbhsaathi/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real environment wins
	cfg := config.Load()

	lg, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, db := openStore(ctx, cfg, lg)
	if db != nil {
		defer db.Close()
	}

	// Seed failures are logged and never retried; the catalog stays empty
	// until the next start.
	if _, err := service.SeedGhats(ctx, store, lg); err != nil {
		lg.Error("seed ghats failed", zap.Error(err))
	}

	notifier := buildNotifier(cfg, lg)
	if cfg.AMQPEnabled {
		consumer := &queue.Consumer{URL: cfg.AMQPURL, LogDir: cfg.BookingLogDir, Log: lg}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				lg.Error("booking consumer stopped", zap.Error(err))
			}
		}()
	}

	reservations := service.NewReservationService(store, notifier, lg)
	reservations.NotifyTimeout = cfg.NotifyTimeout
	reservations.TelegramBot = cfg.TelegramBot
	reservations.MaxPartySize = cfg.MaxPartySize
	crowd := service.NewCrowdService(store)
	incidents := service.NewIncidentService(store, lg)
	alerts := service.NewAlertService(notifier, lg)
	alerts.Timeout = cfg.NotifyTimeout

	rdb := config.NewRedisClient(lg)
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, lg)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb, lg)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(lg))

	var pinger handler.Pinger
	if db != nil {
		pinger = db
	}
	router.RegisterRoutes(e, pinger)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, lg))
	router.RegisterBooking(e, handler.NewBookingHandler(reservations, crowd, lg), cfg.JWTSecret, limiter, cache)
	incidentHandler := handler.NewIncidentHandler(incidents, lg)
	router.RegisterIncidents(e, incidentHandler, limiter)
	router.RegisterConsole(e, incidentHandler, handler.NewAlertHandler(alerts, lg), cfg.JWTSecret)

	addr := ":" + cfg.Port
	go func() {
		lg.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("store", cfg.StoreDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		lg.Error("shutdown", zap.Error(err))
	}
	reservations.Wait()
	if rdb != nil {
		_ = rdb.Close()
	}
	lg.Info("stopped")
}

// openStore returns the configured store.  db is nil for the memory store.
func openStore(ctx context.Context, cfg config.Config, lg *zap.Logger) (repository.Store, *sql.DB) {
	if cfg.StoreDriver == config.StoreMemory {
		lg.Warn("using in-memory store; data is lost on restart")
		return repository.NewMemoryStore(cfg.TxMaxAttempts), nil
	}
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		lg.Fatal("db connect", zap.Error(err))
	}
	if err := database.Migrate(ctx, db); err != nil {
		lg.Fatal("db migrate", zap.Error(err))
	}
	return repository.NewMySQLStore(db, cfg.TxMaxAttempts), db
}

// buildNotifier fans out to every configured channel.  With none configured
// notifications are dropped.
func buildNotifier(cfg config.Config, lg *zap.Logger) notify.Notifier {
	var m notify.Multi
	if cfg.NotifyWebhookURL != "" {
		m = append(m, notify.NewWebhook(cfg.NotifyWebhookURL, cfg.NotifyTimeout))
	}
	if cfg.AMQPEnabled {
		m = append(m, queue.NewPublisher(cfg.AMQPURL, lg))
	}
	if len(m) == 0 {
		return notify.Nop{}
	}
	return m
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/mycinema/screening-engine/internal/cache"
	"github.com/mycinema/screening-engine/internal/config"
	"github.com/mycinema/screening-engine/internal/database"
	"github.com/mycinema/screening-engine/internal/engine"
	"github.com/mycinema/screening-engine/internal/handler"
	"github.com/mycinema/screening-engine/internal/logger"
	"github.com/mycinema/screening-engine/internal/metrics"
	"github.com/mycinema/screening-engine/internal/queue"
	"github.com/mycinema/screening-engine/internal/repository"
	"github.com/mycinema/screening-engine/internal/router"
	"github.com/mycinema/screening-engine/internal/service"
	"github.com/mycinema/screening-engine/internal/storage"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly

	cfg := config.Load()
	log := logger.New(cfg.Env)
	defer func() { _ = log.Sync() }()

	m := metrics.New()

	opts := []engine.Option{
		engine.WithLogger(log),
		engine.WithMetrics(m),
	}

	var halls engine.HallStore
	var films engine.FilmStore
	var screenings engine.ScreeningStore
	var ledger engine.LedgerStore

	if cfg.DBHost != "" {
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatal("database connection failed", zap.Error(err))
		}
		defer db.Close()
		if err := database.Migrate(db, cfg.MigrationsDir); err != nil {
			log.Fatal("migrations failed", zap.Error(err))
		}
		halls = repository.NewHallRepo(db)
		films = repository.NewFilmRepo(db)
		screenings = repository.NewScreeningRepo(db)
		ledger = repository.NewPurchaseRepo(db)
		log.Info("using mysql store", zap.String("host", cfg.DBHost), zap.String("db", cfg.DBName))
	} else {
		mem := storage.NewMemory()
		halls, films, screenings, ledger = mem, mem, mem, mem
		log.Warn("DB_HOST not set, using in-memory store; data will not survive restarts")
	}

	rdb := config.NewRedisClient()
	if rdb != nil {
		opts = append(opts, engine.WithAvailabilityCache(cache.NewAvailability(rdb, 0, log)))
	} else {
		log.Warn("redis unavailable, caching and rate limiting disabled")
	}

	if cfg.AMQPURL != "" {
		opts = append(opts, engine.WithPublisher(service.NewQueuePublisher(cfg.AMQPURL, log)))
		go queue.StartPurchaseConsumer(cfg.AMQPURL, log.Named("consumer"))
	}

	eng := engine.New(halls, films, screenings, ledger, opts...)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	router.Register(e, handler.New(eng), router.Options{
		JWTSecret: cfg.JWTSecret,
		Metrics:   m,
		Redis:     rdb,
		RateLimit: config.LoadRateLimitConfig(),
		Cache:     config.LoadCacheConfig(),
	})

	go func() {
		addr := ":" + cfg.Port
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil {
			log.Info("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
}

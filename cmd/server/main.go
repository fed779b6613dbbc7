package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/iliyamo/stylehub/internal/audit"
	"github.com/iliyamo/stylehub/internal/config"
	"github.com/iliyamo/stylehub/internal/database"
	"github.com/iliyamo/stylehub/internal/handler"
	"github.com/iliyamo/stylehub/internal/logger"
	"github.com/iliyamo/stylehub/internal/obs"
	"github.com/iliyamo/stylehub/internal/provider"
	"github.com/iliyamo/stylehub/internal/queue"
	"github.com/iliyamo/stylehub/internal/ratelimit"
	"github.com/iliyamo/stylehub/internal/repository"
	"github.com/iliyamo/stylehub/internal/router"
	"github.com/iliyamo/stylehub/internal/service"
)

func main() {
	cfg := config.Load()
	lg, err := logger.New(cfg.LogLevel, cfg.LogFormat, "stylehub-api")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()
	obs.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore := openStore(ctx, cfg, lg)
	defer closeStore()

	budgets, err := config.LoadBudgets(cfg.RateLimitsFile)
	if err != nil {
		lg.Fatal("rate limit budgets", zap.Error(err))
	}

	events := queue.NewPublisher(cfg.RabbitMQURL, lg)
	defer func() { _ = events.Close() }()

	svc := service.New(service.Deps{
		Store:   store,
		Limiter: ratelimit.New(budgets, nil),
		Audit:   audit.NewRecorder(lg, nil),
		Mailer:  provider.NewResendMailer(cfg.ResendBaseURL, cfg.ResendAPIKey, cfg.MailFrom, lg),
		Gateway: provider.NewFlutterwaveGateway(cfg.FlutterwaveBaseURL, cfg.FlutterwaveSecretKey, lg),
		Media:   provider.NewCloudinaryStorage(cfg.CloudinaryBaseURL, cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, lg),
		Events:  events,
		Logger:  lg,
		AppURL:  cfg.AppURL,
	})

	rdb := config.NewRedisClient()
	if rdb == nil {
		lg.Warn("redis unavailable; edge rate limit and cache disabled")
	} else {
		defer func() { _ = rdb.Close() }()
	}

	e := router.New(handler.NewHandler(svc, lg, cfg.FlutterwaveWebhookHash), router.Options{
		IdentitySecret: cfg.IdentitySecret,
		RateLimit:      config.LoadRateLimitConfig(),
		Cache:          config.LoadCacheConfig(),
		Redis:          rdb,
		Logger:         lg,
	})

	addr := ":" + cfg.Port
	go func() {
		lg.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("store", cfg.Store))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		lg.Error("shutdown", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg config.Config, lg *zap.Logger) (repository.Store, func()) {
	if cfg.Store == config.StoreMemory {
		lg.Warn("using in-memory store; data is lost on restart")
		return repository.NewMemoryStore(), func() {}
	}
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		lg.Fatal("database", zap.Error(err))
	}
	if err := database.Migrate(ctx, db); err != nil {
		lg.Fatal("migrate", zap.Error(err))
	}
	return repository.NewMySQLStore(db), func() { _ = db.Close() }
}

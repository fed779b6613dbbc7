package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/stylehub/internal/config"
	"github.com/iliyamo/stylehub/internal/logger"
	"github.com/iliyamo/stylehub/internal/obs"
	"github.com/iliyamo/stylehub/internal/provider"
	"github.com/iliyamo/stylehub/internal/queue"
)

func main() {
	cfg := config.LoadNotifier()
	lg, err := logger.New(cfg.LogLevel, cfg.LogFormat, "stylehub-notifier")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()
	obs.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mux := http.NewServeMux()
	mux.Handle("/metrics", obs.Handler())
	srv := &http.Server{Addr: ":" + cfg.MetricsPort, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("metrics server", zap.Error(err))
		}
	}()

	mailer := provider.NewResendMailer(cfg.ResendBaseURL, cfg.ResendAPIKey, cfg.MailFrom, lg)
	consumer := queue.NewConsumer(cfg.RabbitMQURL, mailer, lg)
	lg.Info("notifier started", zap.String("queue", queue.OrderEventsQueue), zap.String("env", cfg.Env))
	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		lg.Error("consumer stopped", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

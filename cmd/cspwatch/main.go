package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cspwatch/internal/config"
	"cspwatch/internal/infra/db"
	"cspwatch/internal/infra/duck"
	httpinfra "cspwatch/internal/infra/http"
	"cspwatch/internal/usecase"
)

func main() {
	cfg := config.FromEnv()
	if cfg.SecretKey == "" {
		log.Fatalf("SECRET_KEY is required")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.DataPath, 0o755); err != nil {
		log.Fatalf("create data dir: %v", err)
	}

	credentials, err := db.NewStore(cfg)
	if err != nil {
		log.Fatalf("credential store: %v", err)
	}

	analytics, err := duck.NewStore(cfg)
	if err != nil {
		log.Fatalf("analytical store: %v", err)
	}
	defer analytics.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	buffer := usecase.NewReportBuffer()
	flusher := usecase.NewFlusher(buffer, analytics, cfg.FlushInterval(), logger)
	flusherDone := make(chan struct{})
	go func() {
		defer close(flusherDone)
		flusher.Run(ctx)
	}()

	tokens := usecase.NewTokenService(cfg.SecretKey, db.NewTokenRepository(credentials.DB))

	srv := httpinfra.NewServer(cfg, httpinfra.ServerDeps{
		Tokens:  tokens,
		Reports: analytics,
		Buffer:  buffer,
		Logger:  logger,
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		logger.Info("listening", "addr", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)

	// Buffered reports are flushed once more before the stores close.
	<-flusherDone
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"bigcommerce-sdk/internal/audit"
	"bigcommerce-sdk/internal/httpapi"
	"bigcommerce-sdk/internal/store"
	"bigcommerce-sdk/internal/webhook"
	"bigcommerce-sdk/pkg/bigcommerce"
	"bigcommerce-sdk/pkg/config"
	"bigcommerce-sdk/pkg/db"
	"bigcommerce-sdk/pkg/logger"
)

func main() {
	cfg := config.MustLoad()

	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Open(ctx, cfg)
	if err != nil {
		log.Fatal("db open", zap.Error(err))
	}
	defer pool.Close()

	if cfg.MigrationsPath != "" {
		if err := db.MigrateUp(cfg); err != nil {
			log.Fatal("migrate", zap.Error(err))
		}
	}

	router := httpapi.NewRouter(httpapi.Dependencies{
		Cfg:     cfg,
		Stores:  store.NewRepository(pool),
		Client:  bigcommerce.New(cfg.BigCommerce, bigcommerce.WithLogger(log)),
		Journal: webhook.PgJournal{Pool: pool},
		Audit:   audit.NewRepository(pool),
		Log:     log,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("http listening", zap.String("addr", cfg.HTTPAddr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http serve", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
}

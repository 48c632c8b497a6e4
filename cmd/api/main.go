package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"crime-case-workers/internal/api"
	"crime-case-workers/internal/common/config"
	"crime-case-workers/internal/common/database"
	"crime-case-workers/internal/common/logger"
	"crime-case-workers/internal/interpreter"
	"crime-case-workers/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.NewWithOptions(logger.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	defer zapLog.Sync()

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	opts := api.Options{
		Parser:         interpreter.NewParser(),
		Logger:         logger.NewZapAdapter(zapLog),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Version:        cfg.App.Version,
	}

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres init failed", zap.Error(err))
	}
	defer pg.Close()

	pctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := pg.Ping(pctx); err != nil {
		// command parsing still works without the database
		zapLog.Warn("postgres unreachable, case endpoints will fail", zap.Error(err))
	}
	cancel()

	opts.Cases = repository.NewCaseRepository(pg.SQLX())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewRouter(opts),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		zapLog.Info("API server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("API server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		zapLog.Error("API server shutdown failed", zap.Error(err))
	}
	zapLog.Info("API server stopped")
}

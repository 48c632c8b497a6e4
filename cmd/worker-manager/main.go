package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	awsclients "crime-case-workers/internal/common/aws"
	"crime-case-workers/internal/common/camunda"
	"crime-case-workers/internal/common/config"
	"crime-case-workers/internal/common/database"
	"crime-case-workers/internal/common/logger"
	"crime-case-workers/internal/common/observability"
	"crime-case-workers/internal/models"

	aur "crime-case-workers/internal/workers/admin/assign-user-role"
	adv "crime-case-workers/internal/workers/cases/advance-workflow-stage"
	ccr "crime-case-workers/internal/workers/cases/create-case-record"
	mc "crime-case-workers/internal/workers/cases/match-cases"
	sc "crime-case-workers/internal/workers/cases/search-cases"
	vcr "crime-case-workers/internal/workers/cases/validate-case-record"
	ncu "crime-case-workers/internal/workers/communication/notify-case-update"
	pvc "crime-case-workers/internal/workers/voice/parse-voice-command"
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

	log := logger.NewZapAdapter(zapLog)

	if err := cfg.RequireWorkerServices(); err != nil {
		zapLog.Fatal("invalid worker configuration", zap.Error(err))
	}

	zapLog.Info("Starting worker manager...",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	tracing, err := observability.NewTracing(cfg.Observability.ServiceName, cfg.Observability.JaegerEndpoint)
	if err != nil {
		zapLog.Fatal("tracing init failed", zap.Error(err))
	}
	obs := observability.New(cfg.Observability.ServiceName).WithTracing(tracing)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Zeebe ---
	zeebe, err := camunda.ConnectWithRetry(func() (*camunda.Client, error) {
		return camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
	}, func(c *camunda.Client) error {
		hctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return c.HealthCheck(hctx)
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL ---
	pg, err := camunda.ConnectWithRetry(func() (*database.PostgresClient, error) {
		return database.NewPostgres(cfg.Database.Postgres)
	}, func(c *database.PostgresClient) error {
		return c.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Elasticsearch ---
	var esClient *database.ElasticsearchClient
	err = camunda.RetryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully", zap.String("url", cfg.Database.Elasticsearch.GetURL()))

	created, err := esClient.EnsureIndex(ctx, cfg.Database.Elasticsearch.CaseIndex, models.CaseIndexMapping())
	if err != nil {
		zapLog.Fatal("case index setup failed", zap.Error(err))
	}
	zapLog.Info("case index ready",
		zap.String("index", cfg.Database.Elasticsearch.CaseIndex),
		zap.Bool("created", created),
	)

	// --- Redis ---
	rdb, err := camunda.ConnectWithRetry(func() (*database.RedisClient, error) {
		return database.NewRedis(cfg.Database.Redis)
	}, func(c *database.RedisClient) error {
		return c.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- AWS ---
	sesClient, err := awsclients.NewSESClient(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		zapLog.Fatal("ses client init failed", zap.Error(err))
	}
	snsClient, err := awsclients.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		zapLog.Fatal("sns client init failed", zap.Error(err))
	}

	// --- Workers ---
	pool := camunda.NewWorkerPool(zeebe.GetClient(), obs, zapLog)
	timeoutFor := func(taskType string) time.Duration {
		return config.GetDuration(config.GetWorkerConfig(cfg, taskType).Timeout)
	}

	pvcCfg := pvc.LoadConfig()
	pvcCfg.Timeout = timeoutFor(pvc.TaskType)
	pool.Start(pvc.TaskType, config.GetWorkerConfig(cfg, pvc.TaskType),
		pvc.NewHandler(pvcCfg, obs, log).Handle)

	scCfg := sc.LoadConfig()
	scCfg.Timeout = timeoutFor(sc.TaskType)
	scCfg.DefaultIndex = cfg.Database.Elasticsearch.CaseIndex
	pool.Start(sc.TaskType, config.GetWorkerConfig(cfg, sc.TaskType),
		sc.NewHandler(scCfg, esClient.Client, log).Handle)

	vcrCfg := vcr.LoadConfig()
	vcrCfg.Timeout = timeoutFor(vcr.TaskType)
	pool.Start(vcr.TaskType, config.GetWorkerConfig(cfg, vcr.TaskType),
		vcr.NewHandler(vcrCfg, log).Handle)

	ccrCfg := ccr.LoadConfig()
	ccrCfg.Timeout = timeoutFor(ccr.TaskType)
	pool.Start(ccr.TaskType, config.GetWorkerConfig(cfg, ccr.TaskType),
		ccr.NewHandler(ccrCfg, pg.GetDB(), log).Handle)

	advCfg := adv.LoadConfig()
	advCfg.Timeout = timeoutFor(adv.TaskType)
	advCfg.CaseIndex = cfg.Database.Elasticsearch.CaseIndex
	pool.Start(adv.TaskType, config.GetWorkerConfig(cfg, adv.TaskType),
		adv.NewHandler(advCfg, pg.GetDB(), esClient, log).Handle)

	mcCfg := mc.LoadConfig()
	mcCfg.GenAIBaseURL = cfg.APIs.GenAI.BaseURL
	mcCfg.APIKey = cfg.APIs.GenAI.APIKey
	mcCfg.Timeout = config.GetDuration(cfg.APIs.GenAI.Timeout)
	mcCfg.MaxRetries = config.GetWorkerConfig(cfg, mc.TaskType).MaxRetries
	mcCfg.CacheTTL = time.Duration(cfg.APIs.GenAI.CacheTTL) * time.Second
	pool.Start(mc.TaskType, config.GetWorkerConfig(cfg, mc.TaskType),
		mc.NewHandler(mcCfg, rdb.Client, log).Handle)

	aurCfg := aur.LoadConfig()
	aurCfg.Timeout = timeoutFor(aur.TaskType)
	pool.Start(aur.TaskType, config.GetWorkerConfig(cfg, aur.TaskType),
		aur.NewHandler(aurCfg, pg.GetDB(), log).Handle)

	ncuCfg := ncu.LoadConfig()
	ncuCfg.EmailEnabled = cfg.Notifications.Email.Enabled
	ncuCfg.SMSEnabled = cfg.Notifications.SMS.Enabled
	ncuCfg.FromEmail = cfg.Notifications.Email.FromEmail
	ncuCfg.SMSSeverityThreshold = models.Severity(cfg.Notifications.SMS.SeverityThreshold)
	ncuCfg.Timeout = timeoutFor(ncu.TaskType)
	pool.Start(ncu.TaskType, config.GetWorkerConfig(cfg, ncu.TaskType),
		ncu.NewHandler(ncuCfg, pg.GetDB(), sesClient, snsClient, log).Handle)

	zapLog.Info("workers registered", zap.Strings("taskTypes", pool.TaskTypes()))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		rctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := zeebe.HealthCheck(rctx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "not ready")
			return
		}
		writeStatus(w, http.StatusOK, "ready")
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HealthPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool.Close()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}

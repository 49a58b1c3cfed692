// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"entity-dedup-workers/internal/cache"
	"entity-dedup-workers/internal/common/aws"
	"entity-dedup-workers/internal/common/camunda"
	"entity-dedup-workers/internal/common/config"
	"entity-dedup-workers/internal/common/database"
	"entity-dedup-workers/internal/common/logger"
	"entity-dedup-workers/internal/common/observability"
	"entity-dedup-workers/internal/dedup"
	"entity-dedup-workers/internal/similarity"
	"entity-dedup-workers/internal/store"

	bd "entity-dedup-workers/internal/workers/dedup/batch-deduplicate"
	de "entity-dedup-workers/internal/workers/dedup/deduplicate-entities"
	sc "entity-dedup-workers/internal/workers/dedup/search-candidates"
	nr "entity-dedup-workers/internal/workers/review/notify-review"
	rm "entity-dedup-workers/internal/workers/review/review-merge"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Camunda client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("could not connect to Zeebe broker", zap.Error(err))
	}
	zapLog.Info("Connected to Zeebe broker", zap.String("address", cfg.Camunda.BrokerAddress))

	// --- Init PostgreSQL with retry ---
	var pgClient *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pgClient, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pgClient.Ping(ctx)
	}, 5, 2*time.Second, zapLog, "PostgreSQL initialization")

	var entityStore *store.EntityStore
	if err != nil {
		zapLog.Warn("PostgreSQL unavailable, workers will require inline entities", zap.Error(err))
	} else {
		entityStore = store.NewEntityStore(pgClient.DB, log)
		zapLog.Info("Connected to PostgreSQL")
	}

	// --- Init Elasticsearch (optional, candidate search only) ---
	var searchStore *store.SearchStore
	esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		zapLog.Warn("Elasticsearch unavailable, candidate search disabled", zap.Error(err))
	} else {
		searchStore = store.NewSearchStore(esClient.Client, log)
		zapLog.Info("Elasticsearch client ready")
	}

	// --- Init Redis result cache (optional) ---
	var resultCache *cache.ResultCache
	if cfg.Dedup.CacheEnabled {
		redisClient, err := database.NewRedis(cfg.Database.Redis)
		if err != nil || redisClient.Ping(ctx) != nil {
			zapLog.Warn("Redis unavailable, result caching disabled", zap.Error(err))
		} else {
			ttl := time.Duration(cfg.Dedup.CacheTTLSeconds) * time.Second
			resultCache = cache.NewResultCache(redisClient, ttl, log)
			zapLog.Info("Redis result cache ready", zap.Duration("ttl", ttl))
		}
	}

	// --- Deduplication engine ---
	dedupService := dedup.NewService(dedup.Config{
		HighThreshold:   cfg.Dedup.HighConfidenceThreshold,
		MediumThreshold: cfg.Dedup.MediumConfidenceThreshold,
		MaxWorkers:      cfg.Dedup.MaxScoringWorkers,
	}, similarity.NewScorer(), log)

	// --- Register workers ---
	workers := make([]*camunda.CamundaWorker, 0, 5)

	if config.IsWorkerEnabled(cfg, de.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, de.TaskType)
		handlerCfg := de.DefaultConfig()
		if wcfg.Timeout > 0 {
			handlerCfg.Timeout = config.GetDuration(wcfg.Timeout)
		}
		handlerCfg.CacheEnabled = resultCache != nil
		handler := de.NewHandler(handlerCfg, dedupService, entityStore, resultCache, log)
		workers = append(workers, startWorker(camundaClient, de.TaskType, wcfg, handler.Handle, log))
	}

	if config.IsWorkerEnabled(cfg, bd.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, bd.TaskType)
		handlerCfg := bd.DefaultConfig()
		if wcfg.Timeout > 0 {
			handlerCfg.Timeout = config.GetDuration(wcfg.Timeout)
		}
		if cfg.Dedup.BatchChunkSize > 0 {
			handlerCfg.DefaultChunkSize = cfg.Dedup.BatchChunkSize
		}
		handler := bd.NewHandler(handlerCfg, dedupService, entityStore, log)
		workers = append(workers, startWorker(camundaClient, bd.TaskType, wcfg, handler.Handle, log))
	}

	if config.IsWorkerEnabled(cfg, sc.TaskType) && searchStore != nil {
		wcfg := config.GetWorkerConfig(cfg, sc.TaskType)
		handlerCfg := sc.DefaultConfig()
		if wcfg.Timeout > 0 {
			handlerCfg.Timeout = config.GetDuration(wcfg.Timeout)
		}
		handler := sc.NewHandler(handlerCfg, searchStore, log)
		workers = append(workers, startWorker(camundaClient, sc.TaskType, wcfg, handler.Handle, log))
	}

	if config.IsWorkerEnabled(cfg, rm.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, rm.TaskType)
		handlerCfg := rm.DefaultConfig()
		if wcfg.Timeout > 0 {
			handlerCfg.Timeout = config.GetDuration(wcfg.Timeout)
		}
		handler := rm.NewHandler(handlerCfg, dedupService, entityStore, log)
		workers = append(workers, startWorker(camundaClient, rm.TaskType, wcfg, handler.Handle, log))
	}

	if config.IsWorkerEnabled(cfg, nr.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, nr.TaskType)
		handlerCfg := notifyConfig(cfg, wcfg)
		if err := handlerCfg.Validate(); err != nil {
			zapLog.Fatal("invalid notify-review configuration", zap.Error(err))
		}

		var emailSender nr.EmailSender
		var topicPublisher nr.TopicPublisher
		if handlerCfg.EmailEnabled {
			sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
			if err != nil {
				zapLog.Fatal("failed to create SES client", zap.Error(err))
			}
			emailSender = sesClient
		}
		if handlerCfg.SMSEnabled {
			snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
			if err != nil {
				zapLog.Fatal("failed to create SNS client", zap.Error(err))
			}
			topicPublisher = snsClient
		}

		service := nr.NewService(handlerCfg, emailSender, topicPublisher, log)
		handler := nr.NewHandler(handlerCfg, service, log)
		workers = append(workers, startWorker(camundaClient, nr.TaskType, wcfg, handler.Handle, log))
	}

	zapLog.Info("All workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			status := "ready"
			code := http.StatusOK
			if err := camundaClient.HealthCheck(r.Context()); err != nil {
				status = "not ready"
				code = http.StatusServiceUnavailable
			}
			w.WriteHeader(code)
			json.NewEncoder(w).Encode(map[string]string{
				"status": status,
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")

	for _, w := range workers {
		w.Stop()
	}

	if pgClient != nil {
		if err := pgClient.Close(); err != nil {
			zapLog.Error("Error closing PostgreSQL client", zap.Error(err))
		}
	}
	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(client *camunda.Client, taskType string, wcfg config.WorkerConfig, handler camunda.JobHandlerFunc, log logger.Logger) *camunda.CamundaWorker {
	return camunda.NewWorker(client, taskType, camunda.WorkerOptions{
		MaxJobsActive: wcfg.MaxJobsActive,
		Timeout:       config.GetDuration(wcfg.Timeout),
	}, handler, log)
}

// notifyConfig assembles the notify-review worker config from the shared
// notification section.
func notifyConfig(cfg *config.Config, wcfg config.WorkerConfig) *nr.Config {
	handlerCfg := nr.DefaultConfig()
	if wcfg.Timeout > 0 {
		handlerCfg.Timeout = config.GetDuration(wcfg.Timeout)
	}

	handlerCfg.EmailEnabled = cfg.Notifications.Email.Enabled
	handlerCfg.FromEmail = cfg.Notifications.Email.FromEmail
	for _, addr := range strings.Split(cfg.Notifications.Email.Reviewers, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			handlerCfg.Reviewers = append(handlerCfg.Reviewers, addr)
		}
	}

	handlerCfg.SMSEnabled = cfg.Notifications.SMS.Enabled
	handlerCfg.TopicARN = cfg.Notifications.SMS.Topic
	if cfg.Notifications.SMS.MinConfidence > 0 {
		handlerCfg.SMSMinConfidence = cfg.Notifications.SMS.MinConfidence
	}

	return handlerCfg
}

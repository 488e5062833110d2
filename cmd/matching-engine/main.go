// cmd/matching-engine/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apimatching "github.com/lauraedgell33/European-digital-logistics-sub006/internal/api/matching"
	commonaws "github.com/lauraedgell33/European-digital-logistics-sub006/internal/common/aws"
	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/common/camunda"
	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/common/config"
	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/common/database"
	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/common/logger"
	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/common/observability"
	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/matching"
	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/matching/retrieve"
	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/models"
	"github.com/lauraedgell33/European-digital-logistics-sub006/internal/notify"
	batchmatch "github.com/lauraedgell33/European-digital-logistics-sub006/internal/workers/matching/batch-match"
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
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting matching engine...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("matching-engine")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebeClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebeClient, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Offer repository, optionally with the Elasticsearch prefilter ---
	repo := retrieve.NewSQLRepository(pg.DB, rdb.Client, cfg.Matching, log)

	var vehicleSource retrieve.VehicleSource = repo
	if cfg.Database.Elasticsearch.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
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
		vehicleSource = retrieve.NewSearchRetriever(esClient.Client, cfg.Database.Elasticsearch.VehicleIndex, cfg.Matching, log)
		zapLog.Info("Elasticsearch connected successfully, using search-backed candidate retrieval")
	}

	matchSvc := matching.NewService(offerRepository{repo, vehicleSource}, cfg.Matching, log)

	// --- Notification fan-out ---
	sesClient, err := commonaws.NewSESClient(ctx, cfg.Notifications.AWSRegion)
	if err != nil {
		zapLog.Fatal("ses client failed", zap.Error(err))
	}
	snsClient, err := commonaws.NewSNSClient(ctx, cfg.Notifications.AWSRegion)
	if err != nil {
		zapLog.Fatal("sns client failed", zap.Error(err))
	}

	contacts := notify.NewSQLContactSource(pg.DB, rdb.Client, cfg.Notifications, log)
	sink := notify.NewAWSSink(cfg.Notifications, sesClient, snsClient, log)
	fanout := notify.NewFanout(contacts, sink, log)

	// --- Register batch dispatch worker ---
	batchHandler := batchmatch.NewHandler(
		batchmatch.LoadConfig(cfg.Batch),
		repo, matchSvc, fanout, obs, log,
	)
	batchWorker := camunda.NewWorker(
		zeebeClient.GetClient(),
		batchmatch.TaskType,
		cfg.Camunda.MaxJobsActive,
		batchHandler,
		zapLog,
	)
	batchWorker.Start()

	// --- Interactive match API + health/metrics ---
	matchHandler := apimatching.NewHandler(matchSvc, cfg.API, log)

	mux := http.NewServeMux()
	mux.Handle("/matching", matchHandler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		status := "ready"
		code := http.StatusOK
		if err := pg.Ping(r.Context()); err != nil {
			status, code = "postgres unavailable", http.StatusServiceUnavailable
		} else if err := zeebeClient.HealthCheck(r.Context()); err != nil {
			status, code = "zeebe unavailable", http.StatusServiceUnavailable
		}
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]string{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/debug/pprof/", http.DefaultServeMux)

	server := &http.Server{
		Addr:    cfg.API.ListenAddress,
		Handler: mux,
	}

	go func() {
		zapLog.Info("API server listening", zap.String("address", cfg.API.ListenAddress))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("API server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	batchWorker.Stop(shutdownCtx)

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("API server shutdown failed", zap.Error(err))
	}

	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Matching engine stopped gracefully")
}

// offerRepository lets the Elasticsearch retriever replace only the candidate
// listing leg while freight reads stay on postgres.
type offerRepository struct {
	*retrieve.SQLRepository
	source retrieve.VehicleSource
}

func (r offerRepository) ListCandidateVehicles(ctx context.Context, freight *models.FreightOffer) ([]models.VehicleOffer, error) {
	return r.source.ListCandidateVehicles(ctx, freight)
}

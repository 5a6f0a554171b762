// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"support-bot/internal/bootstrap"
	"support-bot/internal/common/camunda"
	"support-bot/internal/common/config"
	"support-bot/internal/common/errors"
	"support-bot/internal/common/logger"
	"support-bot/internal/common/metrics"
	"support-bot/internal/common/observability"
	"support-bot/internal/dialogue"
	"support-bot/internal/models"
	"support-bot/pkg/registry"

	gr "support-bot/internal/workers/dialogue/get-response"
	rc "support-bot/internal/workers/dialogue/reset-context"
)

const sweepInterval = time.Minute

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(ctx context.Context, operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}
		// Catalog content errors will not fix themselves.
		if errors.IsDataError(err) && errors.CodeOf(err) != errors.ErrCodeCatalogSourceFailed {
			return err
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("info", "console")
		boot.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("observability disabled", zap.Error(err))
	}
	defer obs.Shutdown(context.Background())

	// --- Load catalog with retry ---
	var (
		cat     *models.Catalog
		release func()
	)
	err = retryWithBackoff(ctx, func() error {
		var err error
		cat, release, err = bootstrap.OpenCatalog(ctx, cfg, log)
		return err
	}, 10, 2*time.Second, zapLog, "Catalog load")
	if err != nil {
		zapLog.Fatal("catalog load failed", zap.Error(err))
	}
	// The catalog is held in memory; the source connection is not needed after load.
	release()

	proto, err := bootstrap.NewEngine(cfg, cat, log,
		dialogue.WithRecorder(metrics.NewTurnRecorder(prometheus.DefaultRegisterer)),
	)
	if err != nil {
		zapLog.Fatal("dialogue engine failed", zap.Error(err))
	}
	sessions := bootstrap.NewSessions(cfg.Engine, proto, log)
	go sessions.RunSweeper(ctx, sweepInterval)

	activities, err := registry.Default()
	if err == nil {
		err = activities.Validate()
	}
	if err != nil {
		zapLog.Fatal("activity registry invalid", zap.Error(err))
	}

	// --- Init Zeebe Client with retry ---
	var client *camunda.Client
	err = retryWithBackoff(ctx, func() error {
		var err error
		client, err = camunda.NewClient(ctx, camunda.ConfigFrom(cfg.Camunda))
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	handlers := map[string]camunda.JobHandler{
		gr.TaskType: gr.NewHandler(gr.LoadConfig(cfg), sessions, obs, log),
		rc.TaskType: rc.NewHandler(rc.LoadConfig(cfg), sessions, obs, log),
	}
	workers := startWorkers(client, cfg, activities, handlers, log, zapLog)
	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	server := &http.Server{
		Addr:              cfg.Metrics.Address,
		Handler:           newMux(cfg, client, sessions),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Metrics.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping Health/Metrics server", zap.Error(err))
	}
	if err := client.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// startWorkers opens a job worker for every runnable registry activity that
// has a handler and is enabled in config.
func startWorkers(
	client *camunda.Client,
	cfg *config.Config,
	activities *registry.ActivityRegistry,
	handlers map[string]camunda.JobHandler,
	log logger.Logger,
	zapLog *zap.Logger,
) []*camunda.CamundaWorker {
	var workers []*camunda.CamundaWorker
	for _, activity := range activities.Runnable() {
		handler, ok := handlers[activity.TaskType]
		if !ok {
			zapLog.Warn("no handler for activity", zap.String("taskType", activity.TaskType))
			continue
		}
		if !config.IsWorkerEnabled(cfg, activity.TaskType) {
			zapLog.Info("worker disabled", zap.String("taskType", activity.TaskType))
			continue
		}

		wcfg := config.GetWorkerConfig(cfg, activity.TaskType)
		timeout := config.GetDuration(wcfg.Timeout)
		if timeout == 0 {
			timeout = activity.TimeoutDuration()
		}
		workers = append(workers, camunda.NewWorker(client.GetClient(), activity.TaskType, camunda.WorkerOptions{
			MaxJobsActive: wcfg.MaxJobsActive,
			Timeout:       timeout,
		}, handler, log))
	}
	return workers
}

func newMux(cfg *config.Config, client *camunda.Client, sessions *dialogue.Sessions) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"sessions": sessions.Len(),
			"time":     time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := client.HealthCheck(r.Context()); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status": "unavailable",
				"error":  err.Error(),
			})
			return
		}
		writeStatus(w, http.StatusOK, map[string]interface{}{
			"status": "ready",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	if cfg.Metrics.Enabled {
		mux.Handle("/metrics", promhttp.Handler())
	}
	return mux
}

func writeStatus(w http.ResponseWriter, code int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

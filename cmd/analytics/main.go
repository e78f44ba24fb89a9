// Command analytics serves the district temperature analytics over HTTP:
// loads the dataset once, validates and reconciles it, then answers export
// and ranking queries from the memoized snapshot until an explicit reload.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/altiplano-labs/frost-risk-service/internal/adapter/http"
	kafkaadapter "github.com/altiplano-labs/frost-risk-service/internal/adapter/kafka"
	"github.com/altiplano-labs/frost-risk-service/internal/config"
	"github.com/altiplano-labs/frost-risk-service/internal/observability"
	"github.com/altiplano-labs/frost-risk-service/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Reload notifications are feature-flagged via KAFKA_ENABLED.
	var publisher store.ReloadPublisher
	var notifier *kafkaadapter.Notifier
	if cfg.KafkaEnabled {
		notifier = kafkaadapter.NewNotifier(cfg, logger)
		publisher = notifier
		logger.Info("reload notifications enabled", "topic", cfg.KafkaTopic)
	}

	datasets := store.New(cfg, logger, metrics, publisher)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Loader errors are terminal for the session: never serve analytics over
	// a partially loaded table.
	if _, err := datasets.Load(ctx); err != nil {
		logger.Error("dataset load failed", "error", err)
		os.Exit(1)
	}

	srv := httpadapter.NewServer(cfg, datasets, logger, metrics)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if notifier != nil {
		if err := notifier.Close(); err != nil {
			logger.Error("kafka notifier close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/parquevivo/park-status-service/internal/adapter/aemet"
	"github.com/parquevivo/park-status-service/internal/adapter/httpapi"
	kafkaadapter "github.com/parquevivo/park-status-service/internal/adapter/kafka"
	"github.com/parquevivo/park-status-service/internal/adapter/municipal"
	"github.com/parquevivo/park-status-service/internal/config"
	"github.com/parquevivo/park-status-service/internal/observability"
	"github.com/parquevivo/park-status-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	// Predictive warnings are feature-flagged via AEMET_ENABLED / AEMET_API_KEY.
	var warnings service.WarningFetcher
	if cfg.AEMETEnabled {
		warnings = aemet.NewClient(cfg.AEMETAPIKey, cfg.AEMETAreaURL, cfg.FetchTimeout, logger)
		logger.Info("aemet warning feed enabled", "zone", cfg.TargetZone, "timeout", cfg.FetchTimeout)
	} else {
		logger.Info("aemet warning feed disabled")
	}

	status := municipal.NewClient(cfg.MunicipalStatusURL, cfg.FetchTimeout, logger)

	var publisher service.Publisher
	var kafkaPublisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		kafkaPublisher = kafkaadapter.NewPublisher(cfg, logger)
		publisher = kafkaPublisher
		logger.Info("kafka evaluation sink enabled", "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("kafka evaluation sink disabled")
	}

	evaluator := service.New(warnings, status, publisher, logger, metrics,
		cfg.ParkID, cfg.TargetZone, cfg.Location, cfg.RefreshInterval)

	srv := httpapi.NewServer(cfg.HTTPAddr, evaluator, cfg.RefreshInterval, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the refresh loop.
	go func() {
		if err := evaluator.Run(ctx); err != nil {
			logger.Error("refresh loop error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

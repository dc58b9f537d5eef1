package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"condo-radar/internal/usecase/notify"
)

// startMetricsServer starts the Prometheus metrics HTTP server in a
// background goroutine and wires a graceful shutdown to ctx.
//
// Endpoints:
//   - /metrics: Prometheus metrics
//   - /health: basic liveness
//   - /health/channels: notification channel circuit breaker states
func startMetricsServer(ctx context.Context, logger *slog.Logger, notifyService notify.Service) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("failed to write health response", slog.Any("error", err))
		}
	})
	mux.HandleFunc("/health/channels", channelHealthHandler(logger, notifyService))

	port := getMetricsPort(logger)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("metrics server started", slog.Int("port", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", slog.Any("error", err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown failed", slog.Any("error", err))
		}
	}()
}

// channelHealthHandler reports per-channel notification health. Responds 503
// when any enabled channel's circuit breaker is open so orchestrators can
// alert on degraded delivery.
func channelHealthHandler(logger *slog.Logger, notifyService notify.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		statuses := notifyService.GetChannelHealth()

		healthy := true
		for _, s := range statuses {
			if s.Enabled && s.CircuitBreakerOpen {
				healthy = false
				break
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		resp := map[string]any{
			"healthy":  healthy,
			"channels": statuses,
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.Error("failed to encode channel health response", slog.Any("error", err))
		}
	}
}

// getMetricsPort reads METRICS_PORT, defaulting to 9090 on absence or
// invalid values.
func getMetricsPort(logger *slog.Logger) int {
	const defaultPort = 9090
	raw := os.Getenv("METRICS_PORT")
	if raw == "" {
		return defaultPort
	}
	port, err := strconv.Atoi(raw)
	if err != nil || port < 1024 || port > 65535 {
		logger.Warn("invalid METRICS_PORT, using default",
			slog.String("value", raw),
			slog.Int("default", defaultPort))
		return defaultPort
	}
	return port
}

package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"groovebot/internal/core"
)

type Server struct {
	config  *core.ServerConfig
	logger  *zap.Logger
	server  *http.Server
	metrics *Metrics
}

type Metrics struct {
	MessagesTotal   *prometheus.CounterVec
	OutcomesTotal   *prometheus.CounterVec
	AddsTotal       *prometheus.CounterVec
	DuplicatesTotal prometheus.Counter
	ErrorsTotal     *prometheus.CounterVec
	ProcessingTime  *prometheus.HistogramVec
	PlaylistSize    prometheus.Gauge
}

func NewServer(config *core.ServerConfig, logger *zap.Logger) *Server {
	metrics := &Metrics{
		MessagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "groovebot_messages_total",
				Help: "Total number of channel messages processed",
			},
			[]string{"type", "status"},
		),
		OutcomesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "groovebot_outcomes_total",
				Help: "Total number of track candidate outcomes",
			},
			[]string{"outcome"},
		),
		AddsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "groovebot_adds_total",
				Help: "Total number of tracks added to the playlist",
			},
			[]string{"source"},
		),
		DuplicatesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "groovebot_duplicates_total",
				Help: "Total number of duplicate tracks skipped",
			},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "groovebot_errors_total",
				Help: "Total number of errors",
			},
			[]string{"component", "type"},
		),
		ProcessingTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "groovebot_processing_duration_seconds",
				Help:    "Time spent processing messages",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"type"},
		),
		PlaylistSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "groovebot_playlist_size",
				Help: "Current number of tracks in the playlist",
			},
		),
	}

	prometheus.MustRegister(
		metrics.MessagesTotal,
		metrics.OutcomesTotal,
		metrics.AddsTotal,
		metrics.DuplicatesTotal,
		metrics.ErrorsTotal,
		metrics.ProcessingTime,
		metrics.PlaylistSize,
	)

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","service":"groovebot"}`))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready","service":"groovebot"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
    <title>Groovebot</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; }
        .header { color: #333; }
        .endpoint { margin: 10px 0; }
        .endpoint a { text-decoration: none; color: #0066cc; }
        .endpoint a:hover { text-decoration: underline; }
    </style>
</head>
<body>
    <h1 class="header">🎵 Groovebot</h1>
    <p>Slack → Spotify Playlist Bot</p>

    <h2>Endpoints</h2>
    <div class="endpoint">📊 <a href="/metrics">Metrics</a> - Prometheus metrics</div>
    <div class="endpoint">💚 <a href="/healthz">Health</a> - Health check</div>
    <div class="endpoint">✅ <a href="/readyz">Ready</a> - Readiness check</div>

    <h2>Status</h2>
    <p>Service is running and watching channels for music links.</p>
</body>
</html>`))
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      mux,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	return &Server{
		config:  config,
		logger:  logger,
		server:  server,
		metrics: metrics,
	}
}

func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("addr", s.server.Addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shutdown HTTP server gracefully", zap.Error(err))
		}
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

func (s *Server) GetMetrics() *Metrics {
	return s.metrics
}

func (s *Server) RecordMessage(msgType, status string) {
	s.metrics.MessagesTotal.WithLabelValues(msgType, status).Inc()
}

func (s *Server) RecordOutcome(outcome core.Outcome) {
	s.metrics.OutcomesTotal.WithLabelValues(outcome.String()).Inc()
}

func (s *Server) RecordAdd(source string) {
	s.metrics.AddsTotal.WithLabelValues(source).Inc()
}

func (s *Server) RecordDuplicate() {
	s.metrics.DuplicatesTotal.Inc()
}

func (s *Server) RecordError(component, errorType string) {
	s.metrics.ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

func (s *Server) RecordProcessingTime(msgType string, duration time.Duration) {
	s.metrics.ProcessingTime.WithLabelValues(msgType).Observe(duration.Seconds())
}

func (s *Server) SetPlaylistSize(size int) {
	s.metrics.PlaylistSize.Set(float64(size))
}

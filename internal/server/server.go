// Package server exposes the shipper operations over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tournevent/colissimo/internal/telemetry"
	"github.com/tournevent/colissimo/pkg/shipper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// maxBodySize bounds label request bodies.
const maxBodySize = 1 << 20

// Server is the HTTP server for the label service.
type Server struct {
	port     int
	shipper  shipper.Shipper
	logger   *otelzap.Logger
	registry *prometheus.Registry
	metrics  *telemetry.Metrics
}

// Config holds server configuration.
type Config struct {
	Port int

	// Registry is served on /metrics. Metrics must be registered on it.
	// Both are created when nil.
	Registry *prometheus.Registry
	Metrics  *telemetry.Metrics
}

// New creates a new server instance.
func New(cfg Config, s shipper.Shipper, logger *otelzap.Logger) *Server {
	registry := cfg.Registry
	if registry == nil {
		registry = telemetry.NewRegistry()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = telemetry.NewMetrics(registry)
	}

	return &Server{
		port:     cfg.Port,
		shipper:  s,
		logger:   logger,
		registry: registry,
		metrics:  metrics,
	}
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("POST /labels", s.handleGenerateLabel)
	mux.HandleFunc("GET /relay-points", s.handleFindRelayPoints)

	return mux
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleGenerateLabel(w http.ResponseWriter, r *http.Request) {
	const operation = "generate_label"
	start := time.Now()
	ctx := r.Context()

	req, err := DecodeLabelRequest(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		s.fail(ctx, w, operation, start, err)
		return
	}

	result, err := s.shipper.GenerateLabel(ctx, req)
	if err != nil {
		s.fail(ctx, w, operation, start, err)
		return
	}

	s.metrics.RecordRequest(operation, "success", time.Since(start).Seconds())

	writeJSON(w, http.StatusCreated, toLabelResultDTO(result))
}

func (s *Server) handleFindRelayPoints(w http.ResponseWriter, r *http.Request) {
	const operation = "find_relay_points"
	start := time.Now()
	ctx := r.Context()

	req, err := ParseRelayPointQuery(r.URL.Query())
	if err != nil {
		s.fail(ctx, w, operation, start, err)
		return
	}

	points, err := s.shipper.FindRelayPoints(ctx, req)
	if err != nil {
		s.fail(ctx, w, operation, start, err)
		return
	}

	s.metrics.RecordRequest(operation, "success", time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, toRelayPointDTOs(points))
}

// ============================================================================
// Helpers
// ============================================================================

func (s *Server) fail(ctx context.Context, w http.ResponseWriter, operation string, start time.Time, err error) {
	status := statusFor(err)
	s.metrics.RecordRequest(operation, "error", time.Since(start).Seconds())

	body := errorDTO{Error: err.Error()}
	var carrierErr *shipper.CarrierError
	if errors.As(err, &carrierErr) {
		body.Code = carrierErr.Code
		s.metrics.RecordError(carrierErr.Code)
	}

	log := s.logger.Ctx(ctx)
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", zap.String("operation", operation), zap.Int("status", status), zap.Error(err))
	} else {
		log.Warn("Request rejected", zap.String("operation", operation), zap.Int("status", status), zap.Error(err))
	}

	writeJSON(w, status, body)
}

// statusFor maps an operation error to the HTTP status returned to callers.
func statusFor(err error) int {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, shipper.ErrInvalidShipment):
		return http.StatusBadRequest
	case errors.Is(err, shipper.ErrCarrierRejected), errors.Is(err, shipper.ErrRelayLookup):
		return http.StatusUnprocessableEntity
	case errors.Is(err, shipper.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, shipper.ErrMalformedResponse), errors.Is(err, shipper.ErrTransport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Package api serves the clinic's booking API over HTTP.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/clinicq/internal/app"
	"github.com/felixgeelhaar/clinicq/pkg/observability"
)

// Server is the HTTP API server.
type Server struct {
	mux     *http.ServeMux
	server  *http.Server
	logger  *slog.Logger
	c       *app.Container
	auth    *Authenticator
	handler http.Handler
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Addr         string
	JWTSecret    string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:         "0.0.0.0:8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewServer creates the API server over the container's handlers.
func NewServer(cfg ServerConfig, c *app.Container, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		mux:    http.NewServeMux(),
		logger: logger,
		c:      c,
		auth:   NewAuthenticator([]byte(cfg.JWTSecret)),
	}
	s.registerRoutes()
	s.handler = s.withRequestContext(s.mux)

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

func (s *Server) registerRoutes() {
	s.mux.Handle("GET /health", s.c.Health.Handler(s.c.Metrics.Snapshot))

	s.mux.Handle("GET /api/v1/slots", s.auth.Require(s.listSlots))
	s.mux.Handle("GET /api/v1/queue", s.auth.Require(s.getQueue))

	s.mux.Handle("POST /api/v1/appointments", s.auth.Require(s.bookAppointment))
	s.mux.Handle("GET /api/v1/appointments", s.auth.Require(s.listAppointments))
	s.mux.Handle("GET /api/v1/appointments/requests", s.auth.Require(s.listRequests))
	s.mux.Handle("PUT /api/v1/appointments/{id}", s.auth.Require(s.rescheduleAppointment))
	s.mux.Handle("DELETE /api/v1/appointments/{id}", s.auth.Require(s.transition(s.c.CancelAppointmentHandler.Handle)))
	s.mux.Handle("PUT /api/v1/appointments/{id}/approve", s.auth.Require(s.transition(s.c.ApproveAppointmentHandler.Handle)))
	s.mux.Handle("PUT /api/v1/appointments/{id}/decline", s.auth.Require(s.transition(s.c.DeclineAppointmentHandler.Handle)))
	s.mux.Handle("PUT /api/v1/appointments/{id}/complete", s.auth.Require(s.transition(s.c.CompleteAppointmentHandler.Handle)))
	s.mux.Handle("PUT /api/v1/appointments/{id}/no-show", s.auth.Require(s.transition(s.c.MarkNoShowHandler.Handle)))
	s.mux.Handle("GET /api/v1/appointments/{id}/reschedules", s.auth.Require(s.listReschedules))

	s.mux.Handle("PUT /api/v1/availability", s.auth.Require(s.setAvailability))
	s.mux.Handle("GET /api/v1/availability/{doctorId}", s.auth.Require(s.getAvailability))
	s.mux.Handle("POST /api/v1/blocks", s.auth.Require(s.addBlock))
	s.mux.Handle("GET /api/v1/blocks", s.auth.Require(s.listBlocks))
	s.mux.Handle("DELETE /api/v1/blocks/{id}", s.auth.Require(s.removeBlock))
}

// withRequestContext tags each request with a correlation ID and logs it.
func (s *Server) withRequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := r.Header.Get("X-Correlation-ID")
		if correlationID == "" {
			correlationID = uuid.NewString()
		}
		ctx := observability.NewRequestContext(r.Context(), correlationID)
		w.Header().Set("X-Correlation-ID", correlationID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(ctx))

		s.logger.InfoContext(ctx, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// Handler exposes the routed handler for tests and embedding.
func (s *Server) Handler() http.Handler { return s.handler }

// Start starts the API server.
func (s *Server) Start() error {
	s.logger.Info("starting API server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.server.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func parseIntParam(r *http.Request, name string, fallback int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

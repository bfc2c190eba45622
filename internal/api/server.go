// Package api exposes the engine's render state and control surface over
// HTTP. The map client reads /api/v1/state or the SSE stream and reports
// view changes back through the small POST/PUT endpoints.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/sky/skywatch/internal/auth"
	"github.com/sky/skywatch/internal/engine"
	"github.com/sky/skywatch/internal/health"
	"github.com/sky/skywatch/internal/metrics"
	"github.com/sky/skywatch/internal/stream"
)

// Server holds the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a configured HTTP server around the engine.
func NewServer(addr string, eng *engine.Engine, streamHandler *stream.Handler, authCfg auth.Config, logger *slog.Logger) *Server {
	s := &Server{logger: logger}

	r := chi.NewRouter()
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(auth.Middleware(authCfg))

	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/state", s.handleState(eng))
		r.Method(http.MethodGet, "/stream", streamHandler)
		r.Get("/passes", s.handlePasses(eng))
		r.Put("/observer", s.handleObserver(eng))
		r.Post("/view/gesture", s.handleGesture(eng))
		r.Post("/view/reset", s.handleReset(eng))
		r.Put("/view/viewport", s.handleViewport(eng))
		r.Put("/overlays/footprint", s.handleFootprint(eng))
	})

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// HTTPServer returns the underlying *http.Server for external control
// (e.g. shutdown).
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) handleState(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, eng.Snapshot())
	}
}

func (s *Server) handlePasses(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := eng.Snapshot()
		writeJSON(w, http.StatusOK, map[string]any{
			"observer": snap.Observer,
			"passes":   snap.Passes,
			"error":    snap.Errors.Passes,
		})
	}
}

func (s *Server) handleObserver(eng *engine.Engine) http.HandlerFunc {
	type observerRequest struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req observerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := eng.SetObserver(req.Latitude, req.Longitude); err != nil {
			var locErr *engine.LocationError
			if errors.As(err, &locErr) {
				writeError(w, http.StatusBadRequest, locErr.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]bool{"ok": true})
	}
}

func (s *Server) handleGesture(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eng.Gesture()
		writeJSON(w, http.StatusAccepted, map[string]bool{"ok": true})
	}
}

func (s *Server) handleReset(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eng.ResetView()
		writeJSON(w, http.StatusAccepted, map[string]bool{"ok": true})
	}
}

func (s *Server) handleViewport(eng *engine.Engine) http.HandlerFunc {
	type viewportRequest struct {
		West float64 `json:"west"`
		East float64 `json:"east"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req viewportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		eng.SetViewport(req.West, req.East)
		writeJSON(w, http.StatusAccepted, map[string]bool{"ok": true})
	}
}

func (s *Server) handleFootprint(eng *engine.Engine) http.HandlerFunc {
	type footprintRequest struct {
		Enabled bool `json:"enabled"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req footprintRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		eng.SetFootprintOverlay(req.Enabled)
		writeJSON(w, http.StatusAccepted, map[string]bool{"ok": true})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// probePath returns true for health/readiness probe paths that should not
// log at INFO.
func probePath(path string) bool {
	return path == "/healthz" || path == "/readyz"
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

// Flush passes through so the SSE stream can flush behind the recorder.
func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (sr *statusRecorder) Unwrap() http.ResponseWriter {
	return sr.ResponseWriter
}

func loggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			duration := time.Since(start)
			level := slog.LevelInfo
			if probePath(r.URL.Path) {
				level = slog.LevelDebug
			}

			logger.Log(r.Context(), level, "request",
				"component", "api",
				"method", r.Method,
				"path", r.URL.Path,
				"status", strconv.Itoa(sr.statusCode),
				"duration_ms", duration.Milliseconds(),
				"remote_ip", r.RemoteAddr,
			)
		})
	}
}

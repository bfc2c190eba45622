// Package stream serves the render state to map clients over Server-Sent
// Events. Clients connect via GET /api/v1/stream and receive the engine's
// snapshot whenever it changes, at most once per requested interval.
//
// SSE message format:
//
//	data: {"type":"snapshot", ...render state... }\n\n
//
// The first message is always metadata:
//
//	data: {"type":"metadata","stream_id":"...","interval_seconds":5}\n\n
//
// Keep-alive comments (:\n\n) are sent every KeepaliveInterval to prevent
// idle timeouts. Reconnecting clients get fresh metadata on each connection.
package stream

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/sky/skywatch/internal/engine"
	"github.com/sky/skywatch/internal/httputil"
	"github.com/sky/skywatch/internal/metrics"
)

// Config holds streaming configuration.
type Config struct {
	MaxConcurrentPerIP int           // max concurrent streams per IP (default: 10)
	KeepaliveInterval  time.Duration // keep-alive ping interval (default: 30s)
	TrustProxy         bool          // trust X-Forwarded-For for client IPs
}

// Handler manages SSE streaming connections.
type Handler struct {
	eng     *engine.Engine
	config  Config
	limiter *limiter
	logger  *slog.Logger
}

// NewHandler creates a streaming handler for the engine.
func NewHandler(eng *engine.Engine, config Config, logger *slog.Logger) *Handler {
	if config.MaxConcurrentPerIP <= 0 {
		config.MaxConcurrentPerIP = 10
	}
	if config.KeepaliveInterval <= 0 {
		config.KeepaliveInterval = 30 * time.Second
	}
	return &Handler{
		eng:     eng,
		config:  config,
		limiter: newLimiter(config.MaxConcurrentPerIP),
		logger:  logger,
	}
}

type metadataMessage struct {
	Type            string `json:"type"`
	StreamID        string `json:"stream_id"`
	IntervalSeconds int    `json:"interval_seconds"`
}

type snapshotMessage struct {
	Type string `json:"type"`
	*engine.Snapshot
}

// ServeHTTP serves the SSE render stream.
// GET /api/v1/stream?interval=5
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	interval := 5
	if v := r.URL.Query().Get("interval"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 60 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid interval parameter, must be 1-60"})
			return
		}
		interval = n
	}

	ip := httputil.ClientIP(r, h.config.TrustProxy)
	if !h.limiter.acquire(ip) {
		metrics.IncStreamErrors("rate_limit")
		h.logger.Warn("stream rate limit exceeded",
			"remote_ip", ip,
			"current_count", h.limiter.count(ip),
		)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]string{"error": "too many concurrent streams"})
		return
	}

	metrics.IncStreamConnections("connect")
	metrics.IncStreamsActive()

	streamID := uuid.NewString()
	startTime := time.Now()
	h.logger.Info("stream connected",
		"stream_id", streamID,
		"remote_ip", ip,
		"user_agent", r.Header.Get("User-Agent"),
		"interval", interval,
	)

	defer func() {
		h.limiter.release(ip)
		metrics.IncStreamConnections("disconnect")
		metrics.DecStreamsActive()
		h.logger.Info("stream disconnected",
			"stream_id", streamID,
			"remote_ip", ip,
			"duration_seconds", int(time.Since(startTime).Seconds()),
		)
	}()

	flusher, ok := w.(http.Flusher)
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "streaming not supported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // disable nginx buffering
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// Clear the server's default WriteTimeout for this long-lived response.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		h.logger.Debug("could not clear write deadline", "error", err)
	}

	c := &client{
		w:       w,
		flusher: flusher,
		rc:      rc,
		id:      streamID,
		ip:      ip,
		logger:  h.logger,
	}

	// Jittered retry interval (3-7s) to avoid thundering-herd reconnects
	// after a restart.
	retryMs := 3000 + rand.Intn(4000)
	fmt.Fprintf(w, "retry: %d\n\n", retryMs)
	flusher.Flush()

	meta := metadataMessage{
		Type:            "metadata",
		StreamID:        streamID,
		IntervalSeconds: interval,
	}
	if err := c.sendJSON(meta); err != nil {
		metrics.IncStreamErrors("send_error")
		h.logger.Warn("stream send error (metadata)", "stream_id", streamID, "error", err)
		return
	}

	ticker := time.NewTicker(time.Duration(interval) * time.Second)
	defer ticker.Stop()

	keepaliveTicker := time.NewTicker(h.config.KeepaliveInterval)
	defer keepaliveTicker.Stop()

	ctx := r.Context()
	var lastSent time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			snap := h.eng.Snapshot()
			if snap == nil || !snap.GeneratedAt.After(lastSent) {
				continue // nothing new since the last message
			}

			data, err := json.Marshal(snapshotMessage{Type: "snapshot", Snapshot: snap})
			if err != nil {
				metrics.IncStreamErrors("marshal_error")
				h.logger.Warn("stream marshal error", "stream_id", streamID, "error", err)
				continue
			}
			if err := c.sendRaw(data); err != nil {
				metrics.IncStreamErrors("send_error")
				h.logger.Warn("stream send error", "stream_id", streamID, "error", err)
				return
			}
			lastSent = snap.GeneratedAt

			// Reset keepalive since we just sent data.
			keepaliveTicker.Reset(h.config.KeepaliveInterval)

		case <-keepaliveTicker.C:
			if err := c.sendKeepalive(); err != nil {
				metrics.IncStreamErrors("send_error")
				h.logger.Warn("stream keepalive error", "stream_id", streamID, "error", err)
				return
			}
		}
	}
}

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skywatch_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skywatch_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	pollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skywatch_telemetry_polls_total",
			Help: "Telemetry poll cycles by outcome.",
		},
		[]string{"outcome"},
	)

	fixAgeSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "skywatch_live_fix_age_seconds",
			Help: "Age of the last good live fix.",
		},
	)

	elementAgeSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "skywatch_element_set_age_seconds",
			Help: "Age of the current element set.",
		},
	)

	elementRefreshesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skywatch_element_refreshes_total",
			Help: "Element refresh attempts by outcome.",
		},
		[]string{"outcome"},
	)

	predictionRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skywatch_prediction_runs_total",
			Help: "Prediction scans by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	predictionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skywatch_prediction_duration_seconds",
			Help:    "Prediction scan duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	streamConnections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skywatch_stream_connections_total",
			Help: "SSE stream connection events.",
		},
		[]string{"event"},
	)

	streamsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "skywatch_streams_active",
			Help: "Currently connected SSE streams.",
		},
	)

	streamMessagesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "skywatch_stream_messages_total",
			Help: "SSE data messages sent.",
		},
	)

	streamBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "skywatch_stream_bytes_total",
			Help: "SSE bytes sent, including keep-alives.",
		},
	)

	streamErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skywatch_stream_errors_total",
			Help: "SSE stream errors by reason.",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpDurationSeconds,
		pollsTotal,
		fixAgeSeconds,
		elementAgeSeconds,
		elementRefreshesTotal,
		predictionRunsTotal,
		predictionDuration,
		streamConnections,
		streamsActive,
		streamMessagesTotal,
		streamBytesTotal,
		streamErrorsTotal,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// IncPoll records a telemetry poll outcome ("success" or "failure").
func IncPoll(outcome string) {
	pollsTotal.WithLabelValues(outcome).Inc()
}

// SetFixAge sets the live-fix age gauge.
func SetFixAge(seconds float64) {
	fixAgeSeconds.Set(seconds)
}

// SetElementAge sets the element-set age gauge.
func SetElementAge(seconds float64) {
	elementAgeSeconds.Set(seconds)
}

// IncElementRefresh records an element refresh outcome.
func IncElementRefresh(outcome string) {
	elementRefreshesTotal.WithLabelValues(outcome).Inc()
}

// RecordPrediction records one prediction scan ("passes" or "orbit").
func RecordPrediction(kind string, d time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	predictionRunsTotal.WithLabelValues(kind, outcome).Inc()
	predictionDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// IncStreamConnections records a stream connect/disconnect event.
func IncStreamConnections(event string) {
	streamConnections.WithLabelValues(event).Inc()
}

// IncStreamsActive increments the active-stream gauge.
func IncStreamsActive() {
	streamsActive.Inc()
}

// DecStreamsActive decrements the active-stream gauge.
func DecStreamsActive() {
	streamsActive.Dec()
}

// IncStreamMessages counts one SSE data message.
func IncStreamMessages() {
	streamMessagesTotal.Inc()
}

// AddStreamBytes counts bytes written to a stream.
func AddStreamBytes(n int64) {
	streamBytesTotal.Add(float64(n))
}

// IncStreamErrors records a stream error by reason.
func IncStreamErrors(reason string) {
	streamErrorsTotal.WithLabelValues(reason).Inc()
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush passes through so streaming handlers can flush behind the wrapper.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		code := strconv.Itoa(rw.statusCode)

		httpRequestsTotal.WithLabelValues(r.URL.Path, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(r.URL.Path, r.Method).Observe(duration)
	})
}

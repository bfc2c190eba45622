package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMiddlewarePassesStatus(t *testing.T) {
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418", rec.Code)
	}
}

// The wrapper must not hide the Flusher implementation; the SSE stream
// depends on flushing through the middleware chain.
func TestMiddlewarePreservesFlusher(t *testing.T) {
	var sawFlusher bool
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawFlusher = w.(http.Flusher)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/stream", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if !sawFlusher {
		t.Error("wrapped writer does not implement http.Flusher")
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	IncPoll("success")
	SetFixAge(1.5)
	IncElementRefresh("success")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	// Vectors only appear in scrape output once they have samples, so
	// assert only the series this test just touched.
	body := rec.Body.String()
	for _, name := range []string{
		"skywatch_telemetry_polls_total",
		"skywatch_live_fix_age_seconds",
		"skywatch_element_refreshes_total",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}

package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestRouter(logger *zap.Logger, path string, h http.HandlerFunc) *mux.Router {
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(logger))
	router.Use(MetricsMiddleware)
	router.HandleFunc(path, h)
	return router
}

func TestCorrelationIDMiddleware_GeneratesID(t *testing.T) {
	var seen string
	router := newTestRouter(zap.NewNop(), "/health", func(w http.ResponseWriter, r *http.Request) {
		seen = correlationID(r.Context())
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	got := w.Header().Get("X-Correlation-ID")
	if got == "" {
		t.Fatal("X-Correlation-ID header missing")
	}
	if seen != got {
		t.Errorf("context correlation_id = %q, header = %q", seen, got)
	}
}

func TestCorrelationIDMiddleware_PropagatesClientID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	router := newTestRouter(zap.New(core), "/weather", func(w http.ResponseWriter, r *http.Request) {
		loggerFromContext(r.Context(), nil).Info("inside handler")
	})

	req := httptest.NewRequest(http.MethodPost, "/weather", nil)
	req.Header.Set("X-Correlation-ID", "client-provided-id")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Correlation-ID"); got != "client-provided-id" {
		t.Errorf("X-Correlation-ID = %q, want client-provided-id", got)
	}
	entries := logs.FilterMessage("inside handler").All()
	if len(entries) != 1 {
		t.Fatalf("want 1 log entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["correlation_id"]; got != "client-provided-id" {
		t.Errorf("logged correlation_id = %v, want client-provided-id", got)
	}
}

func TestMetricsMiddleware_TracksInFlight(t *testing.T) {
	var during int64
	router := newTestRouter(zap.NewNop(), "/flights", func(w http.ResponseWriter, r *http.Request) {
		during = InFlightCount()
		w.WriteHeader(http.StatusBadGateway)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/flights", nil))

	if during < 1 {
		t.Errorf("InFlightCount() during request = %d, want >= 1", during)
	}
	if got := InFlightCount(); got != 0 {
		t.Errorf("InFlightCount() after request = %d, want 0", got)
	}
	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}
}

func TestGetRoute(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/", "/"},
		{"/health", "/health"},
		{"/metrics", "/metrics"},
		{"/weather", "/weather"},
		{"/flights", "/flights"},
		{"/plan", "/plan"},
		{"/plan.pdf", "/plan.pdf"},
		{"/reset", "/reset"},
		{"/wp-admin/login.php", "other"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := getRoute(httptest.NewRequest(http.MethodGet, tt.path, nil)); got != tt.want {
				t.Errorf("getRoute(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestStatusCodeString(t *testing.T) {
	for code, want := range map[int]string{200: "2xx", 303: "3xx", 404: "4xx", 502: "5xx"} {
		if got := statusCodeString(code); got != want {
			t.Errorf("statusCodeString(%d) = %q, want %q", code, got, want)
		}
	}
}

func TestTimeoutMiddleware_SetsDeadline(t *testing.T) {
	var deadline time.Time
	var ok bool
	h := TimeoutMiddleware(50 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, ok = r.Context().Deadline()
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !ok {
		t.Fatal("request context has no deadline")
	}
	if remaining := time.Until(deadline); remaining > 50*time.Millisecond {
		t.Errorf("deadline %v away, want <= 50ms", remaining)
	}
}

func TestLoggerFromContext_Fallbacks(t *testing.T) {
	fallback := zap.NewExample()
	if got := loggerFromContext(context.Background(), fallback); got != fallback {
		t.Error("loggerFromContext() did not return fallback")
	}
	if got := loggerFromContext(context.Background(), nil); got == nil {
		t.Error("loggerFromContext() returned nil without fallback")
	}
}

func TestNewRouter_HealthAndMetrics(t *testing.T) {
	router := NewRouter(zap.NewNop(), NewHealthHandler(HealthConfig{Service: "flight-service"}, zap.NewNop()))

	for _, path := range []string{"/health", "/metrics"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, w.Code)
		}
		if w.Header().Get("X-Correlation-ID") == "" {
			t.Errorf("GET %s missing X-Correlation-ID", path)
		}
	}
}

func TestNewServer_WriteTimeoutAboveRequestTimeout(t *testing.T) {
	srv := NewServer("8001", http.NotFoundHandler(), 20*time.Second)
	if srv.Addr != ":8001" {
		t.Errorf("Addr = %q, want :8001", srv.Addr)
	}
	if srv.WriteTimeout <= 20*time.Second {
		t.Errorf("WriteTimeout = %v, want > 20s", srv.WriteTimeout)
	}
}

func TestNewServer_NoRequestTimeoutLeavesWriteUnbounded(t *testing.T) {
	srv := NewServer("8000", http.NotFoundHandler(), 0)
	if srv.WriteTimeout != 0 {
		t.Errorf("WriteTimeout = %v, want 0", srv.WriteTimeout)
	}
	if srv.ReadHeaderTimeout == 0 {
		t.Error("ReadHeaderTimeout = 0, want set")
	}
}

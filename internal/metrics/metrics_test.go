package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var _ MetricsCollector = (*Collector)(nil)

func TestCollector_RecordsAndExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(500)
	c.RecordRequestLatency(42 * time.Millisecond)
	c.RecordSessionVerified()
	c.RecordSessionRejected("invalid_session")
	c.RecordUserProvisioned()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, req)

	body := rec.Body.String()

	tests := []struct {
		name     string
		contains string
	}{
		{"http status 200", `bizops_http_status_total{status_code="200"} 2`},
		{"http status 500", `bizops_http_status_total{status_code="500"} 1`},
		{"latency histogram", "bizops_request_latency_seconds_count 1"},
		{"sessions verified", "bizops_sessions_verified_total 1"},
		{"sessions rejected", `bizops_sessions_rejected_total{reason="invalid_session"} 1`},
		{"users provisioned", "bizops_users_provisioned_total 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(body, tt.contains) {
				t.Errorf("metrics output should contain %q", tt.contains)
			}
		})
	}
}

func TestSetupMetricsRoute_ServesMetricsPath(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)

	handler := SetupMetricsRoute(reg)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestHTTPMiddleware_RecordsStatusAndLatency(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	mw := NewHTTPMiddleware(c)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/unknown", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	metricsReq := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	metricsRec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(metricsRec, metricsReq)

	body := metricsRec.Body.String()
	if !strings.Contains(body, `bizops_http_status_total{status_code="404"} 1`) {
		t.Error("middleware should record response status")
	}
	if !strings.Contains(body, "bizops_request_latency_seconds_count 1") {
		t.Error("middleware should record request latency")
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

type recordedRequest struct {
	method string
	route  string
	status int
}

type fakeCollector struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (f *fakeCollector) RecordHTTPRequest(method, route string, statusCode int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, recordedRequest{method: method, route: route, status: statusCode})
}

func (f *fakeCollector) RecordMatchCreated(string)        {}
func (f *fakeCollector) RecordStoreError(string)          {}
func (f *fakeCollector) RecordEventPublishFailure(string) {}

func newMetricsTestRouter(collector *fakeCollector) http.Handler {
	r := chi.NewRouter()
	r.Use(NewMetricsMiddleware(collector))
	r.Get("/matches", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/matches", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	return r
}

// TestMetricsMiddleware_RecordsRoutePattern はルートパターンとステータスが記録されることを検証する。
func TestMetricsMiddleware_RecordsRoutePattern(t *testing.T) {
	collector := &fakeCollector{}
	router := newMetricsTestRouter(collector)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/matches?limit=5", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/matches", nil))

	want := []recordedRequest{
		{method: "GET", route: "/matches", status: http.StatusOK},
		{method: "POST", route: "/matches", status: http.StatusBadRequest},
	}
	if len(collector.requests) != len(want) {
		t.Fatalf("recorded %d requests, want %d", len(collector.requests), len(want))
	}
	for i, w := range want {
		if collector.requests[i] != w {
			t.Errorf("request[%d] = %+v, want %+v", i, collector.requests[i], w)
		}
	}
}

// TestMetricsMiddleware_UnmatchedRoute は未定義パスを生のパスではなく固定ラベルで記録することを検証する。
func TestMetricsMiddleware_UnmatchedRoute(t *testing.T) {
	collector := &fakeCollector{}
	router := newMetricsTestRouter(collector)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/random/abc123", nil))

	if len(collector.requests) != 1 {
		t.Fatalf("recorded %d requests, want 1", len(collector.requests))
	}
	got := collector.requests[0]
	if got.route != unmatchedRoute {
		t.Errorf("route = %q, want %q", got.route, unmatchedRoute)
	}
	if got.status != http.StatusNotFound {
		t.Errorf("status = %d, want %d", got.status, http.StatusNotFound)
	}
}

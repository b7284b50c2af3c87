package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/sportz/internal/metrics"
)

// unmatchedRoute はルーティングに一致しなかったリクエストのラベル値。
// 生のパスをラベルに使うとカーディナリティが際限なく増えるため、まとめて集計する。
const unmatchedRoute = "unmatched"

// NewMetricsMiddleware はリクエスト数とレイテンシをcollectorに記録するミドルウェアを返す。
// routeラベルにはchiのルートパターン（例: /matches）を使用する。
func NewMetricsMiddleware(collector metrics.MetricsCollector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)

			next.ServeHTTP(rec, r)

			collector.RecordHTTPRequest(r.Method, routePattern(r), rec.statusCode, time.Since(start))
		})
	}
}

// routePattern はリクエストに一致したchiのルートパターンを返す。
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return unmatchedRoute
	}
	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}
	return unmatchedRoute
}

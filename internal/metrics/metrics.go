// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// HTTPミドルウェアやサービス層から利用する。
type MetricsCollector interface {
	RecordHTTPRequest(method, route string, statusCode int, duration time.Duration)
	RecordMatchCreated(status string)
	RecordStoreError(operation string)
	RecordEventPublishFailure(eventType string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpRequests   *prometheus.CounterVec
	httpLatency    *prometheus.HistogramVec
	matchesCreated *prometheus.CounterVec
	storeErrors    *prometheus.CounterVec
	publishFail    *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sportz_http_requests_total",
			Help: "HTTPリクエストの合計数（メソッド・ルート・ステータスコード別）",
		}, []string{"method", "route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sportz_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		matchesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sportz_matches_created_total",
			Help: "作成された試合の合計数（作成時のステータス別）",
		}, []string{"status"}),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sportz_store_errors_total",
			Help: "ストア操作の失敗数（操作別）",
		}, []string{"operation"}),
		publishFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sportz_event_publish_failures_total",
			Help: "イベント配信の失敗数（イベント種別別）",
		}, []string{"event_type"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.matchesCreated,
		c.storeErrors,
		c.publishFail,
	)

	return c
}

// RecordHTTPRequest はHTTPリクエスト1件の結果と処理時間を記録する。
// routeにはURLパスではなくルートパターンを渡し、ラベルの濃度を抑えること。
func (c *Collector) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordMatchCreated は試合の作成を記録する。
func (c *Collector) RecordMatchCreated(status string) {
	c.matchesCreated.WithLabelValues(status).Inc()
}

// RecordStoreError はストア操作の失敗を記録する。
func (c *Collector) RecordStoreError(operation string) {
	c.storeErrors.WithLabelValues(operation).Inc()
}

// RecordEventPublishFailure はイベント配信の失敗を記録する。
func (c *Collector) RecordEventPublishFailure(eventType string) {
	c.publishFail.WithLabelValues(eventType).Inc()
}

// Nop は何も記録しないMetricsCollector。
type Nop struct{}

func (Nop) RecordHTTPRequest(string, string, int, time.Duration) {}
func (Nop) RecordMatchCreated(string)                            {}
func (Nop) RecordStoreError(string)                              {}
func (Nop) RecordEventPublishFailure(string)                     {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = Nop{}
)

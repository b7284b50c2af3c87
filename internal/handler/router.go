package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hitoshi/sportz/internal/metrics"
	"github.com/hitoshi/sportz/internal/middleware"
)

// DefaultMaxBodyBytes はPOSTリクエストボディの既定の上限（1 MiB）。
const DefaultMaxBodyBytes int64 = 1 << 20

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Collector         metrics.MetricsCollector
	MaxBodyBytes      int64
	Logger            *slog.Logger

	// TrustForwardedHeaders がtrueの場合のみX-Forwarded-For/X-Real-IPから接続元IPを復元する。
	// 信頼できるリバースプロキシ配下でのみ有効にすること。
	TrustForwardedHeaders bool

	// 試合
	MatchService MatchServiceInterface

	// 運用
	HealthChecker  HealthChecker
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → (RealIP) → Logging → Metrics → Recovery → SecurityHeaders → CORS
//
// RealIPはTrustForwardedHeadersが有効な場合のみ適用する。
// 無効時はTCP接続元のアドレスでレート制限する。
// /matches にはさらにAPI全般のレート制限を適用し、POSTには作成専用のレート制限とボディ上限を追加する。
// /health と /metrics はレート制限の対象外とする。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	collector := deps.Collector
	if collector == nil {
		collector = metrics.Nop{}
	}
	maxBody := deps.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	if deps.TrustForwardedHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewMetricsMiddleware(collector))
	r.Use(middleware.NewRecoveryMiddleware(logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	matchHandler := NewMatchHandler(deps.MatchService, logger)
	healthHandler := NewHealthHandler(deps.HealthChecker, logger)

	r.Get("/", Root)
	r.Get("/health", healthHandler.Health)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/matches", func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		r.Get("/", matchHandler.ListMatches)

		create := r.With(middleware.NewBodyLimitMiddleware(maxBody))
		if deps.RateLimiter != nil {
			create = create.With(deps.RateLimiter.CreateMiddleware())
		}
		create.Post("/", matchHandler.CreateMatch)
	})

	return r
}

package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/sportz/internal/middleware"
	"github.com/hitoshi/sportz/internal/model"
)

// welcomeMessage はルートパスで返す案内文。
const welcomeMessage = "Welcome to Sportz API"

// healthCheckTimeout はヘルスチェック時のDB疎通確認のタイムアウト。
const healthCheckTimeout = 2 * time.Second

// HealthChecker はヘルスチェックで疎通を確認する依存先。*sql.DBが満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// HealthHandler はサービスの稼働状況を返すハンドラー。
type HealthHandler struct {
	checker HealthChecker
	logger  *slog.Logger
}

// NewHealthHandler はHealthHandlerを生成する。
func NewHealthHandler(checker HealthChecker, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{checker: checker, logger: logger}
}

// Health はDBへの疎通を確認し、成功すれば200を返す。
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.checker != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		if err := h.checker.PingContext(ctx); err != nil {
			h.logger.Warn("health check failed", slog.String("error", err.Error()))
			middleware.WriteErrorResponse(w, r, http.StatusServiceUnavailable, model.NewUnavailableError())
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Root はAPIの案内文をプレーンテキストで返す。
// GET /
func Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, welcomeMessage)
}

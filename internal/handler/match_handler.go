package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/hitoshi/sportz/internal/match"
	"github.com/hitoshi/sportz/internal/model"
)

// MatchServiceInterface は試合ハンドラーが必要とするサービスインターフェース。
type MatchServiceInterface interface {
	// List はクエリパラメータを検証し、作成日時の新しい順に試合を返す。
	List(ctx context.Context, query url.Values) ([]*model.Match, error)
	// Create は入力を検証し、状態を算出したうえで試合を保存する。
	Create(ctx context.Context, in match.CreateInput) (*model.Match, error)
}

// MatchHandler は試合APIのHTTPハンドラー。
type MatchHandler struct {
	service MatchServiceInterface
	logger  *slog.Logger
}

// NewMatchHandler はMatchHandlerを生成する。
func NewMatchHandler(service MatchServiceInterface, logger *slog.Logger) *MatchHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MatchHandler{
		service: service,
		logger:  logger,
	}
}

// dataResponse は成功レスポンスの共通エンベロープ。
type dataResponse struct {
	Data any `json:"data"`
}

// ListMatches は試合一覧を返す。
// GET /matches?limit=N
func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.service.List(r.Context(), r.URL.Query())
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	if matches == nil {
		matches = []*model.Match{}
	}

	writeJSON(w, http.StatusOK, dataResponse{Data: matches})
}

// CreateMatch は試合を作成する。
// POST /matches
func (h *MatchHandler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	in, err := match.DecodeCreateInput(r.Body)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	m, err := h.service.Create(r.Context(), in)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dataResponse{Data: m})
}

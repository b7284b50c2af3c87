package middleware

import (
	"encoding/json"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hitoshi/sportz/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
// 原因カテゴリと対処方法を含む。
//
// detailsはvalidationカテゴリでは違反フィールドの一覧、
// systemカテゴリではリクエストIDのみを持つ。内部エラーの原文は含めない。
type ErrorResponseBody struct {
	Error    string `json:"error"`
	Code     string `json:"code"`
	Category string `json:"category"`
	Action   string `json:"action,omitempty"`
	Details  any    `json:"details,omitempty"`
}

// systemErrorDetails はsystemカテゴリのエラーに付与する診断情報。
type systemErrorDetails struct {
	RequestID string `json:"requestId"`
}

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
// すべてのAPIエンドポイントで一貫したエラーレスポンスを提供する。
func WriteErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, apiErr *model.APIError) {
	body := ErrorResponseBody{
		Error:    apiErr.Message,
		Code:     apiErr.Code,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	}

	switch {
	case len(apiErr.Details) > 0:
		body.Details = apiErr.Details
	case apiErr.Category == "system":
		if reqID := chimw.GetReqID(r.Context()); reqID != "" {
			body.Details = systemErrorDetails{RequestID: reqID}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、利用者には一般的なメッセージとリクエストIDを返す。
func WriteInternalServerError(w http.ResponseWriter, r *http.Request) {
	WriteErrorResponse(w, r, http.StatusInternalServerError, model.NewInternalError())
}

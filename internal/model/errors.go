// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string           // エラーコード
	Message  string           // エラーメッセージ
	Category string           // カテゴリ: validation, system
	Action   string           // 利用者向け対処方法
	Details  []FieldViolation // バリデーション違反の一覧（validationカテゴリのみ）
}

// FieldViolation は入力フィールド1件分の違反内容を表す。
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Details)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidQuery     = "INVALID_QUERY"
	ErrCodeInvalidMatchData = "INVALID_MATCH_DATA"
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeUnavailable      = "SERVICE_UNAVAILABLE"
	ErrCodeRateLimited      = "RATE_LIMIT_EXCEEDED"
)

// NewInvalidQueryError はクエリパラメータのバリデーションエラーを生成する。
func NewInvalidQueryError(violations []FieldViolation) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidQuery,
		Message:  "Invalid query parameters",
		Category: "validation",
		Action:   "Fix the listed query parameters and retry.",
		Details:  violations,
	}
}

// NewInvalidMatchDataError はリクエストボディのバリデーションエラーを生成する。
func NewInvalidMatchDataError(violations []FieldViolation) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidMatchData,
		Message:  "Invalid match data",
		Category: "validation",
		Action:   "Fix the listed fields and retry.",
		Details:  violations,
	}
}

// NewInternalError は内部エラーを生成する。
// 原因の詳細はサーバーログにのみ記録し、ここには含めない。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "Internal server error",
		Category: "system",
		Action:   "Please retry later. Quote the request id when reporting the problem.",
	}
}

// NewUnavailableError は依存先が応答しない場合のエラーを生成する。
func NewUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeUnavailable,
		Message:  "Service unavailable",
		Category: "system",
		Action:   "Please retry later.",
	}
}

// NewRateLimitedError はレート制限超過エラーを生成する。
func NewRateLimitedError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "Too many requests",
		Category: "system",
		Action:   "Please wait and retry after the time given in Retry-After.",
	}
}

// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizer は試合のラベル（競技名・チーム名）からHTMLを除去し、
// プレーンテキストとして保存できる形に正規化する。
// bluemondayのStrictPolicyを使用し、すべてのタグを除去する。
//
// 出力はエンティティを復元したプレーンテキストであり、HTMLセーフではない。
// "&lt;b&gt;" は "<b>" として返るため、HTMLに埋め込む側でエスケープすること。
// APIはJSONでのみ返すため、保存値はエスケープしない。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer はHTMLを含みうる短いテキストをプレーンテキストに変換する。
type TextSanitizer interface {
	// Sanitize はタグを除去し、エンティティを復元し、連続する空白を1つにまとめる。
	// script, styleタグは中身ごと除去される。
	// 空文字列の入力には空文字列を返す。
	Sanitize(raw string) string
}

// textSanitizer はTextSanitizerの実装。
// bluemondayのポリシーはスレッドセーフなため、複数リクエストから共有できる。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerの新しいインスタンスを生成する。
func NewTextSanitizer() TextSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize はHTMLを除去したプレーンテキストを返す。
func (s *textSanitizer) Sanitize(raw string) string {
	if raw == "" {
		return ""
	}
	// StrictPolicyは出力をHTMLエスケープするため、保存前に元の文字へ戻す
	text := html.UnescapeString(s.policy.Sanitize(raw))
	return strings.Join(strings.Fields(text), " ")
}

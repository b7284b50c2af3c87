// Package event は試合イベントの外部配信を提供する。
// 配信はベストエフォートであり、失敗しても試合の作成自体は成功として扱う。
package event

import (
	"context"
	"time"

	"github.com/hitoshi/sportz/internal/model"
)

// TypeMatchCreated は試合作成イベントの種別。
const TypeMatchCreated = "match.created"

// Envelope は配信されるイベントのJSON表現。
type Envelope struct {
	Type       string       `json:"type"`
	OccurredAt time.Time    `json:"occurredAt"`
	Data       *model.Match `json:"data"`
}

// Publisher は試合イベントの配信インターフェース。
type Publisher interface {
	// PublishMatchCreated は作成済みの試合をmatch.createdイベントとして配信する。
	PublishMatchCreated(ctx context.Context, match *model.Match) error
}

// NopPublisher は何も配信しないPublisher。
// REDIS_URLが未設定の場合に使用する。
type NopPublisher struct{}

// PublishMatchCreated は何もせずnilを返す。
func (NopPublisher) PublishMatchCreated(context.Context, *model.Match) error {
	return nil
}

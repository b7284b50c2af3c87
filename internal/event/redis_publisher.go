package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/hitoshi/sportz/internal/model"
)

// RedisClient はRedisPublisherが必要とするRedisクライアントの操作。
// *redis.Client がこれを満たす。
type RedisClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisPublisher はRedisのPub/Subチャンネルにイベントを配信する。
type RedisPublisher struct {
	client  RedisClient
	channel string
	now     func() time.Time
}

// NewRedisPublisher はRedisPublisherを生成する。
func NewRedisPublisher(client RedisClient, channel string) *RedisPublisher {
	return &RedisPublisher{
		client:  client,
		channel: channel,
		now:     time.Now,
	}
}

// PublishMatchCreated は試合をEnvelopeに包んでJSONで配信する。
func (p *RedisPublisher) PublishMatchCreated(ctx context.Context, match *model.Match) error {
	payload, err := json.Marshal(Envelope{
		Type:       TypeMatchCreated,
		OccurredAt: p.now().UTC(),
		Data:       match,
	})
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", TypeMatchCreated, err)
	}

	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish %s event to %s: %w", TypeMatchCreated, p.channel, err)
	}
	return nil
}

// NewRedisClient はURLからRedisクライアントを生成し、接続を確認する。
// urlは "redis://[:password@]host:port/db" 形式。
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

var (
	_ Publisher = (*RedisPublisher)(nil)
	_ Publisher = NopPublisher{}
)

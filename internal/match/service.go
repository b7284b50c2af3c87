// Package match は試合の作成・一覧のユースケースを提供する。
// 入力の検証、状態の算出、ストアへの永続化、イベント配信を順に行う。
package match

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/sportz/internal/event"
	"github.com/hitoshi/sportz/internal/metrics"
	"github.com/hitoshi/sportz/internal/model"
	"github.com/hitoshi/sportz/internal/repository"
)

const (
	// DefaultListLimit はlimit未指定時の一覧取得件数。
	DefaultListLimit = 50
	// MaxListLimit は一覧取得件数の上限。これを超える指定は上限に丸める。
	MaxListLimit = 100

	publishTimeout = 2 * time.Second
)

// Service は試合のユースケースを実装する。
// リクエスト間で共有する可変状態は持たない。
type Service struct {
	repo      repository.MatchRepository
	validator *Validator
	publisher event.Publisher
	metrics   metrics.MetricsCollector
	logger    *slog.Logger

	now   func() time.Time
	newID func() string
}

// NewService はServiceを生成する。
// publisherとcollectorがnilの場合は何もしない実装を使う。
func NewService(
	repo repository.MatchRepository,
	validator *Validator,
	publisher event.Publisher,
	collector metrics.MetricsCollector,
	logger *slog.Logger,
) *Service {
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	if collector == nil {
		collector = metrics.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		validator: validator,
		publisher: publisher,
		metrics:   collector,
		logger:    logger,
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
}

// ResolveLimit は指定されたlimitにデフォルト値と上限を適用する。
func ResolveLimit(limit *int) int {
	if limit == nil {
		return DefaultListLimit
	}
	return min(*limit, MaxListLimit)
}

// List はクエリパラメータを検証し、作成日時の新しい順に試合を返す。
// 件数はResolveLimitで決まり、最大でMaxListLimit件となる。
// 検証に失敗した場合はストアにアクセスせずAPIErrorを返す。
func (s *Service) List(ctx context.Context, query url.Values) ([]*model.Match, error) {
	in, err := s.validator.ParseListQuery(query)
	if err != nil {
		return nil, err
	}
	limit := ResolveLimit(in.Limit)

	matches, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		s.metrics.RecordStoreError("list")
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return matches, nil
}

// Create は試合を検証・作成し、ストアに保存された内容を返す。
//
// 検証に失敗した場合はストアにアクセスせずAPIErrorを返す。
// 状態は呼び出し時点の時刻を基準に一度だけ算出する。
// イベント配信の失敗はログとメトリクスに記録するのみで、作成結果には影響しない。
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.Match, error) {
	draft, err := s.validator.ValidateCreate(in)
	if err != nil {
		return nil, err
	}

	m := &model.Match{
		ID:        s.newID(),
		Sport:     draft.Sport,
		HomeTeam:  draft.HomeTeam,
		AwayTeam:  draft.AwayTeam,
		StartTime: draft.StartTime,
		EndTime:   draft.EndTime,
		HomeScore: draft.HomeScore,
		AwayScore: draft.AwayScore,
		Status:    model.DeriveStatus(draft.StartTime, draft.EndTime, s.now()),
	}

	if err := s.repo.Create(ctx, m); err != nil {
		s.metrics.RecordStoreError("insert")
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	s.metrics.RecordMatchCreated(string(m.Status))
	s.publishCreated(ctx, m)

	return m, nil
}

func (s *Service) publishCreated(ctx context.Context, m *model.Match) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := s.publisher.PublishMatchCreated(ctx, m); err != nil {
		s.metrics.RecordEventPublishFailure(event.TypeMatchCreated)
		s.logger.Warn("failed to publish match event",
			slog.String("match_id", m.ID),
			slog.String("event_type", event.TypeMatchCreated),
			slog.String("error", err.Error()),
		)
	}
}

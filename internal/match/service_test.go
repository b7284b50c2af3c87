package match

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/url"
	"testing"
	"time"

	"github.com/hitoshi/sportz/internal/model"
)

// --- モック定義 ---

// mockMatchRepo はrepository.MatchRepositoryのモック実装。
type mockMatchRepo struct {
	createFn     func(ctx context.Context, m *model.Match) error
	listRecentFn func(ctx context.Context, limit int) ([]*model.Match, error)

	createCalls int
	listCalls   int
	lastLimit   int
}

func (m *mockMatchRepo) Create(ctx context.Context, match *model.Match) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, match)
	}
	match.CreatedAt = time.Now()
	return nil
}

func (m *mockMatchRepo) ListRecent(ctx context.Context, limit int) ([]*model.Match, error) {
	m.listCalls++
	m.lastLimit = limit
	if m.listRecentFn != nil {
		return m.listRecentFn(ctx, limit)
	}
	return []*model.Match{}, nil
}

// mockPublisher はevent.Publisherのモック実装。
type mockPublisher struct {
	err       error
	published []*model.Match
}

func (m *mockPublisher) PublishMatchCreated(ctx context.Context, match *model.Match) error {
	m.published = append(m.published, match)
	return m.err
}

// mockCollector はmetrics.MetricsCollectorのモック実装。
type mockCollector struct {
	created        []string
	storeErrors    []string
	publishFailure int
}

func (m *mockCollector) RecordHTTPRequest(string, string, int, time.Duration) {}
func (m *mockCollector) RecordMatchCreated(status string)                   { m.created = append(m.created, status) }
func (m *mockCollector) RecordStoreError(op string)                         { m.storeErrors = append(m.storeErrors, op) }
func (m *mockCollector) RecordEventPublishFailure(string)                   { m.publishFailure++ }

// --- テストヘルパー ---

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func newTestService(repo *mockMatchRepo, pub *mockPublisher, col *mockCollector, logBuf *bytes.Buffer) *Service {
	logger := slog.New(slog.NewJSONHandler(logBuf, nil))
	svc := NewService(repo, newTestValidator(), pub, col, logger)
	svc.now = func() time.Time { return fixedNow }
	svc.newID = func() string { return "match-id-1" }
	return svc
}

func rfc3339(t time.Time) string { return t.Format(time.RFC3339) }

// --- Create ---

func TestService_Create_FutureStart_IsUpcoming(t *testing.T) {
	repo := &mockMatchRepo{}
	pub := &mockPublisher{}
	col := &mockCollector{}
	svc := newTestService(repo, pub, col, &bytes.Buffer{})

	m, err := svc.Create(context.Background(), CreateInput{
		StartTime: rfc3339(fixedNow.Add(time.Hour)),
		EndTime:   rfc3339(fixedNow.Add(3 * time.Hour)),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if m.Status != model.MatchStatusUpcoming {
		t.Errorf("Status = %q, want %q", m.Status, model.MatchStatusUpcoming)
	}
	if m.ID != "match-id-1" {
		t.Errorf("ID = %q, want %q", m.ID, "match-id-1")
	}
	if m.CreatedAt.IsZero() {
		t.Error("CreatedAt should be populated by the store")
	}
	if repo.createCalls != 1 {
		t.Errorf("repo.Create called %d times, want 1", repo.createCalls)
	}
	if len(col.created) != 1 || col.created[0] != "upcoming" {
		t.Errorf("RecordMatchCreated = %v, want [upcoming]", col.created)
	}
	if len(pub.published) != 1 || pub.published[0].ID != "match-id-1" {
		t.Errorf("published = %v, want the created match", pub.published)
	}
}

func TestService_Create_PastStartFutureEnd_IsLive(t *testing.T) {
	repo := &mockMatchRepo{}
	svc := newTestService(repo, &mockPublisher{}, &mockCollector{}, &bytes.Buffer{})

	m, err := svc.Create(context.Background(), CreateInput{
		StartTime: rfc3339(fixedNow.Add(-30 * time.Minute)),
		EndTime:   rfc3339(fixedNow.Add(time.Hour)),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if m.Status != model.MatchStatusLive {
		t.Errorf("Status = %q, want %q", m.Status, model.MatchStatusLive)
	}
}

func TestService_Create_PastEnd_IsCompleted(t *testing.T) {
	repo := &mockMatchRepo{}
	svc := newTestService(repo, &mockPublisher{}, &mockCollector{}, &bytes.Buffer{})

	m, err := svc.Create(context.Background(), CreateInput{
		StartTime: rfc3339(fixedNow.Add(-3 * time.Hour)),
		EndTime:   rfc3339(fixedNow.Add(-time.Hour)),
		HomeScore: intPtr(3),
		AwayScore: intPtr(1),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if m.Status != model.MatchStatusCompleted {
		t.Errorf("Status = %q, want %q", m.Status, model.MatchStatusCompleted)
	}
	if m.HomeScore != 3 || m.AwayScore != 1 {
		t.Errorf("scores = %d-%d, want 3-1", m.HomeScore, m.AwayScore)
	}
}

func TestService_Create_DefaultsScoresToZero(t *testing.T) {
	var stored *model.Match
	repo := &mockMatchRepo{
		createFn: func(ctx context.Context, m *model.Match) error {
			stored = m
			return nil
		},
	}
	svc := newTestService(repo, &mockPublisher{}, &mockCollector{}, &bytes.Buffer{})

	_, err := svc.Create(context.Background(), CreateInput{
		StartTime: rfc3339(fixedNow.Add(time.Hour)),
		EndTime:   rfc3339(fixedNow.Add(2 * time.Hour)),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if stored == nil {
		t.Fatal("repo.Create was not called")
	}
	if stored.HomeScore != 0 || stored.AwayScore != 0 {
		t.Errorf("scores = %d-%d, want 0-0", stored.HomeScore, stored.AwayScore)
	}
}

// TestService_Create_InvalidInput_DoesNotTouchStore はバリデーション失敗時にストアへアクセスしないことを検証する。
func TestService_Create_InvalidInput_DoesNotTouchStore(t *testing.T) {
	repo := &mockMatchRepo{}
	pub := &mockPublisher{}
	svc := newTestService(repo, pub, &mockCollector{}, &bytes.Buffer{})

	m, err := svc.Create(context.Background(), CreateInput{
		EndTime: rfc3339(fixedNow.Add(time.Hour)),
	})
	if m != nil {
		t.Errorf("match = %+v, want nil", m)
	}
	fields := requireAPIError(t, err, model.ErrCodeInvalidMatchData)
	if !containsField(fields, "startTime") {
		t.Errorf("violated fields = %v, want startTime", fields)
	}
	if repo.createCalls != 0 {
		t.Errorf("repo.Create called %d times, want 0", repo.createCalls)
	}
	if len(pub.published) != 0 {
		t.Errorf("published %d events, want 0", len(pub.published))
	}
}

func TestService_Create_StoreError_ReturnsWrappedError(t *testing.T) {
	sentinel := errors.New("connection reset")
	repo := &mockMatchRepo{
		createFn: func(ctx context.Context, m *model.Match) error { return sentinel },
	}
	pub := &mockPublisher{}
	col := &mockCollector{}
	svc := newTestService(repo, pub, col, &bytes.Buffer{})

	_, err := svc.Create(context.Background(), CreateInput{
		StartTime: rfc3339(fixedNow.Add(time.Hour)),
		EndTime:   rfc3339(fixedNow.Add(2 * time.Hour)),
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("error = %v, want wrapping %v", err, sentinel)
	}
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		t.Errorf("store error must not be an APIError, got %v", apiErr)
	}
	if len(col.storeErrors) != 1 || col.storeErrors[0] != "insert" {
		t.Errorf("RecordStoreError = %v, want [insert]", col.storeErrors)
	}
	if len(pub.published) != 0 {
		t.Errorf("published %d events, want 0", len(pub.published))
	}
}

// TestService_Create_PublishFailure_StillSucceeds はイベント配信失敗が作成結果に影響しないことを検証する。
func TestService_Create_PublishFailure_StillSucceeds(t *testing.T) {
	var logBuf bytes.Buffer
	pub := &mockPublisher{err: errors.New("redis down")}
	col := &mockCollector{}
	svc := newTestService(&mockMatchRepo{}, pub, col, &logBuf)

	m, err := svc.Create(context.Background(), CreateInput{
		StartTime: rfc3339(fixedNow.Add(time.Hour)),
		EndTime:   rfc3339(fixedNow.Add(2 * time.Hour)),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if m == nil {
		t.Fatal("expected created match")
	}
	if col.publishFailure != 1 {
		t.Errorf("RecordEventPublishFailure called %d times, want 1", col.publishFailure)
	}
	if !bytes.Contains(logBuf.Bytes(), []byte("failed to publish match event")) {
		t.Errorf("expected warning log, got %s", logBuf.String())
	}
}

func TestNewService_NilOptionalDependencies(t *testing.T) {
	svc := NewService(&mockMatchRepo{}, newTestValidator(), nil, nil, nil)

	_, err := svc.Create(context.Background(), CreateInput{
		StartTime: rfc3339(time.Now().Add(time.Hour)),
		EndTime:   rfc3339(time.Now().Add(2 * time.Hour)),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
}

// --- List ---

func TestService_List_DefaultLimit(t *testing.T) {
	repo := &mockMatchRepo{}
	svc := newTestService(repo, &mockPublisher{}, &mockCollector{}, &bytes.Buffer{})

	got, err := svc.List(context.Background(), url.Values{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("matches = %v, want empty slice", got)
	}
	if repo.lastLimit != DefaultListLimit {
		t.Errorf("limit = %d, want %d", repo.lastLimit, DefaultListLimit)
	}
}

func TestService_List_CapsLimit(t *testing.T) {
	repo := &mockMatchRepo{}
	svc := newTestService(repo, &mockPublisher{}, &mockCollector{}, &bytes.Buffer{})

	if _, err := svc.List(context.Background(), url.Values{"limit": {"1000"}}); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if repo.lastLimit != MaxListLimit {
		t.Errorf("limit = %d, want %d", repo.lastLimit, MaxListLimit)
	}
}

func TestService_List_InvalidLimit_DoesNotTouchStore(t *testing.T) {
	for _, raw := range []string{"0", "-1", "ten"} {
		t.Run(raw, func(t *testing.T) {
			repo := &mockMatchRepo{}
			svc := newTestService(repo, &mockPublisher{}, &mockCollector{}, &bytes.Buffer{})

			_, err := svc.List(context.Background(), url.Values{"limit": {raw}})
			requireAPIError(t, err, model.ErrCodeInvalidQuery)
			if repo.listCalls != 0 {
				t.Errorf("repo.ListRecent called %d times, want 0", repo.listCalls)
			}
		})
	}
}

func TestService_List_StoreError(t *testing.T) {
	sentinel := errors.New("timeout")
	repo := &mockMatchRepo{
		listRecentFn: func(ctx context.Context, limit int) ([]*model.Match, error) {
			return nil, sentinel
		},
	}
	col := &mockCollector{}
	svc := newTestService(repo, &mockPublisher{}, col, &bytes.Buffer{})

	_, err := svc.List(context.Background(), url.Values{})
	if !errors.Is(err, sentinel) {
		t.Fatalf("error = %v, want wrapping %v", err, sentinel)
	}
	if len(col.storeErrors) != 1 || col.storeErrors[0] != "list" {
		t.Errorf("RecordStoreError = %v, want [list]", col.storeErrors)
	}
}

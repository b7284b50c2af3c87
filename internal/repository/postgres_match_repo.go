package repository

import (
	"context"
	"fmt"

	"github.com/hitoshi/sportz/internal/model"
)

const matchColumns = `id, sport, home_team, away_team, start_time, end_time,
		        home_score, away_score, status, created_at`

// PostgresMatchRepo はPostgreSQLを使用した試合リポジトリ。
type PostgresMatchRepo struct {
	db Querier
}

// NewPostgresMatchRepo はPostgresMatchRepoを生成する。
func NewPostgresMatchRepo(db Querier) *PostgresMatchRepo {
	return &PostgresMatchRepo{db: db}
}

// Create は試合を1件挿入し、ストアが採番したcreated_atをmatchに書き戻す。
// 単一のINSERT文のため、失敗時に部分的な行は残らない。
func (r *PostgresMatchRepo) Create(ctx context.Context, match *model.Match) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO matches (id, sport, home_team, away_team, start_time, end_time,
		                      home_score, away_score, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at`,
		match.ID, match.Sport, match.HomeTeam, match.AwayTeam,
		match.StartTime, match.EndTime,
		match.HomeScore, match.AwayScore, match.Status,
	).Scan(&match.CreatedAt)
	if err != nil {
		return fmt.Errorf("試合の作成に失敗しました: %w", err)
	}
	return nil
}

// ListRecent は作成日時の降順で最大limit件の試合を返す。
func (r *PostgresMatchRepo) ListRecent(ctx context.Context, limit int) ([]*model.Match, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+matchColumns+`
		 FROM matches
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("試合一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	matches := make([]*model.Match, 0, limit)
	for rows.Next() {
		m := &model.Match{}
		if err := rows.Scan(
			&m.ID, &m.Sport, &m.HomeTeam, &m.AwayTeam,
			&m.StartTime, &m.EndTime,
			&m.HomeScore, &m.AwayScore, &m.Status, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("試合の読み取りに失敗しました: %w", err)
		}
		matches = append(matches, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("試合一覧の走査に失敗しました: %w", err)
	}

	return matches, nil
}

// compile-time interface check
var _ MatchRepository = (*PostgresMatchRepo)(nil)

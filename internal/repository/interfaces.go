// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"database/sql"

	"github.com/hitoshi/sportz/internal/model"
)

// MatchRepository は試合データの永続化インターフェース。
// 試合は作成のみ行い、更新・削除は提供しない。
type MatchRepository interface {
	// Create は試合を1件挿入する。
	// created_atはストア側で採番され、挿入後のmatch.CreatedAtに反映される。
	Create(ctx context.Context, match *model.Match) error

	// ListRecent は作成日時の降順で最大limit件の試合を返す。
	// 該当がない場合は空スライスを返す。
	ListRecent(ctx context.Context, limit int) ([]*model.Match, error)
}

// Querier はSQL実行を抽象化するインターフェース。
// *sql.DB と *sql.Tx のどちらも受け付ける。
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

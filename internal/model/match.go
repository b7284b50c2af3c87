// Package model はドメインモデルを定義する。
package model

import "time"

// MatchStatus は試合のライフサイクル状態を表す。
type MatchStatus string

const (
	// MatchStatusUpcoming は開始前の試合。
	MatchStatusUpcoming MatchStatus = "upcoming"
	// MatchStatusLive は開催中の試合。
	MatchStatusLive MatchStatus = "live"
	// MatchStatusCompleted は終了した試合。
	MatchStatusCompleted MatchStatus = "completed"
)

// Match はスポーツの試合1件を表す。
// Statusは作成時に一度だけ算出され、以後再計算されない。
type Match struct {
	ID        string      `json:"id"`
	Sport     string      `json:"sport"`
	HomeTeam  string      `json:"homeTeam"`
	AwayTeam  string      `json:"awayTeam"`
	StartTime time.Time   `json:"startTime"`
	EndTime   time.Time   `json:"endTime"`
	HomeScore int         `json:"homeScore"`
	AwayScore int         `json:"awayScore"`
	Status    MatchStatus `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
}

// DeriveStatus は開始・終了時刻と基準時刻nowから試合の状態を算出する。
//
//	now < start          → upcoming
//	start <= now <= end  → live
//	now > end            → completed
//
// 境界（now == start, now == end）はいずれもliveとなる。
func DeriveStatus(start, end, now time.Time) MatchStatus {
	if now.Before(start) {
		return MatchStatusUpcoming
	}
	if now.After(end) {
		return MatchStatusCompleted
	}
	return MatchStatusLive
}

// Valid はstatusが定義済みの値であるかを返す。
func (s MatchStatus) Valid() bool {
	switch s {
	case MatchStatusUpcoming, MatchStatusLive, MatchStatusCompleted:
		return true
	}
	return false
}

// Package model はドメインモデルを定義する。
package model

import "time"

// CachedCollection はキャッシュ済みコレクションのメタデータを表す。
// ゲームレコード本体はgamesテーブルに保持し、ここでは取得時刻と件数のみを持つ。
type CachedCollection struct {
	Username     string
	GameCount    int
	SkippedCount int
	FetchedAt    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsFresh は取得時刻がTTL以内かを返す。
func (c *CachedCollection) IsFresh(ttl time.Duration, now time.Time) bool {
	return now.Sub(c.FetchedAt) < ttl
}

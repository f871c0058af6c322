// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/davidhorm/bgg-what-to-play-sub000/internal/model"
)

// CollectionRepository はコレクションキャッシュメタデータの永続化インターフェース。
type CollectionRepository interface {
	// FindByUsername は指定ユーザーのキャッシュメタデータを取得する。
	// 見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.CachedCollection, error)

	// Upsert はキャッシュメタデータを冪等にUPSERTする。
	// 既存行がある場合はfetched_at、game_count、skipped_countを更新する。
	Upsert(ctx context.Context, coll *model.CachedCollection) error

	// ListStale はfetched_atがolderThanより古いユーザー名を古い順に返す。
	// バックグラウンドリフレッシュの対象選定に使用する。
	ListStale(ctx context.Context, olderThan time.Time, limit int) ([]string, error)

	// DeleteByUsername は指定ユーザーのキャッシュを削除する。
	// 関連するcollection_gamesはCASCADE削除される。
	DeleteByUsername(ctx context.Context, username string) error
}

// GameRepository はゲームレコードの永続化インターフェース。
// レコード本体はJSONBで丸ごと保存し、コレクションとの対応は
// 取得順を保持する対応表で持つ。
type GameRepository interface {
	// UpsertGames はゲームレコードを冪等にUPSERTする。
	UpsertGames(ctx context.Context, games []model.GameRecord) error

	// ReplaceCollectionGames は指定ユーザーのコレクション対応表を
	// 同一トランザクションで丸ごと入れ替える。gameIDsの順序が保存される。
	ReplaceCollectionGames(ctx context.Context, username string, gameIDs []int) error

	// ListByUsername は指定ユーザーのコレクションのゲームレコードを
	// 保存時の順序で返す。
	ListByUsername(ctx context.Context, username string) ([]model.GameRecord, error)
}

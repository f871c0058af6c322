package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/davidhorm/bgg-what-to-play-sub000/internal/model"
)

// PostgresCollectionRepo はPostgreSQLを使用したコレクションリポジトリ。
type PostgresCollectionRepo struct {
	db *sql.DB
}

// NewPostgresCollectionRepo はPostgresCollectionRepoを生成する。
func NewPostgresCollectionRepo(db *sql.DB) *PostgresCollectionRepo {
	return &PostgresCollectionRepo{db: db}
}

// FindByUsername は指定ユーザーのキャッシュメタデータを取得する。見つからない場合はnilを返す。
func (r *PostgresCollectionRepo) FindByUsername(ctx context.Context, username string) (*model.CachedCollection, error) {
	coll := &model.CachedCollection{}

	err := r.db.QueryRowContext(ctx,
		`SELECT username, game_count, skipped_count, fetched_at, created_at, updated_at
		 FROM collections WHERE username = $1`,
		username,
	).Scan(
		&coll.Username, &coll.GameCount, &coll.SkippedCount,
		&coll.FetchedAt, &coll.CreatedAt, &coll.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("コレクションの取得に失敗しました: %w", err)
	}

	return coll, nil
}

// Upsert はキャッシュメタデータを冪等にUPSERTする。
func (r *PostgresCollectionRepo) Upsert(ctx context.Context, coll *model.CachedCollection) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO collections (username, game_count, skipped_count, fetched_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, now(), now())
		 ON CONFLICT (username) DO UPDATE SET
		    game_count = EXCLUDED.game_count,
		    skipped_count = EXCLUDED.skipped_count,
		    fetched_at = EXCLUDED.fetched_at,
		    updated_at = now()`,
		coll.Username, coll.GameCount, coll.SkippedCount, coll.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("コレクションのUPSERTに失敗しました: %w", err)
	}
	return nil
}

// ListStale はfetched_atがolderThanより古いユーザー名を古い順に返す。
func (r *PostgresCollectionRepo) ListStale(ctx context.Context, olderThan time.Time, limit int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT username FROM collections
		 WHERE fetched_at < $1
		 ORDER BY fetched_at ASC
		 LIMIT $2`,
		olderThan, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("リフレッシュ対象コレクションの取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var usernames []string
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, fmt.Errorf("リフレッシュ対象コレクションの読み取りに失敗しました: %w", err)
		}
		usernames = append(usernames, username)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("リフレッシュ対象コレクションの走査に失敗しました: %w", err)
	}

	return usernames, nil
}

// DeleteByUsername は指定ユーザーのキャッシュを削除する。
func (r *PostgresCollectionRepo) DeleteByUsername(ctx context.Context, username string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM collections WHERE username = $1`,
		username,
	)
	if err != nil {
		return fmt.Errorf("コレクションの削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ CollectionRepository = (*PostgresCollectionRepo)(nil)

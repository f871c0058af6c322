package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/davidhorm/bgg-what-to-play-sub000/internal/model"
)

// PostgresGameRepo はPostgreSQLを使用したゲームリポジトリ。
// レコード本体はJSONBで保存する。非有限値（NaN、-Inf）は
// GameRecordのカスタムJSON変換によりnullへ写像されるため、
// JSONBにそのまま保存・復元できる。
type PostgresGameRepo struct {
	db *sql.DB
}

// NewPostgresGameRepo はPostgresGameRepoを生成する。
func NewPostgresGameRepo(db *sql.DB) *PostgresGameRepo {
	return &PostgresGameRepo{db: db}
}

// UpsertGames はゲームレコードを冪等にUPSERTする。
func (r *PostgresGameRepo) UpsertGames(ctx context.Context, games []model.GameRecord) error {
	if len(games) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO games (id, record, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (id) DO UPDATE SET
		    record = EXCLUDED.record,
		    updated_at = now()`,
	)
	if err != nil {
		return fmt.Errorf("ゲームUPSERT文の準備に失敗しました: %w", err)
	}
	defer stmt.Close()

	for _, game := range games {
		record, err := json.Marshal(game)
		if err != nil {
			return fmt.Errorf("ゲームレコードのエンコードに失敗しました: id=%d: %w", game.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, game.ID, record); err != nil {
			return fmt.Errorf("ゲームのUPSERTに失敗しました: id=%d: %w", game.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ゲームUPSERTのコミットに失敗しました: %w", err)
	}
	return nil
}

// ReplaceCollectionGames は指定ユーザーのコレクション対応表を丸ごと入れ替える。
// positionカラムでgameIDsの順序を保存する。
func (r *PostgresGameRepo) ReplaceCollectionGames(ctx context.Context, username string, gameIDs []int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM collection_games WHERE username = $1`,
		username,
	); err != nil {
		return fmt.Errorf("コレクション対応表の削除に失敗しました: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO collection_games (username, game_id, position)
		 VALUES ($1, $2, $3)`,
	)
	if err != nil {
		return fmt.Errorf("コレクション対応表INSERT文の準備に失敗しました: %w", err)
	}
	defer stmt.Close()

	for position, gameID := range gameIDs {
		if _, err := stmt.ExecContext(ctx, username, gameID, position); err != nil {
			return fmt.Errorf("コレクション対応表のINSERTに失敗しました: game_id=%d: %w", gameID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("コレクション対応表のコミットに失敗しました: %w", err)
	}
	return nil
}

// ListByUsername は指定ユーザーのコレクションのゲームレコードを保存時の順序で返す。
func (r *PostgresGameRepo) ListByUsername(ctx context.Context, username string) ([]model.GameRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT g.record
		 FROM collection_games cg
		 INNER JOIN games g ON g.id = cg.game_id
		 WHERE cg.username = $1
		 ORDER BY cg.position ASC`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("コレクションのゲーム取得に失敗しました: %w", err)
	}
	defer rows.Close()

	games := []model.GameRecord{}
	for rows.Next() {
		var record []byte
		if err := rows.Scan(&record); err != nil {
			return nil, fmt.Errorf("ゲームレコードの読み取りに失敗しました: %w", err)
		}
		var game model.GameRecord
		if err := json.Unmarshal(record, &game); err != nil {
			return nil, fmt.Errorf("ゲームレコードのデコードに失敗しました: %w", err)
		}
		games = append(games, game)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ゲームレコードの走査に失敗しました: %w", err)
	}

	return games, nil
}

// compile-time interface check
var _ GameRepository = (*PostgresGameRepo)(nil)

// Package cleanup はコレクションキャッシュの自動削除ジョブを提供する。
// 保持期間（デフォルト90日）を超えて再取得されていないコレクションと、
// どのコレクションからも参照されなくなったゲームレコードを日次バッチで削除する。
// collection_gamesはCASCADE削除で自動的に処理される。
package cleanup

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Executor はSQLのExecContextを抽象化するインターフェース。
// *sql.DB や *sql.Tx を受け付けることができる。
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// CleanupJob は保持期間を超過したコレクションキャッシュの自動削除ジョブ。
// 日次実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type CleanupJob struct {
	db            Executor
	logger        *slog.Logger
	RetentionDays int // コレクションの保持日数（デフォルト: 90）
}

// NewCleanupJob は新しいCleanupJobを生成する。
// デフォルトの保持日数は90日。
func NewCleanupJob(db Executor, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		db:            db,
		logger:        logger,
		RetentionDays: 90,
	}
}

// Run は保持期間を超過したコレクションを削除し、孤立したゲームレコードを
// 回収する。fetched_atがRetentionDays日前より古いコレクションをDELETEする。
// collection_gamesはCASCADE削除により自動的に削除される。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	interval := fmt.Sprintf("%d days", j.RetentionDays)

	query := `DELETE FROM collections WHERE fetched_at < now() - $1::interval`
	result, err := j.db.ExecContext(ctx, query, interval)
	if err != nil {
		j.logger.Error("コレクションクリーンアップジョブの実行に失敗しました",
			slog.String("error", err.Error()),
			slog.Int("retention_days", j.RetentionDays),
		)
		return fmt.Errorf("コレクションクリーンアップの実行に失敗: %w", err)
	}

	deletedCollections, err := result.RowsAffected()
	if err != nil {
		j.logger.Error("削除件数の取得に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("削除件数の取得に失敗: %w", err)
	}

	// どのコレクションからも参照されなくなったゲームを回収する
	orphanQuery := `DELETE FROM games WHERE NOT EXISTS (
		SELECT 1 FROM collection_games WHERE collection_games.game_id = games.id
	)`
	orphanResult, err := j.db.ExecContext(ctx, orphanQuery)
	if err != nil {
		j.logger.Error("孤立ゲームレコードの削除に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("孤立ゲームレコードの削除に失敗: %w", err)
	}

	deletedGames, err := orphanResult.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除件数の取得に失敗: %w", err)
	}

	duration := time.Since(start)
	j.logger.Info("コレクションクリーンアップジョブが完了しました",
		slog.Int64("deleted_collections", deletedCollections),
		slog.Int64("deleted_games", deletedGames),
		slog.Int("retention_days", j.RetentionDays),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

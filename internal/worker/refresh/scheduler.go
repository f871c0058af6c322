// Package refresh はコレクションキャッシュのバックグラウンド再取得を提供する。
// 期限切れキャッシュを定期的に検出し、並列制御しながらカタログから再取得する。
package refresh

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// StaleLister は再取得対象ユーザーの列挙インターフェース。
type StaleLister interface {
	// ListStale はfetched_atがolderThanより古いユーザー名を古い順に返す。
	ListStale(ctx context.Context, olderThan time.Time, limit int) ([]string, error)
}

// CollectionRefresher はコレクション再取得の実行インターフェース。
type CollectionRefresher interface {
	// Refresh はキャッシュを無視してカタログから再取得する。
	Refresh(ctx context.Context, username string) error
}

// RefresherFunc は関数をCollectionRefresherとして使うためのアダプタ。
type RefresherFunc func(ctx context.Context, username string) error

// Refresh はCollectionRefresherを実装する。
func (f RefresherFunc) Refresh(ctx context.Context, username string) error {
	return f(ctx, username)
}

// Scheduler はコレクション再取得のスケジューリングと並列制御を行う。
// ティッカーで期限切れキャッシュを取得し、semaphoreパターンで
// 最大並列数を制御しながら再取得を実行する。
type Scheduler struct {
	lister         StaleLister
	refresher      CollectionRefresher
	logger         *slog.Logger
	staleAfter     time.Duration
	batchSize      int
	maxConcurrency int
}

// NewScheduler はSchedulerの新しいインスタンスを生成する。
// maxConcurrencyが0以下の場合はデフォルト値4、batchSizeが0以下の場合は
// デフォルト値50を使用する。カタログAPIのレート制限を尊重するため、
// 並列数はHTTPワーカーより控えめに設定する。
func NewScheduler(
	lister StaleLister,
	refresher CollectionRefresher,
	logger *slog.Logger,
	staleAfter time.Duration,
	batchSize int,
	maxConcurrency int,
) *Scheduler {
	if maxConcurrency <= 0 {
		maxConcurrency = 4
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Scheduler{
		lister:         lister,
		refresher:      refresher,
		logger:         logger,
		staleAfter:     staleAfter,
		batchSize:      batchSize,
		maxConcurrency: maxConcurrency,
	}
}

// Start は指定間隔のティッカーでスケジューラを起動する。
// コンテキストがキャンセルされるまで実行を継続する。
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("再取得スケジューラを開始しました",
		slog.Duration("interval", interval),
		slog.Int("max_concurrency", s.maxConcurrency),
	)

	// 起動直後に1回実行
	if err := s.RunOnce(ctx); err != nil {
		s.logger.Error("再取得サイクルの実行に失敗しました",
			slog.String("error", err.Error()),
		)
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("再取得スケジューラを停止しました")
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.logger.Error("再取得サイクルの実行に失敗しました",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// RunOnce は期限切れキャッシュを1回取得し、並列で再取得を実行する。
// semaphoreパターンで最大並列数を制御する。個別ユーザーの失敗は
// ログのみ残してサイクルを継続する。
func (s *Scheduler) RunOnce(ctx context.Context) error {
	start := time.Now()

	usernames, err := s.lister.ListStale(ctx, start.Add(-s.staleAfter), s.batchSize)
	if err != nil {
		return err
	}

	if len(usernames) == 0 {
		s.logger.Info("再取得対象のコレクションはありません")
		return nil
	}

	s.logger.Info("再取得サイクルを開始します",
		slog.Int("collection_count", len(usernames)),
	)

	// semaphoreパターンで並列数を制御
	sem := make(chan struct{}, s.maxConcurrency)
	var wg sync.WaitGroup

	for _, username := range usernames {
		wg.Add(1)
		sem <- struct{}{} // semaphore取得（ブロック）

		go func(name string) {
			defer wg.Done()
			defer func() { <-sem }() // semaphore解放

			if err := s.refresher.Refresh(ctx, name); err != nil {
				s.logger.Error("コレクション再取得に失敗しました",
					slog.String("username", name),
					slog.String("error", err.Error()),
				)
			}
		}(username)
	}

	wg.Wait()

	duration := time.Since(start)
	s.logger.Info("再取得サイクルが完了しました",
		slog.Int("collection_count", len(usernames)),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// Package game はコレクション取得・キャッシュのドメインロジックを提供する。
package game

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"time"

	"github.com/davidhorm/bgg-what-to-play-sub000/internal/collection"
	"github.com/davidhorm/bgg-what-to-play-sub000/internal/metrics"
	"github.com/davidhorm/bgg-what-to-play-sub000/internal/model"
	"github.com/davidhorm/bgg-what-to-play-sub000/internal/repository"
)

// DefaultCacheTTL はコレクションキャッシュのデフォルト有効期間。
const DefaultCacheTTL = 24 * time.Hour

// usernamePattern はカタログのユーザー名として受け付ける形式。
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_][a-zA-Z0-9_ .-]{0,63}$`)

// CatalogClient はカタログAPIフェッチのインターフェース。
// テスタビリティのためbgg.Clientを抽象化する。
type CatalogClient interface {
	FetchCollection(ctx context.Context, username string) ([]model.RawCollectionEntry, error)
	FetchThings(ctx context.Context, ids []int) ([]model.RawThingRecord, error)
}

// CollectionResult はコレクション取得の結果。
type CollectionResult struct {
	Username     string
	Games        []model.GameRecord
	FetchedAt    time.Time
	SkippedCount int
	FromCache    bool
}

// Service はコレクション取得のサービス層。
// キャッシュ確認 → カタログフェッチ → レコードビルド → 保存のフローを統括する。
type Service struct {
	collRepo  repository.CollectionRepository
	gameRepo  repository.GameRepository
	catalog   CatalogClient
	collector metrics.MetricsCollector
	logger    *slog.Logger
	cacheTTL  time.Duration
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
// cacheTTLが0以下の場合はDefaultCacheTTLを使用する。
func NewService(
	collRepo repository.CollectionRepository,
	gameRepo repository.GameRepository,
	catalog CatalogClient,
	collector metrics.MetricsCollector,
	logger *slog.Logger,
	cacheTTL time.Duration,
) *Service {
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &Service{
		collRepo:  collRepo,
		gameRepo:  gameRepo,
		catalog:   catalog,
		collector: collector,
		logger:    logger,
		cacheTTL:  cacheTTL,
		now:       time.Now,
	}
}

// GetCollection はユーザーのコレクションを取得する。
// 有効期間内のキャッシュがあればそれを返し、なければカタログからフェッチする。
// forceRefreshが真の場合はキャッシュを無視してフェッチする。
// フェッチに失敗しても期限切れキャッシュが残っていればそれを返す。
func (s *Service) GetCollection(ctx context.Context, username string, forceRefresh bool) (*CollectionResult, error) {
	if !usernamePattern.MatchString(username) {
		return nil, model.NewInvalidUsernameError(username)
	}

	cached, err := s.collRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if cached != nil && !forceRefresh && cached.IsFresh(s.cacheTTL, s.now()) {
		games, err := s.gameRepo.ListByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		s.collector.RecordCacheHit()
		return &CollectionResult{
			Username:     username,
			Games:        games,
			FetchedAt:    cached.FetchedAt,
			SkippedCount: cached.SkippedCount,
			FromCache:    true,
		}, nil
	}
	s.collector.RecordCacheMiss()

	result, err := s.refresh(ctx, username)
	if err == nil {
		return result, nil
	}

	// カタログ利用不可のときのみ期限切れキャッシュへフォールバックする。
	// 検証エラーや「コレクションなし」はそのまま伝える。
	var apiErr *model.APIError
	if cached != nil && errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeCatalogUnavailable {
		s.logger.Warn("カタログ利用不可のため期限切れキャッシュを返します",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		games, listErr := s.gameRepo.ListByUsername(ctx, username)
		if listErr != nil {
			return nil, err
		}
		return &CollectionResult{
			Username:     username,
			Games:        games,
			FetchedAt:    cached.FetchedAt,
			SkippedCount: cached.SkippedCount,
			FromCache:    true,
		}, nil
	}

	return nil, err
}

// Refresh はキャッシュを無視してコレクションを再取得する。
func (s *Service) Refresh(ctx context.Context, username string) (*CollectionResult, error) {
	if !usernamePattern.MatchString(username) {
		return nil, model.NewInvalidUsernameError(username)
	}
	return s.refresh(ctx, username)
}

// evictIfGone はカタログ側にコレクションが存在しない場合にキャッシュを破棄する。
// 期限切れフォールバックで消滅済みコレクションを返し続けないようにする。
func (s *Service) evictIfGone(ctx context.Context, username string, err error) {
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeCollectionNotFound {
		return
	}
	if deleteErr := s.collRepo.DeleteByUsername(ctx, username); deleteErr != nil {
		s.logger.Warn("キャッシュの破棄に失敗しました",
			slog.String("username", username),
			slog.String("error", deleteErr.Error()),
		)
		return
	}
	s.logger.Info("カタログに存在しないコレクションのキャッシュを破棄しました",
		slog.String("username", username),
	)
}

// refresh はカタログからフェッチしてビルド・保存する。
func (s *Service) refresh(ctx context.Context, username string) (*CollectionResult, error) {
	start := s.now()

	entries, err := s.catalog.FetchCollection(ctx, username)
	if err != nil {
		s.collector.RecordCatalogFetchFailure(username, err.Error())
		s.evictIfGone(ctx, username, err)
		return nil, err
	}

	ids := make([]int, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.ObjectID)
	}

	things, err := s.catalog.FetchThings(ctx, ids)
	if err != nil {
		s.collector.RecordCatalogFetchFailure(username, err.Error())
		return nil, err
	}

	games, skipped := collection.BuildCollection(things, entries, s.logger)

	fetchedAt := s.now()
	if err := s.gameRepo.UpsertGames(ctx, games); err != nil {
		return nil, err
	}
	gameIDs := make([]int, len(games))
	for i, game := range games {
		gameIDs[i] = game.ID
	}
	if err := s.gameRepo.ReplaceCollectionGames(ctx, username, gameIDs); err != nil {
		return nil, err
	}
	if err := s.collRepo.Upsert(ctx, &model.CachedCollection{
		Username:     username,
		GameCount:    len(games),
		SkippedCount: len(skipped),
		FetchedAt:    fetchedAt,
	}); err != nil {
		return nil, err
	}

	s.collector.RecordCatalogFetchSuccess(username)
	s.collector.RecordCatalogFetchLatency(fetchedAt.Sub(start))
	s.collector.RecordGamesBuilt(len(games))
	s.collector.RecordGamesSkipped(len(skipped))

	s.logger.Info("コレクションを取得しました",
		slog.String("username", username),
		slog.Int("games", len(games)),
		slog.Int("skipped", len(skipped)),
	)

	return &CollectionResult{
		Username:     username,
		Games:        games,
		FetchedAt:    fetchedAt,
		SkippedCount: len(skipped),
		FromCache:    false,
	}, nil
}

package repository

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/davidhorm/bgg-what-to-play-sub000/internal/model"
)

// 各リポジトリがインターフェースを満たすことを検証
func TestPostgresRepos_ImplementInterfaces(t *testing.T) {
	var _ CollectionRepository = (*PostgresCollectionRepo)(nil)
	var _ GameRepository = (*PostgresGameRepo)(nil)
}

func TestNewPostgresRepos_Initialize(t *testing.T) {
	if NewPostgresCollectionRepo(nil) == nil {
		t.Fatal("expected non-nil collection repo")
	}
	if NewPostgresGameRepo(nil) == nil {
		t.Fatal("expected non-nil game repo")
	}
}

// CachedCollectionモデルのフィールドが正しく構築されることを検証
func TestCachedCollection_Fields(t *testing.T) {
	now := time.Now()
	coll := &model.CachedCollection{
		Username:     "alice",
		GameCount:    42,
		SkippedCount: 1,
		FetchedAt:    now,
	}

	if coll.Username != "alice" {
		t.Errorf("coll.Username = %q, want %q", coll.Username, "alice")
	}
	if coll.GameCount != 42 {
		t.Errorf("coll.GameCount = %d, want 42", coll.GameCount)
	}
}

// JSONB保存に使うレコードのエンコードが非有限値を扱えることを検証。
// 得票0件のゲームはNaNパーセントと-Infスコアを持つが、
// カスタムJSON変換によりnullへ写像されるためJSONBに保存できる。
func TestGameRecord_JSONBRoundTrip(t *testing.T) {
	game := model.GameRecord{
		ID:            13,
		Subtype:       model.SubtypeBoardgame,
		Name:          "Catan",
		MinPlayers:    3,
		MaxPlayers:    4,
		AverageRating: model.RatingOf(7.1),
		UserRating:    model.RatingNA(),
		RecommendedPlayerCount: []model.PlayerCountRecommendation{
			{
				PlayerCountValue:      3,
				PlayerCountLabel:      "3",
				BestPercent:           math.NaN(),
				RecommendedPercent:    math.NaN(),
				NotRecommendedPercent: math.NaN(),
				SortScore:             math.Inf(-1),
			},
		},
	}

	record, err := json.Marshal(game)
	if err != nil {
		t.Fatalf("非有限値を含むレコードのエンコードに失敗: %v", err)
	}

	var restored model.GameRecord
	if err := json.Unmarshal(record, &restored); err != nil {
		t.Fatalf("レコードのデコードに失敗: %v", err)
	}

	if diff := cmp.Diff(game, restored, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("ラウンドトリップ不一致 (-want +got):\n%s", diff)
	}
}

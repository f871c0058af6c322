package collection

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/davidhorm/bgg-what-to-play-sub000/internal/model"
)

// pipelineFixture はパイプラインの全ステージを通過させるゲーム群を返す。
func pipelineFixture() []model.GameRecord {
	solo := model.GameRecord{
		ID: 1, Subtype: model.SubtypeBoardgame, Name: "Solo Quest",
		MinPlayers: 1, MaxPlayers: 1, MinPlaytime: 30, MaxPlaytime: 60,
		AverageWeight: 2.1, AverageRating: model.RatingOf(7.5),
		RecommendedPlayerCount: []model.PlayerCountRecommendation{
			{PlayerCountValue: 1, PlayerCountLabel: "1", Best: 30, BestPercent: 90, RecommendedPercent: 10, NotRecommendedPercent: 0, SortScore: 103},
		},
	}
	party := model.GameRecord{
		ID: 2, Subtype: model.SubtypeBoardgame, Name: "Party Pack",
		MinPlayers: 3, MaxPlayers: 8, MinPlaytime: 20, MaxPlaytime: 45,
		AverageWeight: 1.2, AverageRating: model.RatingOf(6.8),
		RecommendedPlayerCount: []model.PlayerCountRecommendation{
			{PlayerCountValue: 4, PlayerCountLabel: "4", Best: 12, BestPercent: 60, RecommendedPercent: 30, NotRecommendedPercent: 10, SortScore: 88},
			{PlayerCountValue: 9, PlayerCountLabel: "8+", Best: 0, BestPercent: 0, RecommendedPercent: 0, NotRecommendedPercent: 100, SortScore: 0},
		},
	}
	expansion := model.GameRecord{
		ID: 3, Subtype: model.SubtypeExpansion, Name: "Party Pack: More Cards",
		MinPlayers: 3, MaxPlayers: 8, MinPlaytime: 20, MaxPlaytime: 45,
		AverageWeight: 1.3, AverageRating: model.RatingOf(7.0),
	}
	return []model.GameRecord{solo, party, expansion}
}

func TestApplyFiltersAndSorts_Idempotence(t *testing.T) {
	games := pipelineFixture()
	fs := model.DefaultFilterState()
	fs.PlayerCountRange = model.Range{Min: 3, Max: 5}
	spec := model.SortSpec{{Dimension: model.SortByName, Direction: model.SortAsc}}

	apply := ApplyFiltersAndSorts(fs, spec)

	first := apply(games)
	second := apply(games)

	if diff := cmp.Diff(first, second, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("同一入力への再適用は構造的に同一の結果を返すべき (-first +second):\n%s", diff)
	}
}

func TestApplyFiltersAndSorts_DoesNotMutateInput(t *testing.T) {
	games := pipelineFixture()
	original := pipelineFixture()

	fs := model.DefaultFilterState()
	fs.PlayerCountRange = model.Range{Min: 3, Max: 5}
	spec := model.SortSpec{{Dimension: model.SortByRecommendation, Direction: model.SortDesc}}

	_ = ApplyFiltersAndSorts(fs, spec)(games)

	if diff := cmp.Diff(original, games, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("パイプラインは入力を変更してはならない (-want +got):\n%s", diff)
	}
}

func TestApplyFiltersAndSorts_StageComposition(t *testing.T) {
	games := pipelineFixture()

	// プレイ人数[3,5]: ソロゲームは落ち、拡張はデフォルトで非表示
	fs := model.DefaultFilterState()
	fs.PlayerCountRange = model.Range{Min: 3, Max: 5}
	spec := model.SortSpec{{Dimension: model.SortByName, Direction: model.SortAsc}}

	got := ApplyFiltersAndSorts(fs, spec)(games)
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("結果 = %+v, Party Packのみ残るべき", sortedNames(got))
	}

	// 範囲外の"8+"行（値9）はゲームのmax=8の範囲外でもあるため除去される
	if len(got[0].RecommendedPlayerCount) != 1 {
		t.Errorf("残存行数 = %d, want 1", len(got[0].RecommendedPlayerCount))
	}
	if !got[0].RecommendedPlayerCount[0].IsPlayerCountWithinRange {
		t.Errorf("値4の行はフィルタ区間[3,5]内としてアノテーションされるべき")
	}
}

func TestApplyFiltersAndSorts_ShowEverything(t *testing.T) {
	games := pipelineFixture()

	fs := model.DefaultFilterState()
	fs.ShowExpansions = true
	fs.ShowInvalidPlayerCount = true
	fs.ShowNotRecommended = true

	got := ApplyFiltersAndSorts(fs, nil)(games)
	if len(got) != 3 {
		t.Errorf("全トグル有効・最広フィルタでは全件残るべき, got %d件", len(got))
	}
}

func TestApplyFiltersAndSorts_UnpolledGameSurvivesDefaults(t *testing.T) {
	// 「おすすめ人数」投票を持たないゲームはデフォルト設定で全ステージを通過する
	unpolled := model.GameRecord{
		ID: 7, Subtype: model.SubtypeBoardgame, Name: "Fresh Release",
		MinPlayers: 1, MaxPlayers: 4, MinPlaytime: 30, MaxPlaytime: 60,
		AverageWeight: 2.0, AverageRating: model.RatingOf(7.0),
	}

	got := ApplyFiltersAndSorts(model.DefaultFilterState(), nil)([]model.GameRecord{unpolled})
	if len(got) != 1 || got[0].ID != 7 {
		t.Errorf("投票なしのゲームが既定フィルタで落ちた: %+v", got)
	}
}

func TestApplyFiltersAndSorts_EmptyInput(t *testing.T) {
	apply := ApplyFiltersAndSorts(model.DefaultFilterState(), nil)
	got := apply(nil)
	if got == nil {
		t.Error("空入力はnilではなく空スライスを返すべき")
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

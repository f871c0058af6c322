package collection

import "github.com/davidhorm/bgg-what-to-play-sub000/internal/model"

// ApplyFiltersAndSorts はフィルタ設定とソート選択を固定のステージ順で適用する
// 変換関数を返す。ステージ順は設定で並べ替え不可:
//
//	拡張フィルタ → 無効プレイ人数行の除去 → プレイ人数アノテーション+フィルタ
//	→ プレイ時間 → 複雑さ → 評価 → 非推奨フィルタ → 安定ソート
//
// 各ステージは配列全体を受け取り配列全体を返す。フィルタのみのステージは
// 生き残るレコードを変更せず、アノテーションステージは新しいレコードを
// 生成する。同一の(filterState, sortSpec, games)に対する再適用は構造的に
// 同一の結果を返す（冪等）。
func ApplyFiltersAndSorts(fs model.FilterState, spec model.SortSpec) func([]model.GameRecord) []model.GameRecord {
	return func(games []model.GameRecord) []model.GameRecord {
		games = filterExpansions(fs, games)
		games = pruneInvalidRecommendations(fs, games)
		games = annotateAndFilterPlayerCount(fs, games)
		games = filterPlaytime(fs, games)
		games = filterComplexity(fs, games)
		games = filterRatings(fs, games)
		games = filterNotRecommended(fs, games)
		return ApplySorts(fs, spec, games)
	}
}

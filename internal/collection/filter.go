package collection

import (
	"math"

	"github.com/davidhorm/bgg-what-to-play-sub000/internal/model"
)

// RangeOverlaps は2つの閉区間が重なるかを判定する。
// 包含ではなく重なり判定: どちらかの区間の端点がもう一方の区間内に
// 入っていれば真。min/maxがフィルタ境界をまたぐゲームを取りこぼさない。
// 対称: RangeOverlaps(a, b) == RangeOverlaps(b, a)。
func RangeOverlaps(entity, filter model.Range) bool {
	return entity.Min <= filter.Max && filter.Min <= entity.Max
}

// notRecommendedCutoff は「非推奨」と見なすNotRecommendedPercentの閾値。
const notRecommendedCutoff = 50.0

// filterExpansions は拡張の表示設定に従ってゲームを絞り込む。
func filterExpansions(fs model.FilterState, games []model.GameRecord) []model.GameRecord {
	if fs.ShowExpansions {
		return games
	}
	kept := make([]model.GameRecord, 0, len(games))
	for _, g := range games {
		if g.Subtype == model.SubtypeBoardgame {
			kept = append(kept, g)
		}
	}
	return kept
}

// pruneInvalidRecommendations はゲーム自身のmin/maxプレイ人数の範囲外にある
// 推奨行を取り除く。ShowInvalidPlayerCountが有効な場合は全行を残す。
// 残すゲームのレコードは新しく生成し、入力は変更しない。
func pruneInvalidRecommendations(fs model.FilterState, games []model.GameRecord) []model.GameRecord {
	if fs.ShowInvalidPlayerCount {
		return games
	}
	out := make([]model.GameRecord, len(games))
	for i, g := range games {
		kept := make([]model.PlayerCountRecommendation, 0, len(g.RecommendedPlayerCount))
		for _, rec := range g.RecommendedPlayerCount {
			if g.MinPlayers <= rec.PlayerCountValue && rec.PlayerCountValue <= g.MaxPlayers {
				kept = append(kept, rec)
			}
		}
		g.RecommendedPlayerCount = kept
		out[i] = g
	}
	return out
}

// annotateAndFilterPlayerCount はプレイ人数フィルタを適用する。
// ゲーム単位ではmin/max区間とフィルタ区間の重なりで判定し、minPlayers=0
// （人数未設定のカタログレコード）はShowInvalidPlayerCount有効時のみ通す。
// あわせて各推奨行のIsPlayerCountWithinRangeをフィルタ区間への含有で
// 設定する（行の除去はしない。下流のチャート強調用アノテーション）。
// アノテーションは新しいレコード・新しいスライスに対して行う。
func annotateAndFilterPlayerCount(fs model.FilterState, games []model.GameRecord) []model.GameRecord {
	kept := make([]model.GameRecord, 0, len(games))
	for _, g := range games {
		gameRange := model.Range{Min: float64(g.MinPlayers), Max: float64(g.MaxPlayers)}
		if !RangeOverlaps(gameRange, fs.PlayerCountRange) && !(fs.ShowInvalidPlayerCount && g.MinPlayers == 0) {
			continue
		}

		recs := make([]model.PlayerCountRecommendation, len(g.RecommendedPlayerCount))
		for i, rec := range g.RecommendedPlayerCount {
			rec.IsPlayerCountWithinRange = fs.PlayerCountRange.Contains(float64(rec.PlayerCountValue))
			recs[i] = rec
		}
		g.RecommendedPlayerCount = recs
		kept = append(kept, g)
	}
	return kept
}

// filterPlaytime はプレイ時間区間の重なりでゲームを絞り込む。
func filterPlaytime(fs model.FilterState, games []model.GameRecord) []model.GameRecord {
	kept := make([]model.GameRecord, 0, len(games))
	for _, g := range games {
		gameRange := model.Range{Min: float64(g.MinPlaytime), Max: float64(g.MaxPlaytime)}
		if RangeOverlaps(gameRange, fs.PlaytimeRange) {
			kept = append(kept, g)
		}
	}
	return kept
}

// filterComplexity は複雑さ（ウェイト）でゲームを絞り込む。
// ウェイト0はデータなしを意味し、フィルタ下限が絶対下限（1）のままで
// あれば通す。未評価ゲームがデフォルトの最広フィルタで消えないための例外。
func filterComplexity(fs model.FilterState, games []model.GameRecord) []model.GameRecord {
	kept := make([]model.GameRecord, 0, len(games))
	for _, g := range games {
		if g.AverageWeight == 0 && fs.ComplexityRange.Min == model.ComplexityFloor {
			kept = append(kept, g)
			continue
		}
		weightRange := model.Range{Min: g.AverageWeight, Max: g.AverageWeight}
		if RangeOverlaps(weightRange, fs.ComplexityRange) {
			kept = append(kept, g)
		}
	}
	return kept
}

// filterRatings は表示モードに応じた評価値でゲームを絞り込む。
// 評価が非数値または未設定の場合は次元の絶対下限（1）として比較するため、
// フィルタ下限がデフォルトの床にある限り常に通過する。
// 評価非表示モードではこのフィルタは適用されない。
func filterRatings(fs model.FilterState, games []model.GameRecord) []model.GameRecord {
	if fs.RatingMode == model.RatingModeNone {
		return games
	}
	kept := make([]model.GameRecord, 0, len(games))
	for _, g := range games {
		v := filterRatingValue(fs.RatingMode, &g)
		if RangeOverlaps(model.Range{Min: v, Max: v}, fs.RatingsRange) {
			kept = append(kept, g)
		}
	}
	return kept
}

// filterRatingValue はフィルタ比較に使う評価値を返す。
func filterRatingValue(mode model.RatingMode, g *model.GameRecord) float64 {
	rating := g.AverageRating
	if mode == model.RatingModeUser {
		rating = g.UserRating
	}
	if !rating.Valid {
		return model.RatingsFloor
	}
	return rating.Value
}

// filterNotRecommended は「非推奨」ゲームの表示設定に従って絞り込む。
// 表示トグルのいずれかが有効なら全件通す。それ以外は、アクティブな
// プレイ人数区間内の推奨行のうち、NotRecommendedPercentが50%以下または
// NaN（データなしは「非推奨」ではなく許容扱い）の行が1つでもあれば残す。
// 区間内の推奨行が1つもないゲームは投票データなしとして残す。
func filterNotRecommended(fs model.FilterState, games []model.GameRecord) []model.GameRecord {
	if fs.ShowNotRecommended || fs.ShowInvalidPlayerCount {
		return games
	}
	kept := make([]model.GameRecord, 0, len(games))
	for _, g := range games {
		inRange := 0
		acceptable := false
		for _, rec := range g.RecommendedPlayerCount {
			if !rec.IsPlayerCountWithinRange {
				continue
			}
			inRange++
			if math.IsNaN(rec.NotRecommendedPercent) || rec.NotRecommendedPercent <= notRecommendedCutoff {
				acceptable = true
				break
			}
		}
		if inRange == 0 || acceptable {
			kept = append(kept, g)
		}
	}
	return kept
}

package collection

import (
	"math"
	"slices"
	"strings"

	"github.com/davidhorm/bgg-what-to-play-sub000/internal/model"
)

// compareFunc は1ソート次元の比較関数。標準のコンパレータ規約に従い、
// aが先なら負、bが先なら正、等しければ0を返す。
type compareFunc func(dir model.SortDirection, fs model.FilterState, a, b *model.GameRecord) int

// comparators は登録済みソート次元とその比較関数の対応表。
var comparators = map[model.SortDimension]compareFunc{
	model.SortByName: func(dir model.SortDirection, _ model.FilterState, a, b *model.GameRecord) int {
		return applyDirection(dir, strings.Compare(a.Name, b.Name))
	},
	model.SortByPlaytime: func(dir model.SortDirection, _ model.FilterState, a, b *model.GameRecord) int {
		return compareFloat(dir, a.AveragePlaytime(), b.AveragePlaytime())
	},
	model.SortByComplexity: func(dir model.SortDirection, _ model.FilterState, a, b *model.GameRecord) int {
		return compareFloat(dir, a.AverageWeight, b.AverageWeight)
	},
	model.SortByRatings: func(dir model.SortDirection, fs model.FilterState, a, b *model.GameRecord) int {
		return compareFloat(dir, sortRatingValue(fs.RatingMode, a), sortRatingValue(fs.RatingMode, b))
	},
	model.SortByRecommendation: func(dir model.SortDirection, _ model.FilterState, a, b *model.GameRecord) int {
		return compareFloat(dir, meanInRangeSortScore(a), meanInRangeSortScore(b))
	},
}

// defaultDirections は各次元の初回選択時のソート方向。
var defaultDirections = map[model.SortDimension]model.SortDirection{
	model.SortByName:           model.SortAsc,
	model.SortByPlaytime:       model.SortAsc,
	model.SortByComplexity:     model.SortAsc,
	model.SortByRatings:        model.SortDesc,
	model.SortByRecommendation: model.SortDesc,
}

// ApplySorts はソート選択リストを優先順のタイブレーカーとして適用する。
// 2レコードの比較では選択を先頭から順に評価し、最初の非ゼロ結果が順序を
// 決める。すべてゼロ（またはリストが空）の場合は元の相対順を保つ
// （安定ソート）。入力スライスは変更せず、新しいスライスを返す。
// 登録されていない次元の選択は無視される。
func ApplySorts(fs model.FilterState, spec model.SortSpec, games []model.GameRecord) []model.GameRecord {
	sorted := slices.Clone(games)
	if len(spec) == 0 {
		return sorted
	}

	slices.SortStableFunc(sorted, func(a, b model.GameRecord) int {
		for _, sel := range spec {
			compare, ok := comparators[sel.Dimension]
			if !ok {
				continue
			}
			if result := compare(sel.Direction, fs, &a, &b); result != 0 {
				return result
			}
		}
		return 0
	})
	return sorted
}

// DefaultDirection は次元の初回選択時のソート方向を返す。
func DefaultDirection(dim model.SortDimension) model.SortDirection {
	if dir, ok := defaultDirections[dim]; ok {
		return dir
	}
	return model.SortAsc
}

// IsRegisteredDimension は次元が比較関数を登録済みかを返す。
func IsRegisteredDimension(dim model.SortDimension) bool {
	_, ok := comparators[dim]
	return ok
}

// ToggleSort は次元の選択トグルを適用した新しいソート選択リストを返す。
// 未選択の次元はデフォルト方向で末尾に追加する。選択済みでデフォルト方向の
// 次元は方向を反転する。反転済みの次元は、deletableならリストから削除し、
// そうでなければ再度反転する。入力のspecは変更しない。
func ToggleSort(spec model.SortSpec, dim model.SortDimension, deletable bool) model.SortSpec {
	for i, sel := range spec {
		if sel.Dimension != dim {
			continue
		}
		if sel.Direction == DefaultDirection(dim) {
			out := slices.Clone(spec)
			out[i].Direction = sel.Direction.Flip()
			return out
		}
		if deletable {
			return slices.Delete(slices.Clone(spec), i, i+1)
		}
		out := slices.Clone(spec)
		out[i].Direction = sel.Direction.Flip()
		return out
	}
	return append(slices.Clone(spec), model.SortSelection{Dimension: dim, Direction: DefaultDirection(dim)})
}

// compareFloat は数値キーを方向つきで比較する。
// NaNは方向に関係なく常に末尾に並ぶ（方向不変の「最後にソート」契約）。
// 両方NaNの場合は等価とし、安定ソートが相対順を保つ。
func compareFloat(dir model.SortDirection, av, bv float64) int {
	aNaN, bNaN := math.IsNaN(av), math.IsNaN(bv)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	case av == bv:
		return 0
	case av < bv:
		return applyDirection(dir, -1)
	default:
		return applyDirection(dir, 1)
	}
}

// applyDirection は昇順の比較結果を指定方向に変換する。
func applyDirection(dir model.SortDirection, result int) int {
	if dir == model.SortDesc {
		return -result
	}
	return result
}

// sortRatingValue はソート比較に使う評価値を返す。未設定・"N/A"は0として比較する。
func sortRatingValue(mode model.RatingMode, g *model.GameRecord) float64 {
	rating := g.AverageRating
	if mode == model.RatingModeUser {
		rating = g.UserRating
	}
	if !rating.Valid {
		return 0
	}
	return rating.Value
}

// meanInRangeSortScore はアクティブなプレイ人数区間内の推奨行のsortScore平均を
// 返す。区間内の行が1つもないゲームはNaNとなり、方向に関係なく末尾に並ぶ。
func meanInRangeSortScore(g *model.GameRecord) float64 {
	sum := 0.0
	count := 0
	for _, rec := range g.RecommendedPlayerCount {
		if rec.IsPlayerCountWithinRange {
			sum += rec.SortScore
			count++
		}
	}
	if count == 0 {
		return math.NaN()
	}
	return sum / float64(count)
}

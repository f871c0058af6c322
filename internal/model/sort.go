// Package model はドメインモデルを定義する。
package model

// SortDirection はソート方向を表す。
type SortDirection string

const (
	// SortAsc は昇順。
	SortAsc SortDirection = "ASC"
	// SortDesc は降順。
	SortDesc SortDirection = "DESC"
)

// Flip は反対方向を返す。
func (d SortDirection) Flip() SortDirection {
	if d == SortAsc {
		return SortDesc
	}
	return SortAsc
}

// SortDimension は登録済みソート次元の識別子を表す。
type SortDimension string

const (
	// SortByName は表示名の辞書順ソート。
	SortByName SortDimension = "name"
	// SortByPlaytime は平均プレイ時間ソート。
	SortByPlaytime SortDimension = "average-playtime"
	// SortByComplexity は複雑さ（ウェイト）ソート。
	SortByComplexity SortDimension = "complexity"
	// SortByRatings は評価値ソート。RatingModeに従う。
	SortByRatings SortDimension = "ratings"
	// SortByRecommendation はプレイ人数推奨スコアソート。
	SortByRecommendation SortDimension = "player-count-recommendation"
)

// SortSelection はソート次元と方向の1ペアを表す。
type SortSelection struct {
	Dimension SortDimension `json:"dimension"`
	Direction SortDirection `json:"direction"`
}

// SortSpec は優先順に並んだソート選択のリストを表す。
// 先頭の比較結果が等しい場合のみ次の選択が適用される。
// UI層が所有し、値渡しでコアに渡される。
type SortSpec []SortSelection

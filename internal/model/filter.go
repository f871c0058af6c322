// Package model はドメインモデルを定義する。
package model

import "math"

// RatingMode は一覧に表示・比較する評価値の種別を表す。
type RatingMode string

const (
	// RatingModeNone は評価を表示しないモード。
	RatingModeNone RatingMode = "NO_RATING"
	// RatingModeUser はユーザー個人評価を使用するモード。
	RatingModeUser RatingMode = "USER_RATING"
	// RatingModeAverage は平均評価を使用するモード。
	RatingModeAverage RatingMode = "AVERAGE_RATING"
)

// フィルタ各次元の絶対下限・上限。
const (
	PlayerCountFloor = 1.0
	PlaytimeFloor    = 0.0
	ComplexityFloor  = 1.0
	ComplexityCeil   = 5.0
	RatingsFloor     = 1.0
	RatingsCeil      = 10.0
)

// Range は閉区間[Min,Max]を表す。Maxは+Infを許容する。
type Range struct {
	Min float64
	Max float64
}

// Contains は値が区間内にあるかを返す。
func (r Range) Contains(v float64) bool {
	return r.Min <= v && v <= r.Max
}

// FilterState は現在のフィルタ設定を表す。
// UI層が所有し、再計算のたびに値渡しでコアに渡される。コアは変更しない。
type FilterState struct {
	PlayerCountRange       Range
	PlaytimeRange          Range
	ComplexityRange        Range
	RatingsRange           Range
	ShowExpansions         bool
	ShowInvalidPlayerCount bool
	ShowNotRecommended     bool
	RatingMode             RatingMode
}

// DefaultFilterState は最も広い（何も絞り込まない）フィルタ設定を返す。
func DefaultFilterState() FilterState {
	return FilterState{
		PlayerCountRange: Range{Min: PlayerCountFloor, Max: math.Inf(1)},
		PlaytimeRange:    Range{Min: PlaytimeFloor, Max: math.Inf(1)},
		ComplexityRange:  Range{Min: ComplexityFloor, Max: ComplexityCeil},
		RatingsRange:     Range{Min: RatingsFloor, Max: RatingsCeil},
		RatingMode:       RatingModeNone,
	}
}

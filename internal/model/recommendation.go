// Package model はドメインモデルを定義する。
package model

import (
	"encoding/json"
	"math"
)

// PlayerCountRecommendation は「推奨プレイ人数」投票の1人数ぶんの集計結果を表す。
//
// NotRecommendedは符号反転済み（常に0以下）で保持する。発散型バーチャートの
// 描画規約であり、元の正の投票数は保持しない。
// 各Percentは0〜100の整数値、総投票数0のときは3つ同時にNaNになる。
// SortScoreは総投票数0のとき-Infになり、データなしの行が常に末尾に並ぶ。
type PlayerCountRecommendation struct {
	PlayerCountValue int    `json:"playerCountValue"`
	PlayerCountLabel string `json:"playerCountLabel"`

	Best           int `json:"best"`
	Recommended    int `json:"recommended"`
	NotRecommended int `json:"notRecommended"`

	BestPercent           float64 `json:"-"`
	RecommendedPercent    float64 `json:"-"`
	NotRecommendedPercent float64 `json:"-"`

	SortScore float64 `json:"-"`

	// IsPlayerCountWithinRange はフィルタ段階で設定されるアノテーション。
	// ビルダーは設定しない。
	IsPlayerCountWithinRange bool `json:"isPlayerCountWithinRange"`
}

// recommendationJSON はNaN/-Infをnullに写すためのシリアライズ表現。
// encoding/jsonは非有限のfloat64をエラーにするため、明示的に変換する。
type recommendationJSON struct {
	PlayerCountValue         int      `json:"playerCountValue"`
	PlayerCountLabel         string   `json:"playerCountLabel"`
	Best                     int      `json:"best"`
	Recommended              int      `json:"recommended"`
	NotRecommended           int      `json:"notRecommended"`
	BestPercent              *float64 `json:"bestPercent"`
	RecommendedPercent       *float64 `json:"recommendedPercent"`
	NotRecommendedPercent    *float64 `json:"notRecommendedPercent"`
	SortScore                *float64 `json:"sortScore"`
	IsPlayerCountWithinRange bool     `json:"isPlayerCountWithinRange"`
}

// MarshalJSON はNaNのPercentと-InfのSortScoreをnullとして出力する。
func (r PlayerCountRecommendation) MarshalJSON() ([]byte, error) {
	return json.Marshal(recommendationJSON{
		PlayerCountValue:         r.PlayerCountValue,
		PlayerCountLabel:         r.PlayerCountLabel,
		Best:                     r.Best,
		Recommended:              r.Recommended,
		NotRecommended:           r.NotRecommended,
		BestPercent:              finiteOrNil(r.BestPercent),
		RecommendedPercent:       finiteOrNil(r.RecommendedPercent),
		NotRecommendedPercent:    finiteOrNil(r.NotRecommendedPercent),
		SortScore:                finiteOrNil(r.SortScore),
		IsPlayerCountWithinRange: r.IsPlayerCountWithinRange,
	})
}

// UnmarshalJSON はnullをNaN（Percent）および-Inf（SortScore）として復元する。
func (r *PlayerCountRecommendation) UnmarshalJSON(data []byte) error {
	var raw recommendationJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.PlayerCountValue = raw.PlayerCountValue
	r.PlayerCountLabel = raw.PlayerCountLabel
	r.Best = raw.Best
	r.Recommended = raw.Recommended
	r.NotRecommended = raw.NotRecommended
	r.BestPercent = valueOr(raw.BestPercent, math.NaN())
	r.RecommendedPercent = valueOr(raw.RecommendedPercent, math.NaN())
	r.NotRecommendedPercent = valueOr(raw.NotRecommendedPercent, math.NaN())
	r.SortScore = valueOr(raw.SortScore, math.Inf(-1))
	r.IsPlayerCountWithinRange = raw.IsPlayerCountWithinRange
	return nil
}

func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func valueOr(p *float64, fallback float64) float64 {
	if p == nil {
		return fallback
	}
	return *p
}

// Package model はドメインモデルを定義する。
package model

import (
	"encoding/json"
	"fmt"
)

// ratingNASentinel はカタログが未評価を表すのに使う文字列センチネル。
const ratingNASentinel = "N/A"

// Rating は評価値の三値（数値・"N/A"センチネル・未設定）を表す。
// JSONでは数値・文字列"N/A"・nullのいずれかにシリアライズされる。
type Rating struct {
	Value float64
	NA    bool
	Valid bool
}

// RatingOf は数値評価を持つRatingを生成する。
func RatingOf(v float64) Rating {
	return Rating{Value: v, Valid: true}
}

// RatingNA は"N/A"センチネルを保持するRatingを生成する。
func RatingNA() Rating {
	return Rating{NA: true}
}

// NoRating は未設定のRatingを生成する。ゼロ値と等価。
func NoRating() Rating {
	return Rating{}
}

// MarshalJSON はRatingを数値・"N/A"・nullのいずれかとして出力する。
func (r Rating) MarshalJSON() ([]byte, error) {
	switch {
	case r.Valid:
		return json.Marshal(r.Value)
	case r.NA:
		return json.Marshal(ratingNASentinel)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON は数値・"N/A"・nullからRatingを復元する。
func (r *Rating) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = Rating{}
		return nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*r = RatingOf(num)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == ratingNASentinel {
			*r = RatingNA()
			return nil
		}
		return fmt.Errorf("unexpected rating string: %q", s)
	}

	return fmt.Errorf("invalid rating value: %s", string(data))
}

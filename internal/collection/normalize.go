// Package collection はコレクション変換パイプラインを実装する。
// 生のカタログレコードを正規化ゲームレコードに変換し、投票由来の統計を計算し、
// 合成可能なフィルタ・ソートエンジンをその上に適用する。パイプライン全体が
// インメモリ配列上の純粋関数で、I/Oも共有可変状態も持たない。
package collection

import (
	"regexp"
	"strconv"

	"github.com/davidhorm/bgg-what-to-play-sub000/internal/model"
)

// numericEntityPattern は &#<digits>; 形式のHTML数値文字参照にマッチする。
var numericEntityPattern = regexp.MustCompile(`&#([0-9]+);`)

// DecodeNumericEntities は文字列中のHTML数値文字参照をすべて対応する
// Unicode文字に置換する。マッチしない部分はそのまま残す。
// 例: "Can&#039;t Stop" → "Can't Stop"
func DecodeNumericEntities(s string) string {
	return numericEntityPattern.ReplaceAllStringFunc(s, func(entity string) string {
		digits := entity[2 : len(entity)-1]
		code, err := strconv.Atoi(digits)
		if err != nil {
			return entity
		}
		return string(rune(code))
	})
}

// ResolvePrimaryName は名称候補から主表示名を決定する。
// 候補が1件の場合はその値を返す（単一名称レスポンスの正規化形）。
// 複数候補の場合はtype=primaryの最初の候補を返し、存在しなければ
// データ形状エラーを返す。
func ResolvePrimaryName(gameID int, variants []model.NameVariant) (string, error) {
	if len(variants) == 1 {
		return variants[0].Value, nil
	}
	for _, v := range variants {
		if v.Type == model.NameTypePrimary {
			return v.Value, nil
		}
	}
	return "", model.NewNoPrimaryNameError(gameID)
}

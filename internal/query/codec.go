// Package query はフィルタ・ソート設定とURLクエリパラメータの相互変換を提供する。
// コアのパイプラインはクエリ文字列を一切扱わず、このパッケージが外部所有の
// アダプタとして設定の永続化表現を引き受ける。
package query

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/davidhorm/bgg-what-to-play-sub000/internal/collection"
	"github.com/davidhorm/bgg-what-to-play-sub000/internal/model"
)

// クエリパラメータ名。
const (
	paramPlayerCount            = "playerCount"
	paramPlaytime               = "playtime"
	paramComplexity             = "complexity"
	paramRatings                = "ratings"
	paramShowExpansions         = "showExpansions"
	paramShowInvalidPlayerCount = "showInvalidPlayerCount"
	paramShowNotRecommended     = "showNotRecommended"
	paramRatingMode             = "ratingMode"
	paramSort                   = "sort"
)

// infinityToken はレンジ上限の+Infをクエリ上で表すトークン。
const infinityToken = "Infinity"

// ratingModeTokens はratingModeパラメータ値と表示モードの対応。
var ratingModeTokens = map[string]model.RatingMode{
	"user":    model.RatingModeUser,
	"average": model.RatingModeAverage,
}

// ParseFilterState はクエリパラメータからFilterStateを構築する。
// 欠落パラメータはデフォルト値（最広フィルタ）になる。
// 解釈できない値はINVALID_QUERYエラーを返す。
func ParseFilterState(values url.Values) (model.FilterState, error) {
	fs := model.DefaultFilterState()

	var err error
	if fs.PlayerCountRange, err = parseRange(values, paramPlayerCount, fs.PlayerCountRange); err != nil {
		return model.FilterState{}, err
	}
	if fs.PlaytimeRange, err = parseRange(values, paramPlaytime, fs.PlaytimeRange); err != nil {
		return model.FilterState{}, err
	}
	if fs.ComplexityRange, err = parseRange(values, paramComplexity, fs.ComplexityRange); err != nil {
		return model.FilterState{}, err
	}
	if fs.RatingsRange, err = parseRange(values, paramRatings, fs.RatingsRange); err != nil {
		return model.FilterState{}, err
	}

	if fs.ShowExpansions, err = parseBool(values, paramShowExpansions); err != nil {
		return model.FilterState{}, err
	}
	if fs.ShowInvalidPlayerCount, err = parseBool(values, paramShowInvalidPlayerCount); err != nil {
		return model.FilterState{}, err
	}
	if fs.ShowNotRecommended, err = parseBool(values, paramShowNotRecommended); err != nil {
		return model.FilterState{}, err
	}

	if raw := values.Get(paramRatingMode); raw != "" {
		mode, ok := ratingModeTokens[raw]
		if !ok {
			return model.FilterState{}, model.NewInvalidQueryError(paramRatingMode, raw)
		}
		fs.RatingMode = mode
	}

	return fs, nil
}

// EncodeFilterState はFilterStateをクエリパラメータに変換する。
// デフォルト値と一致するパラメータは省略し、短いクエリ文字列を保つ。
func EncodeFilterState(fs model.FilterState) url.Values {
	values := url.Values{}
	def := model.DefaultFilterState()

	encodeRange(values, paramPlayerCount, fs.PlayerCountRange, def.PlayerCountRange)
	encodeRange(values, paramPlaytime, fs.PlaytimeRange, def.PlaytimeRange)
	encodeRange(values, paramComplexity, fs.ComplexityRange, def.ComplexityRange)
	encodeRange(values, paramRatings, fs.RatingsRange, def.RatingsRange)

	if fs.ShowExpansions {
		values.Set(paramShowExpansions, "1")
	}
	if fs.ShowInvalidPlayerCount {
		values.Set(paramShowInvalidPlayerCount, "1")
	}
	if fs.ShowNotRecommended {
		values.Set(paramShowNotRecommended, "1")
	}
	for token, mode := range ratingModeTokens {
		if fs.RatingMode == mode {
			values.Set(paramRatingMode, token)
		}
	}

	return values
}

// ParseSortSpec はsortパラメータからソート選択リストを構築する。
// 形式は "dimension:direction" のカンマ区切り（例: "name:asc,ratings:desc"）。
// 方向の省略は次元のデフォルト方向を意味する。未登録の次元はエラー。
func ParseSortSpec(values url.Values) (model.SortSpec, error) {
	raw := values.Get(paramSort)
	if raw == "" {
		return nil, nil
	}

	var spec model.SortSpec
	for _, part := range strings.Split(raw, ",") {
		dimToken, dirToken, hasDir := strings.Cut(part, ":")
		dim := model.SortDimension(dimToken)
		if !collection.IsRegisteredDimension(dim) {
			return nil, model.NewInvalidQueryError(paramSort, part)
		}

		dir := collection.DefaultDirection(dim)
		if hasDir {
			switch strings.ToUpper(dirToken) {
			case string(model.SortAsc):
				dir = model.SortAsc
			case string(model.SortDesc):
				dir = model.SortDesc
			default:
				return nil, model.NewInvalidQueryError(paramSort, part)
			}
		}
		spec = append(spec, model.SortSelection{Dimension: dim, Direction: dir})
	}
	return spec, nil
}

// EncodeSortSpec はソート選択リストをsortパラメータに変換する。
func EncodeSortSpec(spec model.SortSpec) url.Values {
	values := url.Values{}
	if len(spec) == 0 {
		return values
	}
	parts := make([]string, len(spec))
	for i, sel := range spec {
		parts[i] = fmt.Sprintf("%s:%s", sel.Dimension, strings.ToLower(string(sel.Direction)))
	}
	values.Set(paramSort, strings.Join(parts, ","))
	return values
}

// parseRange は "min-max" 形式のレンジパラメータを解釈する。
// maxには"Infinity"を許容する。
func parseRange(values url.Values, param string, fallback model.Range) (model.Range, error) {
	raw := values.Get(param)
	if raw == "" {
		return fallback, nil
	}

	minToken, maxToken, ok := strings.Cut(raw, "-")
	if !ok {
		return model.Range{}, model.NewInvalidQueryError(param, raw)
	}

	minVal, err := strconv.ParseFloat(minToken, 64)
	if err != nil {
		return model.Range{}, model.NewInvalidQueryError(param, raw)
	}

	maxVal := math.Inf(1)
	if maxToken != infinityToken {
		maxVal, err = strconv.ParseFloat(maxToken, 64)
		if err != nil {
			return model.Range{}, model.NewInvalidQueryError(param, raw)
		}
	}

	if minVal > maxVal {
		return model.Range{}, model.NewInvalidQueryError(param, raw)
	}
	return model.Range{Min: minVal, Max: maxVal}, nil
}

// encodeRange はレンジをデフォルトと異なる場合のみ "min-max" 形式で書き出す。
func encodeRange(values url.Values, param string, r, def model.Range) {
	if r == def {
		return
	}
	maxToken := infinityToken
	if !math.IsInf(r.Max, 1) {
		maxToken = formatFloat(r.Max)
	}
	values.Set(param, fmt.Sprintf("%s-%s", formatFloat(r.Min), maxToken))
}

// parseBool はフラグパラメータを解釈する。"1"/"true"が真、"0"/"false"/欠落が偽。
func parseBool(values url.Values, param string) (bool, error) {
	switch raw := values.Get(param); raw {
	case "", "0", "false":
		return false, nil
	case "1", "true":
		return true, nil
	default:
		return false, model.NewInvalidQueryError(param, raw)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

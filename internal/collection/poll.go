package collection

import (
	"math"
	"strconv"
	"strings"

	"github.com/davidhorm/bgg-what-to-play-sub000/internal/model"
)

// 投票行のタグ名。欠落タグの得票は0として扱う。
const (
	voteBest           = "Best"
	voteRecommended    = "Recommended"
	voteNotRecommended = "Not Recommended"
)

// maxBestBonus はsortScoreに加算されるsqrt(Best)項の上限。
const maxBestBonus = 10.0

// BuildRecommendations は推奨プレイ人数投票を人数ごとの集計レコード列に変換する。
// 入力のPollsから「推奨プレイ人数」投票のみを解釈し、他の投票種別は無視する。
// 行順は保存される。投票が存在しない場合は空スライスを返す（nilではない）。
//
// 解釈できないプレイ人数指定（数字でも「N+」形式でもない）はエラーとして
// 報告し、黙って数値に強制しない。
func BuildRecommendations(gameID int, polls []model.Poll) ([]model.PlayerCountRecommendation, error) {
	recs := []model.PlayerCountRecommendation{}

	for _, poll := range polls {
		if poll.Name != model.PollSuggestedNumPlayers {
			continue
		}
		for _, row := range poll.Results {
			rec, err := buildRecommendation(gameID, row)
			if err != nil {
				return nil, err
			}
			recs = append(recs, rec)
		}
	}

	return recs, nil
}

// buildRecommendation は投票1行を集計レコードに変換する。
// 手順は正規化 → 得票抽出 → パーセント・スコア計算 → 符号反転の順で、
// 符号反転はスコア計算の後に行う（スコアは正の得票数から計算される）。
func buildRecommendation(gameID int, row model.PollResult) (model.PlayerCountRecommendation, error) {
	value, err := parsePlayerCount(row.NumPlayers)
	if err != nil {
		return model.PlayerCountRecommendation{}, model.NewInvalidPlayerCountError(gameID, row.NumPlayers)
	}

	best := voteCount(row.Votes, voteBest)
	recommended := voteCount(row.Votes, voteRecommended)
	notRecommended := voteCount(row.Votes, voteNotRecommended)

	total := best + recommended + notRecommended

	bestPct := percent(best, total)
	recommendedPct := percent(recommended, total)
	notRecommendedPct := percent(notRecommended, total)

	score := math.Round(math.Min(math.Sqrt(float64(best)), maxBestBonus) + bestPct + recommendedPct*0.8)
	if math.IsNaN(score) {
		// 総投票数0の行はスコア-Infで常に末尾に並べる
		score = math.Inf(-1)
	}

	return model.PlayerCountRecommendation{
		PlayerCountValue:      value,
		PlayerCountLabel:      row.NumPlayers,
		Best:                  best,
		Recommended:           recommended,
		NotRecommended:        -notRecommended,
		BestPercent:           bestPct,
		RecommendedPercent:    recommendedPct,
		NotRecommendedPercent: notRecommendedPct,
		SortScore:             score,
	}, nil
}

// parsePlayerCount はプレイ人数指定を整数値に正規化する。
// 「N+」（N人以上）はN+1に正規化する。元の表記はラベルとして別途保持される。
func parsePlayerCount(designator string) (int, error) {
	if base, ok := strings.CutSuffix(designator, "+"); ok {
		n, err := strconv.Atoi(base)
		if err != nil {
			return 0, err
		}
		return n + 1, nil
	}
	return strconv.Atoi(designator)
}

// voteCount は指定タグの得票数を返す。タグが欠落している場合は0。
func voteCount(votes []model.PollVote, tag string) int {
	for _, v := range votes {
		if v.Value == tag {
			return v.NumVotes
		}
	}
	return 0
}

// percent は得票数の百分率を整数に丸めて返す。総投票数0のときはNaN。
// ゼロ除算でクラッシュさせないための明示的なセンチネル。
func percent(count, total int) float64 {
	if total == 0 {
		return math.NaN()
	}
	return math.Round(float64(count) / float64(total) * 100)
}

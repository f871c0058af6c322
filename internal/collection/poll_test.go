package collection

import (
	"errors"
	"math"
	"testing"

	"github.com/davidhorm/bgg-what-to-play-sub000/internal/model"
)

// suggestedPoll は推奨プレイ人数投票を1件だけ持つPollsを組み立てるヘルパー。
func suggestedPoll(rows ...model.PollResult) []model.Poll {
	return []model.Poll{{Name: model.PollSuggestedNumPlayers, Results: rows}}
}

func pollRow(numPlayers string, best, recommended, notRecommended int) model.PollResult {
	return model.PollResult{
		NumPlayers: numPlayers,
		Votes: []model.PollVote{
			{Value: "Best", NumVotes: best},
			{Value: "Recommended", NumVotes: recommended},
			{Value: "Not Recommended", NumVotes: notRecommended},
		},
	}
}

func TestBuildRecommendations_ScoringExample(t *testing.T) {
	// Best=27, Recommended=5, NotRecommended=0 at "1"
	recs, err := BuildRecommendations(1406, suggestedPoll(pollRow("1", 27, 5, 0)))
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("len(recs) = %d, want 1", len(recs))
	}

	rec := recs[0]
	if rec.BestPercent != 84 {
		t.Errorf("BestPercent = %v, want 84", rec.BestPercent)
	}
	if rec.RecommendedPercent != 16 {
		t.Errorf("RecommendedPercent = %v, want 16", rec.RecommendedPercent)
	}
	if rec.NotRecommendedPercent != 0 {
		t.Errorf("NotRecommendedPercent = %v, want 0", rec.NotRecommendedPercent)
	}
	if rec.SortScore != 102 {
		t.Errorf("SortScore = %v, want 102", rec.SortScore)
	}
	// 0の符号反転は0のまま
	if rec.NotRecommended != 0 {
		t.Errorf("NotRecommended = %d, want 0", rec.NotRecommended)
	}
}

func TestBuildRecommendations_PlusDesignator(t *testing.T) {
	// "4+" は値5に正規化され、ラベルは元の表記を保つ
	recs, err := BuildRecommendations(1, suggestedPoll(pollRow("4+", 1, 2, 3)))
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if recs[0].PlayerCountValue != 5 {
		t.Errorf("PlayerCountValue = %d, want 5", recs[0].PlayerCountValue)
	}
	if recs[0].PlayerCountLabel != "4+" {
		t.Errorf("PlayerCountLabel = %q, want %q", recs[0].PlayerCountLabel, "4+")
	}
}

func TestBuildRecommendations_SignInvariant(t *testing.T) {
	recs, err := BuildRecommendations(1, suggestedPoll(
		pollRow("1", 0, 0, 10),
		pollRow("2", 5, 3, 1),
		pollRow("3", 0, 0, 0),
	))
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	for _, rec := range recs {
		if rec.NotRecommended > 0 {
			t.Errorf("NotRecommended(%s) = %d, 常に0以下であるべき", rec.PlayerCountLabel, rec.NotRecommended)
		}
	}
	if recs[0].NotRecommended != -10 {
		t.Errorf("NotRecommended = %d, want -10", recs[0].NotRecommended)
	}
}

func TestBuildRecommendations_ZeroVotes(t *testing.T) {
	recs, err := BuildRecommendations(1, suggestedPoll(pollRow("2", 0, 0, 0)))
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}

	rec := recs[0]
	// 総投票数0: 3つのPercentが同時にNaN、スコアは-Inf
	if !math.IsNaN(rec.BestPercent) || !math.IsNaN(rec.RecommendedPercent) || !math.IsNaN(rec.NotRecommendedPercent) {
		t.Errorf("総投票数0のPercentはすべてNaNであるべき: %v %v %v",
			rec.BestPercent, rec.RecommendedPercent, rec.NotRecommendedPercent)
	}
	if !math.IsInf(rec.SortScore, -1) {
		t.Errorf("SortScore = %v, want -Inf", rec.SortScore)
	}
}

func TestBuildRecommendations_PercentBounds(t *testing.T) {
	recs, err := BuildRecommendations(1, suggestedPoll(
		pollRow("1", 3, 0, 0),
		pollRow("2", 1, 1, 1),
		pollRow("3", 0, 0, 7),
	))
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	for _, rec := range recs {
		for _, pct := range []float64{rec.BestPercent, rec.RecommendedPercent, rec.NotRecommendedPercent} {
			if pct < 0 || pct > 100 {
				t.Errorf("Percent(%s) = %v, [0,100]の範囲内であるべき", rec.PlayerCountLabel, pct)
			}
		}
	}
}

func TestBuildRecommendations_MissingVoteTagDefaultsToZero(t *testing.T) {
	// タグ欠落は防御的に0として扱う
	row := model.PollResult{
		NumPlayers: "2",
		Votes:      []model.PollVote{{Value: "Best", NumVotes: 4}},
	}
	recs, err := BuildRecommendations(1, suggestedPoll(row))
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if recs[0].Recommended != 0 || recs[0].NotRecommended != 0 {
		t.Errorf("欠落タグの得票は0であるべき: %+v", recs[0])
	}
	if recs[0].BestPercent != 100 {
		t.Errorf("BestPercent = %v, want 100", recs[0].BestPercent)
	}
}

func TestBuildRecommendations_EmptyInput(t *testing.T) {
	// 空の投票入力は空の出力（nilや範囲外アクセスではなく）
	recs, err := BuildRecommendations(1, nil)
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if recs == nil {
		t.Error("空入力はnilではなく空スライスを返すべき")
	}
	if len(recs) != 0 {
		t.Errorf("len(recs) = %d, want 0", len(recs))
	}
}

func TestBuildRecommendations_IgnoresOtherPolls(t *testing.T) {
	polls := []model.Poll{
		{Name: "suggested_playerage", Results: []model.PollResult{pollRow("8", 1, 2, 3)}},
		{Name: model.PollSuggestedNumPlayers, Results: []model.PollResult{pollRow("2", 9, 0, 0)}},
		{Name: "language_dependence", Results: []model.PollResult{pollRow("1", 4, 5, 6)}},
	}
	recs, err := BuildRecommendations(1, polls)
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if len(recs) != 1 || recs[0].PlayerCountLabel != "2" {
		t.Errorf("推奨プレイ人数投票以外は無視されるべき: %+v", recs)
	}
}

func TestBuildRecommendations_OrderPreserving(t *testing.T) {
	recs, err := BuildRecommendations(1, suggestedPoll(
		pollRow("3", 1, 0, 0),
		pollRow("1", 1, 0, 0),
		pollRow("2", 1, 0, 0),
	))
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	want := []string{"3", "1", "2"}
	for i, rec := range recs {
		if rec.PlayerCountLabel != want[i] {
			t.Errorf("recs[%d].PlayerCountLabel = %q, want %q（入力順を保存すべき）", i, rec.PlayerCountLabel, want[i])
		}
	}
}

func TestBuildRecommendations_UnparseableDesignator(t *testing.T) {
	// 数字でも「N+」形式でもない指定はエラーとして報告する
	_, err := BuildRecommendations(99, suggestedPoll(pollRow("many", 1, 0, 0)))
	if err == nil {
		t.Fatal("解釈できないプレイ人数指定はエラーを返すべき")
	}
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidPlayerCount {
		t.Errorf("err = %v, want code %s", err, model.ErrCodeInvalidPlayerCount)
	}
}

func TestParsePlayerCount(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"1", 1, false},
		{"12", 12, false},
		{"4+", 5, false},
		{"10+", 11, false},
		{"", 0, true},
		{"+", 0, true},
		{"4½", 0, true},
	}
	for _, tc := range cases {
		got, err := parsePlayerCount(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parsePlayerCount(%q) はエラーを返すべき", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parsePlayerCount(%q) の予期しないエラー: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parsePlayerCount(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

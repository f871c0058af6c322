package model

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestRecommendationMarshalJSON_NonFiniteToNull(t *testing.T) {
	// encoding/jsonはNaN/-Infをエラーにするため、nullへの変換が必要
	rec := PlayerCountRecommendation{
		PlayerCountValue:      2,
		PlayerCountLabel:      "2",
		BestPercent:           math.NaN(),
		RecommendedPercent:    math.NaN(),
		NotRecommendedPercent: math.NaN(),
		SortScore:             math.Inf(-1),
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	for _, field := range []string{`"bestPercent":null`, `"recommendedPercent":null`, `"notRecommendedPercent":null`, `"sortScore":null`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("出力に %s が含まれるべき: %s", field, data)
		}
	}
}

func TestRecommendationJSONRoundTrip(t *testing.T) {
	rec := PlayerCountRecommendation{
		PlayerCountValue:         5,
		PlayerCountLabel:         "4+",
		Best:                     10,
		Recommended:              4,
		NotRecommended:           -2,
		BestPercent:              63,
		RecommendedPercent:       25,
		NotRecommendedPercent:    13,
		SortScore:                86,
		IsPlayerCountWithinRange: true,
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}

	var got PlayerCountRecommendation
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if got != rec {
		t.Errorf("round trip = %+v, want %+v", got, rec)
	}
}

func TestRecommendationUnmarshalJSON_NullToSentinels(t *testing.T) {
	raw := `{"playerCountValue":3,"playerCountLabel":"3","bestPercent":null,"recommendedPercent":null,"notRecommendedPercent":null,"sortScore":null}`

	var rec PlayerCountRecommendation
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		t.Fatalf("予期しないエラー: %v", err)
	}
	if !math.IsNaN(rec.BestPercent) || !math.IsNaN(rec.RecommendedPercent) || !math.IsNaN(rec.NotRecommendedPercent) {
		t.Errorf("nullのPercentはNaNに復元されるべき: %+v", rec)
	}
	if !math.IsInf(rec.SortScore, -1) {
		t.Errorf("nullのsortScoreは-Infに復元されるべき: %v", rec.SortScore)
	}
}

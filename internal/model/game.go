// Package model はドメインモデルを定義する。
package model

// GameSubtype はカタログ上のアイテム種別を表す。
type GameSubtype string

const (
	// SubtypeBoardgame はボードゲーム本体。
	SubtypeBoardgame GameSubtype = "boardgame"
	// SubtypeExpansion はボードゲーム拡張。
	SubtypeExpansion GameSubtype = "boardgameexpansion"
)

// FallbackThumbnailURL はサムネイル未設定時に使用する固定の代替画像URL。
const FallbackThumbnailURL = "https://cf.geekdo-images.com/zxVVmggfpHJpmnJY9j-k1w__thumb/img/no-image.png"

// GameRecord は1ゲームの正規化済みレコードを表す。
// フェッチレスポンスごとにビルダーで1回構築され、以降はイミュータブルとして扱う。
// フィルタ・アノテーション・ソートは常に新しいレコードを生成し、構築済みの
// レコードをその場で書き換えることはない。
type GameRecord struct {
	ID                     int                         `json:"id"`
	Subtype                GameSubtype                 `json:"subtype"`
	Name                   string                      `json:"name"`
	Thumbnail              string                      `json:"thumbnail"`
	MinPlayers             int                         `json:"minPlayers"`
	MaxPlayers             int                         `json:"maxPlayers"`
	MinPlaytime            int                         `json:"minPlaytime"`
	MaxPlaytime            int                         `json:"maxPlaytime"`
	AverageWeight          float64                     `json:"averageWeight"`
	AverageRating          Rating                      `json:"averageRating"`
	UserRating             Rating                      `json:"userRating"`
	Description            string                      `json:"description,omitempty"`
	RecommendedPlayerCount []PlayerCountRecommendation `json:"recommendedPlayerCount"`
}

// AveragePlaytime は最小・最大プレイ時間の平均を返す。ソート用。
func (g *GameRecord) AveragePlaytime() float64 {
	return float64(g.MinPlaytime+g.MaxPlaytime) / 2
}

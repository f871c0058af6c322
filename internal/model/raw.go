// Package model はドメインモデルを定義する。
package model

import "time"

// NameVariant はカタログのthingレコードが持つ名称候補1件を表す。
// 単一名称のレスポンスも要素1つのスライスに正規化してから扱う。
// 形状による分岐を呼び出し側に散らさないための統一表現。
type NameVariant struct {
	Type  string
	Value string
}

// NameTypePrimary は主表示名を示すNameVariant.Typeの値。
const NameTypePrimary = "primary"

// PollName はthingレコードに付随する投票の種別名。
type PollName string

// PollSuggestedNumPlayers は「推奨プレイ人数」投票の種別名。
// コアが解釈するのはこの投票のみで、他の投票種別は無視される。
const PollSuggestedNumPlayers PollName = "suggested_numplayers"

// PollVote は投票行の中の1タグぶんの得票を表す。
// タグは "Best" / "Recommended" / "Not Recommended" のいずれか。
type PollVote struct {
	Value    string
	NumVotes int
}

// PollResult は推奨プレイ人数投票の1行（1人数ぶん）を表す。
// NumPlayersは整数文字列または "4+" のような「以上」指定。
type PollResult struct {
	NumPlayers string
	Votes      []PollVote
}

// Poll はthingレコードに付随する投票1件を表す。
type Poll struct {
	Name    PollName
	Results []PollResult
}

// RawThingRecord はカタログ詳細ルックアップの1アイテムを表す。
// 外部フェッチコラボレーターが生成し、コアからは読み取り専用。
// MinPlayers/MaxPlayersは必須フィールドのため、要素自体の欠落を
// 検出できるようポインタで保持する（値0は「人数未設定」の正当なデータ）。
type RawThingRecord struct {
	ID              int
	Subtype         GameSubtype
	Names           []NameVariant
	Thumbnail       string
	Description     string
	MinPlayers      *int
	MaxPlayers      *int
	MinPlaytime     int
	MaxPlaytime     int
	AveragePlaytime int
	AverageWeight   float64
	AverageRating   *float64
	Polls           []Poll
}

// RawCollectionEntry は所有コレクション一覧の1行を表す。
// thingレコードと同一IDで対応付けられ、存在する場合はカタログ値より優先される。
// PersonalRatingは数値文字列・"N/A"センチネル・空文字（未評価）のいずれか。
type RawCollectionEntry struct {
	ObjectID          int
	Subtype           GameSubtype
	NameOverride      string
	OriginalName      string
	ThumbnailOverride string
	PersonalRating    string
	LastModified      time.Time
}

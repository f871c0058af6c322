// Package bgg はBoardGameGeek XML API2のクライアントを提供する。
// コレクション一覧とthing詳細の2エンドポイントを扱い、
// レスポンスをドメインモデルの生レコードに変換して返す。
package bgg

import "encoding/xml"

// XMLレスポンスのパース用内部型。

// xmlCollection はコレクションエンドポイントのルート要素。
type xmlCollection struct {
	XMLName    xml.Name            `xml:"items"`
	TotalItems int                 `xml:"totalitems,attr"`
	Items      []xmlCollectionItem `xml:"item"`
}

// xmlCollectionItem はコレクション内の1アイテム。
type xmlCollectionItem struct {
	ObjectID     int                 `xml:"objectid,attr"`
	Subtype      string              `xml:"subtype,attr"`
	Name         xmlCollectionName   `xml:"name"`
	OriginalName string              `xml:"originalname"`
	Thumbnail    string              `xml:"thumbnail"`
	Status       xmlCollectionStatus `xml:"status"`
	Stats        xmlCollectionStats  `xml:"stats"`
}

// xmlCollectionName はコレクションの名称要素。上書き名は文字データとして入る。
type xmlCollectionName struct {
	SortIndex int    `xml:"sortindex,attr"`
	Value     string `xml:",chardata"`
}

// xmlCollectionStatus は所有状態フラグと最終更新日時。
type xmlCollectionStatus struct {
	Own          string `xml:"own,attr"`
	LastModified string `xml:"lastmodified,attr"`
}

// xmlCollectionStats はコレクションアイテムの統計。
// 個人評価は数値文字列または "N/A" センチネル。
type xmlCollectionStats struct {
	Rating xmlCollectionRating `xml:"rating"`
}

// xmlCollectionRating は個人評価の要素。
type xmlCollectionRating struct {
	Value string `xml:"value,attr"`
}

// xmlThings はthingエンドポイントのルート要素。
type xmlThings struct {
	XMLName xml.Name       `xml:"items"`
	Items   []xmlThingItem `xml:"item"`
}

// xmlThingItem はthing詳細の1アイテム。
// minplayers/maxplayersは要素自体の欠落を検出するためポインタで保持する。
type xmlThingItem struct {
	Type        string         `xml:"type,attr"`
	ID          int            `xml:"id,attr"`
	Thumbnail   string         `xml:"thumbnail"`
	Names       []xmlNameElem  `xml:"name"`
	Description string         `xml:"description"`
	MinPlayers  *xmlIntValue   `xml:"minplayers"`
	MaxPlayers  *xmlIntValue   `xml:"maxplayers"`
	PlayingTime xmlIntValue    `xml:"playingtime"`
	MinPlayTime xmlIntValue    `xml:"minplaytime"`
	MaxPlayTime xmlIntValue    `xml:"maxplaytime"`
	Polls       []xmlPoll      `xml:"poll"`
	Statistics  *xmlStatistics `xml:"statistics"`
}

// xmlNameElem はtype/value属性を持つ名称要素。
type xmlNameElem struct {
	Type  string `xml:"type,attr"`
	Value string `xml:"value,attr"`
}

// xmlIntValue は整数value属性を持つ要素。
type xmlIntValue struct {
	Value int `xml:"value,attr"`
}

// xmlFloatValue は浮動小数value属性を持つ要素。
type xmlFloatValue struct {
	Value float64 `xml:"value,attr"`
}

// xmlPoll は投票要素。
type xmlPoll struct {
	Name       string           `xml:"name,attr"`
	TotalVotes int              `xml:"totalvotes,attr"`
	Results    []xmlPollResults `xml:"results"`
}

// xmlPollResults は特定の選択肢（人数など）の得票群。
type xmlPollResults struct {
	NumPlayers string          `xml:"numplayers,attr"`
	Results    []xmlPollResult `xml:"result"`
}

// xmlPollResult は投票の1タグぶんの得票。
type xmlPollResult struct {
	Value    string `xml:"value,attr"`
	NumVotes int    `xml:"numvotes,attr"`
}

// xmlStatistics はthingの統計情報。
type xmlStatistics struct {
	Ratings xmlRatings `xml:"ratings"`
}

// xmlRatings は評価統計。
type xmlRatings struct {
	UsersRated    xmlIntValue   `xml:"usersrated"`
	Average       xmlFloatValue `xml:"average"`
	AverageWeight xmlFloatValue `xml:"averageweight"`
}

// xmlErrors はカタログのエラーレスポンスのルート要素。
// 200ステータスで返ることがあるため、本文で判別する。
type xmlErrors struct {
	XMLName xml.Name   `xml:"errors"`
	Errors  []xmlError `xml:"error"`
}

// xmlError はエラー1件。
type xmlError struct {
	Message string `xml:"message"`
}

// xmlMessage はコレクション準備中（202）の本文メッセージ。
type xmlMessage struct {
	XMLName xml.Name `xml:"message"`
	Value   string   `xml:",chardata"`
}

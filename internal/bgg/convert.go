package bgg

import (
	"time"

	"github.com/davidhorm/bgg-what-to-play-sub000/internal/model"
)

// lastModifiedLayout はコレクションのlastmodified属性の日時フォーマット。
const lastModifiedLayout = "2006-01-02 15:04:05"

// convertCollectionItems はコレクションXMLをドメインの生レコードに変換する。
func convertCollectionItems(items []xmlCollectionItem) []model.RawCollectionEntry {
	entries := make([]model.RawCollectionEntry, 0, len(items))
	for _, item := range items {
		entry := model.RawCollectionEntry{
			ObjectID:          item.ObjectID,
			Subtype:           model.GameSubtype(item.Subtype),
			OriginalName:      item.OriginalName,
			ThumbnailOverride: item.Thumbnail,
			PersonalRating:    item.Stats.Rating.Value,
		}

		// originalnameが存在するのはユーザーが名称を上書きした場合のみ。
		// その場合、name要素の文字データが上書き名になる。
		if item.OriginalName != "" {
			entry.NameOverride = item.Name.Value
		}

		if item.Status.LastModified != "" {
			if t, err := time.Parse(lastModifiedLayout, item.Status.LastModified); err == nil {
				entry.LastModified = t
			}
		}

		entries = append(entries, entry)
	}
	return entries
}

// convertThingItems はthing詳細XMLをドメインの生レコードに変換する。
// 説明文はサニタイズしてから保持する。
func (c *Client) convertThingItems(items []xmlThingItem) []model.RawThingRecord {
	records := make([]model.RawThingRecord, 0, len(items))
	for _, item := range items {
		record := model.RawThingRecord{
			ID:              item.ID,
			Subtype:         model.GameSubtype(item.Type),
			Names:           convertNames(item.Names),
			Thumbnail:       item.Thumbnail,
			Description:     c.sanitizer.SanitizeDescription(item.Description),
			MinPlaytime:     item.MinPlayTime.Value,
			MaxPlaytime:     item.MaxPlayTime.Value,
			AveragePlaytime: item.PlayingTime.Value,
			Polls:           convertPolls(item.Polls),
		}

		// 要素の欠落（nil）と値0（人数未設定）を区別して伝える。
		if item.MinPlayers != nil {
			v := item.MinPlayers.Value
			record.MinPlayers = &v
		}
		if item.MaxPlayers != nil {
			v := item.MaxPlayers.Value
			record.MaxPlayers = &v
		}

		if stats := item.Statistics; stats != nil {
			record.AverageWeight = stats.Ratings.AverageWeight.Value
			// 評価者0件の平均評価は「評価なし」として扱う。
			if stats.Ratings.UsersRated.Value > 0 {
				avg := stats.Ratings.Average.Value
				record.AverageRating = &avg
			}
		}

		records = append(records, record)
	}
	return records
}

// convertNames は名称要素群をNameVariantに変換する。
// 単一名称のレスポンスも要素1つのスライスに正規化される。
func convertNames(names []xmlNameElem) []model.NameVariant {
	variants := make([]model.NameVariant, 0, len(names))
	for _, name := range names {
		variants = append(variants, model.NameVariant{Type: name.Type, Value: name.Value})
	}
	return variants
}

// convertPolls は投票要素群をドメイン表現に変換する。
// 投票種別の取捨選択は行わず、全投票をそのまま伝える。
func convertPolls(polls []xmlPoll) []model.Poll {
	converted := make([]model.Poll, 0, len(polls))
	for _, poll := range polls {
		p := model.Poll{Name: model.PollName(poll.Name)}
		for _, results := range poll.Results {
			row := model.PollResult{NumPlayers: results.NumPlayers}
			for _, result := range results.Results {
				row.Votes = append(row.Votes, model.PollVote{
					Value:    result.Value,
					NumVotes: result.NumVotes,
				})
			}
			p.Results = append(p.Results, row)
		}
		converted = append(converted, p)
	}
	return converted
}

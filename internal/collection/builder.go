package collection

import (
	"log/slog"
	"math"
	"strconv"

	"github.com/davidhorm/bgg-what-to-play-sub000/internal/model"
)

// BuildGameRecord はthingレコードとコレクション行から正規化ゲームレコードを構築する。
// コレクション行が存在する場合、その値（名称・サムネイル・個人評価の上書き）が
// カタログ値より優先される。副作用はなく、任意フィールドの欠落では失敗しない。
// 失敗するのは必須スカラー（id、min/maxプレイ人数）の欠落とデータ形状エラーのみ。
func BuildGameRecord(thing model.RawThingRecord, entry *model.RawCollectionEntry) (model.GameRecord, error) {
	if thing.ID == 0 {
		return model.GameRecord{}, model.NewMissingRequiredFieldError(thing.ID, "id")
	}
	if thing.MinPlayers == nil {
		return model.GameRecord{}, model.NewMissingRequiredFieldError(thing.ID, "minplayers")
	}
	if thing.MaxPlayers == nil {
		return model.GameRecord{}, model.NewMissingRequiredFieldError(thing.ID, "maxplayers")
	}

	name, err := resolveName(thing, entry)
	if err != nil {
		return model.GameRecord{}, err
	}

	recs, err := BuildRecommendations(thing.ID, thing.Polls)
	if err != nil {
		return model.GameRecord{}, err
	}

	return model.GameRecord{
		ID:                     thing.ID,
		Subtype:                thing.Subtype,
		Name:                   DecodeNumericEntities(name),
		Thumbnail:              resolveThumbnail(thing, entry),
		MinPlayers:             *thing.MinPlayers,
		MaxPlayers:             *thing.MaxPlayers,
		MinPlaytime:            thing.MinPlaytime,
		MaxPlaytime:            thing.MaxPlaytime,
		AverageWeight:          roundToDecimal(thing.AverageWeight),
		AverageRating:          averageRating(thing),
		UserRating:             userRating(entry),
		Description:            thing.Description,
		RecommendedPlayerCount: recs,
	}, nil
}

// SkippedGame はビルドに失敗してスキップされたレコードの記録。
type SkippedGame struct {
	ID     int
	Reason string
}

// BuildCollection はthingレコード群とコレクション行群からゲームレコード列を構築する。
// 不正なレコード1件でバッチ全体を失敗させない方針: ビルドに失敗したレコードは
// ログに記録してスキップし、スキップ一覧を結果とあわせて返す。
func BuildCollection(
	things []model.RawThingRecord,
	entries []model.RawCollectionEntry,
	logger *slog.Logger,
) ([]model.GameRecord, []SkippedGame) {
	entryByID := make(map[int]*model.RawCollectionEntry, len(entries))
	for i := range entries {
		entryByID[entries[i].ObjectID] = &entries[i]
	}

	games := make([]model.GameRecord, 0, len(things))
	var skipped []SkippedGame

	for _, thing := range things {
		game, err := BuildGameRecord(thing, entryByID[thing.ID])
		if err != nil {
			logger.Warn("ゲームレコードのビルドに失敗したためスキップします",
				slog.Int("game_id", thing.ID),
				slog.String("error", err.Error()),
			)
			skipped = append(skipped, SkippedGame{ID: thing.ID, Reason: err.Error()})
			continue
		}
		games = append(games, game)
	}

	return games, skipped
}

// resolveName は名称の優先順位を解決する。
// コレクション行の上書き名 → コレクション行の元名称 → thingの主表示名の順。
func resolveName(thing model.RawThingRecord, entry *model.RawCollectionEntry) (string, error) {
	if entry != nil {
		if entry.NameOverride != "" {
			return entry.NameOverride, nil
		}
		if entry.OriginalName != "" {
			return entry.OriginalName, nil
		}
	}
	return ResolvePrimaryName(thing.ID, thing.Names)
}

// resolveThumbnail はサムネイルの優先順位を解決する。
// コレクション行の上書き → thingのサムネイル → 固定の代替画像URLの順。
func resolveThumbnail(thing model.RawThingRecord, entry *model.RawCollectionEntry) string {
	if entry != nil && entry.ThumbnailOverride != "" {
		return entry.ThumbnailOverride
	}
	if thing.Thumbnail != "" {
		return thing.Thumbnail
	}
	return model.FallbackThumbnailURL
}

// averageRating はthingの平均評価を1桁丸めで返す。欠落時は未設定。
func averageRating(thing model.RawThingRecord) model.Rating {
	if thing.AverageRating == nil {
		return model.NoRating()
	}
	return model.RatingOf(roundToDecimal(*thing.AverageRating))
}

// userRating はコレクション行の個人評価を解決する。
// 数値なら1桁丸め、"N/A"等の非数値センチネルはそのまま通し、空なら未設定。
func userRating(entry *model.RawCollectionEntry) model.Rating {
	if entry == nil || entry.PersonalRating == "" {
		return model.NoRating()
	}
	v, err := strconv.ParseFloat(entry.PersonalRating, 64)
	if err != nil {
		return model.RatingNA()
	}
	return model.RatingOf(roundToDecimal(v))
}

// roundToDecimal は小数第1位に丸める。
func roundToDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}

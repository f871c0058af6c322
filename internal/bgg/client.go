package bgg

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/davidhorm/bgg-what-to-play-sub000/internal/model"
)

const (
	// DefaultBaseURL はカタログAPIのデフォルトベースURL。
	DefaultBaseURL = "https://boardgamegeek.com/xmlapi2"
	// thingChunkSize は1回のthingルックアップで送るIDの最大数。
	thingChunkSize = 20
	// userAgent はカタログAPIへのリクエストに付与するUser-Agent。
	userAgent = "bgg-what-to-play/1.0"
)

// DescriptionSanitizer はゲーム説明文のサニタイズ処理のインターフェース。
type DescriptionSanitizer interface {
	SanitizeDescription(raw string) string
}

// StatusRecorder はカタログAPIのHTTPステータスを記録するフック。
// metrics.Collectorが実装する。
type StatusRecorder interface {
	RecordCatalogHTTPStatus(statusCode int)
}

// Config はClientの設定。
type Config struct {
	// BaseURL はカタログAPIのベースURL。空ならDefaultBaseURL。
	BaseURL string
	// MaxBodySize はレスポンスボディの最大サイズ（バイト）。
	MaxBodySize int64
	// MaxAcceptedRetries は「受理・後で再試行」ステータスのリトライ上限回数。
	MaxAcceptedRetries int
	// RequestsPerSecond はカタログAPIへのリクエストレート上限。
	RequestsPerSecond float64
	// StatusRecorder はレスポンスごとにHTTPステータスを記録するフック。
	// nilの場合は記録しない。
	StatusRecorder StatusRecorder
}

// Client はカタログAPIのHTTPクライアント。
// レートリミッタを全リクエストで共有し、カタログ側の
// 流量制限に抵触しないようにする。
type Client struct {
	baseURL            string
	httpClient         *http.Client
	limiter            *rate.Limiter
	sanitizer          DescriptionSanitizer
	logger             *slog.Logger
	maxBodySize        int64
	maxAcceptedRetries int
	retryDelay         func(attempt int) time.Duration
	status             StatusRecorder
}

// NewClient はClientの新しいインスタンスを生成する。
// httpClientにはSSRF防止機能付きのクライアントを渡す。
func NewClient(cfg Config, httpClient *http.Client, sanitizer DescriptionSanitizer, logger *slog.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	maxBodySize := cfg.MaxBodySize
	if maxBodySize <= 0 {
		maxBodySize = 10 * 1024 * 1024
	}
	maxRetries := cfg.MaxAcceptedRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxAcceptedRetries
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		baseURL:            strings.TrimRight(baseURL, "/"),
		httpClient:         httpClient,
		limiter:            rate.NewLimiter(rate.Limit(rps), 1),
		sanitizer:          sanitizer,
		logger:             logger,
		maxBodySize:        maxBodySize,
		maxAcceptedRetries: maxRetries,
		retryDelay:         CalculateRetryDelay,
		status:             cfg.StatusRecorder,
	}
}

// FetchCollection はユーザーの所有コレクション一覧を取得する。
// カタログ側がコレクションを生成中の場合（202）は指数バックオフで
// リトライし、上限に達したらCOLLECTION_PREPARINGエラーを返す。
func (c *Client) FetchCollection(ctx context.Context, username string) ([]model.RawCollectionEntry, error) {
	if username == "" {
		return nil, model.NewInvalidUsernameError(username)
	}

	reqURL := fmt.Sprintf("%s/collection?username=%s&own=1&stats=1", c.baseURL, url.QueryEscape(username))

	for attempt := 0; attempt <= c.maxAcceptedRetries; attempt++ {
		body, result, err := c.get(ctx, reqURL)
		if err != nil {
			return nil, err
		}

		switch result {
		case FetchResultOK:
			return c.decodeCollection(username, body)

		case FetchResultAccepted:
			// カタログ側で生成中。待ってから再試行する。
			delay := c.retryDelay(attempt)
			c.logger.Info("コレクション準備中のため再試行します",
				slog.String("username", username),
				slog.Int("attempt", attempt+1),
				slog.Float64("delay_seconds", delay.Seconds()),
				slog.String("catalog_message", acceptedMessage(body)),
			)
			if err := sleepContext(ctx, delay); err != nil {
				return nil, err
			}

		case FetchResultNotFound:
			return nil, model.NewCollectionNotFoundError(username)

		default:
			return nil, model.NewCatalogUnavailableError(fmt.Sprintf("コレクション取得が失敗しました: username=%s", username))
		}
	}

	return nil, model.NewCollectionPreparingError(username)
}

// FetchThings は指定IDのthing詳細レコードを取得する。
// IDはチャンクに分割して並行リクエストし、入力順を保って返す。
func (c *Client) FetchThings(ctx context.Context, ids []int) ([]model.RawThingRecord, error) {
	if len(ids) == 0 {
		return []model.RawThingRecord{}, nil
	}

	chunks := chunkIDs(ids, thingChunkSize)
	results := make([][]model.RawThingRecord, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		g.Go(func() error {
			records, err := c.fetchThingChunk(gctx, chunk)
			if err != nil {
				return err
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make([]model.RawThingRecord, 0, len(ids))
	for _, records := range results {
		merged = append(merged, records...)
	}
	return merged, nil
}

// fetchThingChunk は1チャンクぶんのthing詳細を取得する。
func (c *Client) fetchThingChunk(ctx context.Context, ids []int) ([]model.RawThingRecord, error) {
	idTokens := make([]string, len(ids))
	for i, id := range ids {
		idTokens[i] = strconv.Itoa(id)
	}
	reqURL := fmt.Sprintf("%s/thing?id=%s&stats=1", c.baseURL, strings.Join(idTokens, ","))

	body, result, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	if result != FetchResultOK {
		return nil, model.NewCatalogUnavailableError(fmt.Sprintf("詳細ルックアップが失敗しました: ids=%v", ids))
	}

	var things xmlThings
	if err := decodeXML(body, &things); err != nil {
		return nil, model.NewCatalogUnavailableError(fmt.Sprintf("詳細レスポンスのパースに失敗しました: %s", err))
	}
	return c.convertThingItems(things.Items), nil
}

// get はレートリミッタを通してGETリクエストを実行し、
// 本文とステータス分類を返す。
func (c *Client) get(ctx context.Context, reqURL string) ([]byte, FetchResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, FetchResultUnknown, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, FetchResultUnknown, fmt.Errorf("リクエスト作成に失敗: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/xml, text/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("カタログAPIへのリクエストに失敗しました",
			slog.String("url", reqURL),
			slog.String("error", err.Error()),
		)
		return nil, FetchResultUnknown, model.NewCatalogUnavailableError(err.Error())
	}
	defer resp.Body.Close()

	if c.status != nil {
		c.status.RecordCatalogHTTPStatus(resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return nil, FetchResultUnknown, model.NewCatalogUnavailableError(fmt.Sprintf("レスポンス読み取りに失敗: %s", err))
	}

	return body, ClassifyHTTPStatus(resp.StatusCode), nil
}

// decodeCollection はコレクションレスポンスをパースして変換する。
// カタログはエラーを200ステータスの<errors>要素で返すことがあるため、
// 本文で判別する。
func (c *Client) decodeCollection(username string, body []byte) ([]model.RawCollectionEntry, error) {
	var errsDoc xmlErrors
	if err := decodeXML(body, &errsDoc); err == nil && len(errsDoc.Errors) > 0 {
		message := errsDoc.Errors[0].Message
		if strings.Contains(strings.ToLower(message), "invalid username") {
			return nil, model.NewInvalidUsernameError(username)
		}
		return nil, model.NewCatalogUnavailableError(message)
	}

	var coll xmlCollection
	if err := decodeXML(body, &coll); err != nil {
		return nil, model.NewCatalogUnavailableError(fmt.Sprintf("コレクションレスポンスのパースに失敗しました: %s", err))
	}
	return convertCollectionItems(coll.Items), nil
}

// acceptedMessage は202本文からカタログのキューメッセージを取り出す。
// 本文が期待形式でない場合は空文字を返す。
func acceptedMessage(body []byte) string {
	var msg xmlMessage
	if err := decodeXML(body, &msg); err != nil {
		return ""
	}
	return strings.TrimSpace(msg.Value)
}

// decodeXML は文字セット対応のXMLデコードを行う。
// カタログはUTF-8以外のエンコーディング宣言を返すことがある。
func decodeXML(body []byte, v any) error {
	decoder := xml.NewDecoder(strings.NewReader(string(body)))
	decoder.CharsetReader = charset.NewReaderLabel
	return decoder.Decode(v)
}

// chunkIDs はIDリストをsize個ずつのチャンクに分割する。
func chunkIDs(ids []int, size int) [][]int {
	var chunks [][]int
	for len(ids) > size {
		chunks = append(chunks, ids[:size])
		ids = ids[size:]
	}
	return append(chunks, ids)
}

// sleepContext はコンテキストのキャンセルを尊重して待機する。
func sleepContext(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

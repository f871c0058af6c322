package bgg

import "time"

// FetchResult はHTTPステータスコードに基づくフェッチ結果の分類。
type FetchResult int

const (
	// FetchResultOK はフェッチ成功（200）。
	FetchResultOK FetchResult = iota
	// FetchResultAccepted はリクエスト受理・後で再試行（202）。
	// カタログ側でコレクションを生成中であり、「データなし」とは区別される。
	FetchResultAccepted
	// FetchResultNotFound はリソース未検出（404）。
	FetchResultNotFound
	// FetchResultBackoff はバックオフが必要なステータス（429/5xx）。
	FetchResultBackoff
	// FetchResultUnknown は未知のステータスコード。
	FetchResultUnknown
)

const (
	// initialRetryDelay は202リトライの初回遅延。
	initialRetryDelay = 2 * time.Second
	// maxRetryDelay は202リトライの最大遅延。
	maxRetryDelay = 30 * time.Second
	// defaultMaxAcceptedRetries は202リトライのデフォルト上限回数。
	defaultMaxAcceptedRetries = 5
)

// ClassifyHTTPStatus はHTTPステータスコードをフェッチ結果に分類する。
func ClassifyHTTPStatus(statusCode int) FetchResult {
	switch {
	case statusCode == 200:
		return FetchResultOK
	case statusCode == 202:
		return FetchResultAccepted
	case statusCode == 404:
		return FetchResultNotFound
	case statusCode == 429:
		return FetchResultBackoff
	case statusCode >= 500:
		return FetchResultBackoff
	default:
		return FetchResultUnknown
	}
}

// CalculateRetryDelay はリトライ回数に基づいて指数バックオフ遅延を計算する。
// 初回2秒、2倍ずつ増加、最大30秒。
func CalculateRetryDelay(attempt int) time.Duration {
	delay := initialRetryDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay > maxRetryDelay {
			return maxRetryDelay
		}
	}
	return delay
}

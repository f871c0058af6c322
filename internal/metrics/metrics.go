// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とワーカーから利用する。
type MetricsCollector interface {
	RecordCatalogFetchSuccess(username string)
	RecordCatalogFetchFailure(username string, reason string)
	RecordCatalogHTTPStatus(statusCode int)
	RecordCatalogFetchLatency(duration time.Duration)
	RecordGamesBuilt(count int)
	RecordGamesSkipped(count int)
	RecordCacheHit()
	RecordCacheMiss()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	catalogFetchSuccess prometheus.Counter
	catalogFetchFail    prometheus.Counter
	catalogHTTPStatus   *prometheus.CounterVec
	catalogLatency      prometheus.Histogram
	gamesBuilt          prometheus.Counter
	gamesSkipped        prometheus.Counter
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		catalogFetchSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bggwtp_catalog_fetch_success_total",
			Help: "カタログフェッチ成功の合計数",
		}),
		catalogFetchFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bggwtp_catalog_fetch_fail_total",
			Help: "カタログフェッチ失敗の合計数",
		}),
		catalogHTTPStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bggwtp_catalog_http_status_total",
			Help: "カタログAPIのHTTPステータスコード別レスポンス数",
		}, []string{"status_code"}),
		catalogLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bggwtp_catalog_fetch_latency_seconds",
			Help:    "カタログフェッチのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		gamesBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bggwtp_games_built_total",
			Help: "ビルドされたゲームレコードの合計数",
		}),
		gamesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bggwtp_games_skipped_total",
			Help: "ビルド失敗によりスキップされたゲームレコードの合計数",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bggwtp_collection_cache_hits_total",
			Help: "コレクションキャッシュヒットの合計数",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bggwtp_collection_cache_misses_total",
			Help: "コレクションキャッシュミスの合計数",
		}),
	}

	reg.MustRegister(
		c.catalogFetchSuccess,
		c.catalogFetchFail,
		c.catalogHTTPStatus,
		c.catalogLatency,
		c.gamesBuilt,
		c.gamesSkipped,
		c.cacheHits,
		c.cacheMisses,
	)

	return c
}

// RecordCatalogFetchSuccess はカタログフェッチ成功を記録する。
func (c *Collector) RecordCatalogFetchSuccess(username string) {
	c.catalogFetchSuccess.Inc()
}

// RecordCatalogFetchFailure はカタログフェッチ失敗を記録する。
func (c *Collector) RecordCatalogFetchFailure(username string, reason string) {
	c.catalogFetchFail.Inc()
}

// RecordCatalogHTTPStatus はカタログAPIのHTTPステータスコードを記録する。
func (c *Collector) RecordCatalogHTTPStatus(statusCode int) {
	c.catalogHTTPStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordCatalogFetchLatency はカタログフェッチのレイテンシを記録する。
func (c *Collector) RecordCatalogFetchLatency(duration time.Duration) {
	c.catalogLatency.Observe(duration.Seconds())
}

// RecordGamesBuilt はビルドされたゲームレコード数を記録する。
func (c *Collector) RecordGamesBuilt(count int) {
	c.gamesBuilt.Add(float64(count))
}

// RecordGamesSkipped はスキップされたゲームレコード数を記録する。
func (c *Collector) RecordGamesSkipped(count int) {
	c.gamesSkipped.Add(float64(count))
}

// RecordCacheHit はキャッシュヒットを記録する。
func (c *Collector) RecordCacheHit() {
	c.cacheHits.Inc()
}

// RecordCacheMiss はキャッシュミスを記録する。
func (c *Collector) RecordCacheMiss() {
	c.cacheMisses.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}

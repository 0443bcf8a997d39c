// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hitoshi/styleai/internal/completion"
	"github.com/hitoshi/styleai/internal/model"
)

// Collector はPrometheusメトリクスを収集する実装。
// completion.Recorder、stylist.Recorder、middleware.StatusObserver を満たす。
type Collector struct {
	completionRequests *prometheus.CounterVec
	completionLatency  *prometheus.HistogramVec
	completionFallback prometheus.Counter
	recsSaved          *prometheus.CounterVec
	recSaveFailures    prometheus.Counter
	httpStatus         *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		completionRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "styleai_completion_requests_total",
			Help: "LLM問い合わせの種類・結果別の合計数",
		}, []string{"mode", "outcome"}),
		completionLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "styleai_completion_latency_seconds",
			Help:    "LLM問い合わせのレイテンシ（秒）",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 45, 90},
		}, []string{"mode"}),
		completionFallback: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "styleai_completion_fallback_total",
			Help: "画像付き問い合わせ失敗によるテキストへのフォールバック数",
		}),
		recsSaved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "styleai_recommendations_saved_total",
			Help: "履歴に保存された生成結果の種類別の合計数",
		}, []string{"request_type"}),
		recSaveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "styleai_recommendation_save_failures_total",
			Help: "生成結果の履歴保存に失敗した合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "styleai_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.completionRequests,
		c.completionLatency,
		c.completionFallback,
		c.recsSaved,
		c.recSaveFailures,
		c.httpStatus,
	)

	return c
}

// ObserveCompletion はLLM問い合わせの結果とレイテンシを記録する。
// APIキー未設定の場合は問い合わせていないためレイテンシは記録しない。
func (c *Collector) ObserveCompletion(mode completion.Mode, outcome completion.Outcome, elapsed time.Duration) {
	c.completionRequests.WithLabelValues(string(mode), string(outcome)).Inc()
	if outcome == completion.OutcomeNoKey {
		return
	}
	c.completionLatency.WithLabelValues(string(mode)).Observe(elapsed.Seconds())
}

// IncFallback は画像付き問い合わせからテキストへのフォールバックを記録する。
func (c *Collector) IncFallback() {
	c.completionFallback.Inc()
}

// RecommendationSaved は生成結果の保存を記録する。
func (c *Collector) RecommendationSaved(requestType model.RequestType) {
	c.recsSaved.WithLabelValues(string(requestType)).Inc()
}

// RecommendationSaveFailed は生成結果の保存失敗を記録する。
func (c *Collector) RecommendationSaveFailed() {
	c.recSaveFailures.Inc()
}

// ObserveHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) ObserveHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/hitoshi/supportdesk/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 操作結果のラベル値
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// MetricsCollector はメトリクス収集のインターフェース。
// セッション操作、ガード、HTTPミドルウェアから利用する。
type MetricsCollector interface {
	RecordSessionOperation(op string, result string)
	RecordOperationLatency(op string, duration time.Duration)
	RecordGuardRedirect(policy string)
	RecordHTTPStatus(statusCode int)
	RecordTicketCreated()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	sessionOps     *prometheus.CounterVec
	opLatency      *prometheus.HistogramVec
	guardRedirects *prometheus.CounterVec
	httpStatus     *prometheus.CounterVec
	ticketsCreated prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		sessionOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "supportdesk_session_operations_total",
			Help: "セッション操作の結果別合計数",
		}, []string{"op", "result"}),
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "supportdesk_operation_latency_seconds",
			Help:    "擬似レイテンシを含む操作全体の所要時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		guardRedirects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "supportdesk_guard_redirects_total",
			Help: "ルートガードによるリダイレクト数",
		}, []string{"policy"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "supportdesk_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		ticketsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "supportdesk_tickets_created_total",
			Help: "作成されたチケットの合計数",
		}),
	}

	reg.MustRegister(
		c.sessionOps,
		c.opLatency,
		c.guardRedirects,
		c.httpStatus,
		c.ticketsCreated,
	)

	return c
}

// RecordSessionOperation はセッション操作の結果を記録する。
func (c *Collector) RecordSessionOperation(op string, result string) {
	c.sessionOps.WithLabelValues(op, result).Inc()
}

// RecordOperationLatency は操作の所要時間を記録する。
func (c *Collector) RecordOperationLatency(op string, duration time.Duration) {
	c.opLatency.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordGuardRedirect はガードによるリダイレクトを記録する。
func (c *Collector) RecordGuardRedirect(policy string) {
	c.guardRedirects.WithLabelValues(policy).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordTicketCreated はチケット作成を記録する。
func (c *Collector) RecordTicketCreated() {
	c.ticketsCreated.Inc()
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

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)

// ResultOf は操作のエラーから結果ラベルを決定する。
// APIErrorは利用者の入力や状態による拒否、それ以外は内部エラーとして扱う。
func ResultOf(err error) string {
	if err == nil {
		return ResultSuccess
	}
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return ResultRejected
	}
	return ResultError
}

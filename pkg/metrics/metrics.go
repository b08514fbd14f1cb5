// Package metrics 订单引擎的Prometheus指标
//
// 指标在包初始化时通过promauto注册到默认Registry，业务代码直接使用，
// /metrics端点由Handler()暴露。
//
// 命名规范：Counter以_total结尾，Histogram以单位结尾（_seconds），
// 标签只使用有限取值（method、status、result），不要用user_id/book_id做标签。
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 库存预占结果标签
const (
	ResultSuccess      = "success"
	ResultInsufficient = "insufficient"
	ResultNotFound     = "not_found"
	ResultError        = "error"
)

var (
	// HTTPRequestsTotal HTTP请求总数，标签：method、path、status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	// OrdersPlacedTotal 下单成功总数
	OrdersPlacedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_placed_total",
			Help: "下单成功总数",
		},
	)

	// OrdersFailedTotal 下单失败总数，标签：reason（validation/stock/storage）
	OrdersFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_failed_total",
			Help: "下单失败总数",
		},
		[]string{"reason"},
	)

	// OrderPlacementDuration 下单耗时（含预占与持久化）
	OrderPlacementDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "order_placement_duration_seconds",
			Help:    "下单耗时（秒）",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
	)

	// OrdersInProgress 正在处理的下单请求数
	OrdersInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "orders_in_progress",
			Help: "正在处理的下单请求数",
		},
	)

	// StockReservationsTotal 库存预占次数，标签：result
	StockReservationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_reservations_total",
			Help: "库存预占次数",
		},
		[]string{"result"},
	)

	// StockCASConflictsTotal CAS冲突重试次数
	StockCASConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stock_cas_conflicts_total",
			Help: "库存CAS冲突重试次数",
		},
	)

	// StockReleasesTotal 库存释放次数，标签：result（success/error）
	StockReleasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_releases_total",
			Help: "库存释放（补偿）次数",
		},
		[]string{"result"},
	)

	// CircuitBreakerState 熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		},
		[]string{"name"},
	)

	// CircuitBreakerRequests 熔断器请求数，标签：name、result（success/failure/rejected）
	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "熔断器请求总数",
		},
		[]string{"name", "result"},
	)

	// SagaExecutionsTotal Saga执行总数，标签：result（success/failure）
	SagaExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saga_executions_total",
			Help: "Saga执行总数",
		},
		[]string{"result"},
	)

	// SagaExecutionDuration Saga执行耗时
	SagaExecutionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "saga_execution_duration_seconds",
			Help:    "Saga执行耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5},
		},
	)

	// SagaCompensationsTotal Saga补偿执行总数
	SagaCompensationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "saga_compensations_total",
			Help: "Saga补偿执行总数",
		},
	)

	// MessagesPublishedTotal 消息发布总数，标签：topic、result
	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "消息发布总数",
		},
		[]string{"topic", "result"},
	)
)

// Handler /metrics端点
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveReservation 记录一次预占结果
func ObserveReservation(result string) {
	StockReservationsTotal.WithLabelValues(result).Inc()
}

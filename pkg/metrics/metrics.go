package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 每个 update 的处理结果计数
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledgerbot_turns_total",
			Help: "Total number of processed chat updates",
		},
		[]string{"kind", "outcome"}, // kind: message, callback; outcome: ok, failed, duplicate
	)

	// 单个 turn 的处理延迟（秒）
	TurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledgerbot_turn_duration_seconds",
			Help:    "Chat update processing duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		},
		[]string{"kind"},
	)

	// 表单校验失败（重新提示）计数
	FormValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledgerbot_form_validation_failures_total",
			Help: "Total number of rejected form inputs",
		},
		[]string{"form", "step"},
	)

	// 记录创建计数
	RecordsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledgerbot_records_created_total",
			Help: "Total number of records created through forms",
		},
		[]string{"record"}, // record: project, task, expense
	)

	// 数据库查询延迟（秒）
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledgerbot_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation", "table"},
	)

	// 慢查询计数
	SlowQueryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledgerbot_db_slow_queries_total",
			Help: "Total number of queries slower than the configured threshold",
		},
		[]string{"sql"},
	)

	// 事件发布计数
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledgerbot_events_published_total",
			Help: "Total number of domain events handed to the broker",
		},
		[]string{"routing_key", "status"}, // status: success, failed, dropped
	)
)

// RecordTurn 记录一次 turn 的结果与耗时
func RecordTurn(kind, outcome string, duration time.Duration) {
	TurnsTotal.WithLabelValues(kind, outcome).Inc()
	TurnDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// IncrementFormValidationFailure 增加表单校验失败计数
func IncrementFormValidationFailure(form, step string) {
	FormValidationFailures.WithLabelValues(form, step).Inc()
}

// IncrementRecordsCreated 增加记录创建计数
func IncrementRecordsCreated(record string) {
	RecordsCreated.WithLabelValues(record).Inc()
}

// RecordDBQueryDuration 记录数据库查询延迟
func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// IncrementSlowQuery 增加慢查询计数
func IncrementSlowQuery(sql string, _ time.Duration) {
	SlowQueryCount.WithLabelValues(sql).Inc()
}

// IncrementEventPublished 增加事件发布计数
func IncrementEventPublished(routingKey, status string) {
	EventsPublished.WithLabelValues(routingKey, status).Inc()
}

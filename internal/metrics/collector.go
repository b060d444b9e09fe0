// Package metrics 提供 Prometheus 指标采集与上报的统一封装。
// 该包集中定义日志聚合服务的关键指标（追加、淘汰、轮询、持久化、订阅），
// 便于在各模块复用并保持标签一致。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 封装日志聚合服务的运行时指标集合。
// 所有字段均为 Prometheus 指标类型，通过辅助方法更新指标值。
type Metrics struct {
	// EntriesTotal 追加到缓冲区的条目总数计数器
	// 标签: level, source
	EntriesTotal *prometheus.CounterVec

	// EvictionsTotal 因容量溢出被淘汰的条目总数计数器
	EvictionsTotal prometheus.Counter

	// StoreSize 缓冲区当前条目数
	StoreSize prometheus.Gauge

	// PollCyclesTotal 远端轮询周期计数器
	// 标签: status (success/error/empty)
	PollCyclesTotal *prometheus.CounterVec

	// PollBatchSize 单次轮询合并的条目数直方图
	// 桶边界: 1, 5, 10, 25, 50, 100, 250
	PollBatchSize prometheus.Histogram

	// PersistFailuresTotal 持久化失败次数计数器
	PersistFailuresTotal prometheus.Counter

	// Subscribers 当前注册的日志观察者数量
	Subscribers prometheus.Gauge
}

// New 创建并注册一组 Prometheus 指标。
// namespace 用于作为所有指标名前缀，便于在同一 Prometheus 中区分不同应用。
func New(namespace string) *Metrics {
	return &Metrics{
		EntriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "log_entries_total",
				Help:      "Total number of log entries appended to the store",
			},
			[]string{"level", "source"},
		),
		EvictionsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "log_evictions_total",
				Help:      "Total number of log entries evicted on overflow",
			},
		),
		StoreSize: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "log_store_size",
				Help:      "Current number of entries in the log store",
			},
		),
		PollCyclesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "remote_poll_cycles_total",
				Help:      "Total number of remote poll cycles",
			},
			[]string{"status"},
		),
		PollBatchSize: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "remote_poll_batch_size",
				Help:      "Number of entries merged per remote poll cycle",
				Buckets:   []float64{1, 5, 10, 25, 50, 100, 250},
			},
		),
		PersistFailuresTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "persist_failures_total",
				Help:      "Total number of failed persistence writes",
			},
		),
		Subscribers: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "log_subscribers",
				Help:      "Currently registered log observers",
			},
		),
	}
}

// Package metrics 提供 Prometheus 指标采集
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 应用指标集合，挂在独立的 Registry 上
type Metrics struct {
	registry *prometheus.Registry

	generationsTotal  *prometheus.CounterVec
	generationSeconds *prometheus.HistogramVec
	sessionsScheduled prometheus.Counter
	optimizationScore prometheus.Histogram
	searchBacktracks  prometheus.Histogram

	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// New 创建并注册全部指标
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		generationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "paike",
			Name:      "generations_total",
			Help:      "课表生成次数，按终态统计",
		}, []string{"status"}),
		generationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "paike",
			Name:      "generation_duration_seconds",
			Help:      "单次课表生成耗时",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		}, []string{"status"}),
		sessionsScheduled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "paike",
			Name:      "sessions_scheduled_total",
			Help:      "累计排入的节次数",
		}),
		optimizationScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "paike",
			Name:      "optimization_score",
			Help:      "课表优化得分分布",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}),
		searchBacktracks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "paike",
			Name:      "search_backtracks",
			Help:      "单次搜索的回溯次数分布",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "paike",
			Name:      "http_requests_total",
			Help:      "HTTP 请求总数",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "paike",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP 请求耗时",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	m.registry.MustRegister(
		m.generationsTotal,
		m.generationSeconds,
		m.sessionsScheduled,
		m.optimizationScore,
		m.searchBacktracks,
		m.httpRequestsTotal,
		m.httpDuration,
	)
	return m
}

// ObserveGeneration 记录一次生成的结果指标
func (m *Metrics) ObserveGeneration(status string, duration time.Duration, sessions, backtracks int, score float64) {
	m.generationsTotal.WithLabelValues(status).Inc()
	m.generationSeconds.WithLabelValues(status).Observe(duration.Seconds())
	m.sessionsScheduled.Add(float64(sessions))
	m.optimizationScore.Observe(score)
	m.searchBacktracks.Observe(float64(backtracks))
}

// ObserveHTTP 记录一次 HTTP 请求
func (m *Metrics) ObserveHTTP(method, path string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// Handler 返回指标暴露端点
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

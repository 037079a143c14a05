package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ums"

// Metrics 应用 Prometheus 指标（独立 Registry，不使用全局默认注册表）
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
	RegistrationsCreate prometheus.Counter
	StatusTransitions   *prometheus.CounterVec
	SemestersCreated    prometheus.Counter
}

// New 创建并注册所有指标
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		RegistrationsCreate: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "semester_registrations_created_total",
			Help:      "Total number of semester registrations created",
		}),
		StatusTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "semester_registration_transitions_total",
			Help:      "Semester registration status changes by source and target status",
		}, []string{"from", "to"}),
		SemestersCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "academic_semesters_created_total",
			Help:      "Total number of academic semesters created",
		}),
	}
}

// IncRegistrationsCreated 注册创建成功 +1
func (m *Metrics) IncRegistrationsCreated() {
	if m == nil {
		return
	}
	m.RegistrationsCreate.Inc()
}

// IncTransition 状态变更 +1（同状态更新不计数）
func (m *Metrics) IncTransition(from, to string) {
	if m == nil || from == to {
		return
	}
	m.StatusTransitions.WithLabelValues(from, to).Inc()
}

// IncSemestersCreated 学年学期创建成功 +1
func (m *Metrics) IncSemestersCreated() {
	if m == nil {
		return
	}
	m.SemestersCreated.Inc()
}

// Middleware HTTP 请求计数与耗时
// route 使用 gin 路由模板（如 /api/v1/semester-registrations/:id），未匹配路由记为 "unmatched"
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		m.HTTPRequests.WithLabelValues(c.Request.Method, route, status).Inc()
		m.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler /metrics 端点
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry 暴露底层注册表（测试使用）
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Package metrics 提供 Prometheus 指标注册与暴露
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/teleshop/storefront/pkg/logger"
)

// Metrics 指标集合
type Metrics struct {
	registry *prometheus.Registry

	// HTTP 请求计数
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// 价格表上传次数（mode: preview / commit）
	PriceUploadsTotal *prometheus.CounterVec
	// 价格表条目处理结果（result: success / failed）
	PriceUploadEntriesTotal *prometheus.CounterVec

	// 订单创建计数
	OrdersCreatedTotal prometheus.Counter
	// Telegram 通知发送结果（status: ok / error）
	NotificationsTotal *prometheus.CounterVec
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),

		PriceUploadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "price_uploads_total",
			Help:      "Total price list uploads",
		}, []string{"mode"}),
		PriceUploadEntriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "price_upload_entries_total",
			Help:      "Price list entries processed during commit",
		}, []string{"result"}),

		OrdersCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "orders_created_total",
			Help:      "Total orders created",
		}),
		NotificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "notifications_total",
			Help:      "Telegram notifications sent",
		}, []string{"status"}),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.PriceUploadsTotal,
		m.PriceUploadEntriesTotal,
		m.OrdersCreatedTotal,
		m.NotificationsTotal,
	)

	return m
}

// ObserveHTTPRequest 记录一次 HTTP 请求
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// Handler 返回 Prometheus 抓取端点的 http.Handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve 在独立端口上暴露指标端点
func (m *Metrics) Serve(port int, path string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		logger.Info(context.Background(), "Metrics server started", "port", port, "path", path)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(context.Background(), "Metrics server failed", "error", err)
		}
	}()

	return srv
}

// Package metrics holds the Prometheus collectors for the settings service.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

var (
	settingsUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modflags_settings_updates_total",
			Help: "Total number of settings updates, by whether the value changed.",
		},
		[]string{"changed"},
	)
	settingsPersistFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "modflags_settings_persist_failures_total",
			Help: "Total number of settings writes that failed to persist.",
		},
	)
	settingsDecodeFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "modflags_settings_decode_fallbacks_total",
			Help: "Total number of persisted payloads replaced by defaults on load.",
		},
	)
	settingsSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "modflags_settings_subscribers",
			Help: "Number of active settings subscriptions.",
		},
	)
	messagesMarkedDeletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "modflags_messages_marked_deleted_total",
			Help: "Total number of messages kept with a deleted marker instead of being removed.",
		},
	)
	syncRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modflags_sync_runs_total",
			Help: "Total number of settings snapshot syncs, by result.",
		},
		[]string{"result"},
	)
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modflags_http_requests_total",
			Help: "Total number of HTTP requests processed.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "modflags_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	grpcServerHandledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modflags_grpc_server_handled_total",
			Help: "Total number of gRPC requests handled by the server.",
		},
		[]string{"grpc_service", "grpc_method", "grpc_code"},
	)
)

func init() {
	prometheus.MustRegister(
		settingsUpdatesTotal,
		settingsPersistFailuresTotal,
		settingsDecodeFallbacksTotal,
		settingsSubscribers,
		messagesMarkedDeletedTotal,
		syncRunsTotal,
		httpRequestsTotal,
		httpRequestDuration,
		grpcServerHandledTotal,
	)
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

func IncSettingsUpdate(changed bool) {
	settingsUpdatesTotal.WithLabelValues(strconv.FormatBool(changed)).Inc()
}

func IncPersistFailure() {
	settingsPersistFailuresTotal.Inc()
}

func IncDecodeFallback() {
	settingsDecodeFallbacksTotal.Inc()
}

func IncSubscribers() {
	settingsSubscribers.Inc()
}

func DecSubscribers() {
	settingsSubscribers.Dec()
}

func IncMarkedDeleted(n int) {
	messagesMarkedDeletedTotal.Add(float64(n))
}

func IncSyncRun(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	syncRunsTotal.WithLabelValues(result).Inc()
}

// ObserveHTTP records a finished HTTP request.
func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// UnaryServerInterceptor counts handled gRPC calls by status code.
func UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		service, method := splitFullMethod(info.FullMethod)
		grpcServerHandledTotal.WithLabelValues(service, method, status.Code(err).String()).Inc()
		return resp, err
	}
}

func splitFullMethod(fullMethod string) (string, string) {
	parts := strings.Split(fullMethod, "/")
	if len(parts) < 3 {
		return "unknown", "unknown"
	}
	return parts[1], parts[2]
}

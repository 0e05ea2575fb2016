// Package prom holds the Prometheus collectors exported by the forecaster.
package prom

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ForecasterNamespace prefixes every forecaster metric.
const ForecasterNamespace = "forecaster"

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ForecasterNamespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests by method, route and status.",
	}, []string{"method", "path", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: ForecasterNamespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	httpInflight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: ForecasterNamespace,
		Subsystem: "http",
		Name:      "inflight_requests",
		Help:      "HTTP requests currently being served.",
	})

	forecasts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ForecasterNamespace,
		Name:      "forecasts_total",
		Help:      "Forecasts computed, by kind.",
	}, []string{"kind"})

	rejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ForecasterNamespace,
		Name:      "forecast_rejections_total",
		Help:      "Forecast requests rejected for invalid input, by kind.",
	}, []string{"kind"})

	historyPruned = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: ForecasterNamespace,
		Name:      "history_pruned_total",
		Help:      "History records deleted by retention pruning.",
	})

	// HistoryQueryDuration times Postgres history queries by operation.
	HistoryQueryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: ForecasterNamespace,
		Subsystem: "history",
		Name:      "query_duration_seconds",
		Help:      "Latency of forecast history queries by operation.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	// HistoryPruneErrors counts pruning runs that failed.
	HistoryPruneErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: ForecasterNamespace,
		Name:      "history_prune_errors_total",
		Help:      "Retention pruning runs that failed.",
	})
)

func init() {
	prometheus.MustRegister(httpRequests, httpDuration, httpInflight, forecasts, rejections,
		historyPruned, HistoryQueryDuration, HistoryPruneErrors)
}

// Handler serves the default registry in the Prometheus text format.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}

// Middleware records request counts, latencies and in-flight requests. Errors are handed to
// the echo error handler here so that the recorded status is the one the client sees.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			httpInflight.Inc()
			defer httpInflight.Dec()

			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			method := c.Request().Method
			status := strconv.Itoa(c.Response().Status)
			httpRequests.WithLabelValues(method, path, status).Inc()
			httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}

// ForecastComputed counts a successful forecast of the given kind.
func ForecastComputed(kind string) {
	forecasts.WithLabelValues(kind).Inc()
}

// ForecastRejected counts a forecast request rejected for invalid input.
func ForecastRejected(kind string) {
	rejections.WithLabelValues(kind).Inc()
}

// HistoryPruned counts records removed by retention pruning.
func HistoryPruned(n int) {
	historyPruned.Add(float64(n))
}

// Time observes the time elapsed since the call. Use it with defer:
//
//	defer prom.Time(prom.HistoryQueryDuration.WithLabelValues("get"))()
func Time(o prometheus.Observer) func() {
	start := time.Now()
	return func() {
		o.Observe(time.Since(start).Seconds())
	}
}

// ErrCount increments the counter when *err is non-nil. Use it with defer.
func ErrCount(c prometheus.Counter, err *error) {
	if *err != nil {
		c.Inc()
	}
}

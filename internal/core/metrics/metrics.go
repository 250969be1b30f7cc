// Package metrics holds the business counters exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total", Help: "Count of HTTP requests",
	}, []string{"route", "method", "status"})
	HTTPLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Latency of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})
	OrdersPlaced = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total", Help: "Orders committed",
	})
	StockRejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_rejections_total", Help: "Requests refused for insufficient stock",
	}, []string{"op"})
	AuthRejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_rejections_total", Help: "Requests rejected by the auth gate",
	}, []string{"reason"})
	TokensRevoked = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tokens_revoked_total", Help: "Tokens revoked by logout",
	})
	RevocationsSwept = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "revocations_swept_total", Help: "Expired revocation entries deleted",
	})
	SweepFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "revocation_sweep_failures_total", Help: "Failed revocation sweeps",
	})
	EmailFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "email_send_failures_total", Help: "Outbound emails that could not be handed off",
	})
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPLatency, OrdersPlaced, StockRejections, AuthRejections, TokensRevoked,
		RevocationsSwept, SweepFailures, EmailFailures)
}

// UnmatchedRoute labels requests that hit no registered route, so probing
// random paths cannot grow the label set.
const UnmatchedRoute = "unmatched"

// ObserveHTTP records one finished request.
func ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if route == "" {
		route = UnmatchedRoute
	}
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

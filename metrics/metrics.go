// Package metrics holds the prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OrdersSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tableorder_orders_submitted_total",
			Help: "Orders accepted from guest carts",
		},
		[]string{"tenant"},
	)

	TokenVerifyFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tableorder_token_verify_failures_total",
			Help: "Table tokens that failed verification",
		},
		[]string{"tenant"},
	)

	LoginFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tableorder_login_failures_total",
			Help: "Failed waiter PIN and staff logins",
		},
		[]string{"kind"},
	)

	OrderStateConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tableorder_order_state_conflicts_total",
			Help: "Order status changes rejected against the stored status",
		},
	)

	FeedDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tableorder_feed_duration_seconds",
			Help:    "Time spent building a waiter's order feed",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(
		OrdersSubmitted,
		TokenVerifyFailures,
		LoginFailures,
		OrderStateConflicts,
		FeedDuration,
	)
}

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

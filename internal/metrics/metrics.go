// Package metrics declares the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "costmate"

var (
	CascadeRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cascade_runs_total",
		Help:      "Cost cascade executions by trigger and outcome.",
	}, []string{"trigger", "result"})

	CascadeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "cascade_duration_seconds",
		Help:      "Time spent inside the cost cascade, excluding commit.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"trigger"})

	InsufficientStock = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "insufficient_stock_total",
		Help:      "Removals rejected because the balance was too low.",
	})

	MissingStockIngredients = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingredients_without_stock_total",
		Help:      "Recipe ingredients priced at zero because the owner holds no stock row.",
	})

	OrderNumberRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_number_retries_total",
		Help:      "Order creations retried after an order number collision.",
	})

	LowStockItems = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "low_stock_items_total",
		Help:      "Items found at or below reorder level by post-completion checks.",
	})

	JobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_processed_total",
		Help:      "Background jobs handled by type and outcome.",
	}, []string{"type", "result"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	DLQDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "dlq_depth",
		Help:      "Entries waiting in each dead letter queue.",
	}, []string{"queue"})
)

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }

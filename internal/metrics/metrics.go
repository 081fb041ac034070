package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchesTotal counts address-fetch attempts per currency and provider.
	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explorerwatch_fetches_total",
			Help: "Total number of address fetch attempts",
		},
		[]string{"currency", "provider"},
	)

	// FetchFailuresTotal counts typed fetch failures.
	FetchFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explorerwatch_fetch_failures_total",
			Help: "Total number of fetch failures by kind",
		},
		[]string{"currency", "provider", "kind"},
	)

	// TransactionsNormalized counts canonical transactions produced.
	TransactionsNormalized = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explorerwatch_transactions_normalized_total",
			Help: "Total number of canonical transactions produced",
		},
		[]string{"currency", "provider"},
	)

	// HeightQueriesTotal counts upstream chain-height queries (cache misses).
	HeightQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "explorerwatch_height_queries_total",
			Help: "Total number of upstream chain height queries",
		},
		[]string{"currency", "provider"},
	)

	// FetchLatency tracks end-to-end fetch latency.
	FetchLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "explorerwatch_fetch_latency_seconds",
			Help:    "Address fetch latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"currency", "provider"},
	)

	// LedgerFailureCount mirrors the rate-limit ledger per currency.
	LedgerFailureCount = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "explorerwatch_ledger_failure_count",
			Help: "Current rate-limit ledger failure count per currency",
		},
		[]string{"currency", "provider"},
	)

	// DBConnectionPoolUsage tracks database connection pool usage percentage.
	DBConnectionPoolUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "explorerwatch_db_pool_usage_percent",
			Help: "Database connection pool usage percentage",
		},
	)
)

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Deploy operation metrics
	DeployRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapdeploy_deploy_requests_total",
			Help: "Total number of swap-and-deploy operations",
		},
		[]string{"strategy", "status"},
	)

	DeployDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "swapdeploy_deploy_duration_seconds",
			Help:    "End-to-end swap-and-deploy duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)

	Aborts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapdeploy_aborts_total",
			Help: "Total number of aborted operations",
		},
		[]string{"reason"},
	)

	// Quote metrics
	QuoteRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapdeploy_quote_requests_total",
			Help: "Total number of allocation quote requests",
		},
		[]string{"strategy", "status"},
	)

	QuoteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "swapdeploy_quote_duration_seconds",
		Help:    "Single bounded-quote calculation duration in seconds",
		Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
	})

	PlanDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "swapdeploy_plan_duration_seconds",
			Help:    "Allocation strategy planning duration in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.002, 0.005, 0.01, 0.02},
		},
		[]string{"strategy"},
	)

	PriceImpact = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "swapdeploy_price_impact_bps",
		Help:    "Realized swap price impact in basis points",
		Buckets: []float64{0, 1, 5, 10, 50, 100, 300, 500, 1000},
	})

	// Pipeline step metrics
	SwapsExecuted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swapdeploy_swaps_executed_total",
		Help: "Total number of executed swap legs",
	})

	LiquidityDeposits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swapdeploy_liquidity_deposits_total",
		Help: "Total number of successful liquidity deposits",
	})

	DepositsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swapdeploy_deposits_skipped_total",
		Help: "Total number of operations that skipped the deposit step",
	})

	SpareSettlements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapdeploy_spare_settlements_total",
			Help: "Total number of nonzero spare payouts",
		},
		[]string{"leg"},
	)

	// Journal metrics
	JournalWrites = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swapdeploy_journal_writes_total",
		Help: "Total number of operation receipts journaled",
	})

	JournalErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swapdeploy_journal_errors_total",
		Help: "Total number of journal write failures",
	})

	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapdeploy_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "swapdeploy_http_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

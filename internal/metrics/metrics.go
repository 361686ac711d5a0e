package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HeadHeight tracks the last head reported by each endpoint
	HeadHeight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ethalive_head_height",
			Help: "Latest block height reported by the endpoint",
		},
		[]string{"endpoint"},
	)

	// BlockLag tracks remote head minus local head (0 when local is ahead,
	// NaN when either node is unreachable)
	BlockLag = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ethalive_block_lag",
			Help: "Number of blocks the local node trails the remote node",
		},
	)

	// VerdictsTotal counts cycle verdicts by kind
	VerdictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ethalive_verdicts_total",
			Help: "Total number of health verdicts by kind",
		},
		[]string{"verdict"},
	)

	// AlertsTotal counts alert outcomes (sent, failed, suppressed)
	AlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ethalive_alerts_total",
			Help: "Total number of alert decisions by outcome",
		},
		[]string{"outcome"},
	)

	// RPCCallsTotal tracks eth_blockNumber calls per endpoint
	RPCCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ethalive_rpc_calls_total",
			Help: "Total number of RPC calls",
		},
		[]string{"endpoint", "method"},
	)

	// RPCErrorsTotal tracks RPC errors per endpoint and failure kind
	RPCErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ethalive_rpc_errors_total",
			Help: "Total number of RPC errors",
		},
		[]string{"endpoint", "error_type"},
	)

	// RPCLatency tracks RPC call latency
	RPCLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ethalive_rpc_latency_seconds",
			Help:    "RPC call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)

	// CycleDuration tracks the wall-clock time of one poll cycle
	CycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ethalive_cycle_duration_seconds",
			Help:    "Duration of a watchdog poll cycle in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// HistoryPrunedTotal counts check records removed by the retention pruner
	HistoryPrunedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ethalive_history_pruned_total",
			Help: "Total number of check history records pruned",
		},
	)

	// DBConnectionPoolUsage tracks the percentage of open connections
	DBConnectionPoolUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ethalive_db_connection_pool_usage",
			Help: "Percentage of the database connection pool in use",
		},
	)
)

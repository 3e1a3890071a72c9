package rpc

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/erc7824/nitrolite/nearrpc/pkg/log"
)

// Metrics contains the Prometheus collectors of the client transport
type Metrics struct {
	// Request metrics
	Requests         *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	InflightRequests prometheus.Gauge

	// Node metrics, filled by RecordNodeStatusPeriodically
	NodeLatestBlockHeight *prometheus.GaugeVec
	NodeSyncing           *prometheus.GaugeVec
	NodeStatusErrors      *prometheus.CounterVec
}

// NewMetrics initializes and registers metrics with the default registerer
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(nil)
}

// NewMetricsWithRegistry initializes and registers metrics with a custom registry
func NewMetricsWithRegistry(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		Requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nearrpc_requests_total",
				Help: "The total number of requests sent, by method and HTTP status code",
			},
			[]string{"method", "code"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nearrpc_request_duration_seconds",
				Help:    "Round trip duration of requests, by method",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		InflightRequests: factory.NewGauge(prometheus.GaugeOpts{
			Name: "nearrpc_inflight_requests",
			Help: "The current number of requests waiting for a response",
		}),
		NodeLatestBlockHeight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "nearrpc_node_latest_block_height",
				Help: "Latest block height reported by the node",
			},
			[]string{"chain_id"},
		),
		NodeSyncing: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "nearrpc_node_syncing",
				Help: "1 while the node reports it is syncing",
			},
			[]string{"chain_id"},
		),
		NodeStatusErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nearrpc_node_status_errors_total",
				Help: "The total number of failed status polls, by error class",
			},
			[]string{"class"},
		),
	}
}

// RecordNodeStatus updates the node gauges from a status response.
func (m *Metrics) RecordNodeStatus(status StatusResponse) {
	m.NodeLatestBlockHeight.WithLabelValues(status.ChainID).Set(float64(status.SyncInfo.LatestBlockHeight))

	syncing := 0.0
	if status.SyncInfo.Syncing {
		syncing = 1
	}
	m.NodeSyncing.WithLabelValues(status.ChainID).Set(syncing)
}

// DefaultStatusInterval is the polling interval used when a non-positive
// one is given.
const DefaultStatusInterval = 10 * time.Second

// StatusFunc fetches the node status. Client.Status and HTTPClient.Status
// both satisfy it.
type StatusFunc func(ctx context.Context) (StatusResponse, error)

// RecordNodeStatusPeriodically polls fetch every interval until ctx is done.
// A non-positive interval falls back to DefaultStatusInterval.
func (m *Metrics) RecordNodeStatusPeriodically(ctx context.Context, fetch StatusFunc, interval time.Duration) {
	logger := log.FromContext(ctx).WithName("metrics")
	if interval <= 0 {
		logger.Warn("invalid status polling interval, using default", "interval", interval, "default", DefaultStatusInterval)
		interval = DefaultStatusInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		status, err := fetch(ctx)
		if err != nil {
			m.NodeStatusErrors.WithLabelValues(errorClass(err)).Inc()
			logger.Warn("failed to poll node status", "error", err)
		} else {
			m.RecordNodeStatus(status)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

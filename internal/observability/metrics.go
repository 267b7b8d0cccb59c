// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Proxy metrics
	ProxyRequests     *prometheus.CounterVec
	UpstreamRequests  *prometheus.CounterVec
	UpstreamLatency   *prometheus.HistogramVec
	EndpointRotations prometheus.Counter

	// Price metrics
	PriceLookups *prometheus.CounterVec
	SOLPrice     *prometheus.GaugeVec

	// Dashboard metrics
	CycleRuns              *prometheus.CounterVec
	CycleDuration          *prometheus.HistogramVec
	TransactionsClassified *prometheus.CounterVec
	BigTransactions        prometheus.Gauge
	NetworkTPS             prometheus.Gauge
	BlockHeight            prometheus.Gauge
	SlotNotifications      prometheus.Counter
	RPCCallLatency         *prometheus.HistogramVec

	// Stream metrics
	StreamClients  prometheus.Gauge
	StreamMessages *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Health metrics
	LastSuccessfulCycle *prometheus.GaugeVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "solanalysis"
	}

	return &Metrics{
		// Proxy metrics
		ProxyRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "proxy",
			Name:      "requests_total",
			Help:      "Total number of proxied JSON-RPC requests by method and outcome",
		}, []string{"method", "outcome"}),
		UpstreamRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "proxy",
			Name:      "upstream_requests_total",
			Help:      "Total number of upstream RPC attempts by endpoint and status",
		}, []string{"endpoint", "status"}),
		UpstreamLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "proxy",
			Name:      "upstream_latency_seconds",
			Help:      "Upstream RPC latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		EndpointRotations: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "proxy",
			Name:      "endpoint_rotations_total",
			Help:      "Total number of endpoint rotations caused by rate limiting",
		}),

		// Price metrics
		PriceLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "price",
			Name:      "lookups_total",
			Help:      "Total number of price lookups by answering source",
		}, []string{"source"}),
		SOLPrice: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "price",
			Name:      "sol",
			Help:      "Last SOL price by currency",
		}, []string{"currency"}),

		// Dashboard metrics
		CycleRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "cycle_runs_total",
			Help:      "Total number of refresh cycle runs by status",
		}, []string{"cycle", "status"}),
		CycleDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "cycle_duration_seconds",
			Help:      "Refresh cycle duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"cycle"}),
		TransactionsClassified: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "transactions_classified_total",
			Help:      "Total number of transactions recorded by label",
		}, []string{"label"}),
		BigTransactions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "big_transactions",
			Help:      "Number of big transactions currently displayed",
		}),
		NetworkTPS: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "tps",
			Help:      "Current network transactions per second",
		}),
		BlockHeight: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "block_height",
			Help:      "Current Solana block height",
		}),
		SlotNotifications: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "slot_notifications_total",
			Help:      "Total number of slot notifications received",
		}),
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),

		// Stream metrics
		StreamClients: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "clients",
			Help:      "Number of connected WebSocket clients",
		}),
		StreamMessages: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "messages_total",
			Help:      "Total number of WebSocket messages by result",
		}, []string{"result"}),

		// HTTP metrics
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status code",
		}, []string{"route", "code"}),
		HTTPDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),

		// Health metrics
		LastSuccessfulCycle: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_cycle_timestamp",
			Help:      "Unix timestamp of the last successful refresh cycle",
		}, []string{"cycle"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordProxyRequest counts a proxied request by method and outcome.
func RecordProxyRequest(method, outcome string) {
	DefaultMetrics.ProxyRequests.WithLabelValues(method, outcome).Inc()
}

// RecordUpstream records one upstream attempt.
func RecordUpstream(endpoint string, status int, seconds float64) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	DefaultMetrics.UpstreamRequests.WithLabelValues(endpoint, label).Inc()
	DefaultMetrics.UpstreamLatency.WithLabelValues(endpoint).Observe(seconds)
}

// RecordRotation counts an endpoint rotation.
func RecordRotation() {
	DefaultMetrics.EndpointRotations.Inc()
}

// RecordPriceLookup records the source that answered and the price.
func RecordPriceLookup(source, currency string, price float64) {
	DefaultMetrics.PriceLookups.WithLabelValues(source).Inc()
	DefaultMetrics.SOLPrice.WithLabelValues(currency).Set(price)
}

// RecordCycle records a refresh cycle run.
func RecordCycle(cycle, status string, seconds float64, finishedUnix int64) {
	DefaultMetrics.CycleRuns.WithLabelValues(cycle, status).Inc()
	DefaultMetrics.CycleDuration.WithLabelValues(cycle).Observe(seconds)
	if status == "ok" {
		DefaultMetrics.LastSuccessfulCycle.WithLabelValues(cycle).Set(float64(finishedUnix))
	}
}

// RecordTransactionClassified counts a recorded transaction by label.
func RecordTransactionClassified(label string) {
	DefaultMetrics.TransactionsClassified.WithLabelValues(label).Inc()
}

// UpdateBigTransactions sets the displayed big transaction gauge.
func UpdateBigTransactions(n int) {
	DefaultMetrics.BigTransactions.Set(float64(n))
}

// UpdateNetwork sets the TPS and block height gauges.
func UpdateNetwork(tps, blockHeight int64) {
	if tps > 0 {
		DefaultMetrics.NetworkTPS.Set(float64(tps))
	}
	if blockHeight > 0 {
		DefaultMetrics.BlockHeight.Set(float64(blockHeight))
	}
}

// RecordSlotNotification counts a slot notification.
func RecordSlotNotification() {
	DefaultMetrics.SlotNotifications.Inc()
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// UpdateStreamClients sets the connected client gauge.
func UpdateStreamClients(n int) {
	DefaultMetrics.StreamClients.Set(float64(n))
}

// RecordStreamMessage counts a WebSocket message as "sent" or "dropped".
func RecordStreamMessage(result string) {
	DefaultMetrics.StreamMessages.WithLabelValues(result).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(route string, code int, seconds float64) {
	DefaultMetrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	DefaultMetrics.HTTPDuration.WithLabelValues(route).Observe(seconds)
}

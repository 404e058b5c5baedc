package delivery

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricsNamespace = "abacus"
	metricsSubsystem = "relayer"
)

// DurationBuckets covers deliveries from a single block up to several hours.
var DurationBuckets = []float64{1, 5, 15, 30, 60, 120, 300, 900, 1800, 3600, 7200}

// Metrics is the set of collectors of one relay, held in its own registry.
type Metrics struct {
	registry *prometheus.Registry

	deliveries      *prometheus.CounterVec
	submissions     *prometheus.CounterVec
	duration        prometheus.Histogram
	inFlight        prometheus.Gauge
	checkpointIndex *prometheus.GaugeVec
	listenerNonce   *prometheus.GaugeVec
	proverLeaves    *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "deliveries_total",
			Help:      "Messages that reached a terminal state, by outcome and failure category",
		}, []string{"outcome", "category"}),
		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "submissions_total",
			Help:      "Process transactions submitted to the destination, by result",
		}, []string{"result"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "delivery_duration_seconds",
			Help:      "Time from discovery to a terminal state",
			Buckets:   DurationBuckets,
		}),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "deliveries_in_flight",
			Help:      "Messages currently being delivered",
		}),
		checkpointIndex: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "checkpoint_index",
			Help:      "Index of the latest accepted checkpoint per origin domain",
		}, []string{"domain"}),
		listenerNonce: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "listener_next_nonce",
			Help:      "Next nonce the listener will dispatch per origin domain",
		}, []string{"domain"}),
		proverLeaves: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "prover_leaves",
			Help:      "Leaves mirrored into the local proof tree per origin domain",
		}, []string{"domain"}),
	}
}

func (m *Metrics) observeDelivery(report Report, elapsed time.Duration) {
	m.deliveries.WithLabelValues(string(report.State), string(report.Category)).Inc()
	m.duration.Observe(elapsed.Seconds())
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the relay. The Observe
// helpers are safe to call on a nil *Metrics.
type Metrics struct {
	WebhookRequests   *prometheus.CounterVec
	RelayEvents       *prometheus.CounterVec
	CompletionCalls   *prometheus.CounterVec
	Deliveries        *prometheus.CounterVec
	SessionResets     *prometheus.CounterVec
	QueueDepth        prometheus.Gauge
	CompletionLatency prometheus.Histogram
	DeliveryLatency   prometheus.Histogram

	stages *stageWindow
}

// NewMetrics registers the instruments on the default registry.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWith(namespace, prometheus.DefaultRegisterer)
}

// NewMetricsWith registers the instruments on reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration.
func NewMetricsWith(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		WebhookRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_requests_total",
			Help:      "Inbound webhook requests by route and result.",
		}, []string{"route", "result"}),
		RelayEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_events_total",
			Help:      "Relayed inbound messages by outcome.",
		}, []string{"outcome"}),
		CompletionCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completion_calls_total",
			Help:      "Completion endpoint calls by result and error class.",
		}, []string{"result", "class"}),
		Deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Outbound Instagram deliveries by result.",
		}, []string{"result"}),
		SessionResets: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_resets_total",
			Help:      "Session resets by reason.",
		}, []string{"reason"}),
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "relay_queue_depth",
			Help:      "Inbound messages waiting for a relay worker.",
		}),
		CompletionLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "completion_latency_ms",
			Help:      "Completion endpoint latency in milliseconds.",
			Buckets:   []float64{250, 500, 1000, 2000, 4000, 8000, 16000, 32000},
		}),
		DeliveryLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "delivery_latency_ms",
			Help:      "Graph API send latency in milliseconds.",
			Buckets:   []float64{50, 100, 200, 400, 800, 1600, 3200},
		}),
		stages: newStageWindow(256),
	}
}

func (m *Metrics) ObserveCompletion(d time.Duration, class string) {
	if m == nil {
		return
	}
	m.CompletionLatency.Observe(float64(d.Milliseconds()))
	m.stages.Observe(StageCompletion, float64(d.Milliseconds()))
	if class == "" {
		m.CompletionCalls.WithLabelValues("ok", "none").Inc()
		return
	}
	m.CompletionCalls.WithLabelValues("error", class).Inc()
}

func (m *Metrics) ObserveDelivery(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.DeliveryLatency.Observe(float64(d.Milliseconds()))
	m.stages.Observe(StageDelivery, float64(d.Milliseconds()))
	if err != nil {
		m.Deliveries.WithLabelValues("error").Inc()
		m.stages.ObserveIndicator(IndicatorDeliveryFailed)
		return
	}
	m.Deliveries.WithLabelValues("ok").Inc()
}

func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.QueueDepth.Set(float64(n))
}

func (m *Metrics) ObserveWebhook(route, result string) {
	if m == nil {
		return
	}
	m.WebhookRequests.WithLabelValues(route, result).Inc()
}

func (m *Metrics) ObserveRelay(d time.Duration, outcome string) {
	if m == nil {
		return
	}
	m.RelayEvents.WithLabelValues(outcome).Inc()
	m.stages.Observe(StageRelayTotal, float64(d.Milliseconds()))
}

func (m *Metrics) ObserveReset(reason string) {
	if m == nil {
		return
	}
	m.SessionResets.WithLabelValues(reason).Inc()
	m.stages.ObserveIndicator(IndicatorSessionReset)
}

func (m *Metrics) ObserveIndicator(name string) {
	if m == nil {
		return
	}
	m.stages.ObserveIndicator(name)
}

// SnapshotStages returns rolling latency statistics per relay stage.
func (m *Metrics) SnapshotStages() StageSnapshot {
	if m == nil {
		return StageSnapshot{GeneratedAt: time.Now().UTC(), Stages: []StageStats{}}
	}
	return m.stages.Snapshot()
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

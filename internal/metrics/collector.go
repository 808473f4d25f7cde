package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"seniorkiosk/internal/intent"
	"seniorkiosk/internal/models"
)

// Collector records kiosk metrics on its own registry. It implements
// kiosk.Observer.
type Collector struct {
	registry *prometheus.Registry

	intents     *prometheus.CounterVec
	fallbacks   *prometheus.CounterVec
	classify    *prometheus.HistogramVec
	voiceTurn   prometheus.Histogram
	activations *prometheus.CounterVec
	orders      prometheus.Counter
	orderValue  prometheus.Histogram
	orderItems  prometheus.Histogram
	transitions *prometheus.CounterVec
}

// NewCollector creates a collector with every kiosk metric registered
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		intents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kiosk_intents_total",
				Help: "Resolved voice intents by action and classifier",
			},
			[]string{"action", "source"},
		),
		fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kiosk_classifier_fallbacks_total",
				Help: "Utterances resolved by the keyword matcher, by reason",
			},
			[]string{"reason"},
		),
		classify: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kiosk_classification_seconds",
				Help:    "Time spent resolving an utterance",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"source"},
		),
		voiceTurn: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kiosk_voice_turn_seconds",
			Help:    "Time from voice activation until the turn was applied",
			Buckets: prometheus.LinearBuckets(0.5, 0.5, 20),
		}),
		activations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kiosk_voice_activations_total",
				Help: "Voice activation requests by result",
			},
			[]string{"result"},
		),
		orders: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kiosk_orders_total",
			Help: "Completed orders",
		}),
		orderValue: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kiosk_order_value_won",
			Help:    "Order totals in won",
			Buckets: prometheus.LinearBuckets(2000, 2000, 10),
		}),
		orderItems: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kiosk_order_items",
			Help:    "Cart lines per completed order",
			Buckets: prometheus.LinearBuckets(1, 1, 8),
		}),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kiosk_transitions_total",
				Help: "Applied state machine transitions",
			},
			[]string{"from", "to"},
		),
	}

	registry.MustRegister(
		c.intents,
		c.fallbacks,
		c.classify,
		c.voiceTurn,
		c.activations,
		c.orders,
		c.orderValue,
		c.orderItems,
		c.transitions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry returns the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) IntentResolved(res intent.Resolution) {
	c.intents.WithLabelValues(string(res.Intent.Action), string(res.Source)).Inc()
	c.classify.WithLabelValues(string(res.Source)).Observe(res.Latency.Seconds())
	if res.Source == intent.SourceFallback {
		c.fallbacks.WithLabelValues(res.Reason).Inc()
	}
}

func (c *Collector) Transitioned(_ string, from, to models.Screen) {
	c.transitions.WithLabelValues(string(from), string(to)).Inc()
}

func (c *Collector) OrderCompleted(order models.CompletedOrder) {
	c.orders.Inc()
	c.orderValue.Observe(float64(order.Total))
	c.orderItems.Observe(float64(len(order.Lines)))
}

func (c *Collector) VoiceActivation(result string) {
	c.activations.WithLabelValues(result).Inc()
}

func (c *Collector) VoiceTurnFinished(elapsed time.Duration) {
	c.voiceTurn.Observe(elapsed.Seconds())
}

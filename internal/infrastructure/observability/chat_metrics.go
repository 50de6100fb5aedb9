package observability

import "github.com/prometheus/client_golang/prometheus"

// ChatMetrics exposes Prometheus counters and histograms for the chat
// pipeline and appointment booking.
type ChatMetrics struct {
	responsesTotal  *prometheus.CounterVec
	fallbackTotal   *prometheus.CounterVec
	confidence      prometheus.Histogram
	providerLatency *prometheus.HistogramVec
	bookingTotal    *prometheus.CounterVec
}

// NewChatMetrics registers the chat metrics on reg, or on the default
// registerer when reg is nil.
func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		responsesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthcare",
			Subsystem: "chat",
			Name:      "responses_total",
			Help:      "Chat responses by answering mode",
		}, []string{"mode"}),
		fallbackTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthcare",
			Subsystem: "chat",
			Name:      "fallback_total",
			Help:      "Chat responses that used the questionnaire fallback, by reason",
		}, []string{"reason"}),
		confidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "healthcare",
			Subsystem: "chat",
			Name:      "ai_confidence",
			Help:      "Confidence reported for AI answers",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		}),
		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "healthcare",
			Subsystem: "chat",
			Name:      "provider_latency_seconds",
			Help:      "Latency of completion provider calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider", "outcome"}),
		bookingTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthcare",
			Subsystem: "appointment",
			Name:      "booking_total",
			Help:      "Appointment booking attempts by outcome",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.responsesTotal, m.fallbackTotal, m.confidence, m.providerLatency, m.bookingTotal)
	return m
}

func (m *ChatMetrics) ObserveResponse(mode string) {
	if m == nil {
		return
	}
	m.responsesTotal.WithLabelValues(mode).Inc()
}

func (m *ChatMetrics) ObserveFallback(reason string) {
	if m == nil {
		return
	}
	m.fallbackTotal.WithLabelValues(reason).Inc()
}

func (m *ChatMetrics) ObserveConfidence(confidence float64) {
	if m == nil {
		return
	}
	m.confidence.Observe(confidence)
}

func (m *ChatMetrics) ObserveProviderLatency(provider, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.providerLatency.WithLabelValues(provider, outcome).Observe(seconds)
}

func (m *ChatMetrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingTotal.WithLabelValues(outcome).Inc()
}

package metrics

import "github.com/prometheus/client_golang/prometheus"

// ReceptionistMetrics exposes counters/histograms for call handling.
type ReceptionistMetrics struct {
	turnsTotal        *prometheus.CounterVec
	shortcutsTotal    *prometheus.CounterVec
	fallbackTotal     *prometheus.CounterVec
	learnedTotal      *prometheus.CounterVec
	bookingsTotal     *prometheus.CounterVec
	webhookTotal      *prometheus.CounterVec
	generationLatency *prometheus.HistogramVec
	activeCalls       prometheus.Gauge
	expiredTotal      prometheus.Counter
}

func NewReceptionistMetrics(reg prometheus.Registerer) *ReceptionistMetrics {
	m := &ReceptionistMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "receptionist",
			Subsystem: "dialogue",
			Name:      "turns_total",
			Help:      "Caller turns handled, by reply source and resulting step",
		}, []string{"source", "step"}),
		shortcutsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "receptionist",
			Subsystem: "dialogue",
			Name:      "shortcuts_total",
			Help:      "Turns answered by the emergency, language or off-topic pre-pass",
		}, []string{"kind"}),
		fallbackTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "receptionist",
			Subsystem: "generation",
			Name:      "fallback_total",
			Help:      "Turns answered by the fallback responder",
		}, []string{"reason"}),
		learnedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "receptionist",
			Subsystem: "knowledge",
			Name:      "learned_total",
			Help:      "Entries learned into the knowledge base",
		}, []string{"kind"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "receptionist",
			Subsystem: "dialogue",
			Name:      "bookings_completed_total",
			Help:      "Conversations that reached the complete step",
		}, []string{"department"}),
		webhookTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "receptionist",
			Subsystem: "telephony",
			Name:      "webhook_total",
			Help:      "Inbound Twilio webhooks",
		}, []string{"endpoint", "status"}),
		generationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "receptionist",
			Subsystem: "generation",
			Name:      "latency_seconds",
			Help:      "Latency of generation calls, including failures",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		activeCalls: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "receptionist",
			Subsystem: "dialogue",
			Name:      "active_conversations",
			Help:      "Conversations currently held in memory",
		}),
		expiredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "receptionist",
			Subsystem: "dialogue",
			Name:      "expired_conversations_total",
			Help:      "Conversations removed by the idle sweep",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.turnsTotal, m.shortcutsTotal, m.fallbackTotal, m.learnedTotal, m.bookingsTotal,
		m.webhookTotal, m.generationLatency, m.activeCalls, m.expiredTotal,
	)
	return m
}

func (m *ReceptionistMetrics) ObserveTurn(source, step string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(source, step).Inc()
}

func (m *ReceptionistMetrics) ObserveShortcut(kind string) {
	if m == nil {
		return
	}
	m.shortcutsTotal.WithLabelValues(kind).Inc()
}

func (m *ReceptionistMetrics) ObserveFallback(reason string) {
	if m == nil {
		return
	}
	m.fallbackTotal.WithLabelValues(reason).Inc()
}

// ObserveLearned satisfies extraction.LearnObserver.
func (m *ReceptionistMetrics) ObserveLearned(kind string) {
	if m == nil {
		return
	}
	m.learnedTotal.WithLabelValues(kind).Inc()
}

func (m *ReceptionistMetrics) ObserveBooking(department string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(department).Inc()
}

func (m *ReceptionistMetrics) ObserveWebhook(endpoint, status string) {
	if m == nil {
		return
	}
	m.webhookTotal.WithLabelValues(endpoint, status).Inc()
}

func (m *ReceptionistMetrics) ObserveGenerationLatency(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.generationLatency.WithLabelValues(outcome).Observe(seconds)
}

func (m *ReceptionistMetrics) SetActiveConversations(n int) {
	if m == nil {
		return
	}
	m.activeCalls.Set(float64(n))
}

func (m *ReceptionistMetrics) ObserveExpired(n int) {
	if m == nil {
		return
	}
	m.expiredTotal.Add(float64(n))
}

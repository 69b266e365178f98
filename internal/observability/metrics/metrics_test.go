package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestReceptionistMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewReceptionistMetrics(reg)

	m.ObserveTurn("generation", "timing")
	m.ObserveTurn("generation", "timing")
	m.ObserveShortcut("emergency")
	m.ObserveFallback("timeout")
	m.ObserveLearned("symptom")
	m.ObserveBooking("Cardiology")
	m.ObserveWebhook("transcribe", "ok")
	m.ObserveGenerationLatency("ok", 0.4)
	m.SetActiveConversations(3)
	m.ObserveExpired(2)

	if got := testutil.ToFloat64(m.turnsTotal.WithLabelValues("generation", "timing")); got != 2 {
		t.Fatalf("expected 2 turns, got %v", got)
	}
	if got := testutil.ToFloat64(m.activeCalls); got != 3 {
		t.Fatalf("expected 3 active conversations, got %v", got)
	}
	if got := testutil.ToFloat64(m.expiredTotal); got != 2 {
		t.Fatalf("expected 2 expired, got %v", got)
	}
	if got := testutil.CollectAndCount(m.fallbackTotal); got != 1 {
		t.Fatalf("expected one fallback series, got %d", got)
	}
}

func TestReceptionistMetricsDefaultRegistry(t *testing.T) {
	m := NewReceptionistMetrics(nil)
	m.ObserveTurn("fallback", "welcome")
}

func TestReceptionistMetricsNilSafe(t *testing.T) {
	var m *ReceptionistMetrics
	m.ObserveTurn("generation", "welcome")
	m.ObserveShortcut("language")
	m.ObserveFallback("api_error")
	m.ObserveLearned("intent")
	m.ObserveBooking("ENT")
	m.ObserveWebhook("voice", "ok")
	m.ObserveGenerationLatency("error", 1)
	m.SetActiveConversations(1)
	m.ObserveExpired(1)
}

package monitoring

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"seniorkiosk/internal/intent"
	"seniorkiosk/internal/models"
)

func TestMonitor_GetMetrics(t *testing.T) {
	m := NewMonitor()
	m.RecordMetric("test_metric", 42)

	metrics := m.GetMetrics()

	value, exists := metrics["test_metric"]
	if !exists {
		t.Fatalf("Expected 'test_metric' to be present in metrics, but it was not")
	}
	if value != 42 {
		t.Errorf("Expected 'test_metric' to be 42, but got %v", value)
	}

	if _, exists = metrics["uptime_seconds"]; !exists {
		t.Errorf("Expected 'uptime_seconds' to be present in metrics, but it was not")
	}
}

func TestMonitor_RecordEvaluationResult(t *testing.T) {
	m := NewMonitor()

	m.RecordEvaluationResult("keyword", "basic_orders", map[string]interface{}{
		"accuracy": 0.85,
		"cases":    20,
	})

	metrics := m.GetMetrics()

	value, exists := metrics["eval_keyword_basic_orders_accuracy"]
	if !exists {
		t.Fatalf("Expected 'eval_keyword_basic_orders_accuracy' to be present in metrics, but it was not")
	}
	if value != 0.85 {
		t.Errorf("Expected accuracy to be 0.85, but got %v", value)
	}

	if _, exists = metrics["eval_keyword_basic_orders_last_evaluated"]; !exists {
		t.Errorf("Expected evaluation timestamp to be present in metrics, but it was not")
	}
}

func TestMonitor_Observer(t *testing.T) {
	m := NewMonitor()

	m.IntentResolved(intent.Resolution{
		Intent:    models.VoiceIntent{Action: models.ActionCheckout},
		Source:    intent.SourceFallback,
		Reason:    intent.ReasonTimeout,
		RemoteErr: errors.New("deadline exceeded"),
		Latency:   5 * time.Second,
	})
	m.VoiceActivation("accepted")
	m.VoiceTurnFinished(1500 * time.Millisecond)
	m.Transitioned("voice_command", models.ScreenMenu, models.ScreenSuccess)
	m.OrderCompleted(models.CompletedOrder{Number: 101, PlacedAt: time.Now()})

	metrics := m.GetMetrics()
	expected := map[string]interface{}{
		"intents_fallback":     1,
		"fallback_timeout":     1,
		"last_remote_error":    "deadline exceeded",
		"activations_accepted": 1,
		"voice_turns":          1,
		"last_turn_ms":         int64(1500),
		"screen":               "SUCCESS",
		"orders":               1,
		"last_order_number":    101,
	}
	for k, want := range expected {
		if got := metrics[k]; got != want {
			t.Errorf("metric %q: expected %v, got %v", k, want, got)
		}
	}

	turns := m.RecentTurns()
	if len(turns) != 1 {
		t.Fatalf("Expected 1 recent turn, got %d", len(turns))
	}
	if turns[0].LatencyMS != 5000 {
		t.Errorf("Expected latency 5000ms, got %d", turns[0].LatencyMS)
	}
}

func TestMonitor_RecentTurnsBounded(t *testing.T) {
	m := NewMonitor()
	for i := 0; i < maxRecentTurns+5; i++ {
		m.IntentResolved(intent.Resolution{
			Intent: models.VoiceIntent{Action: models.ActionAddOrder, Item: fmt.Sprintf("item-%d", i)},
			Source: intent.SourceRemote,
		})
	}

	turns := m.RecentTurns()
	if len(turns) != maxRecentTurns {
		t.Fatalf("Expected %d recent turns, got %d", maxRecentTurns, len(turns))
	}
	if want := fmt.Sprintf("item-%d", maxRecentTurns+4); turns[0].Item != want {
		t.Errorf("Expected newest turn %s first, got %s", want, turns[0].Item)
	}
}

func TestMonitor_Reset(t *testing.T) {
	m := NewMonitor()
	m.RecordMetric("test_metric", 42)
	m.VoiceActivation("busy")

	m.Reset()

	metrics := m.GetMetrics()
	if _, exists := metrics["test_metric"]; exists {
		t.Errorf("Expected 'test_metric' to be removed after Reset(), but it was present")
	}
	if _, exists := metrics["uptime_seconds"]; !exists {
		t.Errorf("Expected 'uptime_seconds' to be present in metrics, but it was not")
	}
	if len(m.RecentTurns()) != 0 {
		t.Errorf("Expected no recent turns after Reset()")
	}
}

package monitoring

import (
	"sync"
	"time"

	"seniorkiosk/internal/intent"
	"seniorkiosk/internal/models"
)

const maxRecentTurns = 20

// TurnRecord describes one resolved utterance for the diagnostics page
type TurnRecord struct {
	At        time.Time     `json:"at"`
	Action    models.Action `json:"action"`
	Item      string        `json:"item,omitempty"`
	Source    intent.Source `json:"source"`
	Reason    string        `json:"reason,omitempty"`
	LatencyMS int64         `json:"latency_ms"`
}

// Monitor keeps in-process counters for the diagnostics endpoint. It
// implements kiosk.Observer.
type Monitor struct {
	metrics      map[string]interface{}
	recent       []TurnRecord
	metricsMutex sync.RWMutex
	startTime    time.Time
}

// NewMonitor creates a new monitoring instance
func NewMonitor() *Monitor {
	return &Monitor{
		metrics:   make(map[string]interface{}),
		startTime: time.Now(),
	}
}

// RecordMetric records a metric value
func (m *Monitor) RecordMetric(name string, value interface{}) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.metrics[name] = value
}

// GetMetric returns a specific metric value
func (m *Monitor) GetMetric(name string) (interface{}, bool) {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()
	value, exists := m.metrics[name]
	return value, exists
}

// GetMetrics returns all current metrics
func (m *Monitor) GetMetrics() map[string]interface{} {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()

	metrics := make(map[string]interface{}, len(m.metrics)+1)
	for k, v := range m.metrics {
		metrics[k] = v
	}
	metrics["uptime_seconds"] = time.Since(m.startTime).Seconds()

	return metrics
}

// RecentTurns returns the latest resolved utterances, newest first
func (m *Monitor) RecentTurns() []TurnRecord {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()

	out := make([]TurnRecord, len(m.recent))
	for i, r := range m.recent {
		out[len(m.recent)-1-i] = r
	}
	return out
}

// Reset clears all metrics and recent turns
func (m *Monitor) Reset() {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.metrics = make(map[string]interface{})
	m.recent = nil
}

// RecordEvaluationResult stores the scores of a classifier evaluation run
func (m *Monitor) RecordEvaluationResult(classifier string, scenario string, metrics map[string]interface{}) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()

	prefix := "eval_" + classifier + "_" + scenario + "_"
	for k, v := range metrics {
		m.metrics[prefix+k] = v
	}
	m.metrics[prefix+"last_evaluated"] = time.Now().Format(time.RFC3339)
}

func (m *Monitor) increment(name string) {
	n, _ := m.metrics[name].(int)
	m.metrics[name] = n + 1
}

// IntentResolved counts resolutions by source and fallback reason and keeps the turn in the recent list
func (m *Monitor) IntentResolved(res intent.Resolution) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()

	m.increment("intents_" + string(res.Source))
	if res.Reason != "" {
		m.increment("fallback_" + res.Reason)
	}
	if res.RemoteErr != nil {
		m.metrics["last_remote_error"] = res.RemoteErr.Error()
	}

	m.recent = append(m.recent, TurnRecord{
		At:        time.Now(),
		Action:    res.Intent.Action,
		Item:      res.Intent.Item,
		Source:    res.Source,
		Reason:    res.Reason,
		LatencyMS: res.Latency.Milliseconds(),
	})
	if len(m.recent) > maxRecentTurns {
		m.recent = m.recent[len(m.recent)-maxRecentTurns:]
	}
}

// Transitioned records the current screen and the event that led to it
func (m *Monitor) Transitioned(event string, _, to models.Screen) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.metrics["screen"] = string(to)
	m.metrics["last_event"] = event
}

// OrderCompleted counts finalized orders
func (m *Monitor) OrderCompleted(order models.CompletedOrder) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.increment("orders")
	m.metrics["last_order_number"] = order.Number
	m.metrics["last_order_at"] = order.PlacedAt.Format(time.RFC3339)
}

// VoiceActivation counts activation attempts by result
func (m *Monitor) VoiceActivation(result string) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.increment("activations_" + result)
}

// VoiceTurnFinished records the duration of the last voice turn
func (m *Monitor) VoiceTurnFinished(elapsed time.Duration) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.increment("voice_turns")
	m.metrics["last_turn_ms"] = elapsed.Milliseconds()
}

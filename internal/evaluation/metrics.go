package evaluation

import (
	"time"

	"seniorkiosk/internal/models"
)

type caseOutcome struct {
	Case    Case
	Got     models.VoiceIntent
	Err     error
	Latency time.Duration
}

func (o caseOutcome) actionCorrect() bool {
	return o.Err == nil && o.Got.Action == o.Case.Want.Action
}

// correct requires the item and temperature to agree for ADD_ORDER
func (o caseOutcome) correct() bool {
	if !o.actionCorrect() {
		return false
	}
	if o.Case.Want.Action != models.ActionAddOrder {
		return true
	}
	return o.Got.Item == o.Case.Want.Item &&
		o.Got.Temperature.OrDefault() == o.Case.Want.Temperature.OrDefault()
}

// Metrics summarizes a classifier run
type Metrics struct {
	Cases         int
	Correct       int
	ActionCorrect int
	Errors        int
	TotalLatency  time.Duration
}

func scoreOutcomes(outcomes []caseOutcome) Metrics {
	m := Metrics{Cases: len(outcomes)}
	for _, o := range outcomes {
		if o.Err != nil {
			m.Errors++
		}
		if o.actionCorrect() {
			m.ActionCorrect++
		}
		if o.correct() {
			m.Correct++
		}
		m.TotalLatency += o.Latency
	}
	return m
}

// Accuracy is the share of fully correct intents
func (m Metrics) Accuracy() float64 {
	if m.Cases == 0 {
		return 0
	}
	return float64(m.Correct) / float64(m.Cases)
}

// ActionAccuracy ignores item and temperature
func (m Metrics) ActionAccuracy() float64 {
	if m.Cases == 0 {
		return 0
	}
	return float64(m.ActionCorrect) / float64(m.Cases)
}

// AvgLatency is the mean classifier latency per case
func (m Metrics) AvgLatency() time.Duration {
	if m.Cases == 0 {
		return 0
	}
	return m.TotalLatency / time.Duration(m.Cases)
}

// AsMap renders the metrics for JSON output and the monitor
func (m Metrics) AsMap() map[string]interface{} {
	return map[string]interface{}{
		"cases":           m.Cases,
		"correct":         m.Correct,
		"errors":          m.Errors,
		"accuracy":        m.Accuracy(),
		"action_accuracy": m.ActionAccuracy(),
		"avg_latency_ms":  m.AvgLatency().Milliseconds(),
	}
}

package intent

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"seniorkiosk/internal/config"
	"seniorkiosk/internal/models"
)

// BreakerClassifier stops calling a failing remote classifier for a while.
// Calls made while the breaker is open fail immediately with gobreaker.ErrOpenState.
type BreakerClassifier struct {
	next Classifier
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerClassifier wraps next in a circuit breaker
func NewBreakerClassifier(next Classifier, cfg config.BreakerConfig, logger *zap.Logger) *BreakerClassifier {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = 3
	}
	openTimeout := cfg.OpenTimeout
	if openTimeout <= 0 {
		openTimeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "intent-classifier",
		MaxRequests: 1,
		Interval:    cfg.Interval,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &BreakerClassifier{next: next, cb: cb}
}

// Classify implements Classifier
func (b *BreakerClassifier) Classify(ctx context.Context, utterance string) (models.VoiceIntent, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Classify(ctx, utterance)
	})
	if err != nil {
		return models.VoiceIntent{}, err
	}
	return result.(models.VoiceIntent), nil
}

// State reports the breaker state for diagnostics
func (b *BreakerClassifier) State() string {
	return b.cb.State().String()
}

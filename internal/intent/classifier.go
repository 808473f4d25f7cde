package intent

import (
	"context"
	"errors"

	"seniorkiosk/internal/models"
)

var (
	// ErrEmptyResponse is returned when the remote service answers with no content
	ErrEmptyResponse = errors.New("empty classifier response")
	// ErrInvalidResponse is returned when the remote answer does not describe a valid intent
	ErrInvalidResponse = errors.New("invalid classifier response")
)

// Classifier turns one utterance into a structured intent
type Classifier interface {
	Classify(ctx context.Context, utterance string) (models.VoiceIntent, error)
}

// ClassifierFunc adapts a function to the Classifier interface
type ClassifierFunc func(ctx context.Context, utterance string) (models.VoiceIntent, error)

// Classify calls f
func (f ClassifierFunc) Classify(ctx context.Context, utterance string) (models.VoiceIntent, error) {
	return f(ctx, utterance)
}

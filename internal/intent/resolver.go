package intent

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"seniorkiosk/internal/logging"
	"seniorkiosk/internal/models"
)

// DefaultTimeout bounds a single remote classification
const DefaultTimeout = 5 * time.Second

// Source tells which classifier produced an intent
type Source string

const (
	SourceRemote   Source = "remote"
	SourceFallback Source = "fallback"
)

// Fallback reasons reported in Resolution.Reason
const (
	ReasonNoRemote    = "no_remote"
	ReasonEmptyInput  = "empty_input"
	ReasonTimeout     = "timeout"
	ReasonBreakerOpen = "breaker_open"
	ReasonInvalid     = "invalid_response"
	ReasonEmpty       = "empty_response"
	ReasonError       = "error"
)

// Resolution is the outcome of resolving one utterance
type Resolution struct {
	Intent    models.VoiceIntent
	Source    Source
	Reason    string // why the fallback was used; empty for remote results
	RemoteErr error
	Latency   time.Duration
}

// Resolver combines an optional remote classifier with the keyword matcher.
// Resolve never fails: any remote problem degrades to the local result.
type Resolver struct {
	remote   Classifier
	fallback *KeywordMatcher
	timeout  time.Duration
	logger   *zap.Logger
}

// NewResolver creates a resolver. remote may be nil.
func NewResolver(remote Classifier, fallback *KeywordMatcher, timeout time.Duration, logger *zap.Logger) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Resolver{
		remote:   remote,
		fallback: fallback,
		timeout:  timeout,
		logger:   logger.Named("intent"),
	}
}

// HasRemote reports whether a remote classifier is configured
func (r *Resolver) HasRemote() bool {
	return r.remote != nil
}

// Resolve returns the intent for utterance
func (r *Resolver) Resolve(ctx context.Context, utterance string) models.VoiceIntent {
	return r.ResolveDetailed(ctx, utterance).Intent
}

// ResolveDetailed resolves utterance and reports where the intent came from
func (r *Resolver) ResolveDetailed(ctx context.Context, utterance string) Resolution {
	start := time.Now()

	if strings.TrimSpace(utterance) == "" {
		return Resolution{Intent: models.Unknown(), Source: SourceFallback, Reason: ReasonEmptyInput}
	}

	if r.remote == nil {
		return r.useFallback(utterance, ReasonNoRemote, nil, start)
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	intent, err := r.remote.Classify(callCtx, utterance)
	if err != nil {
		reason := failureReason(callCtx, err)
		r.logger.Warn("Remote intent classification failed, using keyword matching",
			zap.String("reason", reason),
			zap.Error(err),
			logging.Transcript(utterance),
		)
		return r.useFallback(utterance, reason, err, start)
	}

	r.logger.Debug("Intent resolved remotely",
		zap.String("action", string(intent.Action)),
		zap.String("item", intent.Item),
		logging.Transcript(utterance),
	)
	return Resolution{
		Intent:  intent,
		Source:  SourceRemote,
		Latency: time.Since(start),
	}
}

func (r *Resolver) useFallback(utterance, reason string, remoteErr error, start time.Time) Resolution {
	intent := r.fallback.Match(utterance)
	r.logger.Debug("Intent resolved by keywords",
		zap.String("action", string(intent.Action)),
		zap.String("item", intent.Item),
		zap.String("reason", reason),
	)
	return Resolution{
		Intent:    intent,
		Source:    SourceFallback,
		Reason:    reason,
		RemoteErr: remoteErr,
		Latency:   time.Since(start),
	}
}

func failureReason(ctx context.Context, err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		return ReasonBreakerOpen
	case errors.Is(err, ErrEmptyResponse):
		return ReasonEmpty
	case errors.Is(err, ErrInvalidResponse):
		return ReasonInvalid
	}
	return ReasonError
}

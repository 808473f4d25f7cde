package intent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"seniorkiosk/internal/catalog"
	"seniorkiosk/internal/config"
	"seniorkiosk/internal/models"
)

func newTestResolver(remote Classifier, timeout time.Duration) *Resolver {
	return NewResolver(remote, NewKeywordMatcher(catalog.Default()), timeout, zap.NewNop())
}

func TestResolverUsesRemoteResult(t *testing.T) {
	remote := ClassifierFunc(func(context.Context, string) (models.VoiceIntent, error) {
		return models.VoiceIntent{Action: models.ActionAddOrder, Item: "카페라떼", Temperature: models.Ice}, nil
	})
	r := newTestResolver(remote, time.Second)

	res := r.ResolveDetailed(context.Background(), "시원한 라떼")
	assert.Equal(t, SourceRemote, res.Source)
	assert.Empty(t, res.Reason)
	assert.Equal(t, "카페라떼", res.Intent.Item)
	assert.True(t, r.HasRemote())
}

func TestResolverFallsBackWithoutRemote(t *testing.T) {
	r := newTestResolver(nil, 0)

	res := r.ResolveDetailed(context.Background(), "결제해줘")
	assert.Equal(t, SourceFallback, res.Source)
	assert.Equal(t, ReasonNoRemote, res.Reason)
	assert.Equal(t, models.ActionCheckout, res.Intent.Action)
	assert.False(t, r.HasRemote())
}

func TestResolverFallbackReasons(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		reason string
	}{
		{"invalid", ErrInvalidResponse, ReasonInvalid},
		{"empty", ErrEmptyResponse, ReasonEmpty},
		{"breaker open", gobreaker.ErrOpenState, ReasonBreakerOpen},
		{"network", errors.New("connection refused"), ReasonError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := ClassifierFunc(func(context.Context, string) (models.VoiceIntent, error) {
				return models.VoiceIntent{}, tt.err
			})
			res := newTestResolver(remote, time.Second).ResolveDetailed(context.Background(), "아메리카노 주세요")

			assert.Equal(t, SourceFallback, res.Source)
			assert.Equal(t, tt.reason, res.Reason)
			assert.ErrorIs(t, res.RemoteErr, tt.err)
			assert.Equal(t, models.VoiceIntent{Action: models.ActionAddOrder, Item: "아메리카노", Temperature: models.Hot}, res.Intent)
		})
	}
}

func TestResolverTimeoutFallsBack(t *testing.T) {
	remote := ClassifierFunc(func(ctx context.Context, _ string) (models.VoiceIntent, error) {
		<-ctx.Done()
		return models.VoiceIntent{}, ctx.Err()
	})
	r := newTestResolver(remote, 20*time.Millisecond)

	start := time.Now()
	res := r.ResolveDetailed(context.Background(), "뒤로")
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, ReasonTimeout, res.Reason)
	assert.Equal(t, models.ActionGoBack, res.Intent.Action)
}

func TestResolverEmptyUtterance(t *testing.T) {
	called := false
	remote := ClassifierFunc(func(context.Context, string) (models.VoiceIntent, error) {
		called = true
		return models.VoiceIntent{Action: models.ActionCheckout}, nil
	})

	got := newTestResolver(remote, time.Second).Resolve(context.Background(), "   ")
	assert.Equal(t, models.Unknown(), got)
	assert.False(t, called)
}

func TestResolverSingleAttempt(t *testing.T) {
	calls := 0
	remote := ClassifierFunc(func(context.Context, string) (models.VoiceIntent, error) {
		calls++
		return models.VoiceIntent{}, errors.New("unavailable")
	})

	newTestResolver(remote, time.Second).Resolve(context.Background(), "아메리카노")
	assert.Equal(t, 1, calls)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	calls := 0
	failing := ClassifierFunc(func(context.Context, string) (models.VoiceIntent, error) {
		calls++
		return models.VoiceIntent{}, errors.New("unavailable")
	})
	b := NewBreakerClassifier(failing, config.BreakerConfig{MaxFailures: 2, OpenTimeout: time.Minute}, zap.NewNop())

	for i := 0; i < 2; i++ {
		_, err := b.Classify(context.Background(), "아메리카노")
		require.Error(t, err)
	}
	assert.Equal(t, "open", b.State())

	_, err := b.Classify(context.Background(), "아메리카노")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, calls)
}

func TestBreakerPassesResults(t *testing.T) {
	ok := ClassifierFunc(func(context.Context, string) (models.VoiceIntent, error) {
		return models.VoiceIntent{Action: models.ActionSelectHot}, nil
	})
	b := NewBreakerClassifier(ok, config.BreakerConfig{}, zap.NewNop())

	got, err := b.Classify(context.Background(), "따뜻하게")
	require.NoError(t, err)
	assert.Equal(t, models.ActionSelectHot, got.Action)
	assert.Equal(t, "closed", b.State())
}

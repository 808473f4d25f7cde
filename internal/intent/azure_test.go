package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azopenai"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seniorkiosk/internal/catalog"
	"seniorkiosk/internal/models"
)

type stubCompleter struct {
	reply *string
	empty bool
	err   error
	got   azopenai.ChatCompletionsOptions
}

func (s *stubCompleter) GetChatCompletions(_ context.Context, body azopenai.ChatCompletionsOptions, _ *azopenai.GetChatCompletionsOptions) (azopenai.GetChatCompletionsResponse, error) {
	s.got = body
	var resp azopenai.GetChatCompletionsResponse
	if s.err != nil {
		return resp, s.err
	}
	if !s.empty {
		resp.Choices = []azopenai.ChatChoice{{Message: &azopenai.ChatResponseMessage{Content: s.reply}}}
	}
	return resp, nil
}

func TestAzureClassifier(t *testing.T) {
	stub := &stubCompleter{reply: to.Ptr(`{"action":"ADD_ORDER","item":"아메리카노","temperature":"HOT"}`)}
	c := newAzureClassifier(stub, "kiosk-gpt", catalog.Default(), 0.1, 64)

	got, err := c.Classify(context.Background(), "따뜻한 아메리카노 주세요")
	require.NoError(t, err)
	assert.Equal(t, models.VoiceIntent{Action: models.ActionAddOrder, Item: "아메리카노", Temperature: models.Hot}, got)

	require.NotNil(t, stub.got.DeploymentName)
	assert.Equal(t, "kiosk-gpt", *stub.got.DeploymentName)
	require.NotNil(t, stub.got.MaxTokens)
	assert.Equal(t, int32(64), *stub.got.MaxTokens)
	assert.Len(t, stub.got.Messages, 1)
}

func TestAzureClassifierErrors(t *testing.T) {
	c := newAzureClassifier(&stubCompleter{err: errors.New("throttled")}, "d", catalog.Default(), 0, 0)
	_, err := c.Classify(context.Background(), "라떼")
	assert.ErrorContains(t, err, "throttled")

	c = newAzureClassifier(&stubCompleter{empty: true}, "d", catalog.Default(), 0, 0)
	_, err = c.Classify(context.Background(), "라떼")
	assert.ErrorIs(t, err, ErrEmptyResponse)

	c = newAzureClassifier(&stubCompleter{reply: to.Ptr(`{"action":"ORDER_LATTE"}`)}, "d", catalog.Default(), 0, 0)
	_, err = c.Classify(context.Background(), "라떼")
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestNewAzureClientRequiresEndpoint(t *testing.T) {
	_, err := NewAzureClient("", "key")
	assert.Error(t, err)
}

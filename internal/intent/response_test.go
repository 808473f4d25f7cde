package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seniorkiosk/internal/catalog"
	"seniorkiosk/internal/models"
)

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    models.VoiceIntent
		wantErr error
	}{
		{
			name: "add order",
			raw:  `{"action":"ADD_ORDER","item":"아메리카노","temperature":"ICE"}`,
			want: models.VoiceIntent{Action: models.ActionAddOrder, Item: "아메리카노", Temperature: models.Ice},
		},
		{
			name: "temperature defaults to hot",
			raw:  `{"action":"ADD_ORDER","item":"카페라떼","temperature":null}`,
			want: models.VoiceIntent{Action: models.ActionAddOrder, Item: "카페라떼", Temperature: models.Hot},
		},
		{
			name: "lower case action and temperature",
			raw:  `{"action":"add_order","item":"유자차","temperature":"ice"}`,
			want: models.VoiceIntent{Action: models.ActionAddOrder, Item: "유자차", Temperature: models.Ice},
		},
		{
			name: "fenced json",
			raw:  "```json\n{\"action\": \"CHECKOUT\", \"item\": null, \"temperature\": null}\n```",
			want: models.VoiceIntent{Action: models.ActionCheckout},
		},
		{
			name: "item dropped for other actions",
			raw:  `{"action":"GO_BACK","item":"아메리카노","temperature":"HOT"}`,
			want: models.VoiceIntent{Action: models.ActionGoBack},
		},
		{
			name: "unknown is a valid answer",
			raw:  `{"action":"UNKNOWN"}`,
			want: models.Unknown(),
		},
		{name: "empty", raw: "", wantErr: ErrEmptyResponse},
		{name: "prose only", raw: "I cannot help with that", wantErr: ErrEmptyResponse},
		{name: "broken json", raw: `{"action": }`, wantErr: ErrInvalidResponse},
		{name: "bad action", raw: `{"action":"ORDER_PIZZA"}`, wantErr: ErrInvalidResponse},
		{name: "missing action", raw: `{"item":"아메리카노"}`, wantErr: ErrInvalidResponse},
		{name: "add order without item", raw: `{"action":"ADD_ORDER","item":null}`, wantErr: ErrInvalidResponse},
		{name: "add order with null string", raw: `{"action":"ADD_ORDER","item":"null"}`, wantErr: ErrInvalidResponse},
		{name: "bad temperature", raw: `{"action":"ADD_ORDER","item":"아메리카노","temperature":"WARM"}`, wantErr: ErrInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseResponse(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildInstructionListsMenu(t *testing.T) {
	instruction := BuildInstruction(catalog.Default())

	for _, name := range catalog.Default().Names() {
		assert.Contains(t, instruction, name)
	}
	for _, a := range models.Actions {
		assert.Contains(t, instruction, string(a))
	}
	assert.Contains(t, instruction, "CHECKOUT, GO_BACK, SELECT_HOT, SELECT_ICE, ADD_TO_CART.")
	assert.Contains(t, instruction, `"아이스 아메리카노 주세요" is ADD_ORDER with "ICE"`)
	assert.Contains(t, instruction, `"아이스 아메리카노 담아줘" is SELECT_ICE`)
}

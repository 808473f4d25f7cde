package intent

import (
	"encoding/json"
	"fmt"
	"strings"

	"seniorkiosk/internal/models"
)

type rawIntent struct {
	Action      string  `json:"action"`
	Item        *string `json:"item"`
	Temperature *string `json:"temperature"`
}

// ParseResponse decodes and validates a remote classifier answer. Code fences
// and prose around the JSON object are tolerated.
func ParseResponse(raw string) (models.VoiceIntent, error) {
	body := extractObject(raw)
	if body == "" {
		return models.VoiceIntent{}, ErrEmptyResponse
	}

	var r rawIntent
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return models.VoiceIntent{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return Normalize(r.Action, deref(r.Item), deref(r.Temperature))
}

// Normalize validates a decoded intent against the closed action set.
// ADD_ORDER requires an item and defaults temperature to HOT; every other
// action has item and temperature dropped.
func Normalize(action, item, temperature string) (models.VoiceIntent, error) {
	a := models.Action(strings.ToUpper(strings.TrimSpace(action)))
	if !a.Valid() {
		return models.VoiceIntent{}, fmt.Errorf("%w: unknown action %q", ErrInvalidResponse, action)
	}
	if a != models.ActionAddOrder {
		return models.VoiceIntent{Action: a}, nil
	}

	item = strings.TrimSpace(item)
	if item == "" || strings.EqualFold(item, "null") {
		return models.VoiceIntent{}, fmt.Errorf("%w: ADD_ORDER without item", ErrInvalidResponse)
	}

	temp := models.Hot
	if t := strings.TrimSpace(temperature); t != "" && !strings.EqualFold(t, "null") {
		parsed, ok := models.ParseTemperature(t)
		if !ok {
			return models.VoiceIntent{}, fmt.Errorf("%w: unknown temperature %q", ErrInvalidResponse, temperature)
		}
		temp = parsed
	}

	return models.VoiceIntent{Action: a, Item: item, Temperature: temp}, nil
}

func extractObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

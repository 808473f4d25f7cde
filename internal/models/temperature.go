package models

import "strings"

// Temperature is the serving variant of a drink
type Temperature string

const (
	Hot Temperature = "HOT"
	Ice Temperature = "ICE"
)

// ParseTemperature accepts HOT or ICE in any case.
func ParseTemperature(s string) (Temperature, bool) {
	switch Temperature(strings.ToUpper(strings.TrimSpace(s))) {
	case Hot:
		return Hot, true
	case Ice:
		return Ice, true
	}
	return "", false
}

// OrDefault resolves an unset temperature to Hot.
func (t Temperature) OrDefault() Temperature {
	if t == Ice {
		return Ice
	}
	return Hot
}

// Label returns the Korean adjective used when speaking about the variant
func (t Temperature) Label() string {
	if t.OrDefault() == Ice {
		return "차가운"
	}
	return "따뜻한"
}

package kiosk

import (
	"seniorkiosk/internal/models"
)

// State is the part of a session the transition function reads
type State struct {
	Screen      models.Screen
	Lines       []models.CartLine
	Selected    *models.MenuItem
	Temperature models.Temperature // variant chosen on the detail screen
}

// Event is anything that can move a session
type Event interface {
	eventName() string
}

type (
	// DetectionElapsed fires once the landing delay has passed
	DetectionElapsed struct{}
	// VoiceCommand carries a resolved utterance
	VoiceCommand struct{ Intent models.VoiceIntent }
	// SelectItem is a touch on a menu card
	SelectItem struct{ ItemID string }
	// SelectTemperature is a touch on the hot/ice toggle
	SelectTemperature struct{ Temperature models.Temperature }
	AddToCart         struct{}
	Back              struct{}
	OpenCart          struct{}
	RemoveLine        struct{ Index int }
	Checkout          struct{}
	ReturnHome        struct{}
)

func (DetectionElapsed) eventName() string  { return "detection_elapsed" }
func (VoiceCommand) eventName() string      { return "voice" }
func (SelectItem) eventName() string        { return "select_item" }
func (SelectTemperature) eventName() string { return "select_temperature" }
func (AddToCart) eventName() string         { return "add_to_cart" }
func (Back) eventName() string              { return "back" }
func (OpenCart) eventName() string          { return "open_cart" }
func (RemoveLine) eventName() string        { return "remove_line" }
func (Checkout) eventName() string          { return "checkout" }
func (ReturnHome) eventName() string        { return "return_home" }

// EventName returns a stable name for logs and metrics
func EventName(ev Event) string {
	return ev.eventName()
}

// Effect is a side effect the session applies after a transition, in order
type Effect interface {
	effectName() string
}

type (
	AddLineEffect struct {
		Item        models.MenuItem
		Temperature models.Temperature
	}
	RemoveLineEffect     struct{ Index int }
	ClearCartEffect      struct{}
	FinalizeOrderEffect  struct{}
	ClearOrderEffect     struct{}
	ShowSoldOutEffect    struct{ Item models.MenuItem }
	SelectItemEffect     struct{ Item models.MenuItem }
	ClearSelectionEffect struct{}
	SetTemperatureEffect struct{ Temperature models.Temperature }
	ReleaseCameraEffect  struct{}
)

func (AddLineEffect) effectName() string        { return "add_line" }
func (RemoveLineEffect) effectName() string     { return "remove_line" }
func (ClearCartEffect) effectName() string      { return "clear_cart" }
func (FinalizeOrderEffect) effectName() string  { return "finalize_order" }
func (ClearOrderEffect) effectName() string     { return "clear_order" }
func (ShowSoldOutEffect) effectName() string    { return "show_sold_out" }
func (SelectItemEffect) effectName() string     { return "select_item" }
func (ClearSelectionEffect) effectName() string { return "clear_selection" }
func (SetTemperatureEffect) effectName() string { return "set_temperature" }
func (ReleaseCameraEffect) effectName() string  { return "release_camera" }

// Outcome is the result of one transition. Ignored outcomes change nothing
// and say nothing; every other outcome carries exactly one Feedback.
type Outcome struct {
	Next     models.Screen
	Effects  []Effect
	Feedback *Feedback
	Ignored  bool
}

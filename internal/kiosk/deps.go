package kiosk

import (
	"time"

	"seniorkiosk/internal/intent"
	"seniorkiosk/internal/models"
)

// Speaker plays a phrase aloud, interrupting whatever was playing
type Speaker interface {
	Speak(text string)
}

// Display receives every new session snapshot
type Display interface {
	Show(snapshot Snapshot)
}

// Observer is told about voice turns, transitions and orders
type Observer interface {
	IntentResolved(res intent.Resolution)
	Transitioned(event string, from, to models.Screen)
	OrderCompleted(order models.CompletedOrder)
	VoiceActivation(result string)
	VoiceTurnFinished(elapsed time.Duration)
}

// Timer is a pending scheduled call
type Timer interface {
	Stop() bool
}

// Scheduler runs f after d
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type nopSpeaker struct{}

func (nopSpeaker) Speak(string) {}

type nopDisplay struct{}

func (nopDisplay) Show(Snapshot) {}

type nopObserver struct{}

func (nopObserver) IntentResolved(intent.Resolution)                  {}
func (nopObserver) Transitioned(string, models.Screen, models.Screen) {}
func (nopObserver) OrderCompleted(models.CompletedOrder)              {}
func (nopObserver) VoiceActivation(string)                            {}
func (nopObserver) VoiceTurnFinished(time.Duration)                   {}

// Observers fans out to several observers
type Observers []Observer

func (o Observers) IntentResolved(res intent.Resolution) {
	for _, obs := range o {
		obs.IntentResolved(res)
	}
}

func (o Observers) Transitioned(event string, from, to models.Screen) {
	for _, obs := range o {
		obs.Transitioned(event, from, to)
	}
}

func (o Observers) OrderCompleted(order models.CompletedOrder) {
	for _, obs := range o {
		obs.OrderCompleted(order)
	}
}

func (o Observers) VoiceActivation(result string) {
	for _, obs := range o {
		obs.VoiceActivation(result)
	}
}

func (o Observers) VoiceTurnFinished(elapsed time.Duration) {
	for _, obs := range o {
		obs.VoiceTurnFinished(elapsed)
	}
}

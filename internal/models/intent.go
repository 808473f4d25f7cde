package models

// Action is the closed set of things a spoken utterance can ask for
type Action string

const (
	ActionAddOrder  Action = "ADD_ORDER"
	ActionCheckout  Action = "CHECKOUT"
	ActionSelectHot Action = "SELECT_HOT"
	ActionSelectIce Action = "SELECT_ICE"
	ActionAddToCart Action = "ADD_TO_CART"
	ActionGoBack    Action = "GO_BACK"
	ActionUnknown   Action = "UNKNOWN"
)

// Actions lists every valid action in taxonomy order
var Actions = []Action{
	ActionAddOrder,
	ActionCheckout,
	ActionSelectHot,
	ActionSelectIce,
	ActionAddToCart,
	ActionGoBack,
	ActionUnknown,
}

// Valid reports whether a belongs to the closed action set
func (a Action) Valid() bool {
	for _, known := range Actions {
		if a == known {
			return true
		}
	}
	return false
}

// VoiceIntent is the structured result of classifying one utterance.
// Item and Temperature are only meaningful for ActionAddOrder.
type VoiceIntent struct {
	Action      Action      `json:"action"`
	Item        string      `json:"item,omitempty"`
	Temperature Temperature `json:"temperature,omitempty"`
}

// Unknown is the intent returned when nothing matched
func Unknown() VoiceIntent {
	return VoiceIntent{Action: ActionUnknown}
}

package kiosk

import (
	"seniorkiosk/internal/catalog"
	"seniorkiosk/internal/models"
)

// Transition computes the next screen, effects and feedback for ev. It is a
// pure function: it neither mutates s nor performs I/O.
func Transition(s State, ev Event, c *catalog.Catalog) Outcome {
	switch s.Screen {
	case models.ScreenLanding:
		return onLanding(s, ev)
	case models.ScreenMenu:
		return onMenu(s, ev, c)
	case models.ScreenMenuDetail:
		return onDetail(s, ev)
	case models.ScreenCartView:
		return onCart(s, ev)
	case models.ScreenSuccess:
		return onSuccess(s, ev)
	}
	return ignore(s)
}

func onLanding(s State, ev Event) Outcome {
	if _, ok := ev.(DetectionElapsed); ok {
		return Outcome{
			Next:     models.ScreenMenu,
			Effects:  []Effect{ReleaseCameraEffect{}},
			Feedback: &Feedback{Kind: FeedbackGreeting},
		}
	}
	return ignore(s)
}

func onMenu(s State, ev Event, c *catalog.Catalog) Outcome {
	switch e := ev.(type) {
	case VoiceCommand:
		switch e.Intent.Action {
		case models.ActionAddOrder:
			return voiceAdd(s, e.Intent, c)
		case models.ActionCheckout:
			return checkout(s, FeedbackEmptyCart, FeedbackOrderPlaced)
		}
		return stay(s, Feedback{Kind: FeedbackNotUnderstood})

	case SelectItem:
		item, ok := c.Get(e.ItemID)
		if !ok {
			return stay(s, Feedback{Kind: FeedbackItemNotFound})
		}
		if item.SoldOut {
			out := stay(s, Feedback{Kind: FeedbackSoldOutSelected, Item: item})
			out.Effects = []Effect{ShowSoldOutEffect{Item: item}}
			return out
		}
		return Outcome{
			Next: models.ScreenMenuDetail,
			Effects: []Effect{
				SelectItemEffect{Item: item},
				SetTemperatureEffect{Temperature: models.Hot},
			},
			Feedback: &Feedback{Kind: FeedbackDetail, Item: item},
		}

	case OpenCart:
		return Outcome{
			Next:     models.ScreenCartView,
			Feedback: &Feedback{Kind: FeedbackCartOpened},
		}

	case Checkout:
		return checkout(s, FeedbackEmptyCart, FeedbackOrderPlaced)
	}
	return ignore(s)
}

func voiceAdd(s State, in models.VoiceIntent, c *catalog.Catalog) Outcome {
	item, ok := c.FindByName(in.Item)
	if !ok {
		return stay(s, Feedback{Kind: FeedbackItemNotFound})
	}
	if item.SoldOut {
		out := stay(s, Feedback{Kind: FeedbackSoldOut, Item: item})
		out.Effects = []Effect{ShowSoldOutEffect{Item: item}}
		return out
	}

	temp := in.Temperature.OrDefault()
	out := stay(s, Feedback{Kind: FeedbackVoiceAdded, Item: item, Temperature: temp})
	out.Effects = []Effect{AddLineEffect{Item: item, Temperature: temp}}
	return out
}

func onDetail(s State, ev Event) Outcome {
	if s.Selected == nil {
		return Outcome{
			Next:     models.ScreenMenu,
			Effects:  []Effect{ClearSelectionEffect{}},
			Feedback: &Feedback{Kind: FeedbackBackToMenu},
		}
	}

	switch e := ev.(type) {
	case VoiceCommand:
		switch e.Intent.Action {
		case models.ActionSelectHot:
			return chooseTemperature(s, models.Hot)
		case models.ActionSelectIce:
			return chooseTemperature(s, models.Ice)
		case models.ActionAddToCart:
			return addSelected(s)
		case models.ActionGoBack:
			return backToMenu()
		case models.ActionCheckout:
			out := checkout(s, FeedbackEmptyCart, FeedbackOrderPlaced)
			if out.Next == models.ScreenSuccess {
				out.Effects = append([]Effect{ClearSelectionEffect{}}, out.Effects...)
			}
			return out
		}
		return stay(s, Feedback{Kind: FeedbackNotUnderstood})
	case SelectTemperature:
		return chooseTemperature(s, e.Temperature)
	case AddToCart:
		return addSelected(s)
	case Back:
		return backToMenu()
	}
	return ignore(s)
}

func chooseTemperature(s State, t models.Temperature) Outcome {
	t = t.OrDefault()
	out := stay(s, Feedback{Kind: FeedbackTemperature, Temperature: t})
	out.Effects = []Effect{SetTemperatureEffect{Temperature: t}}
	return out
}

func addSelected(s State) Outcome {
	item := *s.Selected
	temp := s.Temperature.OrDefault()
	return Outcome{
		Next: models.ScreenMenu,
		Effects: []Effect{
			AddLineEffect{Item: item, Temperature: temp},
			ClearSelectionEffect{},
		},
		Feedback: &Feedback{Kind: FeedbackDetailAdded, Item: item, Temperature: temp},
	}
}

func backToMenu() Outcome {
	return Outcome{
		Next:     models.ScreenMenu,
		Effects:  []Effect{ClearSelectionEffect{}},
		Feedback: &Feedback{Kind: FeedbackBackToMenu},
	}
}

func onCart(s State, ev Event) Outcome {
	switch e := ev.(type) {
	case VoiceCommand:
		switch e.Intent.Action {
		case models.ActionCheckout:
			return checkout(s, FeedbackAddFirst, FeedbackCartOrderPlaced)
		case models.ActionGoBack:
			return moreMenu()
		}
		return stay(s, Feedback{Kind: FeedbackNotUnderstood})
	case RemoveLine:
		if e.Index < 0 || e.Index >= len(s.Lines) {
			return stay(s, Feedback{Kind: FeedbackInvalidRemoval})
		}
		out := stay(s, Feedback{Kind: FeedbackRemoved, Item: s.Lines[e.Index].Item})
		out.Effects = []Effect{RemoveLineEffect{Index: e.Index}}
		return out
	case Checkout:
		return checkout(s, FeedbackAddFirst, FeedbackCartOrderPlaced)
	case Back:
		return moreMenu()
	}
	return ignore(s)
}

func moreMenu() Outcome {
	return Outcome{
		Next:     models.ScreenMenu,
		Feedback: &Feedback{Kind: FeedbackMoreMenu},
	}
}

func onSuccess(s State, ev Event) Outcome {
	switch e := ev.(type) {
	case VoiceCommand:
		if e.Intent.Action == models.ActionGoBack {
			return returnHome()
		}
		return stay(s, Feedback{Kind: FeedbackNotUnderstood})
	case ReturnHome, Back:
		return returnHome()
	}
	return ignore(s)
}

func returnHome() Outcome {
	return Outcome{
		Next:     models.ScreenMenu,
		Effects:  []Effect{ClearCartEffect{}, ClearOrderEffect{}},
		Feedback: &Feedback{Kind: FeedbackReturnHome},
	}
}

// checkout never finalizes an empty cart. The order number in the placed
// feedback is filled in once the session has finalized the order.
func checkout(s State, empty, placed FeedbackKind) Outcome {
	if len(s.Lines) == 0 {
		return stay(s, Feedback{Kind: empty})
	}
	return Outcome{
		Next:     models.ScreenSuccess,
		Effects:  []Effect{FinalizeOrderEffect{}},
		Feedback: &Feedback{Kind: placed},
	}
}

func stay(s State, f Feedback) Outcome {
	return Outcome{Next: s.Screen, Feedback: &f}
}

func ignore(s State) Outcome {
	return Outcome{Next: s.Screen, Ignored: true}
}

package models

// Screen is the active application state of a kiosk session
type Screen string

const (
	ScreenLanding    Screen = "LANDING"
	ScreenMenu       Screen = "MENU"
	ScreenMenuDetail Screen = "MENU_DETAIL"
	ScreenCartView   Screen = "CART_VIEW"
	ScreenSuccess    Screen = "SUCCESS"
)

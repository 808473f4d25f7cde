package models

import (
	"time"
)

// CartLine is one selected drink. The menu item is copied at selection time.
type CartLine struct {
	Item        MenuItem    `json:"item"`
	Quantity    int         `json:"quantity"`
	Temperature Temperature `json:"temperature"`
}

// CompletedOrder is the immutable record produced at checkout
type CompletedOrder struct {
	ID          string     `json:"id"`
	Number      int        `json:"number"`
	Lines       []CartLine `json:"lines"`
	Total       int        `json:"total"`
	PrepMinutes int        `json:"prep_minutes"`
	PlacedAt    time.Time  `json:"placed_at"`
}

// CopyLines returns a copy of lines that shares no backing array with the input
func CopyLines(lines []CartLine) []CartLine {
	out := make([]CartLine, len(lines))
	copy(out, lines)
	return out
}

package models

import (
	"fmt"
)

// MenuItem represents a drink offered by the kiosk
type MenuItem struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Price       int    `json:"price" yaml:"price"` // whole won
	ImageURL    string `json:"image_url" yaml:"image_url"`
	Description string `json:"description,omitempty" yaml:"description"`
	SoldOut     bool   `json:"sold_out" yaml:"sold_out"`
}

// ValidateMenuItem validates a menu item
func ValidateMenuItem(item *MenuItem) error {
	if item.ID == "" {
		return fmt.Errorf("menu item id is required")
	}
	if item.Name == "" {
		return fmt.Errorf("menu item %s: name is required", item.ID)
	}
	if item.Price < 0 {
		return fmt.Errorf("menu item %s: price must not be negative", item.ID)
	}
	return nil
}

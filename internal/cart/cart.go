package cart

import (
	"errors"
	"fmt"

	"seniorkiosk/internal/models"
)

// ErrIndexOutOfRange is returned by RemoveAt for a position that holds no line
var ErrIndexOutOfRange = errors.New("cart index out of range")

// Cart is an ordered list of selected drinks. Identical selections are kept
// as separate lines.
type Cart struct {
	lines []models.CartLine
}

// New creates an empty cart
func New() *Cart {
	return &Cart{}
}

// FromLines creates a cart holding a copy of lines
func FromLines(lines []models.CartLine) *Cart {
	return &Cart{lines: models.CopyLines(lines)}
}

// Add appends a quantity-1 line for item at the given temperature
func (c *Cart) Add(item models.MenuItem, temp models.Temperature) models.CartLine {
	line := models.CartLine{
		Item:        item,
		Quantity:    1,
		Temperature: temp.OrDefault(),
	}
	c.lines = append(c.lines, line)
	return line
}

// RemoveAt deletes the line at index; later lines shift down by one
func (c *Cart) RemoveAt(index int) (models.CartLine, error) {
	if index < 0 || index >= len(c.lines) {
		return models.CartLine{}, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(c.lines))
	}
	removed := c.lines[index]
	c.lines = append(c.lines[:index:index], c.lines[index+1:]...)
	return removed, nil
}

// Total is the sum of line prices. Temperature has no effect on price.
func (c *Cart) Total() int {
	return Total(c.lines)
}

// Len returns the number of lines
func (c *Cart) Len() int {
	return len(c.lines)
}

// Snapshot returns an independent copy of the lines
func (c *Cart) Snapshot() []models.CartLine {
	return models.CopyLines(c.lines)
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.lines = nil
}

// Total sums price times quantity over lines
func Total(lines []models.CartLine) int {
	total := 0
	for _, l := range lines {
		qty := l.Quantity
		if qty <= 0 {
			qty = 1
		}
		total += l.Item.Price * qty
	}
	return total
}

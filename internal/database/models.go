package database

import (
	"time"

	"github.com/jinzhu/gorm"
)

// Setting is a single persisted key/value pair
type Setting struct {
	Name      string `gorm:"primary_key;size:64"`
	Value     string `gorm:"size:255"`
	UpdatedAt time.Time
}

// TableName overrides the gorm default
func (Setting) TableName() string {
	return "kiosk_settings"
}

// OrderRecord is the journal row for a completed order
type OrderRecord struct {
	gorm.Model
	OrderID     string `gorm:"unique_index;size:36"`
	Number      int    `gorm:"index"`
	Total       int
	PrepMinutes int
	PlacedAt    time.Time         `gorm:"index"`
	Lines       []OrderLineRecord `gorm:"foreignkey:OrderRecordID"`
}

// OrderLineRecord is one drink of a journaled order
type OrderLineRecord struct {
	gorm.Model
	OrderRecordID uint
	Position      int
	MenuItemID    string
	Name          string
	Price         int
	Quantity      int
	Temperature   string `gorm:"size:8"`
}

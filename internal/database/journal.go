package database

import (
	"context"
	"fmt"

	"github.com/jinzhu/gorm"

	"seniorkiosk/internal/models"
)

// OrderJournal stores completed orders
type OrderJournal struct {
	db *gorm.DB
}

// NewOrderJournal creates a new order journal
func NewOrderJournal(db *gorm.DB) *OrderJournal {
	return &OrderJournal{db: db}
}

// RecordOrder saves a completed order with its lines
func (j *OrderJournal) RecordOrder(_ context.Context, o models.CompletedOrder) error {
	rec := OrderRecord{
		OrderID:     o.ID,
		Number:      o.Number,
		Total:       o.Total,
		PrepMinutes: o.PrepMinutes,
		PlacedAt:    o.PlacedAt,
	}
	for i, l := range o.Lines {
		rec.Lines = append(rec.Lines, OrderLineRecord{
			Position:    i,
			MenuItemID:  l.Item.ID,
			Name:        l.Item.Name,
			Price:       l.Item.Price,
			Quantity:    l.Quantity,
			Temperature: string(l.Temperature),
		})
	}

	if err := j.db.Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to save order %d: %w", o.Number, err)
	}
	return nil
}

// RecentOrders returns up to limit orders, newest first
func (j *OrderJournal) RecentOrders(_ context.Context, limit int) ([]models.CompletedOrder, error) {
	if limit <= 0 {
		limit = 20
	}

	var recs []OrderRecord
	err := j.db.
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Order("placed_at desc").
		Order("id desc").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	orders := make([]models.CompletedOrder, 0, len(recs))
	for _, rec := range recs {
		o := models.CompletedOrder{
			ID:          rec.OrderID,
			Number:      rec.Number,
			Total:       rec.Total,
			PrepMinutes: rec.PrepMinutes,
			PlacedAt:    rec.PlacedAt,
			Lines:       make([]models.CartLine, 0, len(rec.Lines)),
		}
		for _, l := range rec.Lines {
			o.Lines = append(o.Lines, models.CartLine{
				Item:        models.MenuItem{ID: l.MenuItemID, Name: l.Name, Price: l.Price},
				Quantity:    l.Quantity,
				Temperature: models.Temperature(l.Temperature),
			})
		}
		orders = append(orders, o)
	}
	return orders, nil
}

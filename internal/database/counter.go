package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jinzhu/gorm"

	"seniorkiosk/internal/order"
)

// CounterStore keeps the order counter in the kiosk_settings table
type CounterStore struct {
	db *gorm.DB
	mu sync.Mutex
}

// NewCounterStore creates a new database-backed counter store
func NewCounterStore(db *gorm.DB) *CounterStore {
	return &CounterStore{db: db}
}

// Update runs fn inside a database transaction. On postgres the transaction
// also takes an advisory lock so kiosks sharing a database serialize.
func (s *CounterStore) Update(ctx context.Context, fn func(kv order.KV) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		if tx.Dialect().GetName() == DialectPostgres {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext('kiosk_order_counter'))").Error; err != nil {
				return fmt.Errorf("failed to lock order counter: %w", err)
			}
		}
		return fn(&settingsKV{tx: tx})
	})
}

type settingsKV struct {
	tx *gorm.DB
}

func (kv *settingsKV) Get(_ context.Context, key string) (string, bool, error) {
	var s Setting
	err := kv.tx.Where("name = ?", key).First(&s).Error
	if gorm.IsRecordNotFoundError(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return s.Value, true, nil
}

func (kv *settingsKV) Set(_ context.Context, key, value string) error {
	s := Setting{Name: key, Value: value, UpdatedAt: time.Now()}
	if err := kv.tx.Save(&s).Error; err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}
	return nil
}

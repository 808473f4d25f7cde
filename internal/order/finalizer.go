package order

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"seniorkiosk/internal/cart"
	"seniorkiosk/internal/models"
)

const (
	// counterBase is the value a counter resets to; the first order of a day is counterBase+1
	counterBase = 100
	dateLayout  = "2006-01-02"

	basePrepMinutes    = 3
	minutesPerItem     = 1.0
	minimumPrepMinutes = 3
)

// ErrEmptyCart is returned when finalizing an order with no lines
var ErrEmptyCart = errors.New("cannot finalize an empty cart")

// Recorder receives every completed order, e.g. to keep a journal
type Recorder interface {
	RecordOrder(ctx context.Context, order models.CompletedOrder) error
}

// Clock returns the current time
type Clock func() time.Time

// Finalizer turns a cart into a numbered CompletedOrder
type Finalizer struct {
	store    CounterStore
	clock    Clock
	location *time.Location
	recorder Recorder
	logger   *zap.Logger
}

// Option configures a Finalizer
type Option func(*Finalizer)

// WithClock overrides the time source
func WithClock(clock Clock) Option {
	return func(f *Finalizer) { f.clock = clock }
}

// WithLocation sets the timezone that decides the calendar day
func WithLocation(loc *time.Location) Option {
	return func(f *Finalizer) { f.location = loc }
}

// WithRecorder sets a journal for completed orders
func WithRecorder(r Recorder) Option {
	return func(f *Finalizer) { f.recorder = r }
}

// NewFinalizer creates a new order finalizer
func NewFinalizer(store CounterStore, logger *zap.Logger, opts ...Option) *Finalizer {
	f := &Finalizer{
		store:    store,
		clock:    time.Now,
		location: time.Local,
		logger:   logger.Named("order"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Finalize assigns the next order number of the current day to lines. The
// counter is read and written in one store update, so concurrent callers
// never share a number. A store failure consumes no number.
func (f *Finalizer) Finalize(ctx context.Context, lines []models.CartLine) (models.CompletedOrder, error) {
	if len(lines) == 0 {
		return models.CompletedOrder{}, ErrEmptyCart
	}

	now := f.clock().In(f.location)
	today := now.Format(dateLayout)

	var number int
	err := f.store.Update(ctx, func(kv KV) error {
		n, err := nextNumber(ctx, kv, today)
		if err != nil {
			return err
		}
		if err := kv.Set(ctx, KeyOrderDate, today); err != nil {
			return fmt.Errorf("failed to store order date: %w", err)
		}
		if err := kv.Set(ctx, KeyOrderCounter, strconv.Itoa(n)); err != nil {
			return fmt.Errorf("failed to store order counter: %w", err)
		}
		number = n
		return nil
	})
	if err != nil {
		return models.CompletedOrder{}, fmt.Errorf("failed to allocate order number: %w", err)
	}

	completed := models.CompletedOrder{
		ID:          uuid.NewString(),
		Number:      number,
		Lines:       models.CopyLines(lines),
		Total:       cart.Total(lines),
		PrepMinutes: PrepTime(len(lines)),
		PlacedAt:    now,
	}

	f.logger.Info("Order completed",
		zap.String("order_id", completed.ID),
		zap.Int("number", completed.Number),
		zap.Int("lines", len(completed.Lines)),
		zap.Int("total", completed.Total),
	)

	if f.recorder != nil {
		if err := f.recorder.RecordOrder(ctx, completed); err != nil {
			f.logger.Warn("Failed to record completed order", zap.String("order_id", completed.ID), zap.Error(err))
		}
	}

	return completed, nil
}

func nextNumber(ctx context.Context, kv KV, today string) (int, error) {
	date, ok, err := kv.Get(ctx, KeyOrderDate)
	if err != nil {
		return 0, fmt.Errorf("failed to read order date: %w", err)
	}
	if !ok || date != today {
		return counterBase + 1, nil
	}

	raw, ok, err := kv.Get(ctx, KeyOrderCounter)
	if err != nil {
		return 0, fmt.Errorf("failed to read order counter: %w", err)
	}
	current, convErr := strconv.Atoi(raw)
	if !ok || convErr != nil || current < counterBase {
		current = counterBase
	}
	return current + 1, nil
}

// PrepTime estimates minutes until an order of itemCount lines is ready
func PrepTime(itemCount int) int {
	minutes := basePrepMinutes + int(math.Ceil(float64(itemCount)*minutesPerItem))
	if minutes < minimumPrepMinutes {
		return minimumPrepMinutes
	}
	return minutes
}

package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"seniorkiosk/internal/models"
	"seniorkiosk/internal/order"
)

func newTestStore(t *testing.T) (*RedisCounterStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := NewRedisCounterStore("redis://"+mr.Addr()+"/0", "kiosk:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func TestNewRedisCounterStoreErrors(t *testing.T) {
	_, err := NewRedisCounterStore("not a url", "", zap.NewNop())
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err = NewRedisCounterStore("redis://"+addr+"/0", "", zap.NewNop())
	assert.Error(t, err)
}

func TestRedisCounterStoreWritesPrefixedKeys(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	err := store.Update(ctx, func(kv order.KV) error {
		_, ok, err := kv.Get(ctx, order.KeyOrderDate)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, kv.Set(ctx, order.KeyOrderDate, "2026-03-02"))
		v, ok, err := kv.Get(ctx, order.KeyOrderDate)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "2026-03-02", v)
		return nil
	})
	require.NoError(t, err)

	got, err := mr.Get("kiosk:" + order.KeyOrderDate)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", got)
	require.NoError(t, store.Ping(ctx))
}

func TestRedisCounterStoreDiscardsOnError(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	err := store.Update(ctx, func(kv order.KV) error {
		require.NoError(t, kv.Set(ctx, order.KeyOrderCounter, "150"))
		return errors.New("abort")
	})
	assert.Error(t, err)
	assert.False(t, mr.Exists("kiosk:"+order.KeyOrderCounter))
}

func TestFinalizerOnRedisStore(t *testing.T) {
	store, mr := newTestStore(t)
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	f := order.NewFinalizer(store, zap.NewNop(),
		order.WithClock(func() time.Time { return now }), order.WithLocation(time.UTC))
	lines := []models.CartLine{{Item: models.MenuItem{ID: "1", Name: "아메리카노", Price: 3000}, Quantity: 1}}

	const n = 10
	var wg sync.WaitGroup
	numbers := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o, err := f.Finalize(context.Background(), lines)
			if assert.NoError(t, err) {
				numbers <- o.Number
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := map[int]bool{}
	for num := range numbers {
		assert.False(t, seen[num], "duplicate order number %d", num)
		seen[num] = true
	}
	assert.Len(t, seen, n)

	counter, err := mr.Get("kiosk:" + order.KeyOrderCounter)
	require.NoError(t, err)
	assert.Equal(t, "110", counter)
}

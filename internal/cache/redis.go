package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"seniorkiosk/internal/order"
)

const maxTxRetries = 10

// RedisCounterStore keeps the order counter in Redis. Updates use
// WATCH/MULTI so kiosks sharing one Redis never hand out the same number.
type RedisCounterStore struct {
	client *redis.Client
	prefix string
	log    *zap.Logger
}

// NewRedisCounterStore connects to url and verifies the connection
func NewRedisCounterStore(url, prefix string, log *zap.Logger) (*RedisCounterStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("Successfully connected to Redis")
	return &RedisCounterStore{
		client: client,
		prefix: prefix,
		log:    log,
	}, nil
}

// Update implements order.CounterStore
func (s *RedisCounterStore) Update(ctx context.Context, fn func(kv order.KV) error) error {
	keys := []string{s.key(order.KeyOrderDate), s.key(order.KeyOrderCounter)}

	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			kv := &redisKV{store: s, tx: tx, writes: make(map[string]string)}
			if err := fn(kv); err != nil {
				return err
			}
			_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				for k, v := range kv.writes {
					pipe.Set(ctx, s.key(k), v, 0)
				}
				return nil
			})
			return err
		}, keys...)

		if errors.Is(err, redis.TxFailedErr) {
			s.log.Debug("Order counter changed concurrently, retrying", zap.Int("attempt", attempt+1))
			continue
		}
		return err
	}
	return fmt.Errorf("order counter update conflicted %d times", maxTxRetries)
}

// Ping checks the connection
func (s *RedisCounterStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client
func (s *RedisCounterStore) Close() error {
	return s.client.Close()
}

func (s *RedisCounterStore) key(name string) string {
	return s.prefix + name
}

type redisKV struct {
	store  *RedisCounterStore
	tx     *redis.Tx
	writes map[string]string
}

func (kv *redisKV) Get(ctx context.Context, key string) (string, bool, error) {
	if v, ok := kv.writes[key]; ok {
		return v, true, nil
	}
	v, err := kv.tx.Get(ctx, kv.store.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (kv *redisKV) Set(_ context.Context, key, value string) error {
	kv.writes[key] = value
	return nil
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/example/gearshop/internal/domain/cart"
)

// RedisCartStore keeps one cart document per owner as a JSON value.
// PutCart runs under WATCH so the version check and the replace commit
// atomically; a concurrent writer aborts the transaction and surfaces
// as ErrVersionConflict.
type RedisCartStore struct {
	client *redis.Client
}

func NewRedisCartStore(addr string) *RedisCartStore {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		MinIdleConns: 1,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})
	return &RedisCartStore{client: client}
}

// Ping checks connectivity.
func (s *RedisCartStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func cartKey(ownerID string) string {
	return "cart:" + ownerID
}

// GetCart loads the owner's cart document.
func (s *RedisCartStore) GetCart(ctx context.Context, ownerID string) (*cart.Cart, error) {
	val, err := s.client.Get(ctx, cartKey(ownerID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	var c cart.Cart
	if err := json.Unmarshal([]byte(val), &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart: %w", err)
	}
	return &c, nil
}

// PutCart replaces the owner's document if the stored version still
// matches the version the caller read.
func (s *RedisCartStore) PutCart(ctx context.Context, c *cart.Cart) error {
	key := cartKey(c.OwnerID)
	now := time.Now()

	txn := func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Result()
		switch {
		case errors.Is(err, redis.Nil):
			if c.Version != 0 {
				return ErrVersionConflict
			}
		case err != nil:
			return err
		default:
			var stored cart.Cart
			if err := json.Unmarshal([]byte(val), &stored); err != nil {
				return fmt.Errorf("failed to unmarshal cart: %w", err)
			}
			if stored.Version != c.Version {
				return ErrVersionConflict
			}
		}

		doc := *c
		doc.Version = c.Version + 1
		doc.UpdatedAt = now
		data, err := json.Marshal(&doc)
		if err != nil {
			return fmt.Errorf("failed to marshal cart: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}

	if err := s.client.Watch(ctx, txn, key); err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			return ErrVersionConflict
		}
		if errors.Is(err, ErrVersionConflict) {
			return err
		}
		return fmt.Errorf("failed to put cart: %w", err)
	}

	c.Version++
	c.UpdatedAt = now
	return nil
}

// Close releases the underlying connection pool.
func (s *RedisCartStore) Close() error {
	return s.client.Close()
}

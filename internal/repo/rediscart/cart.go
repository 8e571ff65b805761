// Package rediscart keeps shopping carts in a Redis hash per user: field = product id,
// value = quantity. Carts expire after a period of inactivity.
package rediscart

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/naturlife/storefront/internal/domain/cart"
	"github.com/redis/go-redis/v9"
)

const DefaultTTL = 30 * 24 * time.Hour

type Store struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func New(rdb redis.Cmdable, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

func key(userID string) string {
	return "cart:v1:" + userID
}

func (s *Store) Get(ctx context.Context, userID string) (cart.Cart, error) {
	m, err := s.rdb.HGetAll(ctx, key(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return cart.Cart{}, fmt.Errorf("cart get: %w", err)
	}

	c := cart.Cart{UserID: userID, Lines: make([]cart.Line, 0, len(m))}
	for productID, raw := range m {
		qty, err := strconv.Atoi(raw)
		if err != nil || qty <= 0 {
			continue
		}
		c.Lines = append(c.Lines, cart.Line{ProductID: productID, Quantity: qty})
	}

	sort.Slice(c.Lines, func(i, j int) bool { return c.Lines[i].ProductID < c.Lines[j].ProductID })
	return c, nil
}

// SetQuantity sets one line; zero removes it. Every write refreshes the cart TTL.
func (s *Store) SetQuantity(ctx context.Context, userID, productID string, qty int) error {
	k := key(userID)

	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if qty <= 0 {
			pipe.HDel(ctx, k, productID)
		} else {
			pipe.HSet(ctx, k, productID, qty)
		}
		pipe.Expire(ctx, k, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("cart set: %w", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context, userID string) error {
	if err := s.rdb.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("cart clear: %w", err)
	}
	return nil
}

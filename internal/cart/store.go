package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Carts expire with the checkout window; an abandoned cart just ages out.
const cartTTL = 30 * time.Minute

type Store interface {
	Get(ctx context.Context, sessionID string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	Clear(ctx context.Context, sessionID string) error
}

type redisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) Store {
	return &redisStore{rdb: rdb}
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}

func (s *redisStore) Get(ctx context.Context, sessionID string) (*Cart, error) {
	raw, err := s.rdb.Get(ctx, cartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, err
	}

	var c Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}

	return &c, nil
}

func (s *redisStore) Save(ctx context.Context, c *Cart) error {
	for _, item := range c.Items {
		if item.Quantity <= 0 {
			return ErrInvalidQuantity
		}
	}

	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}

	return s.rdb.Set(ctx, cartKey(c.SessionID), raw, cartTTL).Err()
}

func (s *redisStore) Clear(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, cartKey(sessionID)).Err()
}

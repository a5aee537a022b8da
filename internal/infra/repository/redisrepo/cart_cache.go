package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
	"github.com/redis/go-redis/v9"
)

const cartTTL = 24 * time.Hour

// CartCache 購物車讀取快取, db 才是 source of truth,
// 任何寫入購物車的操作都要 Invalidate
type CartCache struct {
	client *redis.Client
	prefix string
}

func NewCartCache(client *redis.Client, prefix string) *CartCache {
	return &CartCache{
		client: client,
		prefix: prefix,
	}
}

func (c *CartCache) key(cartID uint) string {
	var builder strings.Builder
	builder.WriteString(c.prefix)
	builder.WriteString(":cart:")
	builder.WriteString(fmt.Sprintf("%d", cartID))
	return builder.String()
}

// Get cache miss 回傳 (nil, nil)
func (c *CartCache) Get(ctx context.Context, cartID uint) (*model.Cart, error) {
	raw, err := c.client.Get(ctx, c.key(cartID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var cart model.Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cached cart: %w", err)
	}
	return &cart, nil
}

func (c *CartCache) Set(ctx context.Context, cart *model.Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	return c.client.Set(ctx, c.key(cart.CartID), raw, cartTTL).Err()
}

func (c *CartCache) Invalidate(ctx context.Context, cartID uint) error {
	return c.client.Del(ctx, c.key(cartID)).Err()
}

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/light-bringer/promo-engine/internal/app/promotion/contracts"
	"github.com/light-bringer/promo-engine/internal/pkg/clock"
)

const keyPrefix = "promo:price:"

// RedisPriceCache implements PriceCache using Redis.
type RedisPriceCache struct {
	client *redis.Client
	ttl    time.Duration
	clock  clock.Clock
	logger *zap.Logger
}

// NewRedisPriceCache wraps an existing client. The caller owns the client.
// A non-positive ttl uses DefaultTTL.
func NewRedisPriceCache(client *redis.Client, ttl time.Duration, clk clock.Clock, logger *zap.Logger) *RedisPriceCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisPriceCache{
		client: client,
		ttl:    ttl,
		clock:  clk,
		logger: logger.Named("price_cache"),
	}
}

// NewRedisClient connects and pings.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func priceKey(productID string) string {
	return keyPrefix + productID
}

// Get returns the cached view or (nil, nil) on a miss.
func (c *RedisPriceCache) Get(ctx context.Context, productID string) (*contracts.PriceView, error) {
	key := priceKey(productID)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get price from cache: %w", err)
	}

	var view contracts.PriceView
	if err := json.Unmarshal(data, &view); err != nil {
		c.logger.Warn("Dropping corrupted price cache entry",
			zap.String("product_id", productID),
			zap.Error(err))
		_ = c.client.Del(ctx, key)
		return nil, nil
	}

	return &view, nil
}

// Set stores a view. The entry never outlives the promotion it reflects.
func (c *RedisPriceCache) Set(ctx context.Context, view *contracts.PriceView) error {
	if view == nil {
		return nil
	}

	ttl := entryTTL(c.ttl, view, c.clock.Now())
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("failed to marshal price: %w", err)
	}

	if err := c.client.Set(ctx, priceKey(view.ProductID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set price in cache: %w", err)
	}
	return nil
}

// Invalidate deletes the entries for the given products.
func (c *RedisPriceCache) Invalidate(ctx context.Context, productIDs ...string) error {
	if len(productIDs) == 0 {
		return nil
	}

	keys := make([]string, len(productIDs))
	for i, id := range productIDs {
		keys[i] = priceKey(id)
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate %d prices: %w", len(keys), err)
	}
	return nil
}

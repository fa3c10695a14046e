package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/application/rates"
	"github.com/storefront/backend/internal/domain/currency"
)

// RedisRateCache shares the fetched exchange-rate table across
// instances so only one of them hits the external source per refresh
// window.
type RedisRateCache struct {
	client *redis.Client
	key    string
}

// NewRedisRateCache creates a rate cache over an existing client
func NewRedisRateCache(client *redis.Client, key string) *RedisRateCache {
	if key == "" {
		key = "rates:table"
	}
	return &RedisRateCache{client: client, key: key}
}

// Get returns the cached table, or nil on a miss. A corrupt value is
// treated as a miss.
func (c *RedisRateCache) Get(ctx context.Context) (currency.RateTable, error) {
	raw, err := c.client.Get(ctx, c.key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read rate cache: %w", err)
	}

	var stored map[string]string
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, nil
	}

	table := make(currency.RateTable, len(stored))
	for code, rate := range stored {
		d, err := decimal.NewFromString(rate)
		if err != nil || !d.IsPositive() {
			continue
		}
		table[currency.Code(code)] = d
	}
	if len(table) == 0 {
		return nil, nil
	}
	return table, nil
}

// Set stores the table with the given TTL
func (c *RedisRateCache) Set(ctx context.Context, table currency.RateTable, ttl time.Duration) error {
	stored := make(map[string]string, len(table))
	for code, rate := range table {
		stored[code.String()] = rate.String()
	}
	payload, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to encode rate table: %w", err)
	}
	if err := c.client.Set(ctx, c.key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write rate cache: %w", err)
	}
	return nil
}

var _ rates.Cache = (*RedisRateCache)(nil)

package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/currency"
	"github.com/storefront/backend/internal/domain/listing"
)

// RedisRangeStore persists the committed price range per display
// currency in Redis, so a returning visitor gets their last selection
// back. Suitable for distributed deployments where sessions can land
// on any instance.
type RedisRangeStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisRangeStoreWithClient creates a store over an existing client.
// Useful for testing and for sharing a client across components.
func NewRedisRangeStoreWithClient(client *redis.Client, keyPrefix string) *RedisRangeStore {
	if keyPrefix == "" {
		keyPrefix = "listing:range:"
	}
	return &RedisRangeStore{client: client, keyPrefix: keyPrefix}
}

// Load returns the stored range for a currency, or nil when absent.
// A value that cannot be decoded is treated as absent rather than
// failing the mount.
func (s *RedisRangeStore) Load(ctx context.Context, code currency.Code) (*listing.PriceRange, error) {
	raw, err := s.client.Get(ctx, s.keyPrefix+code.String()).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted range: %w", err)
	}
	return decodeStoredRange(raw, code), nil
}

// Save stores the committed range for a currency as a two-element
// numeric JSON array, e.g. [5000,20000]
func (s *RedisRangeStore) Save(ctx context.Context, code currency.Code, r listing.PriceRange) error {
	payload, err := encodeStoredRange(r)
	if err != nil {
		return fmt.Errorf("failed to encode range: %w", err)
	}
	if err := s.client.Set(ctx, s.keyPrefix+code.String(), payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to persist range: %w", err)
	}
	return nil
}

// Clear removes the stored range for a currency
func (s *RedisRangeStore) Clear(ctx context.Context, code currency.Code) error {
	if err := s.client.Del(ctx, s.keyPrefix+code.String()).Err(); err != nil {
		return fmt.Errorf("failed to clear persisted range: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisRangeStore) Close() error {
	return s.client.Close()
}

// encodeStoredRange serializes a range to the persisted wire form, a
// two-element numeric JSON array
func encodeStoredRange(r listing.PriceRange) ([]byte, error) {
	return json.Marshal([2]json.Number{
		json.Number(r.Min.String()),
		json.Number(r.Max.String()),
	})
}

// decodeStoredRange parses a persisted range value. Anything that is
// not a two-element array of valid decimals resolves to nil, and the
// parsed range is clamped into the currency's bounds so stale values
// written under older bounds stay usable.
func decodeStoredRange(raw string, code currency.Code) *listing.PriceRange {
	var parts [2]json.Number
	if err := json.Unmarshal([]byte(raw), &parts); err != nil {
		// earlier deployments wrote the bounds as JSON strings
		var legacy [2]string
		if err := json.Unmarshal([]byte(raw), &legacy); err != nil {
			return nil
		}
		parts[0], parts[1] = json.Number(legacy[0]), json.Number(legacy[1])
	}
	min, err := decimal.NewFromString(parts[0].String())
	if err != nil {
		return nil
	}
	max, err := decimal.NewFromString(parts[1].String())
	if err != nil {
		return nil
	}

	r := listing.ClampRange(listing.PriceRange{Min: min, Max: max}, listing.ResolveBounds(code))
	return &r
}

var _ listing.RangeStore = (*RedisRangeStore)(nil)

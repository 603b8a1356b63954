package rediscache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mytechsonamy/crypto-stock-platform/internal/domain/market"
	v1 "github.com/mytechsonamy/crypto-stock-platform/internal/domain/market/v1"
	"github.com/mytechsonamy/crypto-stock-platform/pkg/redis"
)

// Cache mirrors the latest bar and indicator snapshot per series into Redis
// so read-heavy services get them without touching Postgres. The pipeline
// works unchanged when this adapter is absent.
type Cache struct {
	client redis.Client
	config *redis.Config
}

var _ market.BarCache = (*Cache)(nil)

// NewCache creates a Redis-backed bar cache.
func NewCache(client redis.Client, config *redis.Config) *Cache {
	return &Cache{
		client: client,
		config: config,
	}
}

// SetLatestBar stores the bar under its series key with the default TTL.
func (c *Cache) SetLatestBar(ctx context.Context, bar *v1.Bar) error {
	payload, err := json.Marshal(bar)
	if err != nil {
		return fmt.Errorf("failed to encode bar: %w", err)
	}

	key := fmt.Sprintf("%sbar:latest:%s:%s:%s", c.config.PrefixKey, bar.Exchange, bar.Symbol, bar.Timeframe)
	return c.client.Set(ctx, key, payload, c.config.DefaultTTL)
}

// SetIndicators stores the snapshot under its series key with the default TTL.
func (c *Cache) SetIndicators(ctx context.Context, snapshot *v1.IndicatorSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode indicator snapshot: %w", err)
	}

	key := fmt.Sprintf("%sindicators:%s:%s", c.config.PrefixKey, snapshot.Symbol, snapshot.Timeframe)
	return c.client.Set(ctx, key, payload, c.config.DefaultTTL)
}

// Package cache provides a time-boxed read-through cache in front of the
// record store, so repeated page loads within the TTL window do not hit the
// remote backing file.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kirkpatrick8/eventpool/internal/config"
	"github.com/kirkpatrick8/eventpool/internal/models"
	"github.com/kirkpatrick8/eventpool/pkg/logger"
)

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(cfg *config.RedisConfig, log *logger.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info().Str("addr", cfg.Addr()).Msg("Connected to Redis")
	return rdb, nil
}

// PredictionCache caches the full prediction list under one key derived from
// the store's identity. Not shared across logical stores.
type PredictionCache struct {
	rdb *redis.Client
	key string
	ttl time.Duration
	log *logger.Logger
}

// NewPredictionCache creates a cache keyed by the given store identity.
func NewPredictionCache(rdb *redis.Client, storeIdentity string, ttl time.Duration, log *logger.Logger) *PredictionCache {
	return &PredictionCache{
		rdb: rdb,
		key: "eventpool:predictions:" + storeIdentity,
		ttl: ttl,
		log: log,
	}
}

// Get returns the cached prediction list, if present and unexpired.
// Cache trouble is never fatal: the caller falls through to the store.
func (c *PredictionCache) Get(ctx context.Context) ([]models.Prediction, bool) {
	raw, err := c.rdb.Get(ctx, c.key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.log.Warn().Err(err).Str("key", c.key).Msg("Cache read failed")
		return nil, false
	}

	var predictions []models.Prediction
	if err := json.Unmarshal(raw, &predictions); err != nil {
		c.log.Warn().Err(err).Str("key", c.key).Msg("Cache entry corrupt, dropping")
		_ = c.rdb.Del(ctx, c.key).Err()
		return nil, false
	}

	return predictions, true
}

// Set replaces the cached value for one TTL window.
func (c *PredictionCache) Set(ctx context.Context, predictions []models.Prediction) {
	raw, err := json.Marshal(predictions)
	if err != nil {
		c.log.Warn().Err(err).Msg("Failed to encode cache entry")
		return
	}
	if err := c.rdb.Set(ctx, c.key, raw, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", c.key).Msg("Cache write failed")
	}
}

// Clear drops the cached value. Invoked after every successful append so the
// submitter sees their own record on the next read.
func (c *PredictionCache) Clear(ctx context.Context) error {
	return c.rdb.Del(ctx, c.key).Err()
}

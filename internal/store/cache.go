package store

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"housepredict/internal/common/config"
	"housepredict/internal/feature"
)

// PredictionCache is a get-aside cache keyed by the normalized input row.
type PredictionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPredictionCache(client *redis.Client, ttl time.Duration) *PredictionCache {
	return &PredictionCache{client: client, ttl: ttl}
}

// NewRedisClient builds a client from config.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Get returns the cached prediction for a record, if present.
func (c *PredictionCache) Get(ctx context.Context, rec feature.Record) (float64, bool) {
	val, err := c.client.Get(ctx, cacheKey(rec)).Result()
	if err != nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Set stores a prediction for a record. Failures are the caller's to log;
// the cache never blocks a prediction.
func (c *PredictionCache) Set(ctx context.Context, rec feature.Record, prediction float64) error {
	return c.client.Set(ctx, cacheKey(rec), strconv.FormatFloat(prediction, 'g', -1, 64), c.ttl).Err()
}

// cacheKey hashes the nine schema fields in schema order so equivalent
// records map to the same key regardless of extra fields.
func cacheKey(rec feature.Record) string {
	h := sha256.New()
	for _, name := range feature.Names {
		fmt.Fprintf(h, "%s=%v;", name, rec[name])
	}
	return "pred:" + fmt.Sprintf("%x", h.Sum(nil))
}

// Package cache provides the redis-backed retrieval cache.
// This package is internal and should not be imported by external projects.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/taxotools/semalign/internal/metrics"
	"github.com/taxotools/semalign/search"
)

// Config configures the retrieval cache.
type Config struct {
	Addr         string        `yaml:"addr" json:"addr"`
	Password     string        `yaml:"password" json:"password"`
	DB           int           `yaml:"db" json:"db"`
	DefaultTTL   time.Duration `yaml:"default_ttl" json:"default_ttl"`
	MaxRetries   int           `yaml:"max_retries" json:"max_retries"`
	PoolSize     int           `yaml:"pool_size" json:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns" json:"min_idle_conns"`
	KeyPrefix    string        `yaml:"key_prefix" json:"key_prefix"`
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		DB:           0,
		DefaultTTL:   15 * time.Minute,
		MaxRetries:   3,
		PoolSize:     10,
		MinIdleConns: 2,
		KeyPrefix:    "semalign:retrieval:",
	}
}

// RetrievalCache caches candidate-retrieval results in redis, keyed by a
// digest of the query text and taxonomy filter. Cache failures degrade
// to misses; the index stays the source of truth.
type RetrievalCache struct {
	redis   *redis.Client
	config  Config
	metrics *metrics.Collector
	logger  *zap.Logger
}

// NewRetrievalCache connects to redis and verifies the connection.
func NewRetrievalCache(config Config, collector *metrics.Collector, logger *zap.Logger) (*RetrievalCache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		MaxRetries:   config.MaxRetries,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("retrieval cache initialized", zap.String("addr", config.Addr))
	return &RetrievalCache{
		redis:   client,
		config:  config,
		metrics: collector,
		logger:  logger.With(zap.String("component", "cache")),
	}, nil
}

// Get returns the cached results for the key, or ok=false on a miss.
func (c *RetrievalCache) Get(ctx context.Context, key string) ([]search.Result, bool) {
	val, err := c.redis.Get(ctx, c.redisKey(key)).Result()
	if err == redis.Nil {
		c.metrics.RecordCacheMiss()
		return nil, false
	}
	if err != nil {
		c.logger.Warn("cache get failed, treating as miss", zap.Error(err))
		c.metrics.RecordCacheMiss()
		return nil, false
	}

	var results []search.Result
	if err := json.Unmarshal([]byte(val), &results); err != nil {
		c.logger.Warn("cache entry corrupt, treating as miss", zap.Error(err))
		c.metrics.RecordCacheMiss()
		return nil, false
	}
	c.metrics.RecordCacheHit()
	return results, true
}

// Set stores the results under the key with the default TTL.
func (c *RetrievalCache) Set(ctx context.Context, key string, results []search.Result) {
	payload, err := json.Marshal(results)
	if err != nil {
		c.logger.Warn("cache set skipped, marshal failed", zap.Error(err))
		return
	}
	if err := c.redis.Set(ctx, c.redisKey(key), payload, c.config.DefaultTTL).Err(); err != nil {
		c.logger.Warn("cache set failed", zap.Error(err))
	}
}

// Close releases the redis connection pool.
func (c *RetrievalCache) Close() error {
	return c.redis.Close()
}

func (c *RetrievalCache) redisKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return c.config.KeyPrefix + hex.EncodeToString(sum[:16])
}

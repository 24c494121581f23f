package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/coderr-app/coderr-backend/config"
	"github.com/coderr-app/coderr-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// Init initializes the Redis connection
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully", nil)
	return nil
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection", nil)
		return client.Close()
	}
	return nil
}

// SetJSON stores a JSON-encoded value under key with the given TTL
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if client == nil {
		return fmt.Errorf("redis client not initialized")
	}

	payload, err := json.Marshal(value)
	if err != nil {
		logger.Error("Failed to marshal value for cache", err, map[string]interface{}{
			"key": key,
		})
		return err
	}

	if err := client.Set(ctx, key, payload, ttl).Err(); err != nil {
		logger.Error("Failed to write cache entry", err, map[string]interface{}{
			"key": key,
		})
		return err
	}

	logger.Debug("Cache entry written", map[string]interface{}{
		"key": key,
		"ttl": ttl.String(),
	})
	return nil
}

// GetJSON loads a JSON-encoded value into dest. Returns false on a cache
// miss without error.
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if client == nil {
		return false, fmt.Errorf("redis client not initialized")
	}

	payload, err := client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		logger.Error("Failed to read cache entry", err, map[string]interface{}{
			"key": key,
		})
		return false, err
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		logger.Error("Failed to unmarshal cached value", err, map[string]interface{}{
			"key": key,
		})
		return false, err
	}
	return true, nil
}

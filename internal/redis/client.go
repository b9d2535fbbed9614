package redis

import (
	"fmt"

	"auctionhouse/config"

	"github.com/redis/go-redis/v9"
)

// NewClient creates a Redis client from the application config. The same
// client backs the event bus and the rate limiter.
func NewClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

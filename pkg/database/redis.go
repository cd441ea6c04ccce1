package database

import (
	"context"
	"fmt"
	"time"

	"labor-market/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// InitRedis connects to Redis. It returns (nil, nil) when no address is
// configured; callers fall back to in-process behaviour.
func InitRedis(config utils.RedisConfig) (*redis.Client, error) {
	if config.Addr == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", config.Addr, err)
	}

	return rdb, nil
}

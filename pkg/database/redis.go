package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"edu_diagnosis_backend/internal/config"

	"github.com/go-redis/redis/v8"
)

// InitRedis 建立Redis连接，通知通道与统计缓存共用同一个客户端
func InitRedis(cfg *config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     50,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	log.Println("Redis connection established")
	return rdb, nil
}

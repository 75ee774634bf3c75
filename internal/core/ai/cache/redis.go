package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"planeats/internal/pkg/common"

	"github.com/go-redis/redis/v8"
)

// RedisCache 以 Redis 儲存 AI 回應，多個實例可共用
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache 創建 Redis 快取，client 由呼叫端建立並負責關閉
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get 獲取快取
func (s *RedisCache) Get(ctx context.Context, key string) (string, error) {
	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", common.ErrCacheMiss
		}
		return "", fmt.Errorf("failed to get cache: %w", err)
	}
	return data, nil
}

// Set 設置快取
func (s *RedisCache) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Delete 刪除快取
func (s *RedisCache) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete cache: %w", err)
	}
	return nil
}

// Close 連線由呼叫端管理
func (s *RedisCache) Close() error {
	return nil
}

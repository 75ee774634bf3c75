package ratelimit

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore 多實例共用的計數器，以 INCR 計數，第一次計數時設定 PEXPIRE
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore 創建 Redis 計數器
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ratelimit:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Hit(ctx context.Context, key string, limit int, win time.Duration) (Result, error) {
	k := s.prefix + key

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	ttl := pipe.PTTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, err
	}

	count := int(incr.Val())
	remaining := ttl.Val()
	if count == 1 || remaining < 0 {
		if err := s.client.PExpire(ctx, k, win).Err(); err != nil {
			return Result{}, err
		}
		remaining = win
	}
	return newResult(count, limit, time.Now().Add(remaining)), nil
}
